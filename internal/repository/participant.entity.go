package repository

import (
	"time"

	"github.com/lightera/bundokai/internal/model"
)

type ParticipantEntity struct {
	ID              int64              `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	Name            string             `db:"name"             gorm:"column:name;not null"`
	Email           string             `db:"email"            gorm:"column:email;not null;index"`
	Phone           string             `db:"phone"            gorm:"column:phone"`
	Department      string             `db:"department"       gorm:"column:department;index"`
	EmployeeNo      string             `db:"employee_no"      gorm:"column:employee_no"`
	Code            string             `db:"qr_code"          gorm:"column:qr_code;not null;uniqueIndex"`
	DependentsCount int                `db:"dependents_count" gorm:"column:dependents_count;not null;default:0"`
	CreatedAt       time.Time          `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	Dependents      []*DependentEntity `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
}

func (ParticipantEntity) TableName() string {
	return "participants"
}

type DependentEntity struct {
	ID            int64  `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	ParticipantID int64  `db:"participant_id" gorm:"column:participant_id;not null;index"`
	Name          string `db:"name"           gorm:"column:name;not null"`
	Age           int    `db:"age"            gorm:"column:age;not null;default:0"`
}

func (DependentEntity) TableName() string {
	return "dependents"
}

func toParticipantEntity(p *model.Participant) *ParticipantEntity {
	if p == nil {
		return nil
	}
	return &ParticipantEntity{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		Department:      p.Department,
		EmployeeNo:      p.EmployeeNo,
		Code:            p.Code,
		DependentsCount: p.DependentsCount,
		CreatedAt:       p.CreatedAt,
	}
}

func toParticipantModel(e *ParticipantEntity) *model.Participant {
	if e == nil {
		return nil
	}
	return &model.Participant{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Phone:           e.Phone,
		Department:      e.Department,
		EmployeeNo:      e.EmployeeNo,
		Code:            e.Code,
		DependentsCount: e.DependentsCount,
		CreatedAt:       e.CreatedAt,
	}
}

func toDependentModels(entities []*DependentEntity) []*model.Dependent {
	if entities == nil {
		return nil
	}
	models := make([]*model.Dependent, len(entities))
	for i, e := range entities {
		models[i] = &model.Dependent{
			ID:            e.ID,
			ParticipantID: e.ParticipantID,
			Name:          e.Name,
			Age:           e.Age,
		}
	}
	return models
}

// ParticipantWithStatus is the row shape of the search and export queries:
// participant columns joined with the check-in, if any.
type ParticipantWithStatus struct {
	ID              int64      `gorm:"column:id"`
	Name            string     `gorm:"column:name"`
	Email           string     `gorm:"column:email"`
	Department      string     `gorm:"column:department"`
	Code            string     `gorm:"column:qr_code"`
	DependentsCount int        `gorm:"column:dependents_count"`
	CheckinTime     *time.Time `gorm:"column:checkin_time"`
}

func toParticipantSummary(r *ParticipantWithStatus) *model.ParticipantSummary {
	return &model.ParticipantSummary{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		Department:      r.Department,
		Code:            r.Code,
		DependentsCount: r.DependentsCount,
		CheckedIn:       r.CheckinTime != nil,
		CheckinTime:     r.CheckinTime,
	}
}
