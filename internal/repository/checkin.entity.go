package repository

import (
	"time"

	"github.com/lightera/bundokai/internal/model"
)

type CheckInEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	ParticipantID int64     `db:"participant_id" gorm:"column:participant_id;not null;uniqueIndex"`
	CheckinTime   time.Time `db:"checkin_time"   gorm:"column:checkin_time;autoCreateTime"`
	Station       string    `db:"station"        gorm:"column:station;not null;default:main"`
	Status        string    `db:"status"         gorm:"column:status;not null;default:checked_in"`
	Operator      string    `db:"operator"       gorm:"column:operator"`
}

func (CheckInEntity) TableName() string {
	return "checkins"
}

func toCheckInEntity(c *model.CheckIn) *CheckInEntity {
	if c == nil {
		return nil
	}
	return &CheckInEntity{
		ID:            c.ID,
		ParticipantID: c.ParticipantID,
		CheckinTime:   c.CheckinTime,
		Station:       c.Station,
		Status:        c.Status,
		Operator:      c.Operator,
	}
}

func toCheckInModel(e *CheckInEntity) *model.CheckIn {
	if e == nil {
		return nil
	}
	return &model.CheckIn{
		ID:            e.ID,
		ParticipantID: e.ParticipantID,
		CheckinTime:   e.CheckinTime,
		Station:       e.Station,
		Status:        e.Status,
		Operator:      e.Operator,
	}
}
