package repository

import (
	"time"

	"github.com/lightera/bundokai/internal/model"
)

type EmailLogEntity struct {
	ID            int64      `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	ParticipantID int64      `db:"participant_id" gorm:"column:participant_id;not null;index"`
	EmailType     string     `db:"email_type"     gorm:"column:email_type;not null;index"`
	Subject       string     `db:"subject"        gorm:"column:subject"`
	SentAt        time.Time  `db:"sent_at"        gorm:"column:sent_at;autoCreateTime"`
	Status        string     `db:"status"         gorm:"column:status;not null"`
	OpenedAt      *time.Time `db:"opened_at"      gorm:"column:opened_at"`
	OpenToken     string     `db:"open_token"     gorm:"column:open_token;uniqueIndex"`
}

func (EmailLogEntity) TableName() string {
	return "email_logs"
}

func toEmailLogEntity(m *model.EmailLog) *EmailLogEntity {
	return &EmailLogEntity{
		ID:            m.ID,
		ParticipantID: m.ParticipantID,
		EmailType:     m.EmailType,
		Subject:       m.Subject,
		SentAt:        m.SentAt,
		Status:        m.Status,
		OpenedAt:      m.OpenedAt,
		OpenToken:     m.OpenToken,
	}
}

func toEmailLogModel(e *EmailLogEntity) *model.EmailLog {
	if e == nil {
		return nil
	}
	return &model.EmailLog{
		ID:            e.ID,
		ParticipantID: e.ParticipantID,
		EmailType:     e.EmailType,
		Subject:       e.Subject,
		SentAt:        e.SentAt,
		Status:        e.Status,
		OpenedAt:      e.OpenedAt,
		OpenToken:     e.OpenToken,
	}
}
