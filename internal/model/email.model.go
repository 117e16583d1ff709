package model

import "time"

const (
	EmailTypeQRDelivery   = "qr_delivery"
	EmailTypeReminder     = "reminder"
	EmailTypeConfirmation = "confirmation"
)

const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusBounced = "bounced"
)

type EmailLog struct {
	ID            int64      `json:"id"`
	ParticipantID int64      `json:"participant_id"`
	EmailType     string     `json:"email_type"`
	Subject       string     `json:"subject,omitempty"`
	SentAt        time.Time  `json:"sent_at"`
	Status        string     `json:"status"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	OpenToken     string     `json:"-"`
}
