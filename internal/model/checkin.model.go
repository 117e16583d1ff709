package model

import "time"

const (
	StationMain   = "main"
	StationManual = "manual"
)

const (
	CheckinStatusCheckedIn = "checked_in"
)

type CheckIn struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	CheckinTime   time.Time `json:"checkin_time"`
	Station       string    `json:"station"`
	Status        string    `json:"status"`
	Operator      string    `json:"operator,omitempty"`
}

// CheckinOutcome is the tri-state result of one check-in attempt.
type CheckinOutcome int

const (
	CheckinAccepted CheckinOutcome = iota
	CheckinDuplicate
	CheckinNotFound
)

// CheckinResult carries the outcome plus whatever context the caller needs
// to render a message: the participant snapshot on success, the previous
// check-in on a duplicate.
type CheckinResult struct {
	Outcome     CheckinOutcome
	Participant *ParticipantSummary
	CheckIn     *CheckIn
}

// BulkCheckinReport aggregates per-participant outcomes of a batch run.
// One bad id never aborts the rest of the batch.
type BulkCheckinReport struct {
	Succeeded        int `json:"succeeded"`
	AlreadyCheckedIn int `json:"already_checked_in"`
	Errors           int `json:"errors"`
}
