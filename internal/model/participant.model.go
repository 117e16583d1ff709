package model

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const MaxDependents = 5

type Participant struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Department      string    `json:"department,omitempty"`
	EmployeeNo      string    `json:"employee_no,omitempty"`
	Code            string    `json:"qr_code"`
	DependentsCount int       `json:"dependents_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type Dependent struct {
	ID            int64  `json:"id"`
	ParticipantID int64  `json:"participant_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
}

// DependentInput is one dependent slot on the registration form.
type DependentInput struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// UnmarshalJSON accepts the age as a number or a string. HTML forms
// submit every field as text, so "5" must land as 5 and anything
// non-numeric falls back to 0 instead of rejecting the payload.
func (d *DependentInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name string          `json:"name"`
		Age  json.RawMessage `json:"age"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Name = raw.Name
	d.Age = coerceAge(raw.Age)
	return nil
}

func coerceAge(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// RegisterRequest is the input for creating a participant with dependents.
type RegisterRequest struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Department string           `json:"department"`
	EmployeeNo string           `json:"employee_no"`
	Dependents []DependentInput `json:"dependents"`
}

// Normalize trims every field, lowercases the email and drops blank or
// over-limit dependent slots. Call before Validate.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Department = strings.TrimSpace(r.Department)
	r.EmployeeNo = strings.TrimSpace(r.EmployeeNo)

	kept := make([]DependentInput, 0, MaxDependents)
	for _, d := range r.Dependents {
		if len(kept) == MaxDependents {
			break
		}
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if d.Age < 0 {
			d.Age = 0
		}
		kept = append(kept, d)
	}
	r.Dependents = kept
}

func (r RegisterRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// ParticipantSummary is what search and check-in responses expose.
type ParticipantSummary struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Department      string     `json:"department,omitempty"`
	Code            string     `json:"qr_code"`
	DependentsCount int        `json:"dependents_count"`
	CheckedIn       bool       `json:"checked_in"`
	CheckinTime     *time.Time `json:"checkin_time,omitempty"`
}
