package services

import (
	"context"
	"errors"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/prom"
)

type CheckInRepository interface {
	Create(ctx context.Context, c *model.CheckIn) (*model.CheckIn, error)
	GetByParticipant(ctx context.Context, participantID int64) (*model.CheckIn, error)
}

type CheckinService struct {
	participants ParticipantRepository
	checkins     CheckInRepository
}

func NewCheckinService(participants ParticipantRepository, checkins CheckInRepository) *CheckinService {
	return &CheckinService{
		participants: participants,
		checkins:     checkins,
	}
}

// CheckInByCode resolves a scanned code and checks the participant in at
// the main station. The result is tri-state: accepted, duplicate (with the
// original check-in), or unknown code.
func (s *CheckinService) CheckInByCode(ctx context.Context, code string, operator string) (*model.CheckinResult, error) {
	code = NormalizeCode(code)
	if code == "" {
		return &model.CheckinResult{Outcome: model.CheckinNotFound}, nil
	}

	p, err := s.participants.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			prom.IncCheckinOutcome("not_found", model.StationMain)
			return &model.CheckinResult{Outcome: model.CheckinNotFound}, nil
		}
		return nil, err
	}

	return s.checkIn(ctx, p, model.StationMain, operator)
}

// CheckInByID checks a participant in from the admin search screen, for
// people whose QR code is unreadable or lost.
func (s *CheckinService) CheckInByID(ctx context.Context, participantID int64, operator string) (*model.CheckinResult, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			prom.IncCheckinOutcome("not_found", model.StationManual)
			return &model.CheckinResult{Outcome: model.CheckinNotFound}, nil
		}
		return nil, err
	}

	return s.checkIn(ctx, p, model.StationManual, operator)
}

// BulkCheckIn runs manual check-in over a list of participant ids and
// reports aggregate outcomes. One failing id never aborts the rest.
func (s *CheckinService) BulkCheckIn(ctx context.Context, participantIDs []int64, operator string) (*model.BulkCheckinReport, error) {
	report := &model.BulkCheckinReport{}
	for _, id := range participantIDs {
		result, err := s.CheckInByID(ctx, id, operator)
		if err != nil {
			logger.Error("bulk check-in failed for participant", "participant_id", id, "error", err)
			report.Errors++
			continue
		}
		switch result.Outcome {
		case model.CheckinAccepted:
			report.Succeeded++
		case model.CheckinDuplicate:
			report.AlreadyCheckedIn++
		default:
			report.Errors++
		}
	}
	return report, nil
}

// Status returns the participant with their check-in, if any.
func (s *CheckinService) Status(ctx context.Context, code string) (*model.ParticipantSummary, error) {
	p, err := s.participants.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	c, err := s.checkins.GetByParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	summary := summarize(p, c)
	return summary, nil
}

// checkIn inserts the check-in row and lets the unique index arbitrate
// races: whoever loses re-reads the winner's row and reports a duplicate.
func (s *CheckinService) checkIn(ctx context.Context, p *model.Participant, station, operator string) (*model.CheckinResult, error) {
	// Friendly path first: an existing row means a repeat scan, no write.
	existing, err := s.checkins.GetByParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		prom.IncCheckinOutcome("duplicate", station)
		return &model.CheckinResult{
			Outcome:     model.CheckinDuplicate,
			Participant: summarize(p, existing),
			CheckIn:     existing,
		}, nil
	}

	created, err := s.checkins.Create(ctx, &model.CheckIn{
		ParticipantID: p.ID,
		Station:       station,
		Operator:      operator,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckin) {
			// Lost a race with a concurrent scan. Report the winner's row.
			winner, gerr := s.checkins.GetByParticipant(ctx, p.ID)
			if gerr != nil {
				return nil, gerr
			}
			prom.IncCheckinOutcome("duplicate", station)
			return &model.CheckinResult{
				Outcome:     model.CheckinDuplicate,
				Participant: summarize(p, winner),
				CheckIn:     winner,
			}, nil
		}
		return nil, err
	}

	prom.IncCheckinOutcome("accepted", station)
	return &model.CheckinResult{
		Outcome:     model.CheckinAccepted,
		Participant: summarize(p, created),
		CheckIn:     created,
	}, nil
}

func summarize(p *model.Participant, c *model.CheckIn) *model.ParticipantSummary {
	s := &model.ParticipantSummary{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Department:      p.Department,
		Code:            p.Code,
		DependentsCount: p.DependentsCount,
	}
	if c != nil {
		s.CheckedIn = true
		t := c.CheckinTime
		s.CheckinTime = &t
	}
	return s
}
