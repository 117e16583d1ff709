package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/prom"
)

const (
	codeLength      = 8
	codeGenAttempts = 3
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrCodeConflict means every generation attempt collided with an
	// existing qr code. With 8 hex chars this takes an astronomically
	// unlucky table, so it is surfaced rather than retried forever.
	ErrCodeConflict = errors.New("could not allocate a unique qr code")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant, dependents []model.DependentInput) (*model.Participant, error)
	GetByID(ctx context.Context, id int64) (*model.Participant, error)
	GetByCode(ctx context.Context, code string) (*model.Participant, error)
	ListDependents(ctx context.Context, participantID int64) ([]*model.Dependent, error)
	SearchByName(ctx context.Context, fragment string, limit int) ([]*model.ParticipantSummary, error)
}

type RegistrationService struct {
	participants ParticipantRepository
}

func NewRegistrationService(participants ParticipantRepository) *RegistrationService {
	return &RegistrationService{
		participants: participants,
	}
}

// Register creates the participant with a fresh unique code. A code
// collision is retried with a new code up to codeGenAttempts times before
// giving up with ErrCodeConflict.
func (s *RegistrationService) Register(ctx context.Context, req model.RegisterRequest) (*model.Participant, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	var created *model.Participant
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		p := &model.Participant{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Department: req.Department,
			EmployeeNo: req.EmployeeNo,
			Code:       GenerateCode(),
		}

		var err error
		created, err = s.participants.Create(ctx, p, req.Dependents)
		if err == nil {
			prom.IncCounter(prom.SystemCheckin, prom.MetricRegistrationAccepted)
			return created, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, err
		}
		logger.Warn("qr code collision, regenerating", "attempt", attempt+1, "code", p.Code)
	}

	return nil, ErrCodeConflict
}

func (s *RegistrationService) Get(ctx context.Context, id int64) (*model.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *RegistrationService) GetByCode(ctx context.Context, code string) (*model.Participant, error) {
	p, err := s.participants.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *RegistrationService) Dependents(ctx context.Context, participantID int64) ([]*model.Dependent, error) {
	if _, err := s.Get(ctx, participantID); err != nil {
		return nil, err
	}
	return s.participants.ListDependents(ctx, participantID)
}

// Search looks participants up by a name fragment. Fragments shorter than
// two characters return nothing rather than paging the whole table.
func (s *RegistrationService) Search(ctx context.Context, fragment string, limit int) ([]*model.ParticipantSummary, error) {
	fragment = strings.TrimSpace(fragment)
	if len([]rune(fragment)) < 2 {
		return []*model.ParticipantSummary{}, nil
	}
	return s.participants.SearchByName(ctx, fragment, limit)
}

// GenerateCode returns a fresh 8-character uppercase hex code taken from a
// random uuid. Uniqueness is enforced by the database, not here.
func GenerateCode() string {
	return strings.ToUpper(uuid.NewString()[:codeLength])
}

// NormalizeCode folds operator input into stored form: surrounding spaces
// stripped, letters uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
