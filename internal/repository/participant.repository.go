package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrParticipantNotFound is returned when no participant matches.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrDuplicateCode is returned when an insert collides on qr_code.
	ErrDuplicateCode = errors.New("qr code already exists")
)

type ParticipantRepository struct {
	*pg.DB
}

func NewParticipantRepository(db *pg.DB) *ParticipantRepository {
	return &ParticipantRepository{
		db,
	}
}

// Create inserts the participant and its dependents in one transaction.
// The dependents_count column is set from the actual dependent rows so the
// counter can never drift from what was written.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant, dependents []model.DependentInput) (*model.Participant, error) {
	entity := toParticipantEntity(p)
	entity.DependentsCount = len(dependents)

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateCode
			}
			return err
		}
		for _, d := range dependents {
			dep := &DependentEntity{
				ParticipantID: entity.ID,
				Name:          d.Name,
				Age:           d.Age,
			}
			if err := r.Write(ctx).Create(dep).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toParticipantModel(entity), nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*model.Participant, error) {
	var entity ParticipantEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return toParticipantModel(&entity), nil
}

func (r *ParticipantRepository) GetByCode(ctx context.Context, code string) (*model.Participant, error) {
	var entity ParticipantEntity
	err := r.Read(ctx).Where("qr_code = ?", code).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return toParticipantModel(&entity), nil
}

func (r *ParticipantRepository) ListDependents(ctx context.Context, participantID int64) ([]*model.Dependent, error) {
	var entities []*DependentEntity
	err := r.Read(ctx).
		Where("participant_id = ?", participantID).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDependentModels(entities), nil
}

// SearchByName matches a case-insensitive name fragment and joins the
// check-in status in the same query, so a result page never fans out into
// per-row lookups.
func (r *ParticipantRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]*model.ParticipantSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []*ParticipantWithStatus
	err := r.Read(ctx).
		Table("participants AS p").
		Select("p.id, p.name, p.email, p.department, p.qr_code, p.dependents_count, c.checkin_time AS checkin_time").
		Joins("LEFT JOIN checkins AS c ON c.participant_id = p.id").
		Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		Order("p.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.ParticipantSummary, len(rows))
	for i, row := range rows {
		summaries[i] = toParticipantSummary(row)
	}
	return summaries, nil
}

// ListWithStatus returns every participant with check-in status, optionally
// restricted to the given ids. Used by the export builder.
func (r *ParticipantRepository) ListWithStatus(ctx context.Context, ids []int64) ([]*model.ParticipantSummary, error) {
	q := r.Read(ctx).
		Table("participants AS p").
		Select("p.id, p.name, p.email, p.department, p.qr_code, p.dependents_count, c.checkin_time AS checkin_time").
		Joins("LEFT JOIN checkins AS c ON c.participant_id = p.id").
		Order("p.id ASC")
	if len(ids) > 0 {
		q = q.Where("p.id IN ?", ids)
	}

	var rows []*ParticipantWithStatus
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]*model.ParticipantSummary, len(rows))
	for i, row := range rows {
		summaries[i] = toParticipantSummary(row)
	}
	return summaries, nil
}

func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&ParticipantEntity{}).Count(&n).Error
	return n, err
}

func (r *ParticipantRepository) CountDependents(ctx context.Context) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&DependentEntity{}).Count(&n).Error
	return n, err
}

// CountByDepartment groups participants per department. Blank departments
// are folded into one unspecified bucket.
func (r *ParticipantRepository) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Department string `gorm:"column:department"`
		Count      int64  `gorm:"column:count"`
	}
	var rows []row
	err := r.Read(ctx).
		Model(&ParticipantEntity{}).
		Select("department, COUNT(id) AS count").
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		dept := row.Department
		if strings.TrimSpace(dept) == "" {
			dept = model.DepartmentUnspecified
		}
		out[dept] += row.Count
	}
	return out, nil
}

// ListWithoutEmail returns participants that have no sent email log of the
// given type, in registration order. The mailer uses it to resume a batch
// run without re-sending.
func (r *ParticipantRepository) ListWithoutEmail(ctx context.Context, emailType string, department string, limit int) ([]*model.Participant, error) {
	q := r.Read(ctx).
		Table("participants AS p").
		Select("p.*").
		Joins("LEFT JOIN email_logs AS e ON e.participant_id = p.id AND e.email_type = ? AND e.status = ?", emailType, model.EmailStatusSent).
		Where("e.id IS NULL").
		Order("p.id ASC")
	if department != "" {
		q = q.Where("p.department = ?", department)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entities []*ParticipantEntity
	if err := q.Scan(&entities).Error; err != nil {
		return nil, err
	}

	models := make([]*model.Participant, len(entities))
	for i, e := range entities {
		models[i] = toParticipantModel(e)
	}
	return models, nil
}
