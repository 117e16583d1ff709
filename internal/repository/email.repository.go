package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/pg"
	"gorm.io/gorm"
)

var ErrEmailLogNotFound = errors.New("email log not found")

type EmailRepository struct {
	*pg.DB
}

func NewEmailRepository(db *pg.DB) *EmailRepository {
	return &EmailRepository{
		db,
	}
}

func (r *EmailRepository) Create(ctx context.Context, log *model.EmailLog) (*model.EmailLog, error) {
	entity := toEmailLogEntity(log)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toEmailLogModel(entity), nil
}

// MarkOpened stamps the first open for the tracking token. Later opens of
// the same message leave the original timestamp in place.
func (r *EmailRepository) MarkOpened(ctx context.Context, token string, at time.Time) error {
	result := r.Write(ctx).
		Model(&EmailLogEntity{}).
		Where("open_token = ? AND opened_at IS NULL", token).
		Update("opened_at", at)
	return result.Error
}

func (r *EmailRepository) GetByToken(ctx context.Context, token string) (*model.EmailLog, error) {
	var entity EmailLogEntity
	err := r.Read(ctx).Where("open_token = ?", token).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailLogNotFound
		}
		return nil, err
	}
	return toEmailLogModel(&entity), nil
}

func (r *EmailRepository) ListByParticipant(ctx context.Context, participantID int64) ([]*model.EmailLog, error) {
	var entities []*EmailLogEntity
	err := r.Read(ctx).
		Where("participant_id = ?", participantID).
		Order("sent_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*model.EmailLog, len(entities))
	for i, e := range entities {
		logs[i] = toEmailLogModel(e)
	}
	return logs, nil
}

func (r *EmailRepository) CountByStatus(ctx context.Context, emailType string) (map[string]int64, error) {
	type row struct {
		Status string `gorm:"column:status"`
		Total  int64  `gorm:"column:total"`
	}
	var rows []row
	err := r.Read(ctx).
		Model(&EmailLogEntity{}).
		Select("status, COUNT(*) AS total").
		Where("email_type = ?", emailType).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
