package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateCheckin is returned when the unique participant_id index
	// rejects a second check-in row. The index is the authoritative guard;
	// callers translate this into the friendly already-checked-in outcome.
	ErrDuplicateCheckin = errors.New("participant already checked in")
)

type CheckInRepository struct {
	*pg.DB
}

func NewCheckInRepository(db *pg.DB) *CheckInRepository {
	return &CheckInRepository{
		db,
	}
}

// Create inserts exactly one check-in row for the participant. A concurrent
// insert for the same participant loses on the unique index and gets
// ErrDuplicateCheckin, never a second row.
func (r *CheckInRepository) Create(ctx context.Context, c *model.CheckIn) (*model.CheckIn, error) {
	entity := toCheckInEntity(c)
	if entity.Station == "" {
		entity.Station = model.StationMain
	}
	if entity.Status == "" {
		entity.Status = model.CheckinStatusCheckedIn
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCheckin
		}
		return nil, err
	}

	return toCheckInModel(entity), nil
}

// GetByParticipant returns the participant's check-in or nil when there is
// none. Absence is a normal answer here, not an error.
func (r *CheckInRepository) GetByParticipant(ctx context.Context, participantID int64) (*model.CheckIn, error) {
	var entity CheckInEntity
	err := r.Read(ctx).Where("participant_id = ?", participantID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toCheckInModel(&entity), nil
}

func (r *CheckInRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&CheckInEntity{}).Count(&n).Error
	return n, err
}

// Recent returns the latest check-ins joined with participant identity,
// newest first.
func (r *CheckInRepository) Recent(ctx context.Context, limit int) ([]*model.RecentCheckin, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		Name        string    `gorm:"column:name"`
		Department  string    `gorm:"column:department"`
		Station     string    `gorm:"column:station"`
		CheckinTime time.Time `gorm:"column:checkin_time"`
	}
	var rows []row
	err := r.Read(ctx).
		Table("checkins AS c").
		Select("p.name, p.department, c.station, c.checkin_time").
		Joins("JOIN participants AS p ON p.id = c.participant_id").
		Order("c.checkin_time DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.RecentCheckin, len(rows))
	for i, rc := range rows {
		out[i] = &model.RecentCheckin{
			Name:        rc.Name,
			Department:  rc.Department,
			Station:     rc.Station,
			CheckinTime: rc.CheckinTime.Format("15:04"),
		}
	}
	return out, nil
}

// CountByHour buckets today's check-ins into 24 fixed hourly slots,
// zero-filled for hours with no activity.
func (r *CheckInRepository) CountByHour(ctx context.Context, day time.Time) ([]model.HourlyBucket, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var entities []*CheckInEntity
	err := r.Read(ctx).
		Where("checkin_time >= ? AND checkin_time < ?", dayStart, dayEnd).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]model.HourlyBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, e := range entities {
		h := e.CheckinTime.In(day.Location()).Hour()
		buckets[h].Count++
	}
	return buckets, nil
}
