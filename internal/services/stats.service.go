package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/logger"
)

const (
	dashboardCacheKey  = "stats:dashboard"
	statisticsCacheKey = "stats:checkins"
)

type StatsParticipantRepository interface {
	Count(ctx context.Context) (int64, error)
	CountDependents(ctx context.Context) (int64, error)
	CountByDepartment(ctx context.Context) (map[string]int64, error)
}

type StatsCheckInRepository interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.RecentCheckin, error)
	CountByHour(ctx context.Context, day time.Time) ([]model.HourlyBucket, error)
}

type StatsDeliveryRepository interface {
	CountItems(ctx context.Context) (int64, error)
}

// StatsCache is the slice of the redis adapter the stats service needs.
type StatsCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

type StatsService struct {
	participants StatsParticipantRepository
	checkins     StatsCheckInRepository
	deliveries   StatsDeliveryRepository
	cache        StatsCache
	cacheTTL     time.Duration
	now          func() time.Time
}

func NewStatsService(
	participants StatsParticipantRepository,
	checkins StatsCheckInRepository,
	deliveries StatsDeliveryRepository,
	cache StatsCache,
	cacheTTL time.Duration,
) *StatsService {
	return &StatsService{
		participants: participants,
		checkins:     checkins,
		deliveries:   deliveries,
		cache:        cache,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Dashboard aggregates the headline counters plus the recent-activity feed.
// The result is cached briefly so the auto-refreshing dashboard does not
// hammer the database. Stale-by-seconds is acceptable here.
func (s *StatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	if cached, ok := s.fromCache(dashboardCacheKey); ok {
		var stats model.DashboardStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(dashboardCacheKey, stats)
	return stats, nil
}

// Statistics extends the dashboard with per-department counts and today's
// hourly check-in histogram, always 24 buckets.
func (s *StatsService) Statistics(ctx context.Context) (*model.CheckinStatistics, error) {
	if cached, ok := s.fromCache(statisticsCacheKey); ok {
		var stats model.CheckinStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	dashboard, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}

	departments, err := s.participants.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}

	hourly, err := s.checkins.CountByHour(ctx, s.now())
	if err != nil {
		return nil, err
	}

	stats := &model.CheckinStatistics{
		DashboardStats:  *dashboard,
		DepartmentStats: departments,
		HourlyCheckins:  hourly,
	}

	s.toCache(statisticsCacheKey, stats)
	return stats, nil
}

func (s *StatsService) buildDashboard(ctx context.Context) (*model.DashboardStats, error) {
	totalParticipants, err := s.participants.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalCheckins, err := s.checkins.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalDependents, err := s.participants.CountDependents(ctx)
	if err != nil {
		return nil, err
	}
	totalItems, err := s.deliveries.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.checkins.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}

	feed := make([]model.RecentCheckin, len(recent))
	for i, rc := range recent {
		feed[i] = *rc
	}

	return &model.DashboardStats{
		TotalParticipants: totalParticipants,
		TotalCheckins:     totalCheckins,
		TotalDependents:   totalDependents,
		TotalItems:        totalItems,
		PendingCheckins:   totalParticipants - totalCheckins,
		RecentCheckins:    feed,
	}, nil
}

// fromCache is best effort. A cache miss or a broken adapter just means a
// database read.
func (s *StatsService) fromCache(key string) ([]byte, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	data, err := s.cache.Get(key)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *StatsService) toCache(key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, data, s.cacheTTL); err != nil {
		logger.Debug("stats cache write failed", "key", key, "error", err)
	}
}
