package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatsParticipantRepository struct {
	mock.Mock
}

func (m *MockStatsParticipantRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsParticipantRepository) CountDependents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsParticipantRepository) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type MockStatsCheckInRepository struct {
	mock.Mock
}

func (m *MockStatsCheckInRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsCheckInRepository) Recent(ctx context.Context, limit int) ([]*model.RecentCheckin, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RecentCheckin), args.Error(1)
}

func (m *MockStatsCheckInRepository) CountByHour(ctx context.Context, day time.Time) ([]model.HourlyBucket, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HourlyBucket), args.Error(1)
}

type MockStatsDeliveryRepository struct {
	mock.Mock
}

func (m *MockStatsDeliveryRepository) CountItems(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func expectDashboardReads(p *MockStatsParticipantRepository, c *MockStatsCheckInRepository, d *MockStatsDeliveryRepository) {
	p.On("Count", mock.Anything).Return(int64(100), nil)
	c.On("Count", mock.Anything).Return(int64(40), nil)
	p.On("CountDependents", mock.Anything).Return(int64(150), nil)
	d.On("CountItems", mock.Anything).Return(int64(4), nil)
	c.On("Recent", mock.Anything, 5).Return([]*model.RecentCheckin{
		{Name: "Maria Silva", Station: model.StationMain, CheckinTime: "09:02"},
	}, nil)
}

func TestStatsService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss reads the database and caches", func(t *testing.T) {
		participants := new(MockStatsParticipantRepository)
		checkins := new(MockStatsCheckInRepository)
		deliveries := new(MockStatsDeliveryRepository)
		cache := new(MockStatsCache)
		svc := NewStatsService(participants, checkins, deliveries, cache, 5*time.Second)

		cache.On("Get", dashboardCacheKey).Return(nil, errors.New("redis: nil")).Once()
		cache.On("Set", dashboardCacheKey, mock.Anything, 5*time.Second).Return(nil).Once()
		expectDashboardReads(participants, checkins, deliveries)

		stats, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), stats.TotalParticipants)
		assert.Equal(t, int64(40), stats.TotalCheckins)
		assert.Equal(t, int64(60), stats.PendingCheckins)
		require.Len(t, stats.RecentCheckins, 1)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		participants := new(MockStatsParticipantRepository)
		checkins := new(MockStatsCheckInRepository)
		deliveries := new(MockStatsDeliveryRepository)
		cache := new(MockStatsCache)
		svc := NewStatsService(participants, checkins, deliveries, cache, 5*time.Second)

		cached, err := json.Marshal(&model.DashboardStats{TotalParticipants: 7})
		require.NoError(t, err)
		cache.On("Get", dashboardCacheKey).Return(cached, nil).Once()

		stats, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), stats.TotalParticipants)
		participants.AssertNotCalled(t, "Count")
	})

	t.Run("nil cache still serves", func(t *testing.T) {
		participants := new(MockStatsParticipantRepository)
		checkins := new(MockStatsCheckInRepository)
		deliveries := new(MockStatsDeliveryRepository)
		svc := NewStatsService(participants, checkins, deliveries, nil, 0)

		expectDashboardReads(participants, checkins, deliveries)

		stats, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), stats.TotalParticipants)
	})
}

func TestStatsService_Statistics(t *testing.T) {
	ctx := context.Background()

	participants := new(MockStatsParticipantRepository)
	checkins := new(MockStatsCheckInRepository)
	deliveries := new(MockStatsDeliveryRepository)
	svc := NewStatsService(participants, checkins, deliveries, nil, 0)

	expectDashboardReads(participants, checkins, deliveries)
	participants.On("CountByDepartment", mock.Anything).Return(map[string]int64{
		"Engineering":               25,
		model.DepartmentUnspecified: 75,
	}, nil)

	buckets := make([]model.HourlyBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	buckets[9].Count = 40
	checkins.On("CountByHour", mock.Anything, mock.Anything).Return(buckets, nil)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalParticipants)
	assert.Equal(t, int64(25), stats.DepartmentStats["Engineering"])
	require.Len(t, stats.HourlyCheckins, 24)
	assert.Equal(t, int64(40), stats.HourlyCheckins[9].Count)
}
