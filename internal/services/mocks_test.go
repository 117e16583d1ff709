package services

import (
	"context"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, p *model.Participant, dependents []model.DependentInput) (*model.Participant, error) {
	args := m.Called(ctx, p, dependents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id int64) (*model.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByCode(ctx context.Context, code string) (*model.Participant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListDependents(ctx context.Context, participantID int64) ([]*model.Dependent, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Dependent), args.Error(1)
}

func (m *MockParticipantRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]*model.ParticipantSummary, error) {
	args := m.Called(ctx, fragment, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ParticipantSummary), args.Error(1)
}

type MockCheckInRepository struct {
	mock.Mock
}

func (m *MockCheckInRepository) Create(ctx context.Context, c *model.CheckIn) (*model.CheckIn, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckIn), args.Error(1)
}

func (m *MockCheckInRepository) GetByParticipant(ctx context.Context, participantID int64) (*model.CheckIn, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckIn), args.Error(1)
}

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) GetItem(ctx context.Context, id int64) (*model.DeliveryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryItem), args.Error(1)
}

func (m *MockDeliveryRepository) ListItems(ctx context.Context) ([]*model.DeliveryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DeliveryItem), args.Error(1)
}

func (m *MockDeliveryRepository) AdjustStock(ctx context.Context, itemID int64, op model.StockOp, quantity int) (*model.DeliveryItem, error) {
	args := m.Called(ctx, itemID, op, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryItem), args.Error(1)
}

func (m *MockDeliveryRepository) RecordDelivery(ctx context.Context, log *model.DeliveryLog) (*model.DeliveryLog, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryLog), args.Error(1)
}

func (m *MockDeliveryRepository) SeedItems(ctx context.Context, items []*model.DeliveryItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(key string) ([]byte, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStatsCache) Set(key string, value []byte, ttl time.Duration) error {
	args := m.Called(key, value, ttl)
	return args.Error(0)
}
