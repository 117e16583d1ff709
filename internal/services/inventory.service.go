package services

import (
	"context"
	"errors"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/prom"
)

var (
	ErrItemNotFound      = errors.New("delivery item not found")
	ErrInsufficientStock = errors.New("insufficient stock for delivery")
)

type DeliveryRepository interface {
	GetItem(ctx context.Context, id int64) (*model.DeliveryItem, error)
	ListItems(ctx context.Context) ([]*model.DeliveryItem, error)
	AdjustStock(ctx context.Context, itemID int64, op model.StockOp, quantity int) (*model.DeliveryItem, error)
	RecordDelivery(ctx context.Context, log *model.DeliveryLog) (*model.DeliveryLog, error)
	SeedItems(ctx context.Context, items []*model.DeliveryItem) (int, error)
}

type InventoryService struct {
	participants ParticipantRepository
	deliveries   DeliveryRepository
}

func NewInventoryService(participants ParticipantRepository, deliveries DeliveryRepository) *InventoryService {
	return &InventoryService{
		participants: participants,
		deliveries:   deliveries,
	}
}

func (s *InventoryService) ListItems(ctx context.Context) ([]*model.DeliveryItem, error) {
	return s.deliveries.ListItems(ctx)
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (*model.DeliveryItem, error) {
	item, err := s.deliveries.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) AdjustStock(ctx context.Context, req model.AdjustStockRequest) (*model.DeliveryItem, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	item, err := s.deliveries.AdjustStock(ctx, req.ItemID, req.Op, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	logger.Info("stock adjusted",
		"item_id", item.ID,
		"op", string(req.Op),
		"quantity", req.Quantity,
		"current_stock", item.CurrentStock,
	)
	return item, nil
}

// RecordDelivery hands an item to a checked participant: one log row plus
// the stock decrement, atomically. A stock shortfall fails the whole call.
func (s *InventoryService) RecordDelivery(ctx context.Context, req model.RecordDeliveryRequest) (*model.DeliveryLog, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	p, err := s.participants.GetByID(ctx, req.ParticipantID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	log, err := s.deliveries.RecordDelivery(ctx, &model.DeliveryLog{
		ParticipantID: p.ID,
		ItemID:        req.ItemID,
		EmployeeNo:    p.EmployeeNo,
		Quantity:      req.Quantity,
		Operator:      req.Operator,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return nil, ErrItemNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		}
		return nil, err
	}

	if item, gerr := s.deliveries.GetItem(ctx, req.ItemID); gerr == nil {
		prom.IncDeliveryRecorded(item.Category)
	}
	return log, nil
}

// SeedCatalog loads the default item catalog, skipping anything already
// present. Safe to run on every startup.
func (s *InventoryService) SeedCatalog(ctx context.Context, items []*model.DeliveryItem) (int, error) {
	created, err := s.deliveries.SeedItems(ctx, items)
	if err != nil {
		return 0, err
	}
	if created > 0 {
		logger.Info("delivery catalog seeded", "created", created)
	}
	return created, nil
}
