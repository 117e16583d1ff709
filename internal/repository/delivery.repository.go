package repository

import (
	"context"
	"errors"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrItemNotFound is returned when no delivery item matches.
	ErrItemNotFound = errors.New("delivery item not found")
	// ErrInsufficientStock is returned when a delivery asks for more than
	// the item has left. Nothing is written in that case.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type DeliveryRepository struct {
	*pg.DB
}

func NewDeliveryRepository(db *pg.DB) *DeliveryRepository {
	return &DeliveryRepository{
		db,
	}
}

func (r *DeliveryRepository) GetItem(ctx context.Context, id int64) (*model.DeliveryItem, error) {
	var entity DeliveryItemEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	item := toDeliveryItemModel(&entity)
	delivered, err := r.deliveredCount(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	item.ItemsDelivered = delivered
	return item, nil
}

// ListItems returns the catalog ordered by category and name, each item
// carrying its delivered total from the log table.
func (r *DeliveryRepository) ListItems(ctx context.Context) ([]*model.DeliveryItem, error) {
	var entities []*DeliveryItemEntity
	err := r.Read(ctx).
		Order("category ASC, name ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	delivered, err := r.deliveredCounts(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*model.DeliveryItem, len(entities))
	for i, e := range entities {
		item := toDeliveryItemModel(e)
		item.ItemsDelivered = delivered[e.ID]
		items[i] = item
	}
	return items, nil
}

func (r *DeliveryRepository) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&DeliveryItemEntity{}).Count(&n).Error
	return n, err
}

// AdjustStock applies one stock operation under a row lock. Subtract clamps
// at zero instead of failing, per the inventory rules.
func (r *DeliveryRepository) AdjustStock(ctx context.Context, itemID int64, op model.StockOp, quantity int) (*model.DeliveryItem, error) {
	var entity DeliveryItemEntity

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		err := r.Write(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", itemID).
			First(&entity).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		switch op {
		case model.StockAdd:
			entity.CurrentStock += quantity
		case model.StockSubtract:
			entity.CurrentStock -= quantity
			if entity.CurrentStock < 0 {
				entity.CurrentStock = 0
			}
		case model.StockSet:
			entity.CurrentStock = quantity
		default:
			return errors.New("unknown stock operation")
		}

		return r.Write(ctx).
			Model(&DeliveryItemEntity{}).
			Where("id = ?", itemID).
			Update("current_stock", entity.CurrentStock).Error
	})
	if err != nil {
		return nil, err
	}

	return toDeliveryItemModel(&entity), nil
}

// RecordDelivery appends the log row and decrements the item stock in a
// single transaction. Stock short of the requested quantity fails both.
func (r *DeliveryRepository) RecordDelivery(ctx context.Context, log *model.DeliveryLog) (*model.DeliveryLog, error) {
	entity := &DeliveryLogEntity{
		ParticipantID: log.ParticipantID,
		ItemID:        log.ItemID,
		EmployeeNo:    log.EmployeeNo,
		Quantity:      log.Quantity,
		Status:        log.Status,
		Operator:      log.Operator,
		Notes:         log.Notes,
	}
	if entity.Status == "" {
		entity.Status = model.DeliveryStatusDelivered
	}

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var item DeliveryItemEntity
		err := r.Write(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", log.ItemID).
			First(&item).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.CurrentStock < entity.Quantity {
			return ErrInsufficientStock
		}

		result := r.Write(ctx).
			Model(&DeliveryItemEntity{}).
			Where("id = ? AND current_stock >= ?", log.ItemID, entity.Quantity).
			Update("current_stock", gorm.Expr("current_stock - ?", entity.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		return r.Write(ctx).Create(entity).Error
	})
	if err != nil {
		return nil, err
	}

	return toDeliveryLogModel(entity), nil
}

// SeedItems inserts any catalog item that does not already exist, keyed by
// name. Re-running it changes nothing.
func (r *DeliveryRepository) SeedItems(ctx context.Context, items []*model.DeliveryItem) (int, error) {
	created := 0
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, item := range items {
			var existing DeliveryItemEntity
			err := r.Write(ctx).Where("name = ?", item.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			entity := &DeliveryItemEntity{
				Name:         item.Name,
				Category:     item.Category,
				Description:  item.Description,
				InitialStock: item.InitialStock,
				CurrentStock: item.CurrentStock,
				UnitPrice:    item.UnitPrice,
			}
			if err := r.Write(ctx).Create(entity).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (r *DeliveryRepository) deliveredCount(ctx context.Context, itemID int64) (int, error) {
	var total int64
	err := r.Read(ctx).
		Model(&DeliveryLogEntity{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("item_id = ? AND status = ?", itemID, model.DeliveryStatusDelivered).
		Scan(&total).Error
	return int(total), err
}

func (r *DeliveryRepository) deliveredCounts(ctx context.Context) (map[int64]int, error) {
	type row struct {
		ItemID int64 `gorm:"column:item_id"`
		Total  int64 `gorm:"column:total"`
	}
	var rows []row
	err := r.Read(ctx).
		Model(&DeliveryLogEntity{}).
		Select("item_id, COALESCE(SUM(quantity), 0) AS total").
		Where("status = ?", model.DeliveryStatusDelivered).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.ItemID] = int(row.Total)
	}
	return out, nil
}
