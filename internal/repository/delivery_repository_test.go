package repository

import (
	"context"
	"testing"

	"github.com/lightera/bundokai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, db *testDB, name, category string, stock int) *DeliveryItemEntity {
	t.Helper()
	item := &DeliveryItemEntity{
		Name:         name,
		Category:     category,
		InitialStock: stock,
		CurrentStock: stock,
	}
	require.NoError(t, db.rawDB.Create(item).Error)
	return item
}

func TestDeliveryRepository_AdjustStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	item := seedItem(t, db, "Cesta Natalina", model.CategoryBasicBasket, 50)

	t.Run("add", func(t *testing.T) {
		updated, err := repo.AdjustStock(ctx, item.ID, model.StockAdd, 25)
		require.NoError(t, err)
		assert.Equal(t, 75, updated.CurrentStock)
	})

	t.Run("subtract", func(t *testing.T) {
		updated, err := repo.AdjustStock(ctx, item.ID, model.StockSubtract, 30)
		require.NoError(t, err)
		assert.Equal(t, 45, updated.CurrentStock)
	})

	t.Run("subtract clamps at zero", func(t *testing.T) {
		updated, err := repo.AdjustStock(ctx, item.ID, model.StockSubtract, 1000)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.CurrentStock)
	})

	t.Run("set", func(t *testing.T) {
		updated, err := repo.AdjustStock(ctx, item.ID, model.StockSet, 120)
		require.NoError(t, err)
		assert.Equal(t, 120, updated.CurrentStock)
	})

	t.Run("item not found", func(t *testing.T) {
		_, err := repo.AdjustStock(ctx, 999, model.StockAdd, 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestDeliveryRepository_RecordDelivery(t *testing.T) {
	db := setupTestDB(t)
	participants := NewParticipantRepository(db.DB)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	p := seedParticipant(t, participants, "maria", "AB12CD34")
	item := seedItem(t, db, "Kit Escolar", model.CategorySchoolSupplies, 3)

	t.Run("delivery decrements stock and logs", func(t *testing.T) {
		log, err := repo.RecordDelivery(ctx, &model.DeliveryLog{
			ParticipantID: p.ID,
			ItemID:        item.ID,
			Quantity:      2,
			Operator:      "balcao-1",
		})
		require.NoError(t, err)
		assert.NotZero(t, log.ID)
		assert.Equal(t, model.DeliveryStatusDelivered, log.Status)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentStock)
		assert.Equal(t, 2, got.ItemsDelivered)
	})

	t.Run("insufficient stock fails and writes nothing", func(t *testing.T) {
		_, err := repo.RecordDelivery(ctx, &model.DeliveryLog{
			ParticipantID: p.ID,
			ItemID:        item.ID,
			Quantity:      2,
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentStock)
		assert.Equal(t, 2, got.ItemsDelivered)
	})

	t.Run("item not found", func(t *testing.T) {
		_, err := repo.RecordDelivery(ctx, &model.DeliveryLog{
			ParticipantID: p.ID,
			ItemID:        999,
			Quantity:      1,
		})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestDeliveryRepository_SeedItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	catalog := []*model.DeliveryItem{
		{Name: "Cesta Natalina", Category: model.CategoryBasicBasket, InitialStock: 100, CurrentStock: 100},
		{Name: "Boneca", Category: model.CategoryToys, InitialStock: 40, CurrentStock: 40},
	}

	created, err := repo.SeedItems(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	t.Run("re-seeding changes nothing", func(t *testing.T) {
		created, err := repo.SeedItems(ctx, catalog)
		require.NoError(t, err)
		assert.Equal(t, 0, created)

		n, err := repo.CountItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("new entries are added alongside existing ones", func(t *testing.T) {
		created, err := repo.SeedItems(ctx, append(catalog, &model.DeliveryItem{
			Name: "Bola", Category: model.CategoryToys, InitialStock: 30, CurrentStock: 30,
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, created)
	})
}

func TestDeliveryRepository_ListItems(t *testing.T) {
	db := setupTestDB(t)
	participants := NewParticipantRepository(db.DB)
	repo := NewDeliveryRepository(db.DB)
	ctx := context.Background()

	p := seedParticipant(t, participants, "maria", "AB12CD34")
	toy := seedItem(t, db, "Boneca", model.CategoryToys, 40)
	seedItem(t, db, "Cesta Natalina", model.CategoryBasicBasket, 100)

	_, err := repo.RecordDelivery(ctx, &model.DeliveryLog{
		ParticipantID: p.ID, ItemID: toy.ID, Quantity: 3,
	})
	require.NoError(t, err)

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Boneca", items[0].Name)
	assert.Equal(t, 3, items[0].ItemsDelivered)
	assert.Equal(t, 37, items[0].CurrentStock)
	assert.Equal(t, "Cesta Natalina", items[1].Name)
	assert.Equal(t, 0, items[1].ItemsDelivered)
}
