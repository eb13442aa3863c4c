package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/repository"
)

func createCart(t *testing.T, db *gorm.DB, at time.Time) {
	t.Helper()

	cart := &domain.TemporaryCart{
		SessionID: "session",
		Items:     []domain.CartItem{{ProductID: 1, Quantity: 1}},
		CreatedAt: at,
	}
	require.NoError(t, db.Create(cart).Error)
}

func cartCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&domain.TemporaryCart{}).Count(&count).Error)
	return count
}

func TestSweepDeletesOnlyExpiredCarts(t *testing.T) {
	db := newTestDB(t)
	handler := NewSweepExpiredCartsHandler(repository.NewGormTemporaryCartRepository(db), 30)

	now := time.Date(2026, 8, 20, 6, 0, 0, 0, time.Local)
	createCart(t, db, now.AddDate(0, 0, -40))
	createCart(t, db, now.AddDate(0, 0, -10))

	deleted, err := handler.Handle(context.Background(), SweepExpiredCartsCommand{Now: now})
	require.NoError(t, err)

	assert.EqualValues(t, 1, deleted)
	assert.EqualValues(t, 1, cartCount(t, db))
}

func TestSweepLeavesCartAtCutoffBoundary(t *testing.T) {
	db := newTestDB(t)
	handler := NewSweepExpiredCartsHandler(repository.NewGormTemporaryCartRepository(db), 30)

	now := time.Date(2026, 8, 20, 6, 0, 0, 0, time.Local)
	// Exactly at the cutoff: not strictly older, so kept.
	createCart(t, db, now.AddDate(0, 0, -30))

	deleted, err := handler.Handle(context.Background(), SweepExpiredCartsCommand{Now: now})
	require.NoError(t, err)

	assert.EqualValues(t, 0, deleted)
	assert.EqualValues(t, 1, cartCount(t, db))
}

func TestSweepEmptyStoreIsNoop(t *testing.T) {
	db := newTestDB(t)
	handler := NewSweepExpiredCartsHandler(repository.NewGormTemporaryCartRepository(db), 30)

	deleted, err := handler.Handle(context.Background(), SweepExpiredCartsCommand{Now: time.Now()})
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}

func TestSweepDefaultRetention(t *testing.T) {
	handler := NewSweepExpiredCartsHandler(nil, 0)
	assert.Equal(t, DefaultCartRetentionDays, handler.retentionDays)
}
