package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

type GormTemporaryCartRepository struct {
	db *gorm.DB
}

func NewGormTemporaryCartRepository(db *gorm.DB) *GormTemporaryCartRepository {
	return &GormTemporaryCartRepository{db: db}
}

func (r *GormTemporaryCartRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.TemporaryCart{})
}

func (r *GormTemporaryCartRepository) Create(ctx context.Context, cart *domain.TemporaryCart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// DeleteOlderThan removes every cart created strictly before cutoff. A single
// DELETE statement keeps the batch all-or-nothing.
func (r *GormTemporaryCartRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.TemporaryCart{})
	return result.RowsAffected, result.Error
}

func (r *GormTemporaryCartRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TemporaryCart{}).Count(&count).Error
	return count, err
}
