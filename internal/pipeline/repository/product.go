package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.StockMovement{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error
	return count, err
}

// ApplyAdjustments commits all staged stock updates plus their movement rows
// in one transaction. Every update is conditional on the version the product
// was read at; a zero-row update means another writer got there first and the
// whole batch rolls back with ErrVersionConflict.
func (r *GormProductRepository) ApplyAdjustments(ctx context.Context, adjustments []domain.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for i := range adjustments {
			adj := &adjustments[i]

			result := tx.Model(&domain.Product{}).
				Where("id = ? AND version = ?", adj.Product.ID, adj.Product.Version).
				Updates(map[string]interface{}{
					"stock":      adj.NewStock,
					"version":    adj.Product.Version + 1,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domain.ErrVersionConflict
			}

			adj.Movement.CreatedAt = now
			if err := tx.Create(&adj.Movement).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
