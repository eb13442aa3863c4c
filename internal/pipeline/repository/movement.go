package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

type GormStockMovementRepository struct {
	db *gorm.DB
}

func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) ExistsForSale(ctx context.Context, saleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StockMovement{}).
		Where("sale_id = ?", saleID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormStockMovementRepository) FindBySale(ctx context.Context, saleID uint) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("product_id").
		Find(&movements).Error
	return movements, err
}
