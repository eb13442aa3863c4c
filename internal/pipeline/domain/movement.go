package domain

import (
	"context"
	"time"
)

// StockMovement records one product decrement applied while reconciling a
// sale. The (sale_id, product_id) pair is unique, which is what makes
// reconciliation idempotent: a redelivered sale event finds its movements
// already written and is skipped.
type StockMovement struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SaleID       uint      `json:"sale_id" gorm:"not null;uniqueIndex:idx_movements_sale_product"`
	ProductID    uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_movements_sale_product"`
	QuantitySold int       `json:"quantity_sold" gorm:"not null"`
	PriorStock   int       `json:"prior_stock" gorm:"not null"`
	NewStock     int       `json:"new_stock" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides GORM's default pluralization
func (StockMovement) TableName() string {
	return "stock_movements"
}

// StockMovementRepository defines the contract for stock movement data access
type StockMovementRepository interface {
	ExistsForSale(ctx context.Context, saleID uint) (bool, error)
	FindBySale(ctx context.Context, saleID uint) ([]StockMovement, error)
}
