package domain

import (
	"context"
	"errors"
	"time"
)

// ErrVersionConflict is returned when a conditional stock write lost the race
// against a concurrent reconciliation of the same product.
var ErrVersionConflict = errors.New("product version conflict")

// ErrProductNotFound is returned when a referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// Product represents an item tracked by the store
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Cost         float64   `json:"cost" gorm:"not null"`
	Price        float64   `json:"price" gorm:"not null"`
	Stock        int       `json:"stock" gorm:"not null;default:0"`
	Category     string    `json:"category"`
	Supplier     string    `json:"supplier"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	Version      int64     `json:"-" gorm:"not null;default:0"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsAvailable checks if product can be sold
func (p *Product) IsAvailable() bool {
	return p.Stock > 0 && p.IsActive
}

// StockAdjustment is one staged product decrement, carrying the version the
// product was read at so the write can be made conditional.
type StockAdjustment struct {
	Product  *Product
	NewStock int
	Movement StockMovement
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindAll(ctx context.Context, limit, offset int) ([]Product, error)
	Count(ctx context.Context) (int64, error)

	// ApplyAdjustments commits all staged stock updates and their movement
	// records as a single all-or-nothing batch. Each update is conditional on
	// the version the product was read at; any lost race fails the whole
	// batch with ErrVersionConflict so the caller can re-read and retry.
	ApplyAdjustments(ctx context.Context, adjustments []StockAdjustment) error
}
