package domain

import (
	"context"
	"time"
)

// SaleLineItem is one product position inside a sale.
type SaleLineItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Sale represents a recorded sale. Sales are immutable once created; the
// pipeline only ever reads them.
type Sale struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Items     []SaleLineItem `json:"items" gorm:"serializer:json"`
	Total     float64        `json:"total" gorm:"not null"`
	Status    string         `json:"status" gorm:"default:completed"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// Units returns the total number of units across all line items.
func (s *Sale) Units() int {
	units := 0
	for _, item := range s.Items {
		units += item.Quantity
	}
	return units
}

// SaleRepository defines the contract for sale data access
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uint) (*Sale, error)
	// FindInWindow returns sales created in [from, to), ordered by creation time.
	FindInWindow(ctx context.Context, from, to time.Time) ([]Sale, error)
}
