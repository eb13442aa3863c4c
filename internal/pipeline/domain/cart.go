package domain

import (
	"context"
	"time"
)

// CartItem is one product position held in a temporary cart.
type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// TemporaryCart is a browser-side cart persisted server-side until checkout.
// Abandoned carts are removed in bulk by the retention sweeper.
type TemporaryCart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	SessionID string     `json:"session_id" gorm:"index"`
	Items     []CartItem `json:"items" gorm:"serializer:json"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name
func (TemporaryCart) TableName() string {
	return "temporary_carts"
}

// TemporaryCartRepository defines the contract for temporary cart data access
type TemporaryCartRepository interface {
	Create(ctx context.Context, cart *TemporaryCart) error
	// DeleteOlderThan removes every cart created strictly before cutoff as a
	// single atomic batch and returns the number of carts removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
