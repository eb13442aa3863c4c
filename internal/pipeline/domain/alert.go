package domain

import (
	"context"
	"fmt"
	"time"
)

// AlertTypeLowStock is the only alert type the pipeline emits.
const AlertTypeLowStock = "low_stock"

// Alert records a low-stock threshold crossing for a product. The product
// name and stock are snapshots taken at detection time.
type Alert struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProductID    uint      `json:"product_id" gorm:"not null;index"`
	ProductName  string    `json:"product_name" gorm:"not null"`
	StockAtAlert int       `json:"stock_at_alert" gorm:"not null"`
	Type         string    `json:"type" gorm:"not null;default:low_stock"`
	DedupKey     string    `json:"-" gorm:"uniqueIndex;not null"`
	IsRead       bool      `json:"is_read" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Alert) TableName() string {
	return "alerts"
}

// AlertDedupKey derives the deduplication key for a low-stock alert: one
// alert per product per calendar day, so redelivered update events cannot
// double-alert.
func AlertDedupKey(productID uint, at time.Time) string {
	return fmt.Sprintf("%d:%s", productID, at.Format("2006-01-02"))
}

// AlertRepository defines the contract for alert data access
type AlertRepository interface {
	// CreateIfAbsent inserts the alert unless one with the same dedup key
	// already exists. Returns true when a new alert was written.
	CreateIfAbsent(ctx context.Context, alert *Alert) (bool, error)
	FindAll(ctx context.Context, unreadOnly bool, limit, offset int) ([]Alert, error)
	CountUnread(ctx context.Context) (int64, error)
}
