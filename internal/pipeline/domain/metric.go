package domain

import (
	"context"
	"time"
)

// DailyMetric is one aggregation run's summary of a calendar day of sales.
// Runs append; re-running for the same day produces a second row.
type DailyMetric struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Date          time.Time `json:"date" gorm:"not null;index"`
	TotalSales    float64   `json:"total_sales" gorm:"not null"`
	SaleCount     int       `json:"sale_count" gorm:"not null"`
	UnitsSold     int       `json:"units_sold" gorm:"not null"`
	AverageTicket float64   `json:"average_ticket" gorm:"not null"`
	ComputedAt    time.Time `json:"computed_at" gorm:"not null"`
}

// TableName specifies the table name
func (DailyMetric) TableName() string {
	return "daily_metrics"
}

// DailyMetricRepository defines the contract for daily metric data access
type DailyMetricRepository interface {
	Create(ctx context.Context, metric *DailyMetric) error
	FindByDate(ctx context.Context, date time.Time) ([]DailyMetric, error)
	FindRecent(ctx context.Context, limit int) ([]DailyMetric, error)
}
