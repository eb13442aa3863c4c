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

func createSale(t *testing.T, db *gorm.DB, total float64, units int, at time.Time) {
	t.Helper()

	sale := &domain.Sale{
		Items:     []domain.SaleLineItem{{ProductID: 1, Quantity: units}},
		Total:     total,
		Status:    "completed",
		CreatedAt: at,
	}
	require.NoError(t, db.Create(sale).Error)
}

func TestAggregateDailyMetrics(t *testing.T) {
	db := newTestDB(t)
	handler := NewAggregateDailyMetricsHandler(
		repository.NewGormSaleRepository(db),
		repository.NewGormDailyMetricRepository(db),
	)

	runDate := time.Date(2026, 8, 14, 9, 30, 0, 0, time.Local)
	createSale(t, db, 20.0, 2, runDate.Add(1*time.Hour))
	createSale(t, db, 30.0, 3, runDate.Add(5*time.Hour))

	// Outside the window in both directions
	createSale(t, db, 99.0, 9, runDate.AddDate(0, 0, -1))
	createSale(t, db, 99.0, 9, runDate.AddDate(0, 0, 1))

	metric, err := handler.Handle(context.Background(), AggregateDailyMetricsCommand{RunDate: runDate})
	require.NoError(t, err)

	assert.Equal(t, 50.0, metric.TotalSales)
	assert.Equal(t, 2, metric.SaleCount)
	assert.Equal(t, 5, metric.UnitsSold)
	assert.Equal(t, 25.0, metric.AverageTicket)
	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.Local), metric.Date)
	assert.False(t, metric.ComputedAt.IsZero())
}

func TestAggregateDailyMetricsEmptyDay(t *testing.T) {
	db := newTestDB(t)
	handler := NewAggregateDailyMetricsHandler(
		repository.NewGormSaleRepository(db),
		repository.NewGormDailyMetricRepository(db),
	)

	metric, err := handler.Handle(context.Background(), AggregateDailyMetricsCommand{
		RunDate: time.Date(2026, 8, 15, 3, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, metric.TotalSales)
	assert.Equal(t, 0, metric.SaleCount)
	assert.Equal(t, 0, metric.UnitsSold)
	assert.Equal(t, 0.0, metric.AverageTicket)
}

// Re-running the aggregator for the same day appends a second row instead of
// replacing the first. That is the current contract; revisit if consumers
// ever need upsert semantics.
func TestAggregateDailyMetricsRerunAppends(t *testing.T) {
	db := newTestDB(t)
	handler := NewAggregateDailyMetricsHandler(
		repository.NewGormSaleRepository(db),
		repository.NewGormDailyMetricRepository(db),
	)

	runDate := time.Date(2026, 8, 16, 12, 0, 0, 0, time.Local)
	createSale(t, db, 40.0, 4, runDate.Add(time.Hour))

	_, err := handler.Handle(context.Background(), AggregateDailyMetricsCommand{RunDate: runDate})
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), AggregateDailyMetricsCommand{RunDate: runDate})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.DailyMetric{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
