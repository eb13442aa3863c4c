package query

import (
	"context"
	"fmt"
	"time"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

// ListDailyMetricsQuery represents the query to list daily metric records.
// When Date is set, only that day's records are returned (there can be more
// than one when the aggregator re-ran).
type ListDailyMetricsQuery struct {
	Date  time.Time
	Limit int
}

// ListDailyMetricsHandler handles list daily metrics query
type ListDailyMetricsHandler struct {
	metrics domain.DailyMetricRepository
}

// NewListDailyMetricsHandler creates a new list daily metrics handler
func NewListDailyMetricsHandler(metrics domain.DailyMetricRepository) *ListDailyMetricsHandler {
	return &ListDailyMetricsHandler{metrics: metrics}
}

// Handle executes the list daily metrics query
func (h *ListDailyMetricsHandler) Handle(ctx context.Context, query ListDailyMetricsQuery) ([]domain.DailyMetric, error) {
	if query.Limit <= 0 {
		query.Limit = 30
	}

	if !query.Date.IsZero() {
		dayStart := time.Date(
			query.Date.Year(), query.Date.Month(), query.Date.Day(),
			0, 0, 0, 0, query.Date.Location(),
		)
		metrics, err := h.metrics.FindByDate(ctx, dayStart)
		if err != nil {
			return nil, fmt.Errorf("failed to list daily metrics: %w", err)
		}
		return metrics, nil
	}

	metrics, err := h.metrics.FindRecent(ctx, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily metrics: %w", err)
	}

	return metrics, nil
}
