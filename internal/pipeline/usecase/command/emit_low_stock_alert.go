package command

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// DefaultLowStockThreshold is the floor below which a product is considered
// low on stock.
const DefaultLowStockThreshold = 5

var alertsEmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pipeline_alerts_emitted_total",
	Help: "Total number of low-stock alerts emitted",
})

// EmitLowStockAlertCommand carries the before/after snapshots of one product
// update event
type EmitLowStockAlertCommand struct {
	Before     domain.Product
	After      domain.Product
	OccurredAt time.Time
}

// EmitLowStockAlertHandler creates a low-stock alert when a product quantity
// crosses from above the threshold to at-or-below it
type EmitLowStockAlertHandler struct {
	alerts    domain.AlertRepository
	threshold int
}

// NewEmitLowStockAlertHandler creates a new low stock alert handler.
// A threshold <= 0 falls back to the default.
func NewEmitLowStockAlertHandler(alerts domain.AlertRepository, threshold int) *EmitLowStockAlertHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &EmitLowStockAlertHandler{alerts: alerts, threshold: threshold}
}

// Threshold returns the configured low-stock floor.
func (h *EmitLowStockAlertHandler) Threshold() int {
	return h.threshold
}

// Handle evaluates the crossing condition as a pure function of the two
// snapshots. Updates that stay above or stay below the floor emit nothing.
// Returns true when a new alert was written.
func (h *EmitLowStockAlertHandler) Handle(ctx context.Context, cmd EmitLowStockAlertCommand) (bool, error) {
	if !(cmd.Before.Stock > h.threshold && cmd.After.Stock <= h.threshold) {
		return false, nil
	}

	occurredAt := cmd.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	alert := &domain.Alert{
		ProductID:    cmd.After.ID,
		ProductName:  cmd.After.Name,
		StockAtAlert: cmd.After.Stock,
		Type:         domain.AlertTypeLowStock,
		DedupKey:     domain.AlertDedupKey(cmd.After.ID, occurredAt),
		IsRead:       false,
	}

	created, err := h.alerts.CreateIfAbsent(ctx, alert)
	if err != nil {
		return false, fmt.Errorf("failed to create low stock alert for product %d: %w", cmd.After.ID, err)
	}

	if !created {
		logger.Debug(ctx).
			Uint("product_id", cmd.After.ID).
			Str("dedup_key", alert.DedupKey).
			Msg("Low stock alert already emitted for this crossing, skipping")
		return false, nil
	}

	alertsEmitted.Inc()
	logger.Warn(ctx).
		Uint("product_id", cmd.After.ID).
		Str("product_name", cmd.After.Name).
		Int("stock", cmd.After.Stock).
		Int("threshold", h.threshold).
		Msg("Low stock alert emitted")

	return true, nil
}
