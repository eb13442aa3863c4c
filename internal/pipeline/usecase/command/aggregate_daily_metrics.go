package command

import (
	"context"
	"fmt"
	"time"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// AggregateDailyMetricsCommand names the calendar day to aggregate. The
// window is a pure function of RunDate, so backfills and reruns are
// deterministic.
type AggregateDailyMetricsCommand struct {
	RunDate time.Time
}

// AggregateDailyMetricsHandler scans one day of sales and appends a summary
// record
type AggregateDailyMetricsHandler struct {
	sales   domain.SaleRepository
	metrics domain.DailyMetricRepository
}

// NewAggregateDailyMetricsHandler creates a new daily metrics handler
func NewAggregateDailyMetricsHandler(
	sales domain.SaleRepository,
	metrics domain.DailyMetricRepository,
) *AggregateDailyMetricsHandler {
	return &AggregateDailyMetricsHandler{sales: sales, metrics: metrics}
}

// Handle aggregates all sales created within [midnight of RunDate, +24h) and
// writes one DailyMetric row. Reads are the only interaction with sales; the
// single append is the only mutation. Reruns append a second row rather than
// replacing the first.
func (h *AggregateDailyMetricsHandler) Handle(ctx context.Context, cmd AggregateDailyMetricsCommand) (*domain.DailyMetric, error) {
	dayStart := time.Date(
		cmd.RunDate.Year(), cmd.RunDate.Month(), cmd.RunDate.Day(),
		0, 0, 0, 0, cmd.RunDate.Location(),
	)
	dayEnd := dayStart.Add(24 * time.Hour)

	sales, err := h.sales.FindInWindow(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for %s: %w", dayStart.Format("2006-01-02"), err)
	}

	var totalSales float64
	var unitsSold int
	for i := range sales {
		totalSales += sales[i].Total
		unitsSold += sales[i].Units()
	}

	averageTicket := 0.0
	if len(sales) > 0 {
		averageTicket = totalSales / float64(len(sales))
	}

	metric := &domain.DailyMetric{
		Date:          dayStart,
		TotalSales:    totalSales,
		SaleCount:     len(sales),
		UnitsSold:     unitsSold,
		AverageTicket: averageTicket,
		ComputedAt:    time.Now(),
	}

	if err := h.metrics.Create(ctx, metric); err != nil {
		return nil, fmt.Errorf("failed to write daily metric for %s: %w", dayStart.Format("2006-01-02"), err)
	}

	logger.Info(ctx).
		Str("date", dayStart.Format("2006-01-02")).
		Float64("total_sales", totalSales).
		Int("sale_count", len(sales)).
		Int("units_sold", unitsSold).
		Float64("average_ticket", averageTicket).
		Msg("Daily metrics computed")

	return metric, nil
}
