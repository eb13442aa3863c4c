package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// maxReconcileAttempts bounds the read-modify-write retry loop when a
// conditional stock update loses a race against a concurrent sale.
const maxReconcileAttempts = 3

var stockClamped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pipeline_stock_clamped_total",
	Help: "Total number of stock decrements clamped to zero",
})

// ProductUpdatePublisher emits a product-updated event with before/after
// snapshots after a committed stock change.
type ProductUpdatePublisher interface {
	PublishProductUpdated(ctx context.Context, before, after domain.Product) error
}

// ReconcileSaleCommand represents the command to reconcile stock for a newly
// recorded sale
type ReconcileSaleCommand struct {
	Sale domain.Sale
}

// ReconcileSaleHandler decrements product stock for each line item of a sale
// in one atomic batch
type ReconcileSaleHandler struct {
	products  domain.ProductRepository
	movements domain.StockMovementRepository
	publisher ProductUpdatePublisher
}

// NewReconcileSaleHandler creates a new reconcile sale handler. publisher may
// be nil when no downstream consumer is wired.
func NewReconcileSaleHandler(
	products domain.ProductRepository,
	movements domain.StockMovementRepository,
	publisher ProductUpdatePublisher,
) *ReconcileSaleHandler {
	return &ReconcileSaleHandler{
		products:  products,
		movements: movements,
		publisher: publisher,
	}
}

// Handle executes the reconcile sale command. Either every staged product
// update for the sale is applied or none is. A sale whose movements already
// exist was reconciled by an earlier delivery and is skipped.
func (h *ReconcileSaleHandler) Handle(ctx context.Context, cmd ReconcileSaleCommand) error {
	sale := cmd.Sale

	if len(sale.Items) == 0 {
		logger.Debug(ctx).Uint("sale_id", sale.ID).Msg("Sale has no line items, nothing to reconcile")
		return nil
	}

	applied, err := h.movements.ExistsForSale(ctx, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to check prior reconciliation for sale %d: %w", sale.ID, err)
	}
	if applied {
		logger.Info(ctx).Uint("sale_id", sale.ID).Msg("Sale already reconciled, skipping redelivery")
		return nil
	}

	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		adjustments, err := h.stage(ctx, sale)
		if err != nil {
			return err
		}

		err = h.products.ApplyAdjustments(ctx, adjustments)
		if errors.Is(err, domain.ErrVersionConflict) {
			logger.Warn(ctx).
				Uint("sale_id", sale.ID).
				Int("attempt", attempt).
				Msg("Concurrent stock update detected, retrying reconciliation")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to commit stock batch for sale %d: %w", sale.ID, err)
		}

		logger.Info(ctx).
			Uint("sale_id", sale.ID).
			Int("updated_products", len(adjustments)).
			Msg("Stock reconciled for sale")

		h.notify(ctx, adjustments)
		return nil
	}

	return fmt.Errorf("reconciling sale %d: %w", sale.ID, domain.ErrVersionConflict)
}

// stage reads every referenced product and builds the batch of conditional
// stock updates. Line items naming the same product are coalesced into a
// single decrement, so each product appears at most once in the batch and its
// conditional write is keyed on one read version. Missing products and
// malformed line items are skipped without failing the batch.
func (h *ReconcileSaleHandler) stage(ctx context.Context, sale domain.Sale) ([]domain.StockAdjustment, error) {
	quantities := make(map[uint]int, len(sale.Items))
	order := make([]uint, 0, len(sale.Items))

	for _, item := range sale.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			logger.Warn(ctx).
				Uint("sale_id", sale.ID).
				Uint("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("Malformed line item, skipping")
			continue
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	adjustments := make([]domain.StockAdjustment, 0, len(order))
	for _, productID := range order {
		quantity := quantities[productID]

		product, err := h.products.FindByID(ctx, productID)
		if errors.Is(err, domain.ErrProductNotFound) {
			logger.Debug(ctx).
				Uint("sale_id", sale.ID).
				Uint("product_id", productID).
				Msg("Line item references unknown product, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read product %d: %w", productID, err)
		}

		newStock := product.Stock - quantity
		if newStock < 0 {
			newStock = 0
			stockClamped.Inc()
			logger.Warn(ctx).
				Uint("sale_id", sale.ID).
				Uint("product_id", product.ID).
				Int("stock", product.Stock).
				Int("quantity", quantity).
				Msg("Oversold line item, clamping stock to zero")
		}

		adjustments = append(adjustments, domain.StockAdjustment{
			Product:  product,
			NewStock: newStock,
			Movement: domain.StockMovement{
				SaleID:       sale.ID,
				ProductID:    product.ID,
				QuantitySold: quantity,
				PriorStock:   product.Stock,
				NewStock:     newStock,
			},
		})
	}

	return adjustments, nil
}

// notify publishes a product-updated event per committed adjustment so the
// threshold monitor sees the before/after snapshots. Publish failures are
// logged, not surfaced: the stock change is already durable.
func (h *ReconcileSaleHandler) notify(ctx context.Context, adjustments []domain.StockAdjustment) {
	if h.publisher == nil {
		return
	}

	for _, adj := range adjustments {
		before := *adj.Product
		after := before
		after.Stock = adj.NewStock
		after.Version = before.Version + 1

		if err := h.publisher.PublishProductUpdated(ctx, before, after); err != nil {
			logger.Error(ctx).
				Err(err).
				Uint("product_id", before.ID).
				Msg("Failed to publish product update event")
		}
	}
}
