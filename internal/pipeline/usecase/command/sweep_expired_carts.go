package command

import (
	"context"
	"fmt"
	"time"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// DefaultCartRetentionDays is how long abandoned temporary carts are kept.
const DefaultCartRetentionDays = 30

// SweepExpiredCartsCommand carries the logical run time of one sweep.
type SweepExpiredCartsCommand struct {
	Now time.Time
}

// SweepExpiredCartsHandler permanently removes temporary carts older than the
// retention window
type SweepExpiredCartsHandler struct {
	carts         domain.TemporaryCartRepository
	retentionDays int
}

// NewSweepExpiredCartsHandler creates a new cart sweeper. A retention of
// <= 0 days falls back to the default.
func NewSweepExpiredCartsHandler(carts domain.TemporaryCartRepository, retentionDays int) *SweepExpiredCartsHandler {
	if retentionDays <= 0 {
		retentionDays = DefaultCartRetentionDays
	}
	return &SweepExpiredCartsHandler{carts: carts, retentionDays: retentionDays}
}

// Handle deletes every cart created strictly before now minus the retention
// window, as one atomic batch. Carts at or after the cutoff are never touched.
func (h *SweepExpiredCartsHandler) Handle(ctx context.Context, cmd SweepExpiredCartsCommand) (int64, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.AddDate(0, 0, -h.retentionDays)

	deleted, err := h.carts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep temporary carts: %w", err)
	}

	logger.Info(ctx).
		Time("cutoff", cutoff).
		Int64("deleted", deleted).
		Msg("Temporary carts swept")

	return deleted, nil
}
