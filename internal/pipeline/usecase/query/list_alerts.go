package query

import (
	"context"
	"fmt"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

// ListAlertsQuery represents the query to list low-stock alerts
type ListAlertsQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// ListAlertsHandler handles list alerts query
type ListAlertsHandler struct {
	alerts domain.AlertRepository
}

// NewListAlertsHandler creates a new list alerts handler
func NewListAlertsHandler(alerts domain.AlertRepository) *ListAlertsHandler {
	return &ListAlertsHandler{alerts: alerts}
}

// Handle executes the list alerts query, newest first
func (h *ListAlertsHandler) Handle(ctx context.Context, query ListAlertsQuery) ([]domain.Alert, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}

	alerts, err := h.alerts.FindAll(ctx, query.UnreadOnly, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}
