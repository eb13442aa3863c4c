package pipeline

import (
	"gorm.io/gorm"

	httpDelivery "github.com/powerpufffit/inventory-pipeline/internal/pipeline/delivery/http"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/command"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/query"
)

// Pipeline bundles the reconciliation handlers behind one composition root.
// Each handler is stateless; all state lives in the store.
type Pipeline struct {
	ReconcileSale *command.ReconcileSaleHandler
	LowStockAlert *command.EmitLowStockAlertHandler
	DailyMetrics  *command.AggregateDailyMetricsHandler
	CartSweep     *command.SweepExpiredCartsHandler

	ListAlerts  *query.ListAlertsHandler
	ListMetrics *query.ListDailyMetricsHandler

	HTTP *httpDelivery.PipelineHandler
}

// NewPipeline creates the pipeline from its handlers
func NewPipeline(
	reconcileSale *command.ReconcileSaleHandler,
	lowStockAlert *command.EmitLowStockAlertHandler,
	dailyMetrics *command.AggregateDailyMetricsHandler,
	cartSweep *command.SweepExpiredCartsHandler,
	listAlerts *query.ListAlertsHandler,
	listMetrics *query.ListDailyMetricsHandler,
	httpHandler *httpDelivery.PipelineHandler,
) *Pipeline {
	return &Pipeline{
		ReconcileSale: reconcileSale,
		LowStockAlert: lowStockAlert,
		DailyMetrics:  dailyMetrics,
		CartSweep:     cartSweep,
		ListAlerts:    listAlerts,
		ListMetrics:   listMetrics,
		HTTP:          httpHandler,
	}
}

// Migrate creates or updates every table the pipeline touches
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Product{},
		&domain.Sale{},
		&domain.Alert{},
		&domain.DailyMetric{},
		&domain.TemporaryCart{},
		&domain.StockMovement{},
	)
}
