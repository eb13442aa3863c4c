//go:build wireinject
// +build wireinject

package pipeline

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/config"
	httpDelivery "github.com/powerpufffit/inventory-pipeline/internal/pipeline/delivery/http"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/repository"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/command"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/query"
)

// ProvideProductRepository provides the product repository with tracing
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepositoryWithTracing(db)
}

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(db *gorm.DB) domain.SaleRepository {
	return repository.NewGormSaleRepository(db)
}

// ProvideAlertRepository provides the alert repository
func ProvideAlertRepository(db *gorm.DB) domain.AlertRepository {
	return repository.NewGormAlertRepository(db)
}

// ProvideDailyMetricRepository provides the daily metric repository
func ProvideDailyMetricRepository(db *gorm.DB) domain.DailyMetricRepository {
	return repository.NewGormDailyMetricRepository(db)
}

// ProvideTemporaryCartRepository provides the temporary cart repository
func ProvideTemporaryCartRepository(db *gorm.DB) domain.TemporaryCartRepository {
	return repository.NewGormTemporaryCartRepository(db)
}

// ProvideStockMovementRepository provides the stock movement repository
func ProvideStockMovementRepository(db *gorm.DB) domain.StockMovementRepository {
	return repository.NewGormStockMovementRepository(db)
}

// ProvideLowStockAlertHandler provides the threshold monitor with the
// configured floor
func ProvideLowStockAlertHandler(alerts domain.AlertRepository, cfg *config.Config) *command.EmitLowStockAlertHandler {
	return command.NewEmitLowStockAlertHandler(alerts, cfg.LowStockThreshold)
}

// ProvideCartSweepHandler provides the retention sweeper with the configured
// retention window
func ProvideCartSweepHandler(carts domain.TemporaryCartRepository, cfg *config.Config) *command.SweepExpiredCartsHandler {
	return command.NewSweepExpiredCartsHandler(carts, cfg.CartRetentionDays)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideSaleRepository,
	ProvideAlertRepository,
	ProvideDailyMetricRepository,
	ProvideTemporaryCartRepository,
	ProvideStockMovementRepository,
)

var HandlerSet = wire.NewSet(
	command.NewReconcileSaleHandler,
	ProvideLowStockAlertHandler,
	command.NewAggregateDailyMetricsHandler,
	ProvideCartSweepHandler,
	query.NewListAlertsHandler,
	query.NewListDailyMetricsHandler,
	httpDelivery.NewPipelineHandler,
)

// InitializePipeline initializes the full pipeline with all dependencies
func InitializePipeline(db *gorm.DB, cfg *config.Config, publisher command.ProductUpdatePublisher) (*Pipeline, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		NewPipeline,
	)
	return nil, nil
}
