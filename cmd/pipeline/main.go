package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/powerpufffit/inventory-pipeline/internal/config"
	"github.com/powerpufffit/inventory-pipeline/internal/dedup"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/command"
	"github.com/powerpufffit/inventory-pipeline/kafka"
	"github.com/powerpufffit/inventory-pipeline/pkg/database"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
	"github.com/powerpufffit/inventory-pipeline/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting inventory pipeline")

	// Tracing
	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		if err := tracing.Shutdown(context.Background(), tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	// Database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := pipeline.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Redis-backed event dedup. The pipeline still runs without it, but
	// redelivered events then rely on the store-level dedup keys alone.
	var dedupStore dedup.Store
	redisClient, err := dedup.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, running without event dedup")
	} else {
		defer redisClient.Close()
		dedupStore = dedup.NewRedisStore(redisClient, cfg.EventDedupTTL)
	}

	// Kafka publisher for downstream product.updated events
	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.SalesTopic, cfg.ProductsTopic)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
	}
	defer publisher.Close()

	// Initialize handlers with Wire DI
	p, err := pipeline.InitializePipeline(db, cfg, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}

	// Kafka consumer for trigger events
	consumer, err := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaGroupID,
		[]string{cfg.SalesTopic, cfg.ProductsTopic},
		dedupStore,
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.OnSaleRecorded(func(ctx context.Context, event kafka.SaleRecordedEvent) error {
		return p.ReconcileSale.Handle(ctx, command.ReconcileSaleCommand{
			Sale: saleFromEvent(event),
		})
	})

	consumer.OnProductUpdated(func(ctx context.Context, event kafka.ProductUpdatedEvent) error {
		_, err := p.LowStockAlert.Handle(ctx, command.EmitLowStockAlertCommand{
			Before:     productFromSnapshot(event.Before),
			After:      productFromSnapshot(event.After),
			OccurredAt: event.Timestamp,
		})
		return err
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	go startHTTPServer(p, sqlDB, cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down pipeline...")
	cancel()
}

func startHTTPServer(p *pipeline.Pipeline, db *sql.DB, port string) {
	router := mux.NewRouter()

	p.HTTP.RegisterRoutes(router)
	p.HTTP.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	handler := otelhttp.NewHandler(c.Handler(router), "pipeline-http")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func saleFromEvent(event kafka.SaleRecordedEvent) domain.Sale {
	items := make([]domain.SaleLineItem, 0, len(event.Items))
	for _, item := range event.Items {
		items = append(items, domain.SaleLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return domain.Sale{
		ID:        event.SaleID,
		Items:     items,
		Total:     event.Total,
		Status:    event.Status,
		CreatedAt: event.RecordedAt,
	}
}

func productFromSnapshot(snapshot kafka.ProductSnapshot) domain.Product {
	return domain.Product{
		ID:        snapshot.ID,
		Name:      snapshot.Name,
		Stock:     snapshot.Stock,
		IsActive:  snapshot.IsActive,
		Version:   snapshot.Version,
		UpdatedAt: snapshot.UpdatedAt,
	}
}
