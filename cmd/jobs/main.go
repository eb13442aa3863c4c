package main

import (
	"context"
	"flag"
	"time"

	"github.com/powerpufffit/inventory-pipeline/internal/config"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline"
	"github.com/powerpufffit/inventory-pipeline/pkg/database"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
	"github.com/powerpufffit/inventory-pipeline/pkg/tracing"
)

// The jobs binary is the pipeline's explicit task runner. External timers
// (cron, a CronJob) invoke it once per schedule tick:
//
//	jobs -job daily-metrics              # aggregate today
//	jobs -job daily-metrics -date 2026-08-12  # deterministic backfill
//	jobs -job cart-cleanup               # weekly retention sweep
func main() {
	jobName := flag.String("job", "", "job to run: daily-metrics or cart-cleanup")
	dateArg := flag.String("date", "", "logical run date, YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg := config.Load()

	logger.Init(cfg.ServiceName+"-jobs", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if *jobName == "" {
		logger.Logger.Fatal().Msg("Missing -job flag")
	}

	runDate := time.Now()
	if *dateArg != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *dateArg, time.Local)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("date", *dateArg).Msg("Invalid -date, expected YYYY-MM-DD")
		}
		runDate = parsed
	}

	tp, err := tracing.InitTracer(cfg.ServiceName + "-jobs")
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		_ = tracing.Shutdown(context.Background(), tp)
	}()

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

	// Scheduled jobs never publish events, so no Kafka producer is wired.
	p, err := pipeline.InitializePipeline(db, cfg, nil)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}

	runner := pipeline.NewRunner(p.DailyMetrics, p.CartSweep)

	if err := runner.Run(context.Background(), *jobName, runDate); err != nil {
		logger.Logger.Fatal().Err(err).Str("job", *jobName).Msg("Job failed")
	}
}
