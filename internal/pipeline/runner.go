package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/command"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

// Job names accepted by the runner.
const (
	JobDailyMetrics = "daily-metrics"
	JobCartCleanup  = "cart-cleanup"
)

var jobRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_job_runs_total",
		Help: "Total number of scheduled job runs",
	},
	[]string{"job", "status"},
)

// Runner executes the scheduled jobs against a logical run date, so the
// aggregation window is a pure function of the invocation parameter rather
// than of wall-clock now. Scheduling itself is delegated to an external
// timer (cron, CronJob) that invokes the jobs binary.
type Runner struct {
	dailyMetrics *command.AggregateDailyMetricsHandler
	cartSweep    *command.SweepExpiredCartsHandler
}

// NewRunner creates a new job runner
func NewRunner(
	dailyMetrics *command.AggregateDailyMetricsHandler,
	cartSweep *command.SweepExpiredCartsHandler,
) *Runner {
	return &Runner{
		dailyMetrics: dailyMetrics,
		cartSweep:    cartSweep,
	}
}

// Run executes one named job for the given logical run date. A failed run is
// logged and surfaced; the next scheduled tick retries from scratch.
func (r *Runner) Run(ctx context.Context, job string, runDate time.Time) error {
	tracer := otel.Tracer("pipeline-jobs")
	ctx, span := tracer.Start(ctx, "job."+job,
		trace.WithAttributes(
			attribute.String("job.name", job),
			attribute.String("job.run_date", runDate.Format("2006-01-02")),
		),
	)
	defer span.End()

	start := time.Now()
	var err error

	switch job {
	case JobDailyMetrics:
		_, err = r.dailyMetrics.Handle(ctx, command.AggregateDailyMetricsCommand{RunDate: runDate})
	case JobCartCleanup:
		_, err = r.cartSweep.Handle(ctx, command.SweepExpiredCartsCommand{Now: runDate})
	default:
		err = fmt.Errorf("unknown job %q", job)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobRuns.WithLabelValues(job, "error").Inc()
		logger.Error(ctx).
			Err(err).
			Str("job", job).
			Time("run_date", runDate).
			Msg("Scheduled job failed")
		return err
	}

	jobRuns.WithLabelValues(job, "ok").Inc()
	logger.Info(ctx).
		Str("job", job).
		Time("run_date", runDate).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job completed")
	return nil
}
