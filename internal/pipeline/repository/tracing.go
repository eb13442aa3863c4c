package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

var tracer = otel.Tracer("pipeline-repository")

// GormProductRepositoryWithTracing wraps GormProductRepository with tracing
// on the reconciliation hot path.
type GormProductRepositoryWithTracing struct {
	*GormProductRepository
}

// NewGormProductRepositoryWithTracing creates a new product repository with tracing
func NewGormProductRepositoryWithTracing(db *gorm.DB) *GormProductRepositoryWithTracing {
	return &GormProductRepositoryWithTracing{
		GormProductRepository: NewGormProductRepository(db),
	}
}

// FindByID with tracing
func (r *GormProductRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int64("product.id", int64(id)),
		),
	)
	defer span.End()

	product, err := r.GormProductRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("product.name", product.Name),
		attribute.Int("product.stock", product.Stock),
	)
	return product, nil
}

// ApplyAdjustments with tracing
func (r *GormProductRepositoryWithTracing) ApplyAdjustments(ctx context.Context, adjustments []domain.StockAdjustment) error {
	ctx, span := tracer.Start(ctx, "repository.ApplyAdjustments",
		trace.WithAttributes(
			attribute.Int("batch.size", len(adjustments)),
		),
	)
	defer span.End()

	if err := r.GormProductRepository.ApplyAdjustments(ctx, adjustments); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
