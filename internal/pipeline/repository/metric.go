package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

type GormDailyMetricRepository struct {
	db *gorm.DB
}

func NewGormDailyMetricRepository(db *gorm.DB) *GormDailyMetricRepository {
	return &GormDailyMetricRepository{db: db}
}

func (r *GormDailyMetricRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.DailyMetric{})
}

func (r *GormDailyMetricRepository) Create(ctx context.Context, metric *domain.DailyMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *GormDailyMetricRepository) FindByDate(ctx context.Context, date time.Time) ([]domain.DailyMetric, error) {
	var metrics []domain.DailyMetric
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("computed_at").
		Find(&metrics).Error
	return metrics, err
}

func (r *GormDailyMetricRepository) FindRecent(ctx context.Context, limit int) ([]domain.DailyMetric, error) {
	var metrics []domain.DailyMetric
	err := r.db.WithContext(ctx).
		Order("date DESC, computed_at DESC").
		Limit(limit).
		Find(&metrics).Error
	return metrics, err
}
