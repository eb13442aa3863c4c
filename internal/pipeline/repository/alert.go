package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
)

type GormAlertRepository struct {
	db *gorm.DB
}

func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

func (r *GormAlertRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Alert{})
}

// CreateIfAbsent inserts the alert unless its dedup key is already taken.
// The unique index on dedup_key is what enforces one alert per crossing even
// under redelivered update events.
func (r *GormAlertRepository) CreateIfAbsent(ctx context.Context, alert *domain.Alert) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(alert)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormAlertRepository) FindAll(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.Alert, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var alerts []domain.Alert
	err := query.Find(&alerts).Error
	return alerts, err
}

func (r *GormAlertRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
