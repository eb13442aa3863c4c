package command

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("pipeline-test", false)
	logger.SetLevel("error")
	os.Exit(m.Run())
}

// newTestDB opens an isolated in-memory database with all pipeline tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Product{},
		&domain.Sale{},
		&domain.Alert{},
		&domain.DailyMetric{},
		&domain.TemporaryCart{},
		&domain.StockMovement{},
	))

	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, stock int) *domain.Product {
	t.Helper()

	product := &domain.Product{
		Name:     name,
		Cost:     7.5,
		Price:    12.0,
		Stock:    stock,
		Category: "general",
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func fetchProduct(t *testing.T, db *gorm.DB, id uint) *domain.Product {
	t.Helper()

	var product domain.Product
	require.NoError(t, db.First(&product, id).Error)
	return &product
}

// capturingPublisher records product update notifications for assertions.
type capturingPublisher struct {
	updates []productUpdate
}

type productUpdate struct {
	before domain.Product
	after  domain.Product
}

func (p *capturingPublisher) PublishProductUpdated(_ context.Context, before, after domain.Product) error {
	p.updates = append(p.updates, productUpdate{before: before, after: after})
	return nil
}
