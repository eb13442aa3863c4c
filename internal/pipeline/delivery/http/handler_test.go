package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/domain"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/repository"
	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/query"
)

func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Alert{}, &domain.DailyMetric{}))

	handler := NewPipelineHandler(
		query.NewListAlertsHandler(repository.NewGormAlertRepository(db)),
		query.NewListDailyMetricsHandler(repository.NewGormDailyMetricRepository(db)),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, sqlDB)

	return router, db
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestListAlertsEndpoint(t *testing.T) {
	router, db := newTestRouter(t)

	require.NoError(t, db.Create(&domain.Alert{
		ProductID:    3,
		ProductName:  "Creatine",
		StockAtAlert: 4,
		Type:         domain.AlertTypeLowStock,
		DedupKey:     "3:2026-08-14",
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?unread=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Creatine")
}

func TestListDailyMetricsRejectsBadDate(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/daily?date=14-08-2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDailyMetricsByDate(t *testing.T) {
	router, db := newTestRouter(t)

	day := time.Date(2026, 8, 14, 0, 0, 0, 0, time.Local)
	require.NoError(t, db.Create(&domain.DailyMetric{
		Date: day, TotalSales: 50, SaleCount: 2, UnitsSold: 5, AverageTicket: 25, ComputedAt: time.Now(),
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/daily?date=2026-08-14", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"sale_count\":2")
}
