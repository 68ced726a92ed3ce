package service

import (
	"path/filepath"
	"testing"

	"merchantops/internal/repositories"
	"merchantops/pkg/database"
	"merchantops/pkg/logger"
)

// serviceStack wires real repositories over a throwaway storage directory
// so service tests exercise the full persistence path.
type serviceStack struct {
	storage       *database.Storage
	categoryRepo  *repositories.CategoryRepository
	dishRepo      *repositories.DishRepository
	inventoryRepo *repositories.InventoryRepository
	statsRepo     *repositories.StatsRepository
	logger        *logger.Logger
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: filepath.Join(t.TempDir(), "test.log"),
	})
}

func newServiceStack(t *testing.T) *serviceStack {
	t.Helper()

	log := newTestLogger(t)
	dir := t.TempDir()
	storage, err := database.Open(database.Config{
		DataDir:    filepath.Join(dir, "data"),
		ReportsDir: filepath.Join(dir, "reports"),
	}, log)
	if err != nil {
		t.Fatalf("Open storage: %v", err)
	}

	return &serviceStack{
		storage:       storage,
		categoryRepo:  repositories.NewCategoryRepository(storage, log),
		dishRepo:      repositories.NewDishRepository(storage, log),
		inventoryRepo: repositories.NewInventoryRepository(storage, log),
		statsRepo:     repositories.NewStatsRepository(storage, log),
		logger:        log,
	}
}

func (s *serviceStack) menuService() *MenuService {
	return NewMenuService(s.categoryRepo, s.dishRepo, s.inventoryRepo, s.logger)
}

func (s *serviceStack) inventoryService() *InventoryService {
	return NewInventoryService(s.inventoryRepo, s.dishRepo, s.logger)
}

func (s *serviceStack) analyticsService() *AnalyticsService {
	return NewAnalyticsService(s.statsRepo, s.dishRepo, s.inventoryRepo, s.logger)
}

func (s *serviceStack) reportService() *ReportService {
	return NewReportService(s.analyticsService(), s.storage, s.logger)
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
