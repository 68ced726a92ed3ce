package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"merchantops/internal/repositories"
	"merchantops/models"
	"merchantops/pkg/logger"
)

const (
	defaultAlertThreshold  = 5
	expiringSoonWindowDays = 3
)

type UpdateStockRequest struct {
	Stock          *int       `json:"stock" validate:"required,gte=0"`
	AlertThreshold *int       `json:"alertThreshold" validate:"omitempty,gte=0"`
	Supplier       *string    `json:"supplier"`
	Cost           *float64   `json:"cost" validate:"omitempty,gte=0"`
	ExpiryDate     *time.Time `json:"expiryDate"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"ne=0"`
	Reason string `json:"reason" validate:"required"`
}

type BatchStockEntry struct {
	DishID         string     `json:"dishId"`
	Stock          *int       `json:"stock"`
	AlertThreshold *int       `json:"alertThreshold"`
	Supplier       *string    `json:"supplier"`
	Cost           *float64   `json:"cost"`
	ExpiryDate     *time.Time `json:"expiryDate"`
}

type BatchStockUpdateRequest struct {
	Items []BatchStockEntry `json:"items" validate:"required,min=1"`
}

type UpdateAlertThresholdRequest struct {
	AlertThreshold *int `json:"alertThreshold" validate:"required,gte=0"`
}

type InventoryFilter struct {
	LowStock   bool
	OutOfStock bool
	Supplier   string
}

// InventoryItemDetail is an inventory record joined with the fields of
// its dish that operators need next to stock numbers.
type InventoryItemDetail struct {
	models.InventoryRecord
	DishName   string  `json:"dishName"`
	Price      float64 `json:"price"`
	DishStatus string  `json:"dishStatus"`
	CategoryID *string `json:"categoryId"`
}

type InventorySummary struct {
	TotalItems        int     `json:"totalItems"`
	TotalStock        int     `json:"totalStock"`
	LowStockCount     int     `json:"lowStockCount"`
	OutOfStockCount   int     `json:"outOfStockCount"`
	TotalStockValue   float64 `json:"totalStockValue"`
	AverageStock      float64 `json:"averageStock"`
	ExpiringSoonCount int     `json:"expiringSoonCount"`
}

type InventoryServiceInterface interface {
	GetInventory(filter InventoryFilter, sortOpt SortOption) ([]InventoryItemDetail, error)
	UpdateStock(dishID string, req *UpdateStockRequest) (*models.InventoryRecord, error)
	AdjustStock(dishID string, req *AdjustStockRequest) (*models.InventoryRecord, error)
	BatchUpdateStock(req *BatchStockUpdateRequest) (*models.BatchStockUpdateResponse, error)
	UpdateAlertThreshold(dishID string, req *UpdateAlertThresholdRequest) (*models.InventoryRecord, error)
	GetLowStockDishes(customThreshold *int) ([]InventoryItemDetail, error)
	GetOutOfStockDishes() ([]InventoryItemDetail, error)
	GetInventorySummary() (*InventorySummary, error)
	GetExpiringItems(days int) ([]InventoryItemDetail, error)
	SynchronizeInventory() (*models.SyncResult, error)
}

type InventoryService struct {
	inventoryRepo repositories.InventoryRepositoryInterface
	dishRepo      repositories.DishRepositoryInterface
	logger        *logger.Logger
}

func NewInventoryService(
	inventoryRepo repositories.InventoryRepositoryInterface,
	dishRepo repositories.DishRepositoryInterface,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		dishRepo:      dishRepo,
		logger:        log.WithComponent("inventory_service"),
	}
}

// GetInventory returns enriched inventory records matching the filter,
// sorted by lastUpdated, stock or dishId.
func (s *InventoryService) GetInventory(filter InventoryFilter, sortOpt SortOption) ([]InventoryItemDetail, error) {
	field, descending, err := resolveSort(sortOpt, "lastUpdated", "desc", []string{"lastUpdated", "stock", "dishId"})
	if err != nil {
		return nil, err
	}

	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	details := make([]InventoryItemDetail, 0, len(records))
	for _, record := range records {
		if filter.LowStock && !record.LowStock() {
			continue
		}
		if filter.OutOfStock && !record.OutOfStock() {
			continue
		}
		if filter.Supplier != "" && !strings.EqualFold(record.Supplier, filter.Supplier) {
			continue
		}
		details = append(details, enrichInventoryRecord(record, lookup))
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if descending {
			a, b = b, a
		}
		switch field {
		case "stock":
			return a.Stock < b.Stock
		case "dishId":
			return a.DishID < b.DishID
		default:
			return a.LastUpdated.Before(b.LastUpdated)
		}
	})

	return details, nil
}

// UpdateStock sets the absolute stock level for a dish, creating the
// inventory record on first use. Dish.Stock mirrors the record after
// every successful call.
func (s *InventoryService) UpdateStock(dishID string, req *UpdateStockRequest) (*models.InventoryRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	dish, err := s.dishRepo.GetByID(dishID)
	if err != nil {
		return nil, err
	}

	record, err := s.inventoryRepo.GetByDishID(dishID)
	if err != nil {
		if !models.IsNotFound(err) {
			return nil, err
		}
		record = &models.InventoryRecord{
			DishID:         dishID,
			AlertThreshold: defaultAlertThreshold,
		}
	}

	now := time.Now()
	record.Stock = *req.Stock
	if req.AlertThreshold != nil {
		record.AlertThreshold = *req.AlertThreshold
	}
	if req.Supplier != nil {
		record.Supplier = *req.Supplier
	}
	if req.Cost != nil {
		record.Cost = round2(*req.Cost)
	}
	if req.ExpiryDate != nil {
		record.ExpiryDate = req.ExpiryDate
	}
	record.LastUpdated = now

	if err := s.inventoryRepo.Upsert(record); err != nil {
		s.logger.Error("Failed to save inventory record", "error", err, "dish_id", dishID)
		return nil, err
	}

	if dish.Stock != record.Stock {
		dish.Stock = record.Stock
		dish.UpdatedAt = now
		if err := s.dishRepo.Update(dish); err != nil {
			s.logger.Error("Failed to mirror stock onto dish", "error", err, "dish_id", dishID)
			return nil, err
		}
	}

	s.warnWhenLow(record)
	s.logger.Info("Updated stock", "dish_id", dishID, "stock", record.Stock)
	return record, nil
}

// AdjustStock applies a signed delta to a dish's stock. The arithmetic
// runs atomically in the repository and clamps at zero.
func (s *InventoryService) AdjustStock(dishID string, req *AdjustStockRequest) (*models.InventoryRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, models.NewValidationError("reason", "is required")
	}

	record, err := s.inventoryRepo.AdjustStock(dishID, req.Delta, reason)
	if err != nil {
		return nil, err
	}

	// The adjustment is committed; mirroring onto an orphaned or
	// unsaveable dish only logs.
	dish, err := s.dishRepo.GetByID(dishID)
	if err != nil {
		s.logger.Warn("Adjusted stock for record without a dish", "dish_id", dishID, "error", err)
	} else if dish.Stock != record.Stock {
		dish.Stock = record.Stock
		dish.UpdatedAt = record.LastUpdated
		if err := s.dishRepo.Update(dish); err != nil {
			s.logger.Warn("Failed to mirror adjusted stock onto dish", "error", err, "dish_id", dishID)
		}
	}

	s.warnWhenLow(record)
	return record, nil
}

// BatchUpdateStock applies UpdateStock per entry. Entries without a
// dishId or stock value are skipped, as are entries that fail; the
// response reports the successful subset.
func (s *InventoryService) BatchUpdateStock(req *BatchStockUpdateRequest) (*models.BatchStockUpdateResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	items := make([]models.InventoryRecord, 0, len(req.Items))
	for _, entry := range req.Items {
		if entry.DishID == "" || entry.Stock == nil {
			s.logger.Warn("Skipping batch stock entry without dishId or stock", "dish_id", entry.DishID)
			continue
		}

		record, err := s.UpdateStock(entry.DishID, &UpdateStockRequest{
			Stock:          entry.Stock,
			AlertThreshold: entry.AlertThreshold,
			Supplier:       entry.Supplier,
			Cost:           entry.Cost,
			ExpiryDate:     entry.ExpiryDate,
		})
		if err != nil {
			s.logger.Warn("Skipping failed batch stock entry", "dish_id", entry.DishID, "error", err)
			continue
		}
		items = append(items, *record)
	}

	s.logger.Info("Batch stock update", "requested", len(req.Items), "succeeded", len(items))
	return &models.BatchStockUpdateResponse{
		Requested: len(req.Items),
		Succeeded: len(items),
		Items:     items,
	}, nil
}

// UpdateAlertThreshold sets the low-stock alert level for a dish
func (s *InventoryService) UpdateAlertThreshold(dishID string, req *UpdateAlertThresholdRequest) (*models.InventoryRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	record, err := s.inventoryRepo.GetByDishID(dishID)
	if err != nil {
		return nil, err
	}

	record.AlertThreshold = *req.AlertThreshold
	record.LastUpdated = time.Now()

	if err := s.inventoryRepo.Upsert(record); err != nil {
		s.logger.Error("Failed to save alert threshold", "error", err, "dish_id", dishID)
		return nil, err
	}

	s.logger.Info("Updated alert threshold", "dish_id", dishID, "threshold", record.AlertThreshold)
	return record, nil
}

// GetLowStockDishes returns records at or below their alert threshold,
// or below the caller's threshold when one is given, ascending by stock.
func (s *InventoryService) GetLowStockDishes(customThreshold *int) ([]InventoryItemDetail, error) {
	if customThreshold != nil && *customThreshold < 0 {
		return nil, models.NewValidationError("threshold", "must be 0 or greater")
	}

	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	details := make([]InventoryItemDetail, 0)
	for _, record := range records {
		threshold := record.AlertThreshold
		if customThreshold != nil {
			threshold = *customThreshold
		}
		if record.Stock > threshold {
			continue
		}
		details = append(details, enrichInventoryRecord(record, lookup))
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Stock < details[j].Stock
	})

	return details, nil
}

// GetOutOfStockDishes returns records whose stock is exactly zero
func (s *InventoryService) GetOutOfStockDishes() ([]InventoryItemDetail, error) {
	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	details := make([]InventoryItemDetail, 0)
	for _, record := range records {
		if !record.OutOfStock() {
			continue
		}
		details = append(details, enrichInventoryRecord(record, lookup))
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Stock < details[j].Stock
	})

	return details, nil
}

// GetInventorySummary aggregates the whole inventory into one overview
func (s *InventoryService) GetInventorySummary() (*InventorySummary, error) {
	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}

	summary := buildInventorySummary(records, time.Now())
	return &summary, nil
}

// GetExpiringItems returns records expiring within the next days, expiry
// ascending. Already-expired records and records without an expiry date
// are excluded.
func (s *InventoryService) GetExpiringItems(days int) ([]InventoryItemDetail, error) {
	if days < 1 || days > 365 {
		return nil, models.NewValidationError("days", "must be between 1 and 365")
	}

	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.Add(time.Duration(days) * 24 * time.Hour)

	details := make([]InventoryItemDetail, 0)
	for _, record := range records {
		if record.ExpiryDate == nil {
			continue
		}
		if record.ExpiryDate.Before(now) || record.ExpiryDate.After(cutoff) {
			continue
		}
		details = append(details, enrichInventoryRecord(record, lookup))
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].ExpiryDate.Before(*details[j].ExpiryDate)
	})

	return details, nil
}

// SynchronizeInventory reconciles dishes and inventory records: dishes
// without a record get one seeded from their stock, and records whose
// stock drifted from the dish are overwritten from the dish. Orphaned
// records are left alone. Running it twice on an unchanged set reports
// zero work the second time.
func (s *InventoryService) SynchronizeInventory() (*models.SyncResult, error) {
	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load dishes for sync", "error", err)
		return nil, err
	}
	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory for sync", "error", err)
		return nil, err
	}

	recordIndex := make(map[string]models.InventoryRecord, len(records))
	for _, record := range records {
		recordIndex[record.DishID] = record
	}

	result := &models.SyncResult{}
	now := time.Now()
	for i := range dishes {
		dish := &dishes[i]

		record, ok := recordIndex[dish.ID]
		if !ok {
			created := models.InventoryRecord{
				DishID:         dish.ID,
				Stock:          dish.Stock,
				AlertThreshold: defaultAlertThreshold,
				LastUpdated:    now,
			}
			if err := s.inventoryRepo.Upsert(&created); err != nil {
				s.logger.Error("Failed to create inventory record during sync", "error", err, "dish_id", dish.ID)
				continue
			}
			result.Created++
			continue
		}

		if record.Stock != dish.Stock {
			record.Stock = dish.Stock
			record.LastUpdated = now
			if err := s.inventoryRepo.Upsert(&record); err != nil {
				s.logger.Error("Failed to update inventory record during sync", "error", err, "dish_id", dish.ID)
				continue
			}
			result.Updated++
		}
	}

	s.logger.Info("Synchronized inventory", "created", result.Created, "updated", result.Updated)
	return result, nil
}

func (s *InventoryService) dishLookup() (map[string]*models.Dish, error) {
	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load dishes for inventory enrichment", "error", err)
		return nil, err
	}
	return dishIndex(dishes), nil
}

func (s *InventoryService) warnWhenLow(record *models.InventoryRecord) {
	if record.OutOfStock() {
		s.logger.Warn("Dish is out of stock", "dish_id", record.DishID)
		return
	}
	if record.LowStock() {
		s.logger.Warn("Dish stock is at or below its alert threshold",
			"dish_id", record.DishID, "stock", record.Stock, "threshold", record.AlertThreshold)
	}
}

// buildInventorySummary aggregates records against a fixed notion of
// now. The low and out counts are independent predicates: a zero-stock
// record counts in both.
func buildInventorySummary(records []models.InventoryRecord, now time.Time) InventorySummary {
	summary := InventorySummary{TotalItems: len(records)}

	stockValue := decimal.Zero
	expiryCutoff := now.Add(expiringSoonWindowDays * 24 * time.Hour)
	for _, record := range records {
		summary.TotalStock += record.Stock
		if record.LowStock() {
			summary.LowStockCount++
		}
		if record.OutOfStock() {
			summary.OutOfStockCount++
		}
		stockValue = stockValue.Add(decimal.NewFromInt(int64(record.Stock)).Mul(decimal.NewFromFloat(record.Cost)))
		if record.ExpiryDate != nil && !record.ExpiryDate.Before(now) && !record.ExpiryDate.After(expiryCutoff) {
			summary.ExpiringSoonCount++
		}
	}

	summary.TotalStockValue = stockValue.Round(2).InexactFloat64()
	if summary.TotalItems > 0 {
		summary.AverageStock = round2(float64(summary.TotalStock) / float64(summary.TotalItems))
	}

	return summary
}

func enrichInventoryRecord(record models.InventoryRecord, lookup map[string]*models.Dish) InventoryItemDetail {
	detail := InventoryItemDetail{InventoryRecord: record}
	if dish, ok := lookup[record.DishID]; ok {
		detail.DishName = dish.Name
		detail.Price = dish.Price
		detail.DishStatus = string(dish.Status)
		categoryID := dish.CategoryID
		detail.CategoryID = &categoryID
	} else {
		detail.DishName = unknownDishName
	}
	return detail
}
