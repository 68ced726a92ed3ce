package service

import (
	"testing"
	"time"

	"merchantops/models"
)

func seedDishWithCategory(t *testing.T, stack *serviceStack, name string, stock int) *models.Dish {
	t.Helper()

	menu := stack.menuService()
	if _, err := stack.categoryRepo.GetByID("cat_1"); err != nil {
		if _, err := menu.CreateCategory(&CreateCategoryRequest{Name: "Mains"}); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
	}
	dish, err := menu.CreateDish(&CreateDishRequest{
		Name:       name,
		CategoryID: "cat_1",
		Price:      10.00,
		Stock:      intPtr(stock),
	})
	if err != nil {
		t.Fatalf("CreateDish %s: %v", name, err)
	}
	return dish
}

func TestUpdateStockCreatesRecordAndMirrorsDish(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 0)

	record, err := svc.UpdateStock(dish.ID, &UpdateStockRequest{
		Stock:    intPtr(20),
		Cost:     floatPtr(2.499),
		Supplier: strPtr("Fresh Farms"),
	})
	if err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
	if record.Stock != 20 {
		t.Fatalf("expected stock 20, got %d", record.Stock)
	}
	if record.Cost != 2.50 {
		t.Fatalf("expected cost rounded to 2.50, got %v", record.Cost)
	}

	stored, err := stack.dishRepo.GetByID(dish.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Stock != 20 {
		t.Fatalf("expected dish stock mirrored to 20, got %d", stored.Stock)
	}
}

func TestUpdateStockUnknownDish(t *testing.T) {
	svc := newServiceStack(t).inventoryService()

	_, err := svc.UpdateStock("dish_404", &UpdateStockRequest{Stock: intPtr(5)})
	if !models.IsNotFound(err) {
		t.Fatalf("expected not found for unknown dish, got %v", err)
	}
}

func TestAdjustStockClampsAndValidates(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 5)

	record, err := svc.AdjustStock(dish.ID, &AdjustStockRequest{Delta: -10, Reason: "spoilage"})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if record.Stock != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", record.Stock)
	}
	if record.LastAdjustment == nil || record.LastAdjustment.Delta != -10 {
		t.Fatalf("expected recorded adjustment delta -10, got %+v", record.LastAdjustment)
	}

	stored, err := stack.dishRepo.GetByID(dish.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Stock != 0 {
		t.Fatalf("expected dish stock mirrored to 0, got %d", stored.Stock)
	}

	if _, err := svc.AdjustStock(dish.ID, &AdjustStockRequest{Delta: 0, Reason: "noop"}); !models.IsValidation(err) {
		t.Fatalf("expected validation error for zero delta, got %v", err)
	}
	if _, err := svc.AdjustStock(dish.ID, &AdjustStockRequest{Delta: 1, Reason: "   "}); !models.IsValidation(err) {
		t.Fatalf("expected validation error for blank reason, got %v", err)
	}
}

func TestGetLowStockDishesThresholds(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()

	atThreshold := seedDishWithCategory(t, stack, "At Threshold", 5)
	aboveThreshold := seedDishWithCategory(t, stack, "Above Threshold", 6)
	seedDishWithCategory(t, stack, "Well Stocked", 40)

	low, err := svc.GetLowStockDishes(nil)
	if err != nil {
		t.Fatalf("GetLowStockDishes: %v", err)
	}
	if len(low) != 1 || low[0].DishID != atThreshold.ID {
		t.Fatalf("expected only the at-threshold dish, got %+v", low)
	}

	// A custom threshold overrides the per-record one.
	low, err = svc.GetLowStockDishes(intPtr(6))
	if err != nil {
		t.Fatalf("GetLowStockDishes custom: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 dishes at custom threshold 6, got %d", len(low))
	}
	if low[0].DishID != atThreshold.ID || low[1].DishID != aboveThreshold.ID {
		t.Fatalf("expected stock ascending order, got %+v", low)
	}

	if _, err := svc.GetLowStockDishes(intPtr(-1)); !models.IsValidation(err) {
		t.Fatalf("expected validation error for negative threshold, got %v", err)
	}
}

func TestGetOutOfStockDishes(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()

	empty := seedDishWithCategory(t, stack, "Empty", 0)
	seedDishWithCategory(t, stack, "Stocked", 9)

	out, err := svc.GetOutOfStockDishes()
	if err != nil {
		t.Fatalf("GetOutOfStockDishes: %v", err)
	}
	if len(out) != 1 || out[0].DishID != empty.ID {
		t.Fatalf("expected only the empty dish, got %+v", out)
	}
	if out[0].DishName != "Empty" {
		t.Fatalf("expected enriched dish name, got %q", out[0].DishName)
	}
}

func TestBuildInventorySummary(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	soon := now.Add(48 * time.Hour)
	far := now.Add(240 * time.Hour)

	records := []models.InventoryRecord{
		{DishID: "dish_1", Stock: 0, AlertThreshold: 5, Cost: 3.00},
		{DishID: "dish_2", Stock: 4, AlertThreshold: 5, Cost: 2.50, ExpiryDate: &soon},
		{DishID: "dish_3", Stock: 20, AlertThreshold: 5, Cost: 1.00, ExpiryDate: &far},
	}

	summary := buildInventorySummary(records, now)

	if summary.TotalItems != 3 {
		t.Fatalf("expected 3 items, got %d", summary.TotalItems)
	}
	if summary.TotalStock != 24 {
		t.Fatalf("expected total stock 24, got %d", summary.TotalStock)
	}
	// dish_1 is both low and out; the counts are independent.
	if summary.LowStockCount != 2 {
		t.Fatalf("expected low stock count 2, got %d", summary.LowStockCount)
	}
	if summary.OutOfStockCount != 1 {
		t.Fatalf("expected out of stock count 1, got %d", summary.OutOfStockCount)
	}
	if summary.TotalStockValue != 30.00 {
		t.Fatalf("expected stock value 30.00, got %v", summary.TotalStockValue)
	}
	if summary.AverageStock != 8.00 {
		t.Fatalf("expected average stock 8.00, got %v", summary.AverageStock)
	}
	if summary.ExpiringSoonCount != 1 {
		t.Fatalf("expected 1 record expiring soon, got %d", summary.ExpiringSoonCount)
	}
}

func TestGetExpiringItemsWindow(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()

	tomorrow := seedDishWithCategory(t, stack, "Tomorrow", 10)
	expired := seedDishWithCategory(t, stack, "Expired", 10)
	nextWeek := seedDishWithCategory(t, stack, "Next Week", 10)

	set := func(dishID string, expiry time.Time) {
		t.Helper()
		if _, err := svc.UpdateStock(dishID, &UpdateStockRequest{Stock: intPtr(10), ExpiryDate: &expiry}); err != nil {
			t.Fatalf("UpdateStock %s: %v", dishID, err)
		}
	}
	set(tomorrow.ID, time.Now().Add(24*time.Hour))
	set(expired.ID, time.Now().Add(-24*time.Hour))
	set(nextWeek.ID, time.Now().Add(7*24*time.Hour))

	items, err := svc.GetExpiringItems(2)
	if err != nil {
		t.Fatalf("GetExpiringItems: %v", err)
	}
	if len(items) != 1 || items[0].DishID != tomorrow.ID {
		t.Fatalf("expected only the dish expiring tomorrow, got %+v", items)
	}

	if _, err := svc.GetExpiringItems(0); !models.IsValidation(err) {
		t.Fatalf("expected validation error for days=0, got %v", err)
	}
	if _, err := svc.GetExpiringItems(366); !models.IsValidation(err) {
		t.Fatalf("expected validation error for days=366, got %v", err)
	}
}

func TestSynchronizeInventory(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()

	// A dish inserted below the menu service has no inventory record yet.
	orphanDish := &models.Dish{
		ID:         "dish_7",
		CategoryID: "cat_1",
		Name:       "Orphan",
		Price:      8.00,
		Status:     models.DishStatusOn,
		Stock:      11,
	}
	if err := stack.dishRepo.Insert(orphanDish); err != nil {
		t.Fatalf("Insert dish: %v", err)
	}

	// A drifted record disagrees with its dish about stock.
	drifted := seedDishWithCategory(t, stack, "Drifted", 10)
	if err := stack.inventoryRepo.Upsert(&models.InventoryRecord{
		DishID:         drifted.ID,
		Stock:          3,
		AlertThreshold: 5,
		LastUpdated:    time.Now(),
	}); err != nil {
		t.Fatalf("Upsert drifted record: %v", err)
	}

	result, err := svc.SynchronizeInventory()
	if err != nil {
		t.Fatalf("SynchronizeInventory: %v", err)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("expected 1 created / 1 updated, got %d/%d", result.Created, result.Updated)
	}

	record, err := stack.inventoryRepo.GetByDishID("dish_7")
	if err != nil {
		t.Fatalf("expected record created for orphan dish: %v", err)
	}
	if record.Stock != 11 || record.AlertThreshold != defaultAlertThreshold {
		t.Fatalf("unexpected created record: %+v", record)
	}

	record, err = stack.inventoryRepo.GetByDishID(drifted.ID)
	if err != nil {
		t.Fatalf("GetByDishID drifted: %v", err)
	}
	if record.Stock != 10 {
		t.Fatalf("expected drifted record overwritten to 10, got %d", record.Stock)
	}

	// Second run over the reconciled set does nothing.
	result, err = svc.SynchronizeInventory()
	if err != nil {
		t.Fatalf("SynchronizeInventory second run: %v", err)
	}
	if result.Created != 0 || result.Updated != 0 {
		t.Fatalf("expected idempotent second run, got %d created / %d updated", result.Created, result.Updated)
	}
}

func TestBatchUpdateStockPartialSuccess(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 5)

	response, err := svc.BatchUpdateStock(&BatchStockUpdateRequest{
		Items: []BatchStockEntry{
			{DishID: dish.ID, Stock: intPtr(30)},
			{DishID: "", Stock: intPtr(5)},
			{DishID: "dish_404", Stock: intPtr(5)},
			{DishID: dish.ID}, // no stock value
		},
	})
	if err != nil {
		t.Fatalf("BatchUpdateStock: %v", err)
	}
	if response.Requested != 4 || response.Succeeded != 1 {
		t.Fatalf("expected 4 requested / 1 succeeded, got %d/%d", response.Requested, response.Succeeded)
	}
	if response.Items[0].Stock != 30 {
		t.Fatalf("expected stock 30 on successful item, got %d", response.Items[0].Stock)
	}

	if _, err := svc.BatchUpdateStock(&BatchStockUpdateRequest{}); !models.IsValidation(err) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}
}

func TestGetInventorySupplierFilter(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 5)

	if _, err := svc.UpdateStock(dish.ID, &UpdateStockRequest{Stock: intPtr(5), Supplier: strPtr("Fresh Farms")}); err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}

	items, err := svc.GetInventory(InventoryFilter{Supplier: "fresh farms"}, SortOption{})
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if len(items) != 1 || items[0].DishID != dish.ID {
		t.Fatalf("expected case-insensitive supplier match, got %+v", items)
	}

	items, err = svc.GetInventory(InventoryFilter{Supplier: "Metro"}, SortOption{})
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no matches for other supplier, got %d", len(items))
	}
}
