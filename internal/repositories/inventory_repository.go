package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"merchantops/models"
	"merchantops/pkg/database"
	"merchantops/pkg/logger"
)

const inventoryCollection = "inventory"

type InventoryRepositoryInterface interface {
	GetAll() ([]models.InventoryRecord, error)
	GetByDishID(dishID string) (*models.InventoryRecord, error)
	Upsert(record *models.InventoryRecord) error
	AdjustStock(dishID string, delta int, reason string) (*models.InventoryRecord, error)
}

type InventoryRepository struct {
	storage *database.Storage
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewInventoryRepository(storage *database.Storage, log *logger.Logger) *InventoryRepository {
	return &InventoryRepository{
		storage: storage,
		logger:  log.WithComponent("inventory_repository"),
	}
}

// GetAll retrieves all inventory records
func (r *InventoryRepository) GetAll() ([]models.InventoryRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.load()
}

// GetByDishID retrieves the inventory record for a dish
func (r *InventoryRepository) GetByDishID(dishID string) (*models.InventoryRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].DishID == dishID {
			record := records[i]
			return &record, nil
		}
	}

	return nil, models.NewNotFoundError("inventory record", dishID)
}

// Upsert inserts the record or replaces the existing one for the same dish
func (r *InventoryRepository) Upsert(record *models.InventoryRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateRecord(record); err != nil {
		r.logger.Error("Failed to validate inventory record", "error", err)
		return err
	}

	records, err := r.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].DishID == record.DishID {
			records[i] = *record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, *record)
	}

	if err := r.save(records); err != nil {
		r.logger.Error("Failed to save inventory after upsert", "error", err, "dish_id", record.DishID)
		return err
	}

	r.logger.Info("Upserted inventory record", "dish_id", record.DishID, "stock", record.Stock)
	return nil
}

// AdjustStock applies a signed delta to the stored stock of a dish.
// The read, clamp and write happen under one lock so concurrent
// adjustments never lose updates. Stock never goes below zero.
func (r *InventoryRepository) AdjustStock(dishID string, delta int, reason string) (*models.InventoryRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].DishID != dishID {
			continue
		}

		newStock := records[i].Stock + delta
		if newStock < 0 {
			newStock = 0
		}

		now := time.Now()
		records[i].Stock = newStock
		records[i].LastAdjustment = &models.StockAdjustment{
			Delta:      delta,
			Reason:     reason,
			AdjustedAt: now,
		}
		records[i].LastUpdated = now

		if err := r.save(records); err != nil {
			r.logger.Error("Failed to save inventory after adjustment", "error", err, "dish_id", dishID)
			return nil, err
		}

		record := records[i]
		r.logger.Info("Adjusted stock", "dish_id", dishID, "delta", delta, "stock", record.Stock, "reason", reason)
		return &record, nil
	}

	r.logger.Warn("Attempted to adjust stock for dish without inventory record", "dish_id", dishID)
	return nil, models.NewNotFoundError("inventory record", dishID)
}

func (r *InventoryRepository) load() ([]models.InventoryRecord, error) {
	data, err := r.storage.ReadCollection(inventoryCollection)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []models.InventoryRecord{}, nil
	}

	var records []models.InventoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		backupPath, backupErr := r.storage.BackupCollection(inventoryCollection)
		if backupErr != nil {
			r.logger.Error("Failed to back up unreadable inventory file", "error", backupErr)
		}
		r.logger.Error("Inventory file is not valid JSON, starting from empty collection",
			"error", err, "backup", backupPath)
		return []models.InventoryRecord{}, nil
	}

	return records, nil
}

func (r *InventoryRepository) save(records []models.InventoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal inventory data: %v", err)
	}

	return r.storage.WriteCollection(inventoryCollection, data)
}

// validateRecord validates inventory record data
func (r *InventoryRepository) validateRecord(record *models.InventoryRecord) error {
	if record == nil {
		return errors.New("inventory record cannot be nil")
	}
	if record.DishID == "" {
		return errors.New("inventory record dish ID cannot be empty")
	}
	if record.Stock < 0 {
		return errors.New("inventory stock cannot be negative")
	}
	if record.AlertThreshold < 0 {
		return errors.New("inventory alert threshold cannot be negative")
	}
	if record.Cost < 0 {
		return errors.New("inventory cost cannot be negative")
	}

	return nil
}
