package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"merchantops/models"
	"merchantops/pkg/database"
	"merchantops/pkg/logger"
)

const dishesCollection = "dishes"

type DishRepositoryInterface interface {
	GetAll() ([]models.Dish, error)
	GetByID(id string) (*models.Dish, error)
	Insert(dish *models.Dish) error
	Update(dish *models.Dish) error
}

type DishRepository struct {
	storage *database.Storage
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewDishRepository(storage *database.Storage, log *logger.Logger) *DishRepository {
	return &DishRepository{
		storage: storage,
		logger:  log.WithComponent("dish_repository"),
	}
}

// GetAll retrieves all dishes
func (r *DishRepository) GetAll() ([]models.Dish, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.load()
}

// GetByID retrieves a single dish by ID
func (r *DishRepository) GetByID(id string) (*models.Dish, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	dishes, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range dishes {
		if dishes[i].ID == id {
			dish := dishes[i]
			return &dish, nil
		}
	}

	return nil, models.NewNotFoundError("dish", id)
}

// Insert adds a new dish
func (r *DishRepository) Insert(dish *models.Dish) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateDish(dish); err != nil {
		r.logger.Error("Failed to validate dish", "error", err)
		return err
	}

	dishes, err := r.load()
	if err != nil {
		return err
	}

	for i := range dishes {
		if dishes[i].ID == dish.ID {
			r.logger.Warn("Attempted to insert duplicate dish", "dish_id", dish.ID)
			return models.NewConflictError(fmt.Sprintf("dish with id %s already exists", dish.ID))
		}
	}

	dishes = append(dishes, *dish)
	if err := r.save(dishes); err != nil {
		r.logger.Error("Failed to save dishes after insert", "error", err)
		return err
	}

	r.logger.Info("Inserted dish", "dish_id", dish.ID, "name", dish.Name)
	return nil
}

// Update replaces an existing dish
func (r *DishRepository) Update(dish *models.Dish) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateDish(dish); err != nil {
		r.logger.Error("Failed to validate dish", "error", err)
		return err
	}

	dishes, err := r.load()
	if err != nil {
		return err
	}

	for i := range dishes {
		if dishes[i].ID == dish.ID {
			dishes[i] = *dish
			if err := r.save(dishes); err != nil {
				r.logger.Error("Failed to save dishes after update", "error", err, "dish_id", dish.ID)
				return err
			}
			r.logger.Info("Updated dish", "dish_id", dish.ID)
			return nil
		}
	}

	r.logger.Warn("Attempted to update non-existent dish", "dish_id", dish.ID)
	return models.NewNotFoundError("dish", dish.ID)
}

func (r *DishRepository) load() ([]models.Dish, error) {
	data, err := r.storage.ReadCollection(dishesCollection)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []models.Dish{}, nil
	}

	var dishes []models.Dish
	if err := json.Unmarshal(data, &dishes); err != nil {
		backupPath, backupErr := r.storage.BackupCollection(dishesCollection)
		if backupErr != nil {
			r.logger.Error("Failed to back up unreadable dishes file", "error", backupErr)
		}
		r.logger.Error("Dishes file is not valid JSON, starting from empty collection",
			"error", err, "backup", backupPath)
		return []models.Dish{}, nil
	}

	return dishes, nil
}

func (r *DishRepository) save(dishes []models.Dish) error {
	data, err := json.MarshalIndent(dishes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dish data: %v", err)
	}

	return r.storage.WriteCollection(dishesCollection, data)
}

// validateDish validates dish data
func (r *DishRepository) validateDish(dish *models.Dish) error {
	if dish == nil {
		return errors.New("dish cannot be nil")
	}
	if dish.ID == "" {
		return errors.New("dish ID cannot be empty")
	}
	if dish.Name == "" {
		return errors.New("dish name cannot be empty")
	}
	if dish.CategoryID == "" {
		return errors.New("dish category ID cannot be empty")
	}
	if dish.Price < 0 {
		return errors.New("dish price cannot be negative")
	}
	if dish.Stock < 0 {
		return errors.New("dish stock cannot be negative")
	}
	if !dish.Status.Valid() {
		return fmt.Errorf("invalid dish status: %s", dish.Status)
	}

	return nil
}
