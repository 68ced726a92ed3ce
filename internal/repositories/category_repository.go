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

const categoriesCollection = "categories"

type CategoryRepositoryInterface interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	Insert(category *models.Category) error
	Update(category *models.Category) error
	ReplaceAll(categories []models.Category) error
}

// CategoryRepository persists categories as one JSON collection file.
// Access is serialized by a single RWMutex: one writer per collection.
type CategoryRepository struct {
	storage *database.Storage
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewCategoryRepository(storage *database.Storage, log *logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		storage: storage,
		logger:  log.WithComponent("category_repository"),
	}
}

// GetAll retrieves all categories
func (r *CategoryRepository) GetAll() ([]models.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.load()
}

// GetByID retrieves a single category by ID
func (r *CategoryRepository) GetByID(id string) (*models.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	categories, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range categories {
		if categories[i].ID == id {
			category := categories[i]
			return &category, nil
		}
	}

	return nil, models.NewNotFoundError("category", id)
}

// Insert adds a new category
func (r *CategoryRepository) Insert(category *models.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateCategory(category); err != nil {
		r.logger.Error("Failed to validate category", "error", err)
		return err
	}

	categories, err := r.load()
	if err != nil {
		return err
	}

	for i := range categories {
		if categories[i].ID == category.ID {
			r.logger.Warn("Attempted to insert duplicate category", "category_id", category.ID)
			return models.NewConflictError(fmt.Sprintf("category with id %s already exists", category.ID))
		}
	}

	categories = append(categories, *category)
	if err := r.save(categories); err != nil {
		r.logger.Error("Failed to save categories after insert", "error", err)
		return err
	}

	r.logger.Info("Inserted category", "category_id", category.ID, "name", category.Name)
	return nil
}

// Update replaces an existing category
func (r *CategoryRepository) Update(category *models.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.validateCategory(category); err != nil {
		r.logger.Error("Failed to validate category", "error", err)
		return err
	}

	categories, err := r.load()
	if err != nil {
		return err
	}

	for i := range categories {
		if categories[i].ID == category.ID {
			categories[i] = *category
			if err := r.save(categories); err != nil {
				r.logger.Error("Failed to save categories after update", "error", err, "category_id", category.ID)
				return err
			}
			r.logger.Info("Updated category", "category_id", category.ID)
			return nil
		}
	}

	r.logger.Warn("Attempted to update non-existent category", "category_id", category.ID)
	return models.NewNotFoundError("category", category.ID)
}

// ReplaceAll overwrites the whole collection
func (r *CategoryRepository) ReplaceAll(categories []models.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.save(categories); err != nil {
		r.logger.Error("Failed to replace categories collection", "error", err)
		return err
	}

	r.logger.Info("Replaced categories collection", "count", len(categories))
	return nil
}

// load reads the whole collection from disk. A file that fails to parse
// is backed up and treated as empty rather than wedging the service.
func (r *CategoryRepository) load() ([]models.Category, error) {
	data, err := r.storage.ReadCollection(categoriesCollection)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []models.Category{}, nil
	}

	var categories []models.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		backupPath, backupErr := r.storage.BackupCollection(categoriesCollection)
		if backupErr != nil {
			r.logger.Error("Failed to back up unreadable categories file", "error", backupErr)
		}
		r.logger.Error("Categories file is not valid JSON, starting from empty collection",
			"error", err, "backup", backupPath)
		return []models.Category{}, nil
	}

	return categories, nil
}

// save writes the whole collection to disk atomically
func (r *CategoryRepository) save(categories []models.Category) error {
	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal category data: %v", err)
	}

	return r.storage.WriteCollection(categoriesCollection, data)
}

// validateCategory validates category data
func (r *CategoryRepository) validateCategory(category *models.Category) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}
	if category.ID == "" {
		return errors.New("category ID cannot be empty")
	}
	if category.Name == "" {
		return errors.New("category name cannot be empty")
	}
	if category.SortOrder < 0 {
		return errors.New("category sort order cannot be negative")
	}

	return nil
}
