package service

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"merchantops/internal/repositories"
	"merchantops/models"
	"merchantops/pkg/logger"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sortOrder" validate:"omitempty,gte=0"`
	IsActive    *bool  `json:"isActive"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sortOrder" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"isActive"`
}

type CategoryReorderRequest struct {
	Categories []models.CategoryReorderEntry `json:"categories" validate:"required,min=1"`
}

type CreateDishRequest struct {
	Name            string   `json:"name" validate:"required"`
	CategoryID      string   `json:"categoryId" validate:"required,category_id"`
	Description     string   `json:"description"`
	Price           float64  `json:"price" validate:"required,gt=0"`
	Status          *string  `json:"status" validate:"omitempty,oneof=on off"`
	Stock           *int     `json:"stock" validate:"omitempty,gte=0"`
	Ingredients     []string `json:"ingredients"`
	Allergens       []string `json:"allergens"`
	IsSpicy         *bool    `json:"isSpicy"`
	IsVegetarian    *bool    `json:"isVegetarian"`
	PreparationTime *int     `json:"preparationTime" validate:"omitempty,gte=0"`
	Calories        *int     `json:"calories" validate:"omitempty,gte=0"`
}

type UpdateDishRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1"`
	CategoryID      *string  `json:"categoryId" validate:"omitempty,category_id"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	Status          *string  `json:"status" validate:"omitempty,oneof=on off"`
	Stock           *int     `json:"stock" validate:"omitempty,gte=0"`
	Ingredients     []string `json:"ingredients"`
	Allergens       []string `json:"allergens"`
	IsSpicy         *bool    `json:"isSpicy"`
	IsVegetarian    *bool    `json:"isVegetarian"`
	PreparationTime *int     `json:"preparationTime" validate:"omitempty,gte=0"`
	Calories        *int     `json:"calories" validate:"omitempty,gte=0"`
}

type SetDishStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=on off"`
}

type BatchDishStatusRequest struct {
	DishIDs []string `json:"dishIds" validate:"required,min=1"`
	Status  string   `json:"status" validate:"required,oneof=on off"`
}

type ImageUploadMeta struct {
	FileName string `json:"fileName"`
}

type CategoryFilter struct {
	IsActive *bool
}

type DishFilter struct {
	CategoryID   string
	Status       string
	IsVegetarian *bool
	IsSpicy      *bool
}

type MenuServiceInterface interface {
	ListCategories(filter CategoryFilter, sortOpt SortOption) ([]models.Category, error)
	CreateCategory(req *CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(id string, req *UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(id string) (*models.Category, error)
	ReorderCategories(req *CategoryReorderRequest) ([]models.Category, error)
	ListDishes(filter DishFilter, sortOpt SortOption) ([]models.Dish, error)
	GetDish(id string) (*models.Dish, error)
	CreateDish(req *CreateDishRequest) (*models.Dish, error)
	UpdateDish(id string, req *UpdateDishRequest) (*models.Dish, error)
	DeleteDish(id string) (*models.Dish, error)
	SetDishStatus(id string, req *SetDishStatusRequest) (*models.Dish, error)
	BatchSetDishStatus(req *BatchDishStatusRequest) (*models.BatchDishStatusResponse, error)
	UploadDishImage(dishID string, meta ImageUploadMeta) (*models.Dish, error)
}

type MenuService struct {
	categoryRepo  repositories.CategoryRepositoryInterface
	dishRepo      repositories.DishRepositoryInterface
	inventoryRepo repositories.InventoryRepositoryInterface
	logger        *logger.Logger
}

func NewMenuService(
	categoryRepo repositories.CategoryRepositoryInterface,
	dishRepo repositories.DishRepositoryInterface,
	inventoryRepo repositories.InventoryRepositoryInterface,
	log *logger.Logger,
) *MenuService {
	return &MenuService{
		categoryRepo:  categoryRepo,
		dishRepo:      dishRepo,
		inventoryRepo: inventoryRepo,
		logger:        log.WithComponent("menu_service"),
	}
}

// ListCategories returns categories filtered by active state and sorted
// by sortOrder, name or createdAt.
func (s *MenuService) ListCategories(filter CategoryFilter, sortOpt SortOption) ([]models.Category, error) {
	field, descending, err := resolveSort(sortOpt, "sortOrder", "asc", []string{"sortOrder", "name", "createdAt"})
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, err
	}

	if filter.IsActive != nil {
		filtered := make([]models.Category, 0, len(categories))
		for _, category := range categories {
			if category.IsActive == *filter.IsActive {
				filtered = append(filtered, category)
			}
		}
		categories = filtered
	}

	sort.SliceStable(categories, func(i, j int) bool {
		a, b := categories[i], categories[j]
		if descending {
			a, b = b, a
		}
		switch field {
		case "name":
			return a.Name < b.Name
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.SortOrder < b.SortOrder
		}
	})

	return categories, nil
}

// CreateCategory creates a new category with the smallest unused cat_<n> id
func (s *MenuService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load categories", "error", err)
		return nil, err
	}

	ids := make([]string, 0, len(categories))
	for i := range categories {
		ids = append(ids, categories[i].ID)
	}

	now := time.Now()
	category := &models.Category{
		ID:          nextSequentialID("cat_", ids),
		Name:        name,
		Description: req.Description,
		SortOrder:   len(categories) + 1,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.Insert(category); err != nil {
		s.logger.Error("Failed to create category", "error", err)
		return nil, err
	}

	s.logger.Info("Created category", "category_id", category.ID, "name", category.Name)
	return category, nil
}

// UpdateCategory merges non-nil patch fields onto an existing category
func (s *MenuService) UpdateCategory(id string, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.NewValidationError("name", "cannot be empty")
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(category); err != nil {
		s.logger.Error("Failed to update category", "error", err, "category_id", id)
		return nil, err
	}

	s.logger.Info("Updated category", "category_id", id)
	return category, nil
}

// DeleteCategory deactivates a category. Any dish still assigned to the
// category blocks the delete, whatever the dish's status.
func (s *MenuService) DeleteCategory(id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load dishes for category delete check", "error", err)
		return nil, err
	}
	for i := range dishes {
		if dishes[i].CategoryID == id {
			s.logger.Warn("Refused to delete category with assigned dishes", "category_id", id, "dish_id", dishes[i].ID)
			return nil, models.NewConflictError(fmt.Sprintf("category %s still has dishes assigned", id))
		}
	}

	category.IsActive = false
	category.UpdatedAt = time.Now()
	if err := s.categoryRepo.Update(category); err != nil {
		s.logger.Error("Failed to deactivate category", "error", err, "category_id", id)
		return nil, err
	}

	s.logger.Info("Deactivated category", "category_id", id)
	return category, nil
}

// ReorderCategories applies the given sort orders, skipping entries whose
// id does not resolve, and returns the collection sorted by the result.
func (s *MenuService) ReorderCategories(req *CategoryReorderRequest) ([]models.Category, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load categories for reorder", "error", err)
		return nil, err
	}

	index := make(map[string]int, len(categories))
	for i := range categories {
		index[categories[i].ID] = i
	}

	now := time.Now()
	applied := 0
	for _, entry := range req.Categories {
		i, ok := index[entry.ID]
		if !ok {
			s.logger.Warn("Skipping reorder entry for unknown category", "category_id", entry.ID)
			continue
		}
		categories[i].SortOrder = entry.SortOrder
		categories[i].UpdatedAt = now
		applied++
	}

	if err := s.categoryRepo.ReplaceAll(categories); err != nil {
		s.logger.Error("Failed to persist category order", "error", err)
		return nil, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})

	s.logger.Info("Reordered categories", "requested", len(req.Categories), "applied", applied)
	return categories, nil
}

// ListDishes returns dishes matching the filter, sorted by name, price,
// stock or createdAt.
func (s *MenuService) ListDishes(filter DishFilter, sortOpt SortOption) ([]models.Dish, error) {
	field, descending, err := resolveSort(sortOpt, "name", "asc", []string{"name", "price", "stock", "createdAt"})
	if err != nil {
		return nil, err
	}

	if filter.Status != "" && !models.DishStatus(filter.Status).Valid() {
		return nil, models.NewValidationError("status", "must be one of: on, off")
	}

	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to list dishes", "error", err)
		return nil, err
	}

	filtered := make([]models.Dish, 0, len(dishes))
	for _, dish := range dishes {
		if filter.CategoryID != "" && dish.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && dish.Status != models.DishStatus(filter.Status) {
			continue
		}
		if filter.IsVegetarian != nil && dish.IsVegetarian != *filter.IsVegetarian {
			continue
		}
		if filter.IsSpicy != nil && dish.IsSpicy != *filter.IsSpicy {
			continue
		}
		filtered = append(filtered, dish)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if descending {
			a, b = b, a
		}
		switch field {
		case "price":
			return a.Price < b.Price
		case "stock":
			return a.Stock < b.Stock
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Name < b.Name
		}
	})

	return filtered, nil
}

// GetDish retrieves a single dish by ID
func (s *MenuService) GetDish(id string) (*models.Dish, error) {
	return s.dishRepo.GetByID(id)
}

// CreateDish creates a dish and lazily seeds its inventory record. The
// referenced category must exist; a dangling reference is a validation
// failure rather than a lookup miss.
func (s *MenuService) CreateDish(req *CreateDishRequest) (*models.Dish, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}

	if _, err := s.categoryRepo.GetByID(req.CategoryID); err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewValidationError("", "Category not found")
		}
		s.logger.Error("Failed to resolve category for new dish", "error", err, "category_id", req.CategoryID)
		return nil, err
	}

	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load dishes", "error", err)
		return nil, err
	}
	ids := make([]string, 0, len(dishes))
	for i := range dishes {
		ids = append(ids, dishes[i].ID)
	}

	now := time.Now()
	dish := &models.Dish{
		ID:          nextSequentialID("dish_", ids),
		CategoryID:  req.CategoryID,
		Name:        name,
		Description: req.Description,
		Price:       round2(req.Price),
		Status:      models.DishStatusOn,
		Ingredients: []string{},
		Allergens:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Status != nil {
		dish.Status = models.DishStatus(*req.Status)
	}
	if req.Stock != nil {
		dish.Stock = *req.Stock
	}
	if len(req.Ingredients) > 0 {
		dish.Ingredients = req.Ingredients
	}
	if len(req.Allergens) > 0 {
		dish.Allergens = req.Allergens
	}
	if req.IsSpicy != nil {
		dish.IsSpicy = *req.IsSpicy
	}
	if req.IsVegetarian != nil {
		dish.IsVegetarian = *req.IsVegetarian
	}
	if req.PreparationTime != nil {
		dish.PreparationTime = *req.PreparationTime
	}
	if req.Calories != nil {
		dish.Calories = *req.Calories
	}

	if err := s.dishRepo.Insert(dish); err != nil {
		s.logger.Error("Failed to create dish", "error", err)
		return nil, err
	}

	// The dish is already committed; a failed inventory seed must not
	// undo it, so the error is logged and swallowed.
	record := &models.InventoryRecord{
		DishID:         dish.ID,
		Stock:          dish.Stock,
		AlertThreshold: defaultAlertThreshold,
		LastUpdated:    now,
	}
	if err := s.inventoryRepo.Upsert(record); err != nil {
		s.logger.Warn("Failed to create inventory record for new dish", "error", err, "dish_id", dish.ID)
	}

	s.logger.Info("Created dish", "dish_id", dish.ID, "name", dish.Name, "category_id", dish.CategoryID)
	return dish, nil
}

// UpdateDish merges non-nil patch fields onto an existing dish
func (s *MenuService) UpdateDish(id string, req *UpdateDishRequest) (*models.Dish, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	dish, err := s.dishRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(*req.CategoryID); err != nil {
			if models.IsNotFound(err) {
				return nil, models.NewValidationError("", "Category not found")
			}
			s.logger.Error("Failed to resolve category for dish update", "error", err, "category_id", *req.CategoryID)
			return nil, err
		}
		dish.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.NewValidationError("name", "cannot be empty")
		}
		dish.Name = name
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.Price != nil {
		dish.Price = round2(*req.Price)
	}
	if req.Status != nil {
		dish.Status = models.DishStatus(*req.Status)
	}
	if req.Stock != nil {
		dish.Stock = *req.Stock
	}
	if req.Ingredients != nil {
		dish.Ingredients = req.Ingredients
	}
	if req.Allergens != nil {
		dish.Allergens = req.Allergens
	}
	if req.IsSpicy != nil {
		dish.IsSpicy = *req.IsSpicy
	}
	if req.IsVegetarian != nil {
		dish.IsVegetarian = *req.IsVegetarian
	}
	if req.PreparationTime != nil {
		dish.PreparationTime = *req.PreparationTime
	}
	if req.Calories != nil {
		dish.Calories = *req.Calories
	}
	dish.UpdatedAt = time.Now()

	if err := s.dishRepo.Update(dish); err != nil {
		s.logger.Error("Failed to update dish", "error", err, "dish_id", id)
		return nil, err
	}

	s.logger.Info("Updated dish", "dish_id", id)
	return dish, nil
}

// DeleteDish turns the dish off instead of removing it, keeping stats
// references resolvable.
func (s *MenuService) DeleteDish(id string) (*models.Dish, error) {
	dish, err := s.dishRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	dish.Status = models.DishStatusOff
	dish.UpdatedAt = time.Now()

	if err := s.dishRepo.Update(dish); err != nil {
		s.logger.Error("Failed to deactivate dish", "error", err, "dish_id", id)
		return nil, err
	}

	s.logger.Info("Deactivated dish", "dish_id", id)
	return dish, nil
}

// SetDishStatus switches a dish between on and off
func (s *MenuService) SetDishStatus(id string, req *SetDishStatusRequest) (*models.Dish, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	dish, err := s.dishRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	dish.Status = models.DishStatus(req.Status)
	dish.UpdatedAt = time.Now()

	if err := s.dishRepo.Update(dish); err != nil {
		s.logger.Error("Failed to set dish status", "error", err, "dish_id", id)
		return nil, err
	}

	s.logger.Info("Set dish status", "dish_id", id, "status", req.Status)
	return dish, nil
}

// BatchSetDishStatus applies one status to many dishes. Ids that do not
// resolve are skipped; the response reports the successful subset.
func (s *MenuService) BatchSetDishStatus(req *BatchDishStatusRequest) (*models.BatchDishStatusResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	status := models.DishStatus(req.Status)
	updated := make([]models.Dish, 0, len(req.DishIDs))

	for _, dishID := range req.DishIDs {
		dish, err := s.dishRepo.GetByID(dishID)
		if err != nil {
			s.logger.Warn("Skipping batch status update for unresolved dish", "dish_id", dishID, "error", err)
			continue
		}

		dish.Status = status
		dish.UpdatedAt = time.Now()
		if err := s.dishRepo.Update(dish); err != nil {
			s.logger.Warn("Failed to update dish status in batch", "dish_id", dishID, "error", err)
			continue
		}
		updated = append(updated, *dish)
	}

	s.logger.Info("Batch dish status update", "requested", len(req.DishIDs), "succeeded", len(updated), "status", req.Status)
	return &models.BatchDishStatusResponse{
		Requested: len(req.DishIDs),
		Succeeded: len(updated),
		Dishes:    updated,
	}, nil
}

// UploadDishImage synthesizes the public URL for a dish image and stores
// it on the dish. There is no object storage behind the URL.
func (s *MenuService) UploadDishImage(dishID string, meta ImageUploadMeta) (*models.Dish, error) {
	dish, err := s.dishRepo.GetByID(dishID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(meta.FileName))
	if ext == "" {
		ext = ".jpg"
	}

	dish.ImageURL = fmt.Sprintf("/uploads/dishes/%s_%d%s", dishID, time.Now().Unix(), ext)
	dish.UpdatedAt = time.Now()

	if err := s.dishRepo.Update(dish); err != nil {
		s.logger.Error("Failed to save dish image URL", "error", err, "dish_id", dishID)
		return nil, err
	}

	s.logger.Info("Attached image to dish", "dish_id", dishID, "image_url", dish.ImageURL)
	return dish, nil
}

// nextSequentialID returns the smallest unused id of the form
// <prefix><n> with n starting at 1. Gaps left by earlier data are
// reused so external ids stay short.
func nextSequentialID(prefix string, existing []string) string {
	used := make(map[int]bool, len(existing))
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			continue
		}
		used[n] = true
	}

	n := 1
	for used[n] {
		n++
	}
	return prefix + strconv.Itoa(n)
}
