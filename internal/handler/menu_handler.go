package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"merchantops/internal/service"
	"merchantops/pkg/logger"
)

// MenuHandler struct
type MenuHandler struct {
	responder
	menuService service.MenuServiceInterface
}

// NewMenuHandler creates a new MenuHandler with the given service and logger
func NewMenuHandler(menuService service.MenuServiceInterface, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		responder:   responder{logger: log.WithComponent("menu_handler")},
		menuService: menuService,
	}
}

// HandleCategories handles GET and POST /api/v1/categories
func (h *MenuHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	switch r.Method {
	case http.MethodGet:
		h.listCategories(w, r, reqCtx)
	case http.MethodPost:
		h.createCategory(w, r, reqCtx)
	default:
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleCategoryRoutes handles /api/v1/categories/{id} and /api/v1/categories/reorder
func (h *MenuHandler) HandleCategoryRoutes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	parts := pathParts(r, "/api/v1/categories")
	if len(parts) != 1 {
		h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
		return
	}

	if parts[0] == "reorder" {
		if r.Method != http.MethodPost {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.reorderCategories(w, r, reqCtx)
		return
	}

	id := parts[0]
	if err := validateCategoryID(id); err != nil {
		h.logger.Warn("Invalid category ID", "id", id, "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid category ID")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateCategory(w, r, reqCtx, id)
	case http.MethodDelete:
		h.deleteCategory(w, reqCtx, id)
	default:
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleDishes handles GET and POST /api/v1/dishes
func (h *MenuHandler) HandleDishes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	switch r.Method {
	case http.MethodGet:
		h.listDishes(w, r, reqCtx)
	case http.MethodPost:
		h.createDish(w, r, reqCtx)
	default:
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleDishRoutes handles /api/v1/dishes/{id}, its status and image
// subroutes and /api/v1/dishes/batch-status
func (h *MenuHandler) HandleDishRoutes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	parts := pathParts(r, "/api/v1/dishes")
	if len(parts) == 1 && parts[0] == "batch-status" {
		if r.Method != http.MethodPost {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.batchSetDishStatus(w, r, reqCtx)
		return
	}

	if len(parts) == 0 || len(parts) > 2 {
		h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
		return
	}

	id := parts[0]
	if err := validateDishID(id); err != nil {
		h.logger.Warn("Invalid dish ID", "id", id, "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid dish ID")
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "status":
			if r.Method != http.MethodPut {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.setDishStatus(w, r, reqCtx, id)
		case "image":
			if r.Method != http.MethodPost {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.uploadDishImage(w, r, reqCtx, id)
		default:
			h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getDish(w, reqCtx, id)
	case http.MethodPut:
		h.updateDish(w, r, reqCtx, id)
	case http.MethodDelete:
		h.deleteDish(w, reqCtx, id)
	default:
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *MenuHandler) listCategories(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	query := r.URL.Query()

	filter := service.CategoryFilter{}
	if raw := query.Get("isActive"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "isActive must be true or false")
			return
		}
		filter.IsActive = &isActive
	}

	categories, err := h.menuService.ListCategories(filter, sortOptionFromQuery(query))
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, categories)
}

func (h *MenuHandler) createCategory(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var createReq service.CreateCategoryRequest
	if err := h.parseRequestBody(r, &createReq); err != nil {
		h.logger.Warn("Invalid request body for create category", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.menuService.CreateCategory(&createReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusCreated, category)
}

func (h *MenuHandler) updateCategory(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, id string) {
	var updateReq service.UpdateCategoryRequest
	if err := h.parseRequestBody(r, &updateReq); err != nil {
		h.logger.Warn("Invalid request body for update category", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.menuService.UpdateCategory(id, &updateReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, category)
}

func (h *MenuHandler) deleteCategory(w http.ResponseWriter, reqCtx *logger.RequestContext, id string) {
	category, err := h.menuService.DeleteCategory(id)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, category)
}

func (h *MenuHandler) reorderCategories(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var reorderReq service.CategoryReorderRequest
	if err := h.parseRequestBody(r, &reorderReq); err != nil {
		h.logger.Warn("Invalid request body for reorder categories", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	categories, err := h.menuService.ReorderCategories(&reorderReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, categories)
}

func (h *MenuHandler) listDishes(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	query := r.URL.Query()

	filter := service.DishFilter{
		CategoryID: query.Get("categoryId"),
		Status:     query.Get("status"),
	}
	if raw := query.Get("isVegetarian"); raw != "" {
		isVegetarian, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "isVegetarian must be true or false")
			return
		}
		filter.IsVegetarian = &isVegetarian
	}
	if raw := query.Get("isSpicy"); raw != "" {
		isSpicy, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "isSpicy must be true or false")
			return
		}
		filter.IsSpicy = &isSpicy
	}

	dishes, err := h.menuService.ListDishes(filter, sortOptionFromQuery(query))
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dishes)
}

func (h *MenuHandler) createDish(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var createReq service.CreateDishRequest
	if err := h.parseRequestBody(r, &createReq); err != nil {
		h.logger.Warn("Invalid request body for create dish", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	dish, err := h.menuService.CreateDish(&createReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusCreated, dish)
}

func (h *MenuHandler) getDish(w http.ResponseWriter, reqCtx *logger.RequestContext, id string) {
	dish, err := h.menuService.GetDish(id)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dish)
}

func (h *MenuHandler) updateDish(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, id string) {
	var updateReq service.UpdateDishRequest
	if err := h.parseRequestBody(r, &updateReq); err != nil {
		h.logger.Warn("Invalid request body for update dish", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	dish, err := h.menuService.UpdateDish(id, &updateReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dish)
}

func (h *MenuHandler) deleteDish(w http.ResponseWriter, reqCtx *logger.RequestContext, id string) {
	dish, err := h.menuService.DeleteDish(id)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dish)
}

func (h *MenuHandler) setDishStatus(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, id string) {
	var statusReq service.SetDishStatusRequest
	if err := h.parseRequestBody(r, &statusReq); err != nil {
		h.logger.Warn("Invalid request body for set dish status", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	dish, err := h.menuService.SetDishStatus(id, &statusReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dish)
}

func (h *MenuHandler) batchSetDishStatus(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var batchReq service.BatchDishStatusRequest
	if err := h.parseRequestBody(r, &batchReq); err != nil {
		h.logger.Warn("Invalid request body for batch dish status", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.menuService.BatchSetDishStatus(&batchReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.logger.Info("Batch dish status completed",
		"requested", response.Requested,
		"succeeded", response.Succeeded)

	h.respondJSON(w, reqCtx, http.StatusOK, response)
}

func (h *MenuHandler) uploadDishImage(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, id string) {
	// An empty body is allowed; the upload falls back to the default
	// file extension.
	var meta service.ImageUploadMeta
	if err := h.parseRequestBody(r, &meta); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid request body for dish image upload", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	dish, err := h.menuService.UploadDishImage(id, meta)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, dish)
}
