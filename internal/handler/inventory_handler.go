package handler

import (
	"net/http"
	"strconv"

	"merchantops/internal/service"
	"merchantops/pkg/logger"
)

// InventoryHandler struct
type InventoryHandler struct {
	responder
	inventoryService service.InventoryServiceInterface
}

// NewInventoryHandler creates a new InventoryHandler with the given service and logger
func NewInventoryHandler(inventoryService service.InventoryServiceInterface, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		responder:        responder{logger: log.WithComponent("inventory_handler")},
		inventoryService: inventoryService,
	}
}

// HandleInventory handles GET /api/v1/inventory
func (h *InventoryHandler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.listInventory(w, r, reqCtx)
}

// HandleInventoryRoutes handles the subroutes under /api/v1/inventory/:
// summary, low-stock, out-of-stock, expiring, sync, batch and the
// per-dish stock, adjust and threshold operations.
func (h *InventoryHandler) HandleInventoryRoutes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	parts := pathParts(r, "/api/v1/inventory")

	if len(parts) == 1 {
		switch parts[0] {
		case "summary":
			if r.Method != http.MethodGet {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.getSummary(w, reqCtx)
		case "low-stock":
			if r.Method != http.MethodGet {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.getLowStock(w, r, reqCtx)
		case "out-of-stock":
			if r.Method != http.MethodGet {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.getOutOfStock(w, reqCtx)
		case "expiring":
			if r.Method != http.MethodGet {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.getExpiring(w, r, reqCtx)
		case "sync":
			if r.Method != http.MethodPost {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.synchronize(w, reqCtx)
		case "batch":
			if r.Method != http.MethodPost {
				h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			h.batchUpdateStock(w, r, reqCtx)
		default:
			h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
		}
		return
	}

	if len(parts) != 2 {
		h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
		return
	}

	dishID := parts[0]
	if err := validateDishID(dishID); err != nil {
		h.logger.Warn("Invalid dish ID", "id", dishID, "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid dish ID")
		return
	}

	switch parts[1] {
	case "stock":
		if r.Method != http.MethodPut {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.updateStock(w, r, reqCtx, dishID)
	case "adjust":
		if r.Method != http.MethodPost {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.adjustStock(w, r, reqCtx, dishID)
	case "threshold":
		if r.Method != http.MethodPut {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.updateThreshold(w, r, reqCtx, dishID)
	default:
		h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
	}
}

func (h *InventoryHandler) listInventory(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	query := r.URL.Query()

	filter := service.InventoryFilter{Supplier: query.Get("supplier")}
	if raw := query.Get("lowStock"); raw != "" {
		lowStock, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "lowStock must be true or false")
			return
		}
		filter.LowStock = lowStock
	}
	if raw := query.Get("outOfStock"); raw != "" {
		outOfStock, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "outOfStock must be true or false")
			return
		}
		filter.OutOfStock = outOfStock
	}

	items, err := h.inventoryService.GetInventory(filter, sortOptionFromQuery(query))
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, items)
}

func (h *InventoryHandler) getSummary(w http.ResponseWriter, reqCtx *logger.RequestContext) {
	summary, err := h.inventoryService.GetInventorySummary()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, summary)
}

func (h *InventoryHandler) getLowStock(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var customThreshold *int
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, reqCtx, http.StatusBadRequest, "threshold must be an integer")
			return
		}
		customThreshold = &threshold
	}

	items, err := h.inventoryService.GetLowStockDishes(customThreshold)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, items)
}

func (h *InventoryHandler) getOutOfStock(w http.ResponseWriter, reqCtx *logger.RequestContext) {
	items, err := h.inventoryService.GetOutOfStockDishes()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, items)
}

func (h *InventoryHandler) getExpiring(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		h.respondError(w, reqCtx, http.StatusBadRequest, "days query parameter is required")
		return
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		h.respondError(w, reqCtx, http.StatusBadRequest, "days must be an integer")
		return
	}

	items, err := h.inventoryService.GetExpiringItems(days)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, items)
}

func (h *InventoryHandler) synchronize(w http.ResponseWriter, reqCtx *logger.RequestContext) {
	result, err := h.inventoryService.SynchronizeInventory()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.logger.Info("Inventory synchronization completed",
		"created", result.Created,
		"updated", result.Updated)

	h.respondJSON(w, reqCtx, http.StatusOK, result)
}

func (h *InventoryHandler) batchUpdateStock(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	var batchReq service.BatchStockUpdateRequest
	if err := h.parseRequestBody(r, &batchReq); err != nil {
		h.logger.Warn("Invalid request body for batch stock update", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.inventoryService.BatchUpdateStock(&batchReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.logger.Info("Batch stock update completed",
		"requested", response.Requested,
		"succeeded", response.Succeeded)

	h.respondJSON(w, reqCtx, http.StatusOK, response)
}

func (h *InventoryHandler) updateStock(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, dishID string) {
	var updateReq service.UpdateStockRequest
	if err := h.parseRequestBody(r, &updateReq); err != nil {
		h.logger.Warn("Invalid request body for stock update", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.inventoryService.UpdateStock(dishID, &updateReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, record)
}

func (h *InventoryHandler) adjustStock(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, dishID string) {
	var adjustReq service.AdjustStockRequest
	if err := h.parseRequestBody(r, &adjustReq); err != nil {
		h.logger.Warn("Invalid request body for stock adjustment", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.inventoryService.AdjustStock(dishID, &adjustReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, record)
}

func (h *InventoryHandler) updateThreshold(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, dishID string) {
	var thresholdReq service.UpdateAlertThresholdRequest
	if err := h.parseRequestBody(r, &thresholdReq); err != nil {
		h.logger.Warn("Invalid request body for threshold update", "error", err)
		h.respondError(w, reqCtx, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.inventoryService.UpdateAlertThreshold(dishID, &thresholdReq)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, record)
}
