package handler

import (
	"net/http"

	"merchantops/internal/service"
	"merchantops/pkg/logger"
)

// AnalyticsHandler struct
type AnalyticsHandler struct {
	responder
	analyticsService service.AnalyticsServiceInterface
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the given service and logger
func NewAnalyticsHandler(analyticsService service.AnalyticsServiceInterface, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		responder:        responder{logger: log.WithComponent("analytics_handler")},
		analyticsService: analyticsService,
	}
}

// GetSalesAnalytics handles GET /api/v1/analytics/sales
func (h *AnalyticsHandler) GetSalesAnalytics(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := h.analyticsService.GetSalesAnalytics()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, report)
}

// GetPromotionAnalytics handles GET /api/v1/analytics/promotions
func (h *AnalyticsHandler) GetPromotionAnalytics(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := h.analyticsService.GetPromotionAnalytics()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, report)
}

// GetReviewAnalytics handles GET /api/v1/analytics/reviews
func (h *AnalyticsHandler) GetReviewAnalytics(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := h.analyticsService.GetReviewAnalytics()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, report)
}

// GetDashboard handles GET /api/v1/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := h.analyticsService.GetDashboard()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, report)
}
