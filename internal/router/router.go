package router

import (
	"net/http"

	"merchantops/internal/handler"
)

// NewRouter wires every handler into a ServeMux. Exact paths serve the
// collection endpoints; the trailing-slash patterns catch the subroutes
// and delegate dispatch to the handlers themselves.
func NewRouter(
	menuHandler *handler.MenuHandler,
	inventoryHandler *handler.InventoryHandler,
	analyticsHandler *handler.AnalyticsHandler,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/categories", menuHandler.HandleCategories)
	mux.HandleFunc("/api/v1/categories/", menuHandler.HandleCategoryRoutes)
	mux.HandleFunc("/api/v1/dishes", menuHandler.HandleDishes)
	mux.HandleFunc("/api/v1/dishes/", menuHandler.HandleDishRoutes)

	mux.HandleFunc("/api/v1/inventory", inventoryHandler.HandleInventory)
	mux.HandleFunc("/api/v1/inventory/", inventoryHandler.HandleInventoryRoutes)

	mux.HandleFunc("/api/v1/analytics/sales", analyticsHandler.GetSalesAnalytics)
	mux.HandleFunc("/api/v1/analytics/promotions", analyticsHandler.GetPromotionAnalytics)
	mux.HandleFunc("/api/v1/analytics/reviews", analyticsHandler.GetReviewAnalytics)
	mux.HandleFunc("/api/v1/analytics/dashboard", analyticsHandler.GetDashboard)

	mux.HandleFunc("/api/v1/reports", reportHandler.HandleReports)
	mux.HandleFunc("/api/v1/reports/", reportHandler.HandleReportRoutes)

	mux.HandleFunc("/health", healthHandler.Health)

	return mux
}
