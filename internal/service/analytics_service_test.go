package service

import (
	"testing"
	"time"

	"merchantops/models"
)

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		today     float64
		yesterday float64
		expected  float64
	}{
		{0, 0, 0},
		{100, 0, 0}, // no prior day, not +Inf
		{110, 100, 10},
		{90, 100, -10},
		{100, 80, 25},
		{33.33, 100, -66.67},
	}
	for _, tc := range cases {
		if got := growthRate(tc.today, tc.yesterday); got != tc.expected {
			t.Fatalf("growthRate(%v, %v) expected %v, got %v", tc.today, tc.yesterday, tc.expected, got)
		}
	}
}

func TestConversionRate(t *testing.T) {
	if got := conversionRate(0); got != 0 {
		t.Fatalf("conversionRate(0) expected 0, got %v", got)
	}
	if got := conversionRate(-5); got != 0 {
		t.Fatalf("conversionRate(-5) expected 0, got %v", got)
	}
	// The assumed visitor ratio is fixed, so any positive count lands on
	// the same rate.
	for _, orders := range []int{1, 42, 1000} {
		if got := conversionRate(orders); got != 33.33 {
			t.Fatalf("conversionRate(%d) expected 33.33, got %v", orders, got)
		}
	}
}

func TestPromotionROI(t *testing.T) {
	cases := []struct {
		revenue  float64
		discount float64
		expected float64
	}{
		{0, 50, 0},
		{100, 0, 0}, // no discount given, division undefined
		{-5, 10, 0},
		{150, 50, 200},
		{120, 50, 140},
		{50, 100, -50},
	}
	for _, tc := range cases {
		if got := promotionROI(tc.revenue, tc.discount); got != tc.expected {
			t.Fatalf("promotionROI(%v, %v) expected %v, got %v", tc.revenue, tc.discount, tc.expected, got)
		}
	}
}

func TestVolumeBonusCap(t *testing.T) {
	if got := volumeBonus(50); got != 5 {
		t.Fatalf("volumeBonus(50) expected 5, got %v", got)
	}
	if got := volumeBonus(500); got != 20 {
		t.Fatalf("volumeBonus(500) expected cap of 20, got %v", got)
	}
}

func TestPromotionEffectiveness(t *testing.T) {
	moderate := models.Promotion{
		ConversionRate: 0.2,
		TotalRevenue:   300,
		DiscountGiven:  100,
		TotalOrders:    50,
	}
	// 20 conversion + 20 roi bonus + 5 volume bonus
	if got := promotionEffectiveness(moderate); got != 45 {
		t.Fatalf("expected effectiveness 45, got %v", got)
	}

	runaway := models.Promotion{
		ConversionRate: 0.5,
		TotalRevenue:   10000,
		DiscountGiven:  100,
		TotalOrders:    400,
	}
	if got := promotionEffectiveness(runaway); got != 100 {
		t.Fatalf("expected effectiveness capped at 100, got %v", got)
	}

	lossMaking := models.Promotion{
		ConversionRate: 0.1,
		TotalRevenue:   50,
		DiscountGiven:  100,
		TotalOrders:    10,
	}
	// roi bonus floors at 0 when the discount exceeds revenue
	if got := promotionEffectiveness(lossMaking); got != 11 {
		t.Fatalf("expected effectiveness 11, got %v", got)
	}
}

func TestAggregateEffectivenessUncapped(t *testing.T) {
	overall := models.PromotionOverall{
		TotalPromotionalRevenue: 1000,
		TotalDiscountGiven:      100,
		AverageConversionRate:   0.2,
	}
	// 0.2*100 + ((1000-100)/100)*10 = 20 + 90
	if got := aggregateEffectiveness(overall); got != 110 {
		t.Fatalf("expected aggregate effectiveness 110, got %v", got)
	}

	noDiscount := models.PromotionOverall{AverageConversionRate: 0.2}
	if got := aggregateEffectiveness(noDiscount); got != 20 {
		t.Fatalf("expected 20 with zero discount, got %v", got)
	}
}

func TestPerDayValue(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := perDayValue(140, start, start.AddDate(0, 0, 14)); got != 10 {
		t.Fatalf("expected 10 per day over 14 days, got %v", got)
	}
	// Partial days round up to a whole day.
	if got := perDayValue(30, start, start.Add(36*time.Hour)); got != 15 {
		t.Fatalf("expected 15 per day over a 36h span, got %v", got)
	}
	if got := perDayValue(100, start, start); got != 0 {
		t.Fatalf("expected 0 for an empty span, got %v", got)
	}
	if got := perDayValue(100, start, start.AddDate(0, 0, -1)); got != 0 {
		t.Fatalf("expected 0 for an inverted span, got %v", got)
	}
}

func TestSatisfactionRate(t *testing.T) {
	if got := satisfactionRate(nil, 0); got != 0 {
		t.Fatalf("expected 0 with no reviews, got %v", got)
	}
	dist := map[string]int{"1": 5, "2": 5, "3": 10, "4": 30, "5": 50}
	if got := satisfactionRate(dist, 100); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
}

func TestReviewTrend(t *testing.T) {
	if trend := reviewTrend(nil); trend.Direction != "stable" || trend.RatingChange != 0 {
		t.Fatalf("expected stable trend with no history, got %+v", trend)
	}
	if trend := reviewTrend([]models.MonthlyRating{{Month: "2026-07", AverageRating: 4.2}}); trend.Direction != "stable" {
		t.Fatalf("expected stable trend with one month, got %+v", trend)
	}

	improving := reviewTrend([]models.MonthlyRating{
		{Month: "2026-06", AverageRating: 4.0, TotalReviews: 100},
		{Month: "2026-07", AverageRating: 4.25, TotalReviews: 150},
	})
	if improving.Direction != "improving" {
		t.Fatalf("expected improving, got %+v", improving)
	}
	if improving.RatingChange != 0.25 {
		t.Fatalf("expected rating change 0.25, got %v", improving.RatingChange)
	}
	if improving.ReviewGrowthRate != 50 {
		t.Fatalf("expected review growth 50, got %v", improving.ReviewGrowthRate)
	}

	declining := reviewTrend([]models.MonthlyRating{
		{Month: "2026-06", AverageRating: 4.5, TotalReviews: 100},
		{Month: "2026-07", AverageRating: 4.25, TotalReviews: 100},
	})
	if declining.Direction != "declining" || declining.ReviewGrowthRate != 0 {
		t.Fatalf("expected declining with flat review count, got %+v", declining)
	}

	// Small movements inside the ±0.1 band are stable.
	stable := reviewTrend([]models.MonthlyRating{
		{Month: "2026-06", AverageRating: 4.0, TotalReviews: 100},
		{Month: "2026-07", AverageRating: 4.05, TotalReviews: 100},
	})
	if stable.Direction != "stable" {
		t.Fatalf("expected stable for a 0.05 change, got %+v", stable)
	}

	// Only the last two months matter.
	lastTwo := reviewTrend([]models.MonthlyRating{
		{Month: "2026-05", AverageRating: 1.0, TotalReviews: 10},
		{Month: "2026-06", AverageRating: 4.5, TotalReviews: 100},
		{Month: "2026-07", AverageRating: 4.5, TotalReviews: 100},
	})
	if lastTwo.Direction != "stable" {
		t.Fatalf("expected stable comparing only the last two months, got %+v", lastTwo)
	}
}

func TestGetSalesAnalytics(t *testing.T) {
	stack := newServiceStack(t)
	seedDishWithCategory(t, stack, "Pad Thai", 10)

	stats := &models.OrderStats{
		TodayRevenue:      1865.40,
		YesterdayRevenue:  1542.00,
		TodayOrders:       142,
		YesterdayOrders:   125,
		AverageOrderValue: 13.14,
		TopDishes: []models.DishOrderStat{
			{DishID: "dish_1", Orders: 34, Revenue: 442.004},
			{DishID: "dish_42", Orders: 12, Revenue: 150.00},
		},
		PeakHours: []models.PeakHourStat{{Hour: 12, Orders: 28}},
	}
	if err := stack.statsRepo.SaveOrderStats(stats); err != nil {
		t.Fatalf("SaveOrderStats: %v", err)
	}

	report, err := stack.analyticsService().GetSalesAnalytics()
	if err != nil {
		t.Fatalf("GetSalesAnalytics: %v", err)
	}

	if report.Summary.RevenueGrowthRate != 20.97 {
		t.Fatalf("expected revenue growth 20.97, got %v", report.Summary.RevenueGrowthRate)
	}
	if report.Summary.OrderGrowthRate != 13.6 {
		t.Fatalf("expected order growth 13.6, got %v", report.Summary.OrderGrowthRate)
	}
	if report.Summary.ConversionRate != 33.33 {
		t.Fatalf("expected conversion rate 33.33, got %v", report.Summary.ConversionRate)
	}

	if report.OrdersByStatus == nil {
		t.Fatal("expected non-nil orders by status map")
	}

	if len(report.TopDishes) != 2 {
		t.Fatalf("expected 2 top dishes, got %d", len(report.TopDishes))
	}
	if report.TopDishes[0].Name != "Pad Thai" {
		t.Fatalf("expected enriched dish name, got %q", report.TopDishes[0].Name)
	}
	if report.TopDishes[0].Revenue != 442.00 {
		t.Fatalf("expected rounded revenue 442.00, got %v", report.TopDishes[0].Revenue)
	}
	if report.TopDishes[1].Name != unknownDishName {
		t.Fatalf("expected placeholder for dangling dish reference, got %q", report.TopDishes[1].Name)
	}

	if len(report.PeakHours) != 1 {
		t.Fatalf("expected 1 peak hour, got %d", len(report.PeakHours))
	}
	// 28 orders * 13.14 average
	if report.PeakHours[0].Revenue != 367.92 {
		t.Fatalf("expected peak hour revenue 367.92, got %v", report.PeakHours[0].Revenue)
	}
}

func TestGetPromotionAnalyticsBestPromotion(t *testing.T) {
	stack := newServiceStack(t)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	stats := &models.PromotionStats{
		ActivePromotions: []models.Promotion{
			{
				ID: "promo_3", Name: "Happy Hour",
				TotalOrders: 40, TotalRevenue: 400, DiscountGiven: 100, ConversionRate: 0.1,
				StartDate: start, EndDate: start.AddDate(0, 0, 10),
			},
		},
		CompletedPromotions: []models.Promotion{
			{
				ID: "promo_1", Name: "Lunch Special",
				TotalOrders: 180, TotalRevenue: 1620, DiscountGiven: 324, ConversionRate: 0.18,
				StartDate: start, EndDate: start.AddDate(0, 0, 14),
			},
			{
				ID: "promo_2", Name: "Weekend Deal",
				TotalOrders: 90, TotalRevenue: 700, DiscountGiven: 120, ConversionRate: 0.12,
				StartDate: start, EndDate: start.AddDate(0, 0, 7),
			},
		},
		OverallStats: models.PromotionOverall{
			TotalPromotionalOrders:  310,
			TotalPromotionalRevenue: 2720,
			TotalDiscountGiven:      544,
			AverageConversionRate:   0.14,
		},
	}
	if err := stack.statsRepo.SavePromotionStats(stats); err != nil {
		t.Fatalf("SavePromotionStats: %v", err)
	}

	report, err := stack.analyticsService().GetPromotionAnalytics()
	if err != nil {
		t.Fatalf("GetPromotionAnalytics: %v", err)
	}

	if report.Summary.ActiveCount != 1 || report.Summary.CompletedCount != 2 {
		t.Fatalf("expected 1 active / 2 completed, got %d/%d", report.Summary.ActiveCount, report.Summary.CompletedCount)
	}
	if report.Summary.OverallROI != 400 {
		t.Fatalf("expected overall ROI 400, got %v", report.Summary.OverallROI)
	}

	if len(report.Promotions) != 3 {
		t.Fatalf("expected 3 promotions, got %d", len(report.Promotions))
	}
	if report.Promotions[0].Status != "active" || report.Promotions[1].Status != "completed" {
		t.Fatalf("expected active promotions listed first, got %s/%s", report.Promotions[0].Status, report.Promotions[1].Status)
	}

	// promo_1: 1620*0.18-324 = -32.4 ... promo_2: 700*0.12-120 = -36 ...
	// promo_3: 400*0.1-100 = -60. Highest score wins.
	if report.BestPromotion == nil || report.BestPromotion.ID != "promo_1" {
		t.Fatalf("expected promo_1 as best promotion, got %+v", report.BestPromotion)
	}

	// promo_1 ran 14 days: 180/14 and 1620/14.
	if report.BestPromotion.OrdersPerDay != 12.86 {
		t.Fatalf("expected 12.86 orders per day, got %v", report.BestPromotion.OrdersPerDay)
	}
	if report.BestPromotion.RevenuePerDay != 115.71 {
		t.Fatalf("expected 115.71 revenue per day, got %v", report.BestPromotion.RevenuePerDay)
	}
}

func TestGetReviewAnalytics(t *testing.T) {
	stack := newServiceStack(t)
	seedDishWithCategory(t, stack, "Pad Thai", 10)

	stats := &models.ReviewStats{
		TotalReviews:  100,
		AverageRating: 4.3,
		RatingDistribution: map[string]int{
			"1": 2, "2": 3, "3": 15, "4": 35, "5": 45,
		},
		DishReviews: []models.DishReviewStat{
			{DishID: "dish_1", AverageRating: 4.5, TotalReviews: 200},
			{DishID: "dish_42", AverageRating: 4.9, TotalReviews: 1},
			{DishID: "dish_43", AverageRating: 3.5, TotalReviews: 50},
		},
		MonthlyTrend: []models.MonthlyRating{
			{Month: "2026-06", AverageRating: 4.0, TotalReviews: 40},
			{Month: "2026-07", AverageRating: 4.3, TotalReviews: 60},
		},
	}
	if err := stack.statsRepo.SaveReviewStats(stats); err != nil {
		t.Fatalf("SaveReviewStats: %v", err)
	}

	report, err := stack.analyticsService().GetReviewAnalytics()
	if err != nil {
		t.Fatalf("GetReviewAnalytics: %v", err)
	}

	if report.Summary.SatisfactionRate != 80 {
		t.Fatalf("expected satisfaction 80, got %v", report.Summary.SatisfactionRate)
	}
	if report.Summary.Trend.Direction != "improving" {
		t.Fatalf("expected improving trend, got %+v", report.Summary.Trend)
	}

	// Volume-weighted: 200 reviews at 4.5 beat a single 4.9 review.
	if report.TopRatedDish == nil || report.TopRatedDish.DishID != "dish_1" {
		t.Fatalf("expected dish_1 as top rated, got %+v", report.TopRatedDish)
	}
	if report.TopRatedDish.Name != "Pad Thai" {
		t.Fatalf("expected enriched top dish name, got %q", report.TopRatedDish.Name)
	}
	if report.TopRatedDish.WeightedScore == 0 {
		t.Fatal("expected weighted score on top rated dish")
	}

	// dish_43 has a low rating, dish_42 too few reviews; worst rating first.
	if len(report.NeedingImprovement) != 2 {
		t.Fatalf("expected 2 dishes needing improvement, got %d", len(report.NeedingImprovement))
	}
	if report.NeedingImprovement[0].DishID != "dish_43" || report.NeedingImprovement[1].DishID != "dish_42" {
		t.Fatalf("expected [dish_43 dish_42], got %+v", report.NeedingImprovement)
	}
}

func TestGetReviewAnalyticsEmpty(t *testing.T) {
	stack := newServiceStack(t)

	report, err := stack.analyticsService().GetReviewAnalytics()
	if err != nil {
		t.Fatalf("GetReviewAnalytics on empty stats: %v", err)
	}
	if report.Summary.TotalReviews != 0 || report.Summary.SatisfactionRate != 0 {
		t.Fatalf("expected zeroed summary, got %+v", report.Summary)
	}
	if report.RatingDistribution == nil {
		t.Fatal("expected non-nil rating distribution")
	}
	if report.TopRatedDish != nil {
		t.Fatalf("expected no top rated dish, got %+v", report.TopRatedDish)
	}
	if report.MonthlyTrend == nil {
		t.Fatal("expected non-nil monthly trend")
	}
}

func TestGetInventoryReport(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.inventoryService()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 0)

	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.UpdateStock(dish.ID, &UpdateStockRequest{
		Stock:      intPtr(3),
		Cost:       floatPtr(2.50),
		ExpiryDate: &expiry,
	}); err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}

	// An orphaned record with no matching dish.
	if err := stack.inventoryRepo.Upsert(&models.InventoryRecord{
		DishID:         "dish_99",
		Stock:          0,
		AlertThreshold: 5,
		LastUpdated:    time.Now(),
	}); err != nil {
		t.Fatalf("Upsert orphan: %v", err)
	}

	report, err := stack.analyticsService().GetInventoryReport()
	if err != nil {
		t.Fatalf("GetInventoryReport: %v", err)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Items))
	}

	var known, orphan *InventoryReportRow
	for i := range report.Items {
		switch report.Items[i].DishID {
		case dish.ID:
			known = &report.Items[i]
		case "dish_99":
			orphan = &report.Items[i]
		}
	}
	if known == nil || orphan == nil {
		t.Fatalf("missing expected rows: %+v", report.Items)
	}

	if known.DishName != "Pad Thai" || known.StockStatus != "low" {
		t.Fatalf("unexpected known row: %+v", known)
	}
	if known.StockValue != 7.50 {
		t.Fatalf("expected stock value 7.50, got %v", known.StockValue)
	}
	if known.ExpiryDate != "2026-09-01" {
		t.Fatalf("expected formatted expiry date, got %q", known.ExpiryDate)
	}
	if orphan.DishName != unknownDishName || orphan.StockStatus != "out" {
		t.Fatalf("unexpected orphan row: %+v", orphan)
	}

	if report.Summary.TotalItems != 2 || report.Summary.OutOfStockCount != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

func TestGetDashboard(t *testing.T) {
	stack := newServiceStack(t)
	seedDishWithCategory(t, stack, "Pad Thai", 10)

	if err := stack.statsRepo.SaveOrderStats(&models.OrderStats{
		TodayRevenue: 500, YesterdayRevenue: 400, TodayOrders: 40, YesterdayOrders: 32,
	}); err != nil {
		t.Fatalf("SaveOrderStats: %v", err)
	}

	dashboard, err := stack.analyticsService().GetDashboard()
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if dashboard.Sales.RevenueGrowthRate != 25 {
		t.Fatalf("expected revenue growth 25, got %v", dashboard.Sales.RevenueGrowthRate)
	}
	if dashboard.Inventory.TotalItems != 1 {
		t.Fatalf("expected 1 inventory item, got %d", dashboard.Inventory.TotalItems)
	}
	if dashboard.GeneratedAt.IsZero() {
		t.Fatal("expected generatedAt to be set")
	}
}

func TestStockStatusClassification(t *testing.T) {
	cases := []struct {
		record   models.InventoryRecord
		expected string
	}{
		{models.InventoryRecord{Stock: 0, AlertThreshold: 5}, "out"},
		{models.InventoryRecord{Stock: 5, AlertThreshold: 5}, "low"},
		{models.InventoryRecord{Stock: 6, AlertThreshold: 5}, "ok"},
	}
	for _, tc := range cases {
		if got := stockStatus(tc.record); got != tc.expected {
			t.Fatalf("stockStatus(stock=%d threshold=%d) expected %s, got %s",
				tc.record.Stock, tc.record.AlertThreshold, tc.expected, got)
		}
	}
}
