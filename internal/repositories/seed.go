package repositories

import (
	"time"

	"merchantops/models"
	"merchantops/pkg/logger"
)

// SeedSampleData fills empty collections with a small demo dataset so a
// fresh checkout serves meaningful responses. Collections that already
// contain data are left untouched, which makes seeding idempotent.
func SeedSampleData(
	categoryRepo *CategoryRepository,
	dishRepo *DishRepository,
	inventoryRepo *InventoryRepository,
	statsRepo *StatsRepository,
	log *logger.Logger,
) error {
	seedLog := log.WithComponent("seeder")
	now := time.Now()

	categories, err := categoryRepo.GetAll()
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		for _, category := range sampleCategories(now) {
			if err := categoryRepo.Insert(&category); err != nil {
				return err
			}
		}
		seedLog.Info("Seeded categories")
	}

	dishes, err := dishRepo.GetAll()
	if err != nil {
		return err
	}
	if len(dishes) == 0 {
		for _, dish := range sampleDishes(now) {
			if err := dishRepo.Insert(&dish); err != nil {
				return err
			}
		}
		seedLog.Info("Seeded dishes")
	}

	records, err := inventoryRepo.GetAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		for _, record := range sampleInventory(now) {
			if err := inventoryRepo.Upsert(&record); err != nil {
				return err
			}
		}
		seedLog.Info("Seeded inventory")
	}

	orderStats, err := statsRepo.GetOrderStats()
	if err != nil {
		return err
	}
	if orderStats.TodayOrders == 0 && orderStats.YesterdayOrders == 0 {
		if err := statsRepo.SaveOrderStats(sampleOrderStats()); err != nil {
			return err
		}
		seedLog.Info("Seeded order stats")
	}

	promotionStats, err := statsRepo.GetPromotionStats()
	if err != nil {
		return err
	}
	if len(promotionStats.CompletedPromotions) == 0 {
		if err := statsRepo.SavePromotionStats(samplePromotionStats(now)); err != nil {
			return err
		}
		seedLog.Info("Seeded promotion stats")
	}

	reviewStats, err := statsRepo.GetReviewStats()
	if err != nil {
		return err
	}
	if reviewStats.TotalReviews == 0 {
		if err := statsRepo.SaveReviewStats(sampleReviewStats()); err != nil {
			return err
		}
		seedLog.Info("Seeded review stats")
	}

	return nil
}

func sampleCategories(now time.Time) []models.Category {
	return []models.Category{
		{ID: "cat_1", Name: "Appetizers", Description: "Small plates to start", SortOrder: 1, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "cat_2", Name: "Main Courses", Description: "Signature mains", SortOrder: 2, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "cat_3", Name: "Beverages", Description: "Drinks and refreshments", SortOrder: 3, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
}

func sampleDishes(now time.Time) []models.Dish {
	return []models.Dish{
		{
			ID: "dish_1", CategoryID: "cat_1", Name: "Crispy Spring Rolls",
			Description: "Vegetable spring rolls with sweet chili dip", Price: 6.50,
			Status: models.DishStatusOn, Stock: 40, Ingredients: []string{"cabbage", "carrot", "rice paper"},
			IsVegetarian: true, PreparationTime: 10, Calories: 320,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "dish_2", CategoryID: "cat_1", Name: "Spicy Chicken Wings",
			Description: "Six wings tossed in house hot sauce", Price: 8.90,
			Status: models.DishStatusOn, Stock: 25, Ingredients: []string{"chicken", "hot sauce", "butter"},
			Allergens: []string{"dairy"}, IsSpicy: true, PreparationTime: 15, Calories: 540,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "dish_3", CategoryID: "cat_2", Name: "Grilled Salmon Bowl",
			Description: "Salmon fillet over seasoned rice", Price: 15.80,
			Status: models.DishStatusOn, Stock: 18, Ingredients: []string{"salmon", "rice", "sesame"},
			Allergens: []string{"fish", "sesame"}, PreparationTime: 20, Calories: 620,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "dish_4", CategoryID: "cat_2", Name: "Braised Beef Noodles",
			Description: "Slow braised beef with hand pulled noodles", Price: 12.40,
			Status: models.DishStatusOn, Stock: 22, Ingredients: []string{"beef", "noodles", "bok choy"},
			Allergens: []string{"gluten"}, IsSpicy: true, PreparationTime: 18, Calories: 710,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "dish_5", CategoryID: "cat_3", Name: "Fresh Lemon Iced Tea",
			Description: "Brewed black tea with lemon", Price: 3.20,
			Status: models.DishStatusOn, Stock: 60, Ingredients: []string{"black tea", "lemon", "sugar"},
			IsVegetarian: true, PreparationTime: 5, Calories: 120,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "dish_6", CategoryID: "cat_3", Name: "Mango Smoothie",
			Description: "Blended mango with yogurt", Price: 4.80,
			Status: models.DishStatusOff, Stock: 0, Ingredients: []string{"mango", "yogurt", "ice"},
			Allergens: []string{"dairy"}, IsVegetarian: true, PreparationTime: 6, Calories: 260,
			CreatedAt: now, UpdatedAt: now,
		},
	}
}

func sampleInventory(now time.Time) []models.InventoryRecord {
	expiringSoon := now.Add(48 * time.Hour)
	nextMonth := now.Add(30 * 24 * time.Hour)

	return []models.InventoryRecord{
		{DishID: "dish_1", Stock: 40, AlertThreshold: 10, Supplier: "Golden Harvest Produce", Cost: 2.10, ExpiryDate: &nextMonth, LastUpdated: now},
		{DishID: "dish_2", Stock: 25, AlertThreshold: 8, Supplier: "Prime Poultry Co", Cost: 3.40, ExpiryDate: &expiringSoon, LastUpdated: now},
		{DishID: "dish_3", Stock: 18, AlertThreshold: 6, Supplier: "Harbor Seafood", Cost: 7.20, ExpiryDate: &expiringSoon, LastUpdated: now},
		{DishID: "dish_4", Stock: 22, AlertThreshold: 5, Supplier: "Prime Poultry Co", Cost: 4.60, ExpiryDate: &nextMonth, LastUpdated: now},
		{DishID: "dish_5", Stock: 60, AlertThreshold: 15, Supplier: "Golden Harvest Produce", Cost: 0.80, LastUpdated: now},
		{DishID: "dish_6", Stock: 0, AlertThreshold: 5, Supplier: "Golden Harvest Produce", Cost: 1.50, LastUpdated: now},
	}
}

func sampleOrderStats() *models.OrderStats {
	return &models.OrderStats{
		TodayRevenue:      1865.40,
		YesterdayRevenue:  1542.00,
		TodayOrders:       142,
		YesterdayOrders:   125,
		AverageOrderValue: 13.14,
		OrdersByStatus: map[string]int{
			"pending":   6,
			"preparing": 11,
			"completed": 118,
			"cancelled": 7,
		},
		TopDishes: []models.DishOrderStat{
			{DishID: "dish_4", Orders: 38, Revenue: 471.20},
			{DishID: "dish_3", Orders: 29, Revenue: 458.20},
			{DishID: "dish_2", Orders: 26, Revenue: 231.40},
			{DishID: "dish_1", Orders: 21, Revenue: 136.50},
			{DishID: "dish_5", Orders: 19, Revenue: 60.80},
		},
		PeakHours: []models.PeakHourStat{
			{Hour: 12, Orders: 31},
			{Hour: 13, Orders: 27},
			{Hour: 19, Orders: 24},
			{Hour: 20, Orders: 18},
		},
	}
}

func samplePromotionStats(now time.Time) *models.PromotionStats {
	return &models.PromotionStats{
		ActivePromotions: []models.Promotion{
			{
				ID:               "promo_3",
				Name:             "Weekend Family Feast",
				ApplicableDishes: []string{"dish_1", "dish_2", "dish_4"},
				TotalOrders:      54,
				TotalRevenue:     702.00,
				DiscountGiven:    105.30,
				ConversionRate:   0.15,
				StartDate:        now.Add(-5 * 24 * time.Hour),
				EndDate:          now.Add(2 * 24 * time.Hour),
			},
		},
		CompletedPromotions: []models.Promotion{
			{
				ID:               "promo_1",
				Name:             "Lunch Combo Week",
				ApplicableDishes: []string{"dish_3", "dish_4"},
				TotalOrders:      210,
				TotalRevenue:     2680.00,
				DiscountGiven:    402.00,
				ConversionRate:   0.18,
				StartDate:        now.Add(-21 * 24 * time.Hour),
				EndDate:          now.Add(-14 * 24 * time.Hour),
			},
			{
				ID:               "promo_2",
				Name:             "Happy Hour Drinks",
				ApplicableDishes: []string{"dish_5", "dish_6"},
				TotalOrders:      96,
				TotalRevenue:     384.00,
				DiscountGiven:    115.20,
				ConversionRate:   0.11,
				StartDate:        now.Add(-10 * 24 * time.Hour),
				EndDate:          now.Add(-3 * 24 * time.Hour),
			},
		},
		OverallStats: models.PromotionOverall{
			TotalPromotionalOrders:  306,
			TotalPromotionalRevenue: 3064.00,
			TotalDiscountGiven:      517.20,
			AverageConversionRate:   0.145,
		},
	}
}

func sampleReviewStats() *models.ReviewStats {
	return &models.ReviewStats{
		TotalReviews:  428,
		AverageRating: 4.3,
		RatingDistribution: map[string]int{
			"1": 9,
			"2": 17,
			"3": 64,
			"4": 151,
			"5": 187,
		},
		DishReviews: []models.DishReviewStat{
			{DishID: "dish_4", AverageRating: 4.7, TotalReviews: 132},
			{DishID: "dish_3", AverageRating: 4.5, TotalReviews: 104},
			{DishID: "dish_2", AverageRating: 4.2, TotalReviews: 88},
			{DishID: "dish_1", AverageRating: 3.9, TotalReviews: 61},
			{DishID: "dish_5", AverageRating: 4.0, TotalReviews: 35},
			{DishID: "dish_6", AverageRating: 3.6, TotalReviews: 8},
		},
		MonthlyTrend: []models.MonthlyRating{
			{Month: "2026-05", AverageRating: 4.1, TotalReviews: 121},
			{Month: "2026-06", AverageRating: 4.2, TotalReviews: 139},
			{Month: "2026-07", AverageRating: 4.4, TotalReviews: 168},
		},
	}
}
