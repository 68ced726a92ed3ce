package models

import "time"

// OrderStats is the persisted order-analytics snapshot. The analytics
// engine derives metrics from it and never writes it back.
type OrderStats struct {
	TodayRevenue      float64         `json:"todayRevenue"`
	YesterdayRevenue  float64         `json:"yesterdayRevenue"`
	TodayOrders       int             `json:"todayOrders"`
	YesterdayOrders   int             `json:"yesterdayOrders"`
	AverageOrderValue float64         `json:"averageOrderValue"`
	OrdersByStatus    map[string]int  `json:"ordersByStatus"`
	TopDishes         []DishOrderStat `json:"topDishes"`
	PeakHours         []PeakHourStat  `json:"peakHours"`
}

type DishOrderStat struct {
	DishID  string  `json:"dishId"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type PeakHourStat struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

// PromotionStats is the persisted promotion snapshot, split into active
// and completed campaigns plus an overall aggregate.
type PromotionStats struct {
	ActivePromotions    []Promotion      `json:"activePromotions"`
	CompletedPromotions []Promotion      `json:"completedPromotions"`
	OverallStats        PromotionOverall `json:"overallStats"`
}

type Promotion struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ApplicableDishes []string  `json:"applicableDishes"`
	TotalOrders      int       `json:"totalOrders"`
	TotalRevenue     float64   `json:"totalRevenue"`
	DiscountGiven    float64   `json:"discountGiven"`
	ConversionRate   float64   `json:"conversionRate"` // fraction in [0,1]
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
}

type PromotionOverall struct {
	TotalPromotionalOrders  int     `json:"totalPromotionalOrders"`
	TotalPromotionalRevenue float64 `json:"totalPromotionalRevenue"`
	TotalDiscountGiven      float64 `json:"totalDiscountGiven"`
	AverageConversionRate   float64 `json:"averageConversionRate"`
}

// ReviewStats is the persisted review snapshot. RatingDistribution maps
// the rating value ("1".."5") to its count.
type ReviewStats struct {
	TotalReviews       int              `json:"totalReviews"`
	AverageRating      float64          `json:"averageRating"`
	RatingDistribution map[string]int   `json:"ratingDistribution"`
	DishReviews        []DishReviewStat `json:"dishReviews"`
	MonthlyTrend       []MonthlyRating  `json:"monthlyTrend"`
}

type DishReviewStat struct {
	DishID        string  `json:"dishId"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

type MonthlyRating struct {
	Month         string  `json:"month"` // YYYY-MM
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}
