package service

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"merchantops/internal/repositories"
	"merchantops/models"
	"merchantops/pkg/logger"
)

const unknownDishName = "Unknown Dish"

// DishRef is the enrichment attached wherever a stat record references a
// dish by id. Dangling references resolve to a placeholder, never an
// error.
type DishRef struct {
	DishID     string  `json:"dishId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID *string `json:"categoryId"`
}

type SalesSummary struct {
	TodayRevenue      float64 `json:"todayRevenue"`
	YesterdayRevenue  float64 `json:"yesterdayRevenue"`
	RevenueGrowthRate float64 `json:"revenueGrowthRate"`
	TodayOrders       int     `json:"todayOrders"`
	YesterdayOrders   int     `json:"yesterdayOrders"`
	OrderGrowthRate   float64 `json:"orderGrowthRate"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	ConversionRate    float64 `json:"conversionRate"`
}

type TopDishEntry struct {
	DishRef
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type PeakHourEntry struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type SalesReport struct {
	Summary        SalesSummary    `json:"summary"`
	OrdersByStatus map[string]int  `json:"ordersByStatus"`
	TopDishes      []TopDishEntry  `json:"topDishes"`
	PeakHours      []PeakHourEntry `json:"peakHours"`
}

type PromotionsSummary struct {
	ActiveCount             int     `json:"activeCount"`
	CompletedCount          int     `json:"completedCount"`
	TotalPromotionalOrders  int     `json:"totalPromotionalOrders"`
	TotalPromotionalRevenue float64 `json:"totalPromotionalRevenue"`
	TotalDiscountGiven      float64 `json:"totalDiscountGiven"`
	OverallROI              float64 `json:"overallRoi"`
	AverageConversionRate   float64 `json:"averageConversionRate"`
	EffectivenessScore      float64 `json:"effectivenessScore"`
}

type PromotionDetail struct {
	models.Promotion
	Status             string    `json:"status"`
	ROI                float64   `json:"roi"`
	EffectivenessScore float64   `json:"effectivenessScore"`
	OrdersPerDay       float64   `json:"ordersPerDay"`
	RevenuePerDay      float64   `json:"revenuePerDay"`
	Dishes             []DishRef `json:"dishes"`
}

type PromotionsReport struct {
	Summary       PromotionsSummary `json:"summary"`
	Promotions    []PromotionDetail `json:"promotions"`
	BestPromotion *PromotionDetail  `json:"bestPromotion"`
}

type ReviewTrend struct {
	Direction        string  `json:"direction"`
	RatingChange     float64 `json:"ratingChange"`
	ReviewGrowthRate float64 `json:"reviewGrowthRate"`
}

type ReviewsSummary struct {
	TotalReviews     int         `json:"totalReviews"`
	AverageRating    float64     `json:"averageRating"`
	SatisfactionRate float64     `json:"satisfactionRate"`
	Trend            ReviewTrend `json:"trend"`
}

type RatedDishEntry struct {
	DishRef
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
	WeightedScore float64 `json:"weightedScore,omitempty"`
}

type ReviewsReport struct {
	Summary            ReviewsSummary         `json:"summary"`
	RatingDistribution map[string]int         `json:"ratingDistribution"`
	TopRatedDish       *RatedDishEntry        `json:"topRatedDish"`
	NeedingImprovement []RatedDishEntry       `json:"needingImprovement"`
	DishReviews        []RatedDishEntry       `json:"dishReviews"`
	MonthlyTrend       []models.MonthlyRating `json:"monthlyTrend"`
}

type InventoryReportRow struct {
	DishID         string  `json:"dishId"`
	DishName       string  `json:"dishName"`
	Stock          int     `json:"stock"`
	AlertThreshold int     `json:"alertThreshold"`
	StockStatus    string  `json:"stockStatus"`
	Supplier       string  `json:"supplier"`
	Cost           float64 `json:"cost"`
	StockValue     float64 `json:"stockValue"`
	ExpiryDate     string  `json:"expiryDate"`
	LastUpdated    string  `json:"lastUpdated"`
}

type InventoryReport struct {
	Summary InventorySummary     `json:"summary"`
	Items   []InventoryReportRow `json:"items"`
}

type DashboardReport struct {
	Sales       SalesSummary     `json:"sales"`
	Inventory   InventorySummary `json:"inventory"`
	Reviews     ReviewsSummary   `json:"reviews"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type AnalyticsServiceInterface interface {
	GetSalesAnalytics() (*SalesReport, error)
	GetPromotionAnalytics() (*PromotionsReport, error)
	GetReviewAnalytics() (*ReviewsReport, error)
	GetInventoryReport() (*InventoryReport, error)
	GetDashboard() (*DashboardReport, error)
}

type AnalyticsService struct {
	statsRepo     repositories.StatsRepositoryInterface
	dishRepo      repositories.DishRepositoryInterface
	inventoryRepo repositories.InventoryRepositoryInterface
	logger        *logger.Logger
}

func NewAnalyticsService(
	statsRepo repositories.StatsRepositoryInterface,
	dishRepo repositories.DishRepositoryInterface,
	inventoryRepo repositories.InventoryRepositoryInterface,
	log *logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		statsRepo:     statsRepo,
		dishRepo:      dishRepo,
		inventoryRepo: inventoryRepo,
		logger:        log.WithComponent("analytics_service"),
	}
}

// GetSalesAnalytics derives growth, conversion and peak-hour metrics
// from the order stats snapshot.
func (s *AnalyticsService) GetSalesAnalytics() (*SalesReport, error) {
	stats, err := s.statsRepo.GetOrderStats()
	if err != nil {
		s.logger.Error("Failed to load order stats", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		Summary: SalesSummary{
			TodayRevenue:      stats.TodayRevenue,
			YesterdayRevenue:  stats.YesterdayRevenue,
			RevenueGrowthRate: growthRate(stats.TodayRevenue, stats.YesterdayRevenue),
			TodayOrders:       stats.TodayOrders,
			YesterdayOrders:   stats.YesterdayOrders,
			OrderGrowthRate:   growthRate(float64(stats.TodayOrders), float64(stats.YesterdayOrders)),
			AverageOrderValue: stats.AverageOrderValue,
			ConversionRate:    conversionRate(stats.TodayOrders),
		},
		OrdersByStatus: stats.OrdersByStatus,
		TopDishes:      make([]TopDishEntry, 0, len(stats.TopDishes)),
		PeakHours:      make([]PeakHourEntry, 0, len(stats.PeakHours)),
	}
	if report.OrdersByStatus == nil {
		report.OrdersByStatus = map[string]int{}
	}

	for _, dish := range stats.TopDishes {
		report.TopDishes = append(report.TopDishes, TopDishEntry{
			DishRef: dishRef(dish.DishID, lookup),
			Orders:  dish.Orders,
			Revenue: round2(dish.Revenue),
		})
	}

	for _, hour := range stats.PeakHours {
		report.PeakHours = append(report.PeakHours, PeakHourEntry{
			Hour:    hour.Hour,
			Orders:  hour.Orders,
			Revenue: round2(float64(hour.Orders) * stats.AverageOrderValue),
		})
	}

	return report, nil
}

// GetPromotionAnalytics scores every promotion, aggregates the overall
// stats and picks the best performer across active and completed lists.
func (s *AnalyticsService) GetPromotionAnalytics() (*PromotionsReport, error) {
	stats, err := s.statsRepo.GetPromotionStats()
	if err != nil {
		s.logger.Error("Failed to load promotion stats", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	overall := stats.OverallStats
	report := &PromotionsReport{
		Summary: PromotionsSummary{
			ActiveCount:             len(stats.ActivePromotions),
			CompletedCount:          len(stats.CompletedPromotions),
			TotalPromotionalOrders:  overall.TotalPromotionalOrders,
			TotalPromotionalRevenue: overall.TotalPromotionalRevenue,
			TotalDiscountGiven:      overall.TotalDiscountGiven,
			OverallROI:              promotionROI(overall.TotalPromotionalRevenue, overall.TotalDiscountGiven),
			AverageConversionRate:   overall.AverageConversionRate,
			EffectivenessScore:      aggregateEffectiveness(overall),
		},
	}

	combined := make([]PromotionDetail, 0, len(stats.ActivePromotions)+len(stats.CompletedPromotions))
	for _, promo := range stats.ActivePromotions {
		combined = append(combined, buildPromotionDetail(promo, "active", lookup))
	}
	for _, promo := range stats.CompletedPromotions {
		combined = append(combined, buildPromotionDetail(promo, "completed", lookup))
	}
	report.Promotions = combined

	// Strict greater-than keeps the first of tied promotions.
	bestScore := math.Inf(-1)
	for i := range combined {
		if score := promotionScore(combined[i].Promotion); score > bestScore {
			report.BestPromotion = &combined[i]
			bestScore = score
		}
	}

	return report, nil
}

// GetReviewAnalytics derives satisfaction, trend and per-dish rating
// metrics from the review stats snapshot.
func (s *AnalyticsService) GetReviewAnalytics() (*ReviewsReport, error) {
	stats, err := s.statsRepo.GetReviewStats()
	if err != nil {
		s.logger.Error("Failed to load review stats", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	report := &ReviewsReport{
		Summary: ReviewsSummary{
			TotalReviews:     stats.TotalReviews,
			AverageRating:    stats.AverageRating,
			SatisfactionRate: satisfactionRate(stats.RatingDistribution, stats.TotalReviews),
			Trend:            reviewTrend(stats.MonthlyTrend),
		},
		RatingDistribution: stats.RatingDistribution,
		NeedingImprovement: make([]RatedDishEntry, 0),
		DishReviews:        make([]RatedDishEntry, 0, len(stats.DishReviews)),
		MonthlyTrend:       stats.MonthlyTrend,
	}
	if report.RatingDistribution == nil {
		report.RatingDistribution = map[string]int{}
	}
	if report.MonthlyTrend == nil {
		report.MonthlyTrend = []models.MonthlyRating{}
	}

	topScore := math.Inf(-1)
	for _, stat := range stats.DishReviews {
		entry := RatedDishEntry{
			DishRef:       dishRef(stat.DishID, lookup),
			AverageRating: stat.AverageRating,
			TotalReviews:  stat.TotalReviews,
		}
		report.DishReviews = append(report.DishReviews, entry)

		if score := weightedDishScore(stat); score > topScore {
			scored := entry
			scored.WeightedScore = round2(score)
			report.TopRatedDish = &scored
			topScore = score
		}
	}

	needing := make([]models.DishReviewStat, 0)
	for _, stat := range stats.DishReviews {
		if stat.AverageRating < 4.0 || stat.TotalReviews < 10 {
			needing = append(needing, stat)
		}
	}
	sort.SliceStable(needing, func(i, j int) bool {
		return needing[i].AverageRating < needing[j].AverageRating
	})
	if len(needing) > 5 {
		needing = needing[:5]
	}
	for _, stat := range needing {
		report.NeedingImprovement = append(report.NeedingImprovement, RatedDishEntry{
			DishRef:       dishRef(stat.DishID, lookup),
			AverageRating: stat.AverageRating,
			TotalReviews:  stat.TotalReviews,
		})
	}

	return report, nil
}

// GetInventoryReport flattens inventory records into report rows with a
// stock-status classification per row.
func (s *AnalyticsService) GetInventoryReport() (*InventoryReport, error) {
	records, err := s.inventoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load inventory", "error", err)
		return nil, err
	}
	lookup, err := s.dishLookup()
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{
		Summary: buildInventorySummary(records, time.Now()),
		Items:   make([]InventoryReportRow, 0, len(records)),
	}

	for _, record := range records {
		row := InventoryReportRow{
			DishID:         record.DishID,
			DishName:       unknownDishName,
			Stock:          record.Stock,
			AlertThreshold: record.AlertThreshold,
			StockStatus:    stockStatus(record),
			Supplier:       record.Supplier,
			Cost:           record.Cost,
			StockValue:     stockValue(record),
			LastUpdated:    record.LastUpdated.Format(time.RFC3339),
		}
		if dish, ok := lookup[record.DishID]; ok {
			row.DishName = dish.Name
		}
		if record.ExpiryDate != nil {
			row.ExpiryDate = record.ExpiryDate.Format("2006-01-02")
		}
		report.Items = append(report.Items, row)
	}

	return report, nil
}

// GetDashboard rolls the sales, inventory and review summaries into one
// overview payload.
func (s *AnalyticsService) GetDashboard() (*DashboardReport, error) {
	sales, err := s.GetSalesAnalytics()
	if err != nil {
		return nil, err
	}
	inventory, err := s.GetInventoryReport()
	if err != nil {
		return nil, err
	}
	reviews, err := s.GetReviewAnalytics()
	if err != nil {
		return nil, err
	}

	return &DashboardReport{
		Sales:       sales.Summary,
		Inventory:   inventory.Summary,
		Reviews:     reviews.Summary,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *AnalyticsService) dishLookup() (map[string]*models.Dish, error) {
	dishes, err := s.dishRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to load dishes for enrichment", "error", err)
		return nil, err
	}
	return dishIndex(dishes), nil
}

func buildPromotionDetail(promo models.Promotion, status string, lookup map[string]*models.Dish) PromotionDetail {
	detail := PromotionDetail{
		Promotion:          promo,
		Status:             status,
		ROI:                promotionROI(promo.TotalRevenue, promo.DiscountGiven),
		EffectivenessScore: promotionEffectiveness(promo),
		OrdersPerDay:       perDayValue(float64(promo.TotalOrders), promo.StartDate, promo.EndDate),
		RevenuePerDay:      perDayValue(promo.TotalRevenue, promo.StartDate, promo.EndDate),
		Dishes:             make([]DishRef, 0, len(promo.ApplicableDishes)),
	}
	for _, dishID := range promo.ApplicableDishes {
		detail.Dishes = append(detail.Dishes, dishRef(dishID, lookup))
	}
	return detail
}

// growthRate is the day-over-day percentage change, defined as 0 when
// there is no prior-day value to compare against.
func growthRate(today, yesterday float64) float64 {
	if yesterday == 0 {
		return 0
	}
	return round2((today - yesterday) / yesterday * 100)
}

// conversionRate uses a fixed assumed visitor-to-order ratio of 3. It is
// a placeholder heuristic, not a measured rate.
func conversionRate(todayOrders int) float64 {
	if todayOrders <= 0 {
		return 0
	}
	return round2(float64(todayOrders) / float64(todayOrders*3) * 100)
}

// promotionROI returns the discount payback percentage. Zero when there
// is no revenue, and zero when no discount was given so the division
// stays defined.
func promotionROI(revenue, discount float64) float64 {
	if revenue <= 0 || discount <= 0 {
		return 0
	}
	return round2((revenue - discount) / discount * 100)
}

func roiBonus(revenue, discount float64) float64 {
	if discount <= 0 || revenue <= discount {
		return 0
	}
	return (revenue - discount) / discount * 10
}

func volumeBonus(totalOrders int) float64 {
	bonus := float64(totalOrders) / 10
	if bonus > 20 {
		bonus = 20
	}
	return bonus
}

// promotionEffectiveness scores one promotion on conversion, discount
// payback and volume, capped at 100.
func promotionEffectiveness(promo models.Promotion) float64 {
	score := promo.ConversionRate*100 +
		roiBonus(promo.TotalRevenue, promo.DiscountGiven) +
		volumeBonus(promo.TotalOrders)
	if score > 100 {
		score = 100
	}
	return round2(score)
}

// aggregateEffectiveness scores the whole program. The ROI term is a
// ratio here, not a percentage, and the score is uncapped.
func aggregateEffectiveness(overall models.PromotionOverall) float64 {
	roi := 0.0
	if overall.TotalDiscountGiven > 0 {
		roi = (overall.TotalPromotionalRevenue - overall.TotalDiscountGiven) / overall.TotalDiscountGiven
	}
	return round2(overall.AverageConversionRate*100 + roi*10)
}

// promotionScore ranks promotions for the best-performer pick
func promotionScore(promo models.Promotion) float64 {
	return promo.TotalRevenue*promo.ConversionRate - promo.DiscountGiven
}

// perDayValue spreads a total over the whole days a promotion ran
func perDayValue(value float64, start, end time.Time) float64 {
	days := math.Ceil(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return round2(value / days)
}

// satisfactionRate is the share of 4 and 5 star reviews, defined as 0
// when there are no reviews at all.
func satisfactionRate(distribution map[string]int, totalReviews int) float64 {
	if totalReviews <= 0 {
		return 0
	}
	satisfied := distribution["4"] + distribution["5"]
	return round2(float64(satisfied) / float64(totalReviews) * 100)
}

// reviewTrend compares the last two monthly entries. Changes within
// ±0.1 count as stable, the boundary included.
func reviewTrend(monthly []models.MonthlyRating) ReviewTrend {
	trend := ReviewTrend{Direction: "stable"}
	if len(monthly) < 2 {
		return trend
	}

	previous := monthly[len(monthly)-2]
	latest := monthly[len(monthly)-1]

	change := latest.AverageRating - previous.AverageRating
	switch {
	case change > 0.1:
		trend.Direction = "improving"
	case change < -0.1:
		trend.Direction = "declining"
	}
	trend.RatingChange = round2(change)

	if previous.TotalReviews > 0 {
		trend.ReviewGrowthRate = round2(float64(latest.TotalReviews-previous.TotalReviews) / float64(previous.TotalReviews) * 100)
	}

	return trend
}

// weightedDishScore weights a dish rating by review-volume confidence so
// one 5-star review cannot beat hundreds of slightly lower ones.
func weightedDishScore(stat models.DishReviewStat) float64 {
	return stat.AverageRating * math.Log(float64(stat.TotalReviews)+1)
}

func stockStatus(record models.InventoryRecord) string {
	switch {
	case record.OutOfStock():
		return "out"
	case record.LowStock():
		return "low"
	default:
		return "ok"
	}
}

func stockValue(record models.InventoryRecord) float64 {
	return decimal.NewFromInt(int64(record.Stock)).
		Mul(decimal.NewFromFloat(record.Cost)).
		Round(2).
		InexactFloat64()
}

func dishIndex(dishes []models.Dish) map[string]*models.Dish {
	index := make(map[string]*models.Dish, len(dishes))
	for i := range dishes {
		index[dishes[i].ID] = &dishes[i]
	}
	return index
}

func dishRef(dishID string, lookup map[string]*models.Dish) DishRef {
	if dish, ok := lookup[dishID]; ok {
		categoryID := dish.CategoryID
		return DishRef{DishID: dishID, Name: dish.Name, Price: dish.Price, CategoryID: &categoryID}
	}
	return DishRef{DishID: dishID, Name: unknownDishName}
}
