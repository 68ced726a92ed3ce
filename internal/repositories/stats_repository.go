package repositories

import (
	"encoding/json"
	"fmt"
	"sync"

	"merchantops/models"
	"merchantops/pkg/database"
	"merchantops/pkg/logger"
)

const (
	orderStatsCollection     = "order_stats"
	promotionStatsCollection = "promotion_stats"
	reviewStatsCollection    = "review_stats"
)

type StatsRepositoryInterface interface {
	GetOrderStats() (*models.OrderStats, error)
	SaveOrderStats(stats *models.OrderStats) error
	GetPromotionStats() (*models.PromotionStats, error)
	SavePromotionStats(stats *models.PromotionStats) error
	GetReviewStats() (*models.ReviewStats, error)
	SaveReviewStats(stats *models.ReviewStats) error
}

// StatsRepository persists the three analytics source documents. Each
// collection holds a single JSON object rather than an array; a missing
// file reads back as the zero value so analytics degrade to empty
// reports instead of failing.
type StatsRepository struct {
	storage *database.Storage
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewStatsRepository(storage *database.Storage, log *logger.Logger) *StatsRepository {
	return &StatsRepository{
		storage: storage,
		logger:  log.WithComponent("stats_repository"),
	}
}

// GetOrderStats retrieves the order statistics document
func (r *StatsRepository) GetOrderStats() (*models.OrderStats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := &models.OrderStats{}
	if err := r.loadDocument(orderStatsCollection, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SaveOrderStats overwrites the order statistics document
func (r *StatsRepository) SaveOrderStats(stats *models.OrderStats) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.saveDocument(orderStatsCollection, stats)
}

// GetPromotionStats retrieves the promotion statistics document
func (r *StatsRepository) GetPromotionStats() (*models.PromotionStats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := &models.PromotionStats{}
	if err := r.loadDocument(promotionStatsCollection, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SavePromotionStats overwrites the promotion statistics document
func (r *StatsRepository) SavePromotionStats(stats *models.PromotionStats) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.saveDocument(promotionStatsCollection, stats)
}

// GetReviewStats retrieves the review statistics document
func (r *StatsRepository) GetReviewStats() (*models.ReviewStats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := &models.ReviewStats{}
	if err := r.loadDocument(reviewStatsCollection, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SaveReviewStats overwrites the review statistics document
func (r *StatsRepository) SaveReviewStats(stats *models.ReviewStats) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.saveDocument(reviewStatsCollection, stats)
}

// loadDocument reads one stats document into out. Missing files leave
// out at its zero value; unreadable files are backed up first.
func (r *StatsRepository) loadDocument(collection string, out any) error {
	data, err := r.storage.ReadCollection(collection)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		backupPath, backupErr := r.storage.BackupCollection(collection)
		if backupErr != nil {
			r.logger.Error("Failed to back up unreadable stats file", "collection", collection, "error", backupErr)
		}
		r.logger.Error("Stats file is not valid JSON, treating as empty",
			"collection", collection, "error", err, "backup", backupPath)
		return nil
	}

	return nil
}

func (r *StatsRepository) saveDocument(collection string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %v", collection, err)
	}

	if err := r.storage.WriteCollection(collection, data); err != nil {
		r.logger.Error("Failed to save stats document", "collection", collection, "error", err)
		return err
	}

	r.logger.Info("Saved stats document", "collection", collection)
	return nil
}
