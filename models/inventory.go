package models

import "time"

// InventoryRecord tracks stock for exactly one dish. The record's Stock
// is the authoritative value; Dish.Stock mirrors it in lock-step, except
// during synchronization where the dish side wins.
type InventoryRecord struct {
	DishID         string           `json:"dishId"`
	Stock          int              `json:"stock"`
	AlertThreshold int              `json:"alertThreshold"`
	Supplier       string           `json:"supplier"`
	Cost           float64          `json:"cost"`
	ExpiryDate     *time.Time       `json:"expiryDate"`
	LastAdjustment *StockAdjustment `json:"lastAdjustment,omitempty"`
	LastUpdated    time.Time        `json:"lastUpdated"`
}

// LowStock reports whether stock sits at or below the alert threshold.
// The boundary is inclusive: stock 5 with threshold 5 is low.
func (r *InventoryRecord) LowStock() bool {
	return r.Stock <= r.AlertThreshold
}

// OutOfStock reports whether the dish has no stock left.
func (r *InventoryRecord) OutOfStock() bool {
	return r.Stock == 0
}

// StockAdjustment is the audit trail of the latest manual stock change.
type StockAdjustment struct {
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	AdjustedAt time.Time `json:"adjustedAt"`
}

// BatchStockUpdateResponse reports partial success for a batch stock
// update: Items holds only the records that were written.
type BatchStockUpdateResponse struct {
	Requested int               `json:"requested"`
	Succeeded int               `json:"succeeded"`
	Items     []InventoryRecord `json:"items"`
}

// SyncResult counts the records touched by an inventory synchronization
// pass. A second pass over unchanged data reports zeros.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
