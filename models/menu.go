package models

import "time"

// DishStatus is the orderability state of a dish. Dishes are never
// physically removed; deleting one turns it off.
type DishStatus string

const (
	DishStatusOn  DishStatus = "on"
	DishStatusOff DishStatus = "off"
)

// Valid reports whether the status is one of the known states.
func (s DishStatus) Valid() bool {
	return s == DishStatusOn || s == DishStatusOff
}

// Category groups dishes for display. Categories use IsActive as a
// soft-delete flag and stay on disk while any dish references them.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Dish struct {
	ID              string     `json:"id"`
	CategoryID      string     `json:"categoryId"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	Status          DishStatus `json:"status"`
	Stock           int        `json:"stock"`
	Ingredients     []string   `json:"ingredients"`
	Allergens       []string   `json:"allergens"`
	IsSpicy         bool       `json:"isSpicy"`
	IsVegetarian    bool       `json:"isVegetarian"`
	PreparationTime int        `json:"preparationTime"`
	Calories        int        `json:"calories"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Orderable reports whether the dish can currently be ordered.
func (d *Dish) Orderable() bool {
	return d.Status == DishStatusOn
}

// CategoryReorderEntry assigns a new sort position to one category.
type CategoryReorderEntry struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sortOrder"`
}

// BatchDishStatusResponse reports partial success for a batch status
// change: Dishes holds only the successfully updated subset.
type BatchDishStatusResponse struct {
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
	Dishes    []Dish `json:"dishes"`
}
