package catalog

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryMerch  Category = "merch"
	CategoryFood   Category = "food"
	CategoryDrinks Category = "drinks"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryMerch, CategoryFood, CategoryDrinks:
		return true
	}
	return false
}

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	PriceCents  int       `json:"price_cents"`
	Stock       int       `json:"stock"`
	Available   bool      `json:"available"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemUpdate carries the admin-editable fields. Nil means "leave unchanged".
type ItemUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Category    *Category `json:"category"`
	PriceCents  *int      `json:"price_cents"`
	Stock       *int      `json:"stock"`
	Available   *bool     `json:"available"`
	ImageURL    *string   `json:"image_url"`
}

// SalesStats is the aggregate returned by the daily statistics query.
type SalesStats struct {
	Day           string         `json:"day"`
	Orders        int            `json:"orders"`
	RevenueCents  int            `json:"revenue_cents"`
	UnitsByItem   map[string]int `json:"units_by_item"`
	CountByStatus map[string]int `json:"count_by_status"`
}

var (
	ErrNotFound          = errors.New("catalog: item not found")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)
