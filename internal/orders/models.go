package orders

import "time"

type Order struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id"`
	Status     Status    `json:"status"`
	TotalCents int       `json:"total_cents"`
	Lines      []Line    `json:"lines,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Line is one order_items row; immutable once written.
type Line struct {
	OrderID    string `json:"order_id,omitempty"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}
