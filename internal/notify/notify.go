package notify

import (
	"errors"
	"time"
)

const (
	TypeOrderConfirmed = "order_confirmed"
	TypeOrderStatus    = "order_status"
	TypeCartAdjusted   = "cart_adjusted"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("notify: notification not found")
