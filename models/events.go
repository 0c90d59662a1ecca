package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderPlacedEvent is published once per confirmed checkout.
type OrderPlacedEvent struct {
	EventType   string          `json:"event_type"`
	CheckoutID  string          `json:"checkout_id"`
	UserID      string          `json:"user_id"`
	OrderIDs    []string        `json:"order_ids"`
	PaymentMode string          `json:"payment_mode"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type OrderStatusChangedEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
