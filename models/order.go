package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInfo is collected during checkout and held only until the order
// completes (or the flow is reset).
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderLine is a snapshot of one cart line at the moment the order was
// placed. Later menu price changes do not affect a recorded order.
type OrderLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderRecord is the durable snapshot of a completed order. Exactly one
// record is kept: each new order overwrites the previous one.
type OrderRecord struct {
	ID            string          `json:"id"`           // internal identity (uuid)
	OrderNumber   string          `json:"order_number"` // human-readable, e.g. "AM482913"
	Customer      CustomerInfo    `json:"customer"`
	PickupTime    string          `json:"pickup_time"` // display string, e.g. "Tomorrow 9:00 AM"
	Lines         []OrderLine     `json:"lines"`
	Notes         string          `json:"notes,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PlacedAt      time.Time       `json:"placed_at"`
}
