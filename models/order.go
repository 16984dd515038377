package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order creation request.
type OrderItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the body of POST /api/order/create.
type CreateOrderRequest struct {
	Address string      `json:"address"`
	Items   []OrderItem `json:"items"`
}

// OrderPlacedEvent is published after the backend accepts an order.
type OrderPlacedEvent struct {
	EventID   string          `json:"event_id"`
	Event     string          `json:"event"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	AddressID string          `json:"address_id"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

const EventOrderPlaced = "order.placed"
