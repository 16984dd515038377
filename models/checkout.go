package models

import "github.com/shopspring/decimal"

// QuoteLine is a priced cart line.
type QuoteLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote is the priced view of a cart.
type Quote struct {
	Lines    []QuoteLine     `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSuccess    CheckoutState = "success"
	CheckoutFailed     CheckoutState = "failed"
)

// CheckoutRequest is what the client sends to place an order for its cart.
type CheckoutRequest struct {
	Email     string `json:"email"`
	AddressID string `json:"address_id"`
}

// CheckoutResult reports the outcome of a checkout attempt.
type CheckoutResult struct {
	State    CheckoutState       `json:"state"`
	Trail    []CheckoutState     `json:"trail"`
	Message  string              `json:"message,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
	Order    *CreateOrderRequest `json:"order,omitempty"`
	Quote    *Quote              `json:"quote,omitempty"`
}
