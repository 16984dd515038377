package models

import "github.com/shopspring/decimal"

// Product is a catalog entry as the storefront sees it. Prices are stored
// rounded to cents.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OfferPrice  *decimal.Decimal `json:"offer_price,omitempty"`
	Images      []string         `json:"images"`
	Rating      Rating           `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// UnitPrice is the price charged per unit: the offer price when one is set
// and positive, otherwise the base price.
func (p Product) UnitPrice() decimal.Decimal {
	if p.OfferPrice != nil && p.OfferPrice.IsPositive() {
		return *p.OfferPrice
	}
	return p.Price
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
