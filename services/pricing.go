package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront-service/models"
)

// PricingPolicy holds the shipping and tax rules applied to a cart.
type PricingPolicy struct {
	FreeShippingOver decimal.Decimal
	FlatShippingFee  decimal.Decimal
	TaxRate          decimal.Decimal
}

// DefaultPricingPolicy ships free above 100, charges 10 otherwise and taxes 10%.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeShippingOver: decimal.NewFromInt(100),
		FlatShippingFee:  decimal.NewFromInt(10),
		TaxRate:          decimal.RequireFromString("0.10"),
	}
}

// ParsePricingPolicy builds a policy from decimal strings.
func ParsePricingPolicy(freeOver, flatFee, taxRate string) (PricingPolicy, error) {
	var (
		p   PricingPolicy
		err error
	)
	if p.FreeShippingOver, err = decimal.NewFromString(freeOver); err != nil {
		return p, fmt.Errorf("free shipping threshold: %w", err)
	}
	if p.FlatShippingFee, err = decimal.NewFromString(flatFee); err != nil {
		return p, fmt.Errorf("flat shipping fee: %w", err)
	}
	if p.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return p, fmt.Errorf("tax rate: %w", err)
	}
	if p.FreeShippingOver.IsNegative() || p.FlatShippingFee.IsNegative() || p.TaxRate.IsNegative() {
		return p, fmt.Errorf("pricing values must not be negative")
	}
	return p, nil
}

// MissingProductError names a cart line whose product is not in the catalog.
type MissingProductError struct {
	ProductID string
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

// Price computes the quote for lines using products keyed by id. Subtotal and
// tax are rounded half away from zero to cents; total is their exact sum with
// shipping. An empty cart costs nothing.
func (p PricingPolicy) Price(lines []models.CartItem, products map[string]models.Product) (models.Quote, error) {
	q := models.Quote{
		Lines:    make([]models.QuoteLine, 0, len(lines)),
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		product, ok := products[line.ProductID]
		if !ok {
			return models.Quote{}, &MissingProductError{ProductID: line.ProductID}
		}

		unit := product.UnitPrice()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		ql := models.QuoteLine{
			ProductID: line.ProductID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: models.RoundCents(lineTotal),
		}
		if len(product.Images) > 0 {
			ql.Image = product.Images[0]
		}
		q.Lines = append(q.Lines, ql)
		q.Count += line.Quantity
	}

	if len(q.Lines) == 0 {
		return q, nil
	}

	q.Subtotal = models.RoundCents(subtotal)
	q.Shipping = p.Shipping(q.Subtotal)
	q.Tax = models.RoundCents(q.Subtotal.Mul(p.TaxRate))
	q.Total = q.Subtotal.Add(q.Shipping).Add(q.Tax)
	return q, nil
}

// Shipping is free strictly above the threshold and flat otherwise.
func (p PricingPolicy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingOver) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}
