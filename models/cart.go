package models

import (
	"math"
	"time"
)

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-session cart store. Items hold at most one line per
// product, every line has quantity >= 1, and lines keep the order in which
// their product was first added.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the quantity of productID by one, appending a new line when absent.
func (c *Cart) Add(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity++
	} else {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: 1})
	}
	c.touch()
}

// SetQuantity sets the line's quantity; qty <= 0 removes it. Unknown products are ignored.
func (c *Cart) SetQuantity(productID string, qty int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.removeAt(i)
	} else {
		c.Items[i].Quantity = qty
	}
	c.touch()
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.removeAt(i)
		c.touch()
	}
}

// Count is the sum of all line quantities, saturating at math.MaxInt.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		if it.Quantity > math.MaxInt-n {
			return math.MaxInt
		}
		n += it.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

func (c *Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Normalize repairs a snapshot read from storage: it drops non-positive lines
// and merges duplicate product lines into the first occurrence.
func (c *Cart) Normalize() {
	out := make([]CartItem, 0, len(c.Items))
	seen := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity <= 0 || it.ProductID == "" {
			continue
		}
		if i, ok := seen[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ProductID] = len(out)
		out = append(out, it)
	}
	c.Items = out
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
