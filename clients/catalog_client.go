package clients

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/models"
)

// catalogProduct is the public catalog's product shape.
type catalogProduct struct {
	ID          json.Number     `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p catalogProduct) toModel() models.Product {
	images := []string{}
	if p.Image != "" {
		images = append(images, p.Image)
	}
	return models.Product{
		ID:          p.ID.String(),
		Name:        p.Title,
		Category:    p.Category,
		Description: p.Description,
		Price:       models.RoundCents(p.Price),
		Images:      images,
		Rating:      models.Rating{Rate: p.Rating.Rate, Count: p.Rating.Count},
	}
}

// CatalogClient reads the unauthenticated public product catalog.
type CatalogClient struct {
	base baseClient
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{base: newBaseClient("catalog", baseURL, timeout)}
}

// ListProducts returns every product in the catalog.
func (c *CatalogClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.list(ctx, "/products")
}

// ListByCategory returns the products of one category.
func (c *CatalogClient) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return c.list(ctx, "/products/category/"+url.PathEscape(category))
}

// GetProduct returns a product by id, or ErrNotFound.
func (c *CatalogClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var raw *catalogProduct
	if err := c.base.getJSON(ctx, "/products/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return nil, err
	}
	// The public catalog answers unknown ids with an empty body or null.
	if raw == nil || raw.ID.String() == "" {
		return nil, ErrNotFound
	}
	p := raw.toModel()
	return &p, nil
}

// Categories returns the catalog's category names.
func (c *CatalogClient) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := c.base.getJSON(ctx, "/products/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cats))
	for _, cat := range cats {
		if cat = strings.TrimSpace(cat); cat != "" {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (c *CatalogClient) list(ctx context.Context, path string) ([]models.Product, error) {
	var raw []catalogProduct
	if err := c.base.getJSON(ctx, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toModel())
	}
	return out, nil
}
