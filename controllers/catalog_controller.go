package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
	"storefront-service/services"
)

type CatalogService interface {
	Browse(ctx context.Context, q services.ProductQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	Related(ctx context.Context, id string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CatalogController struct {
	catalog CatalogService
}

func NewCatalogController(catalog CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// ListProducts handles GET /products?category=&min_price=&max_price=&sort=&q=
func (cc *CatalogController) ListProducts(c *gin.Context) {
	q, err := parseProductQuery(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	products, err := cc.catalog.Browse(c.Request.Context(), q)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	p, err := cc.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (cc *CatalogController) Related(c *gin.Context) {
	products, err := cc.catalog.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (cc *CatalogController) Categories(c *gin.Context) {
	cats, err := cc.catalog.Categories(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func parseProductQuery(c *gin.Context) (services.ProductQuery, error) {
	q := services.DefaultProductQuery()
	q.Category = strings.TrimSpace(c.Query("category"))
	if strings.EqualFold(q.Category, "all") {
		q.Category = ""
	}
	q.Search = c.Query("q")
	if s := c.Query("sort"); s != "" {
		if !services.ValidSort(s) {
			return q, apperrors.ErrInvalidInput.WithMessage("sort must be one of default, price-low, price-high, rating")
		}
		q.Sort = s
	}

	var err error
	if q.MinPrice, err = decimalParam(c, "min_price", q.MinPrice); err != nil {
		return q, err
	}
	if q.MaxPrice, err = decimalParam(c, "max_price", q.MaxPrice); err != nil {
		return q, err
	}
	if q.MinPrice.GreaterThan(q.MaxPrice) {
		return q, apperrors.ErrInvalidInput.WithMessage("min_price cannot exceed max_price")
	}
	return q, nil
}

func decimalParam(c *gin.Context, name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return def, apperrors.ErrInvalidInput.WithMessage(name + " must be a non-negative number")
	}
	return v, nil
}
