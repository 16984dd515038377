package services

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/common/logger"
	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"
)

// ProductSource reads the public product catalog.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// ProductCache is a best-effort read-through cache in front of ProductSource.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, bool)
	SetProduct(ctx context.Context, p *models.Product)
	GetProducts(ctx context.Context, category string) ([]models.Product, bool)
	SetProducts(ctx context.Context, category string, products []models.Product)
	GetCategories(ctx context.Context) ([]string, bool)
	SetCategories(ctx context.Context, categories []string)
	Invalidate(ctx context.Context) error
}

const (
	SortDefault   = "default"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"

	relatedLimit = 4
)

// ProductQuery filters and orders a catalog listing.
type ProductQuery struct {
	Category string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	Sort     string
	Search   string
}

// DefaultProductQuery covers the [0, 1000] price range with catalog order.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{
		MinPrice: decimal.Zero,
		MaxPrice: decimal.NewFromInt(1000),
		Sort:     SortDefault,
	}
}

type CatalogService struct {
	source  ProductSource
	cache   ProductCache
	metrics MetricsRecorder
}

func NewCatalogService(source ProductSource, cache ProductCache, metrics MetricsRecorder) *CatalogService {
	return &CatalogService{source: source, cache: cache, metrics: metrics}
}

// Browse lists products of a category (or all), keeps those whose unit price
// lies within the range and that match the search text, then sorts them.
func (s *CatalogService) Browse(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	products, err := s.listProducts(ctx, q.Category)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		price := p.UnitPrice()
		if price.LessThan(q.MinPrice) || price.GreaterThan(q.MaxPrice) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	return out, nil
}

func sortProducts(products []models.Product, mode string) {
	switch mode {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].UnitPrice().LessThan(products[j].UnitPrice())
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].UnitPrice().GreaterThan(products[j].UnitPrice())
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating.Rate > products[j].Rating.Rate
		})
	}
}

// ValidSort reports whether mode is a supported sort order.
func ValidSort(mode string) bool {
	switch mode {
	case "", SortDefault, SortPriceLow, SortPriceHigh, SortRating:
		return true
	}
	return false
}

// GetProduct returns a single product, or ErrProductNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, id); ok {
			s.cacheHit("product")
			return p, nil
		}
		s.cacheMiss("product")
	}

	p, err := s.source.GetProduct(ctx, id)
	if err != nil {
		mapped := upstreamError(err)
		if isNotFound(mapped) {
			return nil, ErrProductNotFound.Wrap(err)
		}
		return nil, mapped
	}
	if s.cache != nil {
		s.cache.SetProduct(ctx, p)
	}
	return p, nil
}

// Related returns up to four other products from the same category.
func (s *CatalogService) Related(ctx context.Context, id string) ([]models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	peers, err := s.listProducts(ctx, product.Category)
	if err != nil {
		return nil, err
	}

	related := make([]models.Product, 0, relatedLimit)
	for _, p := range peers {
		if p.ID == product.ID || p.Category != product.Category {
			continue
		}
		related = append(related, p)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if cats, ok := s.cache.GetCategories(ctx); ok {
			s.cacheHit("categories")
			return cats, nil
		}
		s.cacheMiss("categories")
	}

	cats, err := s.source.Categories(ctx)
	if err != nil {
		return nil, upstreamError(err)
	}
	if s.cache != nil {
		s.cache.SetCategories(ctx, cats)
	}
	return cats, nil
}

// Invalidate drops cached listings, e.g. after a seller adds a product.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) listProducts(ctx context.Context, category string) ([]models.Product, error) {
	if s.cache != nil {
		if list, ok := s.cache.GetProducts(ctx, category); ok {
			s.cacheHit("list")
			return list, nil
		}
		s.cacheMiss("list")
	}

	var (
		list []models.Product
		err  error
	)
	if category == "" {
		list, err = s.source.ListProducts(ctx)
	} else {
		list, err = s.source.ListByCategory(ctx, category)
	}
	if err != nil {
		return nil, upstreamError(err)
	}
	if s.cache != nil {
		s.cache.SetProducts(ctx, category, list)
	}
	return list, nil
}

func (s *CatalogService) cacheHit(kind string) {
	recordCount(s.metrics, awspkg.MetricCacheHits, map[string]string{"Cache": "catalog", "Kind": kind})
}

func (s *CatalogService) cacheMiss(kind string) {
	recordCount(s.metrics, awspkg.MetricCacheMisses, map[string]string{"Cache": "catalog", "Kind": kind})
}
