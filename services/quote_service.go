package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

// ProductLookup resolves a single product by id.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// QuoteService prices cart lines against the live catalog.
type QuoteService struct {
	catalog       ProductLookup
	policy        PricingPolicy
	maxConcurrent int
}

func NewQuoteService(catalog ProductLookup, policy PricingPolicy, maxConcurrent int) *QuoteService {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &QuoteService{
		catalog:       catalog,
		policy:        policy,
		maxConcurrent: maxConcurrent,
	}
}

// Quote fetches every distinct product in lines concurrently and prices the
// cart. It fails if any product cannot be resolved.
func (s *QuoteService) Quote(ctx context.Context, lines []models.CartItem) (models.Quote, error) {
	products := make(map[string]models.Product, len(lines))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}

		id := line.ProductID
		g.Go(func() error {
			p, err := s.catalog.GetProduct(gctx, id)
			if err != nil {
				if isNotFound(err) {
					return apperrors.New(http.StatusUnprocessableEntity,
						fmt.Sprintf("Product %s is no longer available", id), err)
				}
				return err
			}
			mu.Lock()
			products[id] = *p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.Quote{}, err
	}

	return s.policy.Price(lines, products)
}
