package services

import (
	"context"

	"go.uber.org/zap"

	apperrors "storefront-service/common/errors"
	"storefront-service/common/logger"
	"storefront-service/models"
)

// CartStore persists one cart snapshot per user.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// CartService applies cart store operations to the signed-in user's cart.
type CartService struct {
	store   CartStore
	catalog ProductLookup
	quotes  *QuoteService
}

func NewCartService(store CartStore, catalog ProductLookup, quotes *QuoteService) *CartService {
	return &CartService{store: store, catalog: catalog, quotes: quotes}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return cart, nil
}

// Add puts one more unit of productID in the cart. The product must exist;
// the line is keyed by the id the catalog returns.
func (s *CartService) Add(ctx context.Context, userID, productID string) (*models.Cart, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *models.Cart) { c.Add(p.ID) })
}

// SetQuantity sets the quantity of a line; zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) { c.SetQuantity(productID, qty) })
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) { c.Remove(productID) })
}

// BuyNow makes sure productID is in the cart without changing an existing line.
func (s *CartService) BuyNow(ctx context.Context, userID, productID string) (*models.Cart, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *models.Cart) {
		if !c.Contains(p.ID) {
			c.Add(p.ID)
		}
	})
}

func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.store.DeleteCart(ctx, userID); err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	logger.Info(ctx, "cart cleared", zap.String("user_id", userID))
	return nil
}

// Quote prices the user's current cart.
func (s *CartService) Quote(ctx context.Context, userID string) (models.Quote, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return models.Quote{}, err
	}
	return s.quotes.Quote(ctx, cart.Items)
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(*models.Cart)) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(cart)
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return cart, nil
}
