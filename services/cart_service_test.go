package services

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

func newCartFixture() (*CartService, *memCartStore) {
	catalog := NewCatalogService(newFakeCatalog(
		models.Product{ID: "p1", Name: "Mug", Price: d("50")},
		models.Product{ID: "p2", Name: "Lamp", Price: d("60")},
	), nil, nil)
	store := newMemCartStore()
	return NewCartService(store, catalog, NewQuoteService(catalog, DefaultPricingPolicy(), 2)), store
}

func TestCartService_AddTwiceThenZero(t *testing.T) {
	svc, _ := newCartFixture()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1")
	require.NoError(t, err)
	cart, err := svc.Add(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Count())

	cart, err = svc.SetQuantity(ctx, "u1", "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	n, err := svc.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCartService_AddUnknownProduct(t *testing.T) {
	svc, store := newCartFixture()

	_, err := svc.Add(context.Background(), "u1", "ghost")
	assert.Equal(t, http.StatusNotFound, apperrors.From(err).Code)
	assert.Empty(t, store.carts)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	svc, store := newCartFixture()
	ctx := context.Background()
	store.put("u1", models.CartItem{ProductID: "p1", Quantity: 3}, models.CartItem{ProductID: "p2", Quantity: 1})

	cart, err := svc.Remove(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "p2", Quantity: 1}}, cart.Items)

	require.NoError(t, svc.Clear(ctx, "u1"))
	n, err := svc.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartService_BuyNowAddsOnlyWhenAbsent(t *testing.T) {
	svc, store := newCartFixture()
	ctx := context.Background()
	store.put("u1", models.CartItem{ProductID: "p1", Quantity: 3})

	cart, err := svc.BuyNow(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "p1", Quantity: 3}}, cart.Items)

	cart, err = svc.BuyNow(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}}, cart.Items)
}

func TestCartService_Quote(t *testing.T) {
	svc, store := newCartFixture()
	store.put("u1", models.CartItem{ProductID: "p2", Quantity: 2})

	q, err := svc.Quote(context.Background(), "u1")
	require.NoError(t, err)
	assertMoney(t, "120", q.Subtotal, "subtotal")
	assertMoney(t, "0", q.Shipping, "shipping")
	assertMoney(t, "12", q.Tax, "tax")
	assertMoney(t, "132", q.Total, "total")
}

func TestQuoteService_UnavailableProduct(t *testing.T) {
	svc, store := newCartFixture()
	store.put("u1", models.CartItem{ProductID: "p1", Quantity: 1}, models.CartItem{ProductID: "gone", Quantity: 1})

	_, err := svc.Quote(context.Background(), "u1")
	appErr := apperrors.From(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Contains(t, appErr.Message, "gone")
}

// slowLookup counts concurrent lookups to check the fan-out limit.
type slowLookup struct {
	inFlight, peak atomic.Int32
}

func (s *slowLookup) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return &models.Product{ID: id, Price: d("1")}, nil
}

func TestQuoteService_BoundedConcurrency(t *testing.T) {
	lookup := &slowLookup{}
	svc := NewQuoteService(lookup, DefaultPricingPolicy(), 3)

	lines := make([]models.CartItem, 0, 10)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		lines = append(lines, models.CartItem{ProductID: id, Quantity: 1})
	}

	q, err := svc.Quote(context.Background(), lines)
	require.NoError(t, err)
	assert.Len(t, q.Lines, 10)
	assert.LessOrEqual(t, lookup.peak.Load(), int32(3))
	assert.Equal(t, []string{"a", "b"}, []string{q.Lines[0].ProductID, q.Lines[1].ProductID})
}

// numericIDLookup resolves zero-padded ids to the catalog's own id, like a
// catalog keyed by integers.
type numericIDLookup struct{}

func (numericIDLookup) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimLeft(id, "0") != "1" {
		return nil, apperrors.ErrNotFound
	}
	return &models.Product{ID: "1", Name: "Backpack", Price: d("10")}, nil
}

func TestCartService_KeysLinesByCatalogID(t *testing.T) {
	store := newMemCartStore()
	svc := NewCartService(store, numericIDLookup{}, NewQuoteService(numericIDLookup{}, DefaultPricingPolicy(), 2))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "1")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "01")
	require.NoError(t, err)
	cart, err := svc.BuyNow(ctx, "u1", "001")
	require.NoError(t, err)

	assert.Equal(t, []models.CartItem{{ProductID: "1", Quantity: 2}}, cart.Items)
}
