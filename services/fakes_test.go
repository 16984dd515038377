package services

import (
	"context"
	"sync"
	"time"

	"storefront-service/clients"
	"storefront-service/database"
	"storefront-service/models"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products []models.Product
	calls    map[string]int
	err      error
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	return &fakeCatalog{products: products, calls: map[string]int{}}
}

func (f *fakeCatalog) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeCatalog) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.hit("list")
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeCatalog) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	f.hit("category:" + category)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	f.hit("get:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, clients.ErrNotFound
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]string, error) {
	f.hit("categories")
	if f.err != nil {
		return nil, f.err
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

type memCache struct {
	mu          sync.Mutex
	products    map[string]models.Product
	lists       map[string][]models.Product
	categories  []string
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{products: map[string]models.Product{}, lists: map[string][]models.Product{}}
}

func (c *memCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	return &p, ok
}

func (c *memCache) SetProduct(ctx context.Context, p *models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = *p
}

func (c *memCache) GetProducts(ctx context.Context, category string) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lists[category]
	return l, ok
}

func (c *memCache) SetProducts(ctx context.Context, category string, products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[category] = products
}

func (c *memCache) GetCategories(ctx context.Context) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, c.categories != nil
}

func (c *memCache) SetCategories(ctx context.Context, categories []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
}

func (c *memCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = map[string][]models.Product{}
	c.categories = nil
	c.invalidated++
	return nil
}

// memCartStore is an in-memory CartStore and CheckoutGuard.
type memCartStore struct {
	mu      sync.Mutex
	carts   map[string]models.Cart
	locks   map[string]string
	getErr  error
	deletes int
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: map[string]models.Cart{}, locks: map[string]string{}}
}

func (s *memCartStore) put(userID string, items ...models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = models.Cart{UserID: userID, Items: items}
}

func (s *memCartStore) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.carts[userID]
	if !ok {
		return models.NewCart(userID), nil
	}
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c, nil
}

func (s *memCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cart
	c.Items = append([]models.CartItem{}, cart.Items...)
	s.carts[cart.UserID] = c
	return nil
}

func (s *memCartStore) DeleteCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	s.deletes++
	return nil
}

func (s *memCartStore) AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[userID]; held {
		return "", database.ErrCheckoutLocked
	}
	s.locks[userID] = "tok"
	return "tok", nil
}

func (s *memCartStore) ReleaseCheckoutLock(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[userID] == token {
		delete(s.locks, userID)
	}
	return nil
}

type fakeOrders struct {
	mu        sync.Mutex
	submitted []models.CreateOrderRequest
	message   string
	err       error
	// block, when set, holds CreateOrder until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order models.CreateOrderRequest) (string, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, order)
	if f.err != nil {
		return "", f.err
	}
	return f.message, nil
}

func (f *fakeOrders) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

type fakePublisher struct {
	mu        sync.Mutex
	topic     string
	eventType string
	payloads  [][]byte
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, topicArn, eventType string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topicArn
	p.eventType = eventType
	p.payloads = append(p.payloads, message)
	return p.err
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{counts: map[string]int{}} }

func (m *fakeMetrics) RecordCount(ctx context.Context, name string, dims map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
	return nil
}

func (m *fakeMetrics) RecordValue(ctx context.Context, name string, value float64, dims map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
	return nil
}

func (m *fakeMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}
