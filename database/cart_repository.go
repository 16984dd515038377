package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storefront-service/models"
)

// ErrCheckoutLocked is returned when a checkout is already in flight for the user.
var ErrCheckoutLocked = errors.New("checkout already in progress")

// releaseLockScript deletes the lock only if it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CartRepository stores cart snapshots and checkout guards in Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) getKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *CartRepository) getLockKey(userID string) string {
	return fmt.Sprintf("checkout:lock:%s", userID)
}

// GetCart returns the user's cart, or an empty cart when none is stored.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.getKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart.UserID = userID
	cart.Normalize()
	return &cart, nil
}

// SaveCart writes the snapshot and refreshes its TTL. An empty cart is deleted.
func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	if cart.IsEmpty() {
		return r.DeleteCart(ctx, cart.UserID)
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.getKey(cart.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.getKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// AcquireCheckoutLock marks a checkout as in flight for userID. It returns a
// token for ReleaseCheckoutLock, or ErrCheckoutLocked if one is already running.
func (r *CartRepository) AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.getLockKey(userID), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return "", ErrCheckoutLocked
	}
	return token, nil
}

func (r *CartRepository) ReleaseCheckoutLock(ctx context.Context, userID, token string) error {
	if err := releaseLockScript.Run(ctx, r.client, []string{r.getLockKey(userID)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release checkout lock: %w", err)
	}
	return nil
}
