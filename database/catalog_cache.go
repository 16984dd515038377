package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-service/models"
)

const (
	productCachePrefix  = "catalog:product:"
	listCachePrefix     = "catalog:list:v"
	categoriesCacheKey  = "catalog:categories"
	catalogVersionKey   = "catalog:version"
	allProductsListName = "_all"
)

// CatalogCache caches public catalog reads. List entries are keyed by a version
// number so Invalidate drops every list at once without scanning keys.
type CatalogCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{redis: client, ttl: ttl}
}

func (cc *CatalogCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	var p models.Product
	if !cc.get(ctx, productCachePrefix+id, &p) {
		return nil, false
	}
	return &p, true
}

func (cc *CatalogCache) SetProduct(ctx context.Context, p *models.Product) {
	cc.set(ctx, productCachePrefix+p.ID, p)
}

// GetProducts returns the cached list for category ("" for all products).
func (cc *CatalogCache) GetProducts(ctx context.Context, category string) ([]models.Product, bool) {
	key, err := cc.listKey(ctx, category)
	if err != nil {
		return nil, false
	}
	var list []models.Product
	if !cc.get(ctx, key, &list) {
		return nil, false
	}
	return list, true
}

func (cc *CatalogCache) SetProducts(ctx context.Context, category string, products []models.Product) {
	key, err := cc.listKey(ctx, category)
	if err != nil {
		return
	}
	cc.set(ctx, key, products)
}

func (cc *CatalogCache) GetCategories(ctx context.Context) ([]string, bool) {
	var cats []string
	if !cc.get(ctx, categoriesCacheKey, &cats) {
		return nil, false
	}
	return cats, true
}

func (cc *CatalogCache) SetCategories(ctx context.Context, categories []string) {
	cc.set(ctx, categoriesCacheKey, categories)
}

// Invalidate drops all cached lists and categories by bumping the version.
func (cc *CatalogCache) Invalidate(ctx context.Context) error {
	ver, err := cc.redis.Incr(ctx, catalogVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	if err := cc.redis.Del(ctx, categoriesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate categories: %w", err)
	}
	zap.L().Info("Catalog cache invalidated", zap.Int64("new_version", ver))
	return nil
}

func (cc *CatalogCache) listKey(ctx context.Context, category string) (string, error) {
	ver, err := cc.redis.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver = 0
	} else if err != nil {
		return "", err
	}
	name := strings.ToLower(strings.TrimSpace(category))
	if name == "" {
		name = allProductsListName
	}
	return fmt.Sprintf("%s%d:%s", listCachePrefix, ver, name), nil
}

func (cc *CatalogCache) get(ctx context.Context, key string, dst any) bool {
	data, err := cc.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		zap.L().Warn("Failed to unmarshal cached catalog entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (cc *CatalogCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("Failed to marshal catalog entry for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := cc.redis.Set(ctx, key, data, cc.ttl).Err(); err != nil {
		zap.L().Warn("Failed to cache catalog entry", zap.String("key", key), zap.Error(err))
	}
}
