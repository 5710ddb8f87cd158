package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultCatalogTTL = 10 * time.Minute
	asyncWriteTimeout = 5 * time.Second
)

// CatalogCache caches product listings and details per catalog kind. Lists
// are invalidated by bumping a per-kind version; details are deleted.
type CatalogCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{redis: client, ttl: ttl, logger: logger}
}

func versionKey(kind string) string { return "catalog:" + kind + ":version" }

func detailKey(kind, ref string) string { return "catalog:" + kind + ":detail:" + ref }

func listKey(kind string, version int64, f models.ProductFilter) string {
	active := ""
	if f.Active != nil {
		active = fmt.Sprintf("%t", *f.Active)
	}
	return fmt.Sprintf("catalog:%s:v:%d:p:%d:l:%d:s:%s:c:%s:a:%s",
		kind, version, f.Page, f.Limit,
		strings.ToLower(strings.TrimSpace(f.Search)), f.Category, active)
}

// GetList returns a cached page, if any.
func (c *CatalogCache) GetList(ctx context.Context, kind string, f models.ProductFilter) (*models.ProductPage, bool) {
	version, err := c.version(ctx, kind)
	if err != nil {
		return nil, false
	}
	var page models.ProductPage
	if !c.getJSON(ctx, listKey(kind, version, f), &page) {
		return nil, false
	}
	return &page, true
}

// SetListAsync stores page in the background.
func (c *CatalogCache) SetListAsync(kind string, f models.ProductFilter, page *models.ProductPage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()

		version, err := c.version(ctx, kind)
		if err != nil {
			return
		}
		c.setJSON(ctx, listKey(kind, version, f), page)
	}()
}

// GetProduct looks a product up by id or slug.
func (c *CatalogCache) GetProduct(ctx context.Context, kind, ref string) (*models.Product, bool) {
	var p models.Product
	if !c.getJSON(ctx, detailKey(kind, ref), &p) {
		return nil, false
	}
	return &p, true
}

func (c *CatalogCache) SetProductAsync(kind, ref string, p *models.Product) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()
		c.setJSON(ctx, detailKey(kind, ref), p)
	}()
}

// Invalidate drops every list of kind and the detail entries of p.
func (c *CatalogCache) Invalidate(ctx context.Context, kind string, p *models.Product) {
	if err := c.redis.Incr(ctx, versionKey(kind)).Err(); err != nil {
		c.logger.Error("Failed to invalidate catalog cache", zap.String("kind", kind), zap.Error(err))
	}
	if p == nil {
		return
	}
	keys := []string{detailKey(kind, p.ID.String())}
	if p.Slug != "" {
		keys = append(keys, detailKey(kind, p.Slug))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Failed to delete product cache", zap.String("product_id", p.ID.String()), zap.Error(err))
	}
}

func (c *CatalogCache) version(ctx context.Context, kind string) (int64, error) {
	v, err := c.redis.Get(ctx, versionKey(kind)).Int64()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, err
	}
	// SetNX so a concurrent Incr is never overwritten.
	if err := c.redis.SetNX(ctx, versionKey(kind), 1, 0).Err(); err != nil {
		return 0, err
	}
	return c.redis.Get(ctx, versionKey(kind)).Int64()
}

func (c *CatalogCache) getJSON(ctx context.Context, key string, out interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CatalogCache) setJSON(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}
