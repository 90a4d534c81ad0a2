package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront_miniapp/internal/shop/transport"
	"storefront_miniapp/platform/logger"
)

const catalogCacheKey = "shop:catalog:v1"

// catalogCache keeps the rendered catalog response in redis so the hot read
// path skips postgres. Cache failures degrade to a direct read, never to an
// error.
type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func newCatalogCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *catalogCache {
	if client == nil {
		return nil
	}
	return &catalogCache{client: client, ttl: ttl, log: log}
}

func (c *catalogCache) Get(ctx context.Context) (transport.CatalogResponse, bool) {
	if c == nil {
		return transport.CatalogResponse{}, false
	}

	raw, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("catalog cache read failed", "error", err)
		}
		return transport.CatalogResponse{}, false
	}

	var resp transport.CatalogResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.Warn("catalog cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return transport.CatalogResponse{}, false
	}
	return resp, true
}

func (c *catalogCache) Set(ctx context.Context, resp transport.CatalogResponse) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("catalog cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", "error", err)
	}
}

func (c *catalogCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, catalogCacheKey).Err(); err != nil {
		c.log.Warn("catalog cache invalidation failed", "error", err)
	}
}
