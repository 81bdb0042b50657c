// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache. When a public
// recipe or landing page is rendered, the resulting HTML is stored in
// Valkey so subsequent requests skip the DB query and template execution
// entirely. Keys are namespaced by locale because the same recipe renders
// differently under /cs and /en.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached page by key.
func (pc *PageCache) Invalidate(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateRecipe removes the cached recipe page in every locale.
// Called after admin edits so stale content never outlives an update by
// more than one request.
func (pc *PageCache) InvalidateRecipe(ctx context.Context, routeSlug string) {
	for _, locale := range []string{"cs", "en"} {
		pc.Invalidate(ctx, RecipeKey(locale, routeSlug))
	}
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// RecipeKey returns the cache key for a recipe page under a locale.
func RecipeKey(locale, routeSlug string) string {
	return locale + ":r:" + routeSlug
}

// LandingKey returns the cache key for a locale's landing page.
func LandingKey(locale string) string {
	return locale + ":landing"
}

// SitemapKey is the cache key for the generated sitemap.
const SitemapKey = "sitemap"
