package provider

import (
	"context"
	"sync"
	"time"

	"github.com/fnilvuwu/newshub/pkg/domain"
)

// RateLimiter serializes outbound calls with a minimum inter-request delay.
// The mutex is held across the wait so concurrent requests cannot race past
// the limiter together. Clock functions are injectable for tests.
type RateLimiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
	now   func() time.Time
	wait  func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter with the given minimum delay between calls
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		delay: delay,
		now:   time.Now,
		wait:  sleepCtx,
	}
}

// Wait blocks until at least the configured delay has passed since the
// previous call, or until ctx expires. An aborted wait leaves the limiter
// state untouched.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if elapsed := r.now().Sub(r.last); elapsed < r.delay && !r.last.IsZero() {
		if err := r.wait(ctx, r.delay-elapsed); err != nil {
			return err
		}
	}
	r.last = r.now()
	return nil
}

// sleepCtx sleeps for d unless ctx expires first
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResultCache is a short-TTL in-memory cache of normalized search results,
// keyed by the serialized query parameters. Entries are never evicted
// explicitly, only ignored once expired; the cache lives for the process
// lifetime.
type ResultCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]cacheEntry
}

type cacheEntry struct {
	articles []domain.Article
	stored   time.Time
}

// NewResultCache creates a cache with the given entry TTL
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]cacheEntry),
	}
}

// Get returns the cached articles for key if present and not expired
func (c *ResultCache) Get(key string) ([]domain.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok || c.now().Sub(entry.stored) >= c.ttl {
		return nil, false
	}
	return entry.articles, true
}

// Set stores articles for key, replacing any previous entry
func (c *ResultCache) Set(key string, articles []domain.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{articles: articles, stored: c.now()}
}
