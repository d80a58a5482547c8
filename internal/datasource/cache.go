package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/models"
)

// SeasonKey identifies one cached season schedule
type SeasonKey struct {
	Sport  models.Sport
	Season string
}

// String returns string representation of cache key
func (k SeasonKey) String() string {
	return fmt.Sprintf("%s:%s", k.Sport, k.Season)
}

// CacheEntry is a cached season with the time it was fetched
type CacheEntry struct {
	Value     *SeasonData
	FetchedAt time.Time
	TTL       time.Duration
}

// Fresh reports whether the entry is still within its TTL at now
func (e CacheEntry) Fresh(now time.Time) bool {
	return e.Value != nil && now.Sub(e.FetchedAt) < e.TTL
}

// SeasonCache wraps a ScheduleSource and refreshes seasons older than the TTL.
// Expiry is decided against the caller's clock so entries stay inspectable
// after they go stale.
type SeasonCache struct {
	source    ScheduleSource
	cache     *cache.Cache
	ttl       time.Duration
	now       func() time.Time
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
	logger    *logrus.Entry
}

// NewSeasonCache creates a cache in front of source
func NewSeasonCache(source ScheduleSource, ttl time.Duration, log *logrus.Logger) *SeasonCache {
	return &SeasonCache{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.OrDiscard(log).WithField("component", "season_cache"),
	}
}

// Name returns the wrapped source's name
func (c *SeasonCache) Name() string {
	return c.source.Name()
}

// FetchSeason implements ScheduleSource through the cache
func (c *SeasonCache) FetchSeason(ctx context.Context, sport models.Sport, season string) (*SeasonData, error) {
	return c.GetOrRefresh(ctx, SeasonKey{Sport: sport, Season: season}, c.now())
}

// GetOrRefresh returns the cached season when fresh at now, otherwise fetches
// it from the source. A failed refresh falls back to a stale entry if one exists.
func (c *SeasonCache) GetOrRefresh(ctx context.Context, key SeasonKey, now time.Time) (*SeasonData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.peek(key)
	if found && entry.Fresh(now) {
		c.hitCount++
		metrics.RecordCacheLookup("hit")
		return entry.Value, nil
	}
	c.missCount++
	metrics.RecordCacheLookup("miss")

	data, err := c.source.FetchSeason(ctx, key.Sport, key.Season)
	if err != nil {
		if found {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"key":        key.String(),
				"fetched_at": entry.FetchedAt,
			}).Warn("Refresh failed, serving stale season")
			return entry.Value, nil
		}
		return nil, fmt.Errorf("failed to fetch season %s: %w", key, err)
	}

	c.cache.Set(key.String(), CacheEntry{Value: data, FetchedAt: now, TTL: c.ttl}, cache.NoExpiration)
	c.logger.WithField("key", key.String()).Debug("Season cached")
	return data, nil
}

// Peek returns the cached entry without refreshing it
func (c *SeasonCache) Peek(key SeasonKey) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peek(key)
}

func (c *SeasonCache) peek(key SeasonKey) (CacheEntry, bool) {
	v, found := c.cache.Get(key.String())
	if !found {
		return CacheEntry{}, false
	}
	entry, ok := v.(CacheEntry)
	return entry, ok
}

// Invalidate drops the cached season
func (c *SeasonCache) Invalidate(key SeasonKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Delete(key.String())
}

// Stats returns hit and miss counts
func (c *SeasonCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitCount, c.missCount
}
