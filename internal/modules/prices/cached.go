package prices

import (
	"context"
	"time"

	"github.com/aristath/indexboard/internal/cache"
	"github.com/aristath/indexboard/internal/domain"
	"github.com/rs/zerolog"
)

var _ Source = (*CachedSource)(nil)

// CachedSource memoises another Source's rows keyed by query parameters.
// Cache failures are logged and fall through to the wrapped source.
type CachedSource struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedSource wraps source with c. A ttl of zero keeps entries until invalidated.
func NewCachedSource(source Source, c cache.Cache, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  c,
		ttl:    ttl,
		log:    log.With().Str("component", "prices_cache").Logger(),
	}
}

// Name identifies the wrapped backend
func (c *CachedSource) Name() string {
	return c.source.Name()
}

func (c *CachedSource) IndexSeries(ctx context.Context, ticker string, since time.Time) ([]domain.PriceBar, error) {
	key := cache.Key(c.source.Name(), "index", ticker, since.Format(domain.DateLayout))
	bars, err := load(ctx, c, key, func() ([]domain.PriceBar, error) {
		return c.source.IndexSeries(ctx, ticker, since)
	})
	return normalizeDates(bars), err
}

func (c *CachedSource) ConstituentSeries(ctx context.Context, since time.Time) ([]domain.PriceBar, error) {
	key := cache.Key(c.source.Name(), "constituents", since.Format(domain.DateLayout))
	bars, err := load(ctx, c, key, func() ([]domain.PriceBar, error) {
		return c.source.ConstituentSeries(ctx, since)
	})
	return normalizeDates(bars), err
}

func (c *CachedSource) Metadata(ctx context.Context) ([]domain.ConstituentMetadata, error) {
	key := cache.Key(c.source.Name(), "metadata")
	return load(ctx, c, key, func() ([]domain.ConstituentMetadata, error) {
		return c.source.Metadata(ctx)
	})
}

// Invalidate drops every memoised row
func (c *CachedSource) Invalidate(ctx context.Context) (int64, error) {
	n, err := c.cache.Purge(ctx)
	if err != nil {
		return 0, err
	}
	c.log.Info().Int64("entries", n).Msg("Price cache invalidated")
	return n, nil
}

func load[T any](ctx context.Context, c *CachedSource, key string, fetch func() (T, error)) (T, error) {
	var value T
	hit, err := c.cache.Get(ctx, key, &value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, querying source")
	} else if hit {
		c.log.Debug().Str("key", key).Msg("Cache hit")
		return value, nil
	}

	value, err = fetch()
	if err != nil {
		return value, err
	}

	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}

// normalizeDates restores UTC dates; decoded timestamps come back in the local zone
func normalizeDates(bars []domain.PriceBar) []domain.PriceBar {
	for i := range bars {
		bars[i].Date = bars[i].Date.UTC()
	}
	return bars
}
