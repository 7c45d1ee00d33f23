package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/indexboard/internal/database"
	"github.com/aristath/indexboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newSQLiteCache(t *testing.T, clk *clock) *SQLiteCache {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	c := NewSQLiteCache(db.Conn())
	c.now = clk.now
	return c
}

func newMemoryCache(_ *testing.T, clk *clock) *MemoryCache {
	c := NewMemoryCache()
	c.now = clk.now
	return c
}

func backends() map[string]func(*testing.T, *clock) Cache {
	return map[string]func(*testing.T, *clock) Cache{
		"memory": func(t *testing.T, clk *clock) Cache { return newMemoryCache(t, clk) },
		"sqlite": func(t *testing.T, clk *clock) Cache { return newSQLiteCache(t, clk) },
	}
}

func sampleBars() []domain.PriceBar {
	return []domain.PriceBar{
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Ticker: "^GDAXI", Open: 13000, High: 13300, Low: 12900, Close: 13100, Volume: 1e6},
		{Date: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), Ticker: "^GDAXI", Open: 13100, High: 13800, Low: 11700, Close: 11900, Volume: 2e6},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	for name, build := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clk := &clock{t: time.Unix(1_700_000_000, 0)}
			c := build(t, clk)

			var got []domain.PriceBar
			hit, err := c.Get(ctx, "index", &got)
			require.NoError(t, err)
			assert.False(t, hit)

			require.NoError(t, c.Set(ctx, "index", sampleBars(), time.Hour))

			hit, err = c.Get(ctx, "index", &got)
			require.NoError(t, err)
			require.True(t, hit)
			require.Len(t, got, 2)
			assert.True(t, got[0].Date.Equal(sampleBars()[0].Date))
			assert.Equal(t, 11900.0, got[1].Close)
		})
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	for name, build := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := build(t, &clock{t: time.Unix(1_700_000_000, 0)})

			require.NoError(t, c.Set(ctx, "index", sampleBars(), 0))

			var first []domain.PriceBar
			_, err := c.Get(ctx, "index", &first)
			require.NoError(t, err)
			first[0].Close = -1

			var second []domain.PriceBar
			_, err = c.Get(ctx, "index", &second)
			require.NoError(t, err)
			assert.Equal(t, 13100.0, second[0].Close)
		})
	}
}

func TestCache_Expiry(t *testing.T) {
	for name, build := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clk := &clock{t: time.Unix(1_700_000_000, 0)}
			c := build(t, clk)

			require.NoError(t, c.Set(ctx, "short", 1, time.Minute))
			require.NoError(t, c.Set(ctx, "forever", 2, 0))

			clk.t = clk.t.Add(2 * time.Minute)

			var v int
			hit, err := c.Get(ctx, "short", &v)
			require.NoError(t, err)
			assert.False(t, hit)

			hit, err = c.Get(ctx, "forever", &v)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, 2, v)

			deleted, err := c.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)
		})
	}
}

func TestCache_DeleteAndPurge(t *testing.T) {
	for name, build := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := build(t, &clock{t: time.Unix(1_700_000_000, 0)})

			require.NoError(t, c.Set(ctx, "a", "x", 0))
			require.NoError(t, c.Set(ctx, "b", "y", 0))
			require.NoError(t, c.Set(ctx, "c", "z", 0))

			require.NoError(t, c.Delete(ctx, "a"))
			var s string
			hit, err := c.Get(ctx, "a", &s)
			require.NoError(t, err)
			assert.False(t, hit)

			purged, err := c.Purge(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), purged)

			hit, err = c.Get(ctx, "b", &s)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c Cache = NoopCache{}

	require.NoError(t, c.Set(ctx, "k", 1, time.Hour))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sqlite|index|^GDAXI|2000-01-01", Key("sqlite", "index", "^GDAXI", "2000-01-01"))
}
