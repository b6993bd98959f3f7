package market

import (
	"context"
	"sync"
	"time"

	"coindash/internal/metrics"
)

// DefaultTTL is how long a fetched series stays fresh.
const DefaultTTL = 300 * time.Second

// Fetcher is the market-data client boundary: given a trading pair, a
// candle interval and a candle count it returns an ordered series or fails
// with a transport/exchange error.
type Fetcher interface {
	FetchOHLCV(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
}

// Key identifies one memoizable fetch. Compared by value.
type Key struct {
	Symbol   string
	Interval string
	Limit    int
}

type entry struct {
	candles   []Candle
	fetchedAt time.Time
}

// Cache memoizes Fetcher calls per Key for a fixed TTL. Entries are
// replaced wholesale, never mutated in place, and failures are never
// stored. Symbols are independent: a failed fetch for one key leaves every
// other entry untouched.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	counts  *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	entries map[Key]entry
}

func NewCache(fetcher Fetcher, ttl time.Duration, counts *metrics.Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if counts == nil {
		counts = metrics.NewNoop()
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		counts:  counts,
		now:     time.Now,
		entries: make(map[Key]entry),
	}
}

// Get returns the cached series for key while its entry is younger than the
// TTL, otherwise fetches a fresh one and stores it. A failed fetch surfaces
// as *FetchError and leaves any expired entry in place for the next attempt
// to replace.
func (c *Cache) Get(ctx context.Context, key Key) ([]Candle, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		c.counts.CacheHits.Inc()
		return e.candles, nil
	}
	c.mu.Unlock()
	c.counts.CacheMisses.Inc()

	candles, err := c.fetcher.FetchOHLCV(ctx, key.Symbol, key.Interval, key.Limit)
	if err != nil {
		c.counts.FetchErrors.Inc()
		return nil, &FetchError{Symbol: key.Symbol, Err: err}
	}
	fetchedAt := c.now()

	c.mu.Lock()
	// Racing refreshes for the same key: the later fetch keeps the slot,
	// each caller returns its own result without blocking.
	if e, ok := c.entries[key]; !ok || !e.fetchedAt.After(fetchedAt) {
		c.entries[key] = entry{candles: candles, fetchedAt: fetchedAt}
	}
	c.mu.Unlock()
	return candles, nil
}

// Clear drops every entry immediately so the next Get for any key
// re-fetches.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]entry)
	c.mu.Unlock()
}
