// Package cache provides a TTL cache of fund records keyed by ticker.
// There is no eviction: the ticker universe is fixed, so superseded
// entries are simply overwritten.
package cache

import (
	"sync"
	"time"

	"github.com/Tarantababu/funds-data/internal/fund"
)

// DefaultTTL is the freshness window applied when none is configured.
const DefaultTTL = 15 * time.Minute

type entry struct {
	record   fund.Record
	storedAt time.Time
}

// Cache maps ticker -> (record, fetch timestamp). All reads and writes
// go through a single mutex; the lock is never held across network I/O.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// New creates a Cache with the given TTL. A non-positive TTL falls back
// to the default.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached record for ticker iff it is still fresh.
func (c *Cache) Get(ticker string) (fund.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ticker]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return fund.Record{}, false
	}
	return e.record, true
}

// Put stores a record for ticker, overwriting unconditionally.
func (c *Cache) Put(ticker string, record fund.Record, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[ticker] = entry{record: record, storedAt: at}
}
