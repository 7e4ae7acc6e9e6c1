package mempool

import (
	"sync"
	"time"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/ethereum/go-ethereum/common/lru"
)

// SubmittedTransactionsCache remembers recently admitted transaction hashes
// so the same transaction is not admitted twice within entryTTL.
type SubmittedTransactionsCache struct {
	cache    lru.BasicLRU[felt.Felt, time.Time]
	entryTTL time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

func NewSubmittedTransactionsCache(capacity int, entryTTL time.Duration) *SubmittedTransactionsCache {
	return &SubmittedTransactionsCache{
		cache:    lru.NewBasicLRU[felt.Felt, time.Time](capacity),
		entryTTL: entryTTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (c *SubmittedTransactionsCache) WithClock(now func() time.Time) *SubmittedTransactionsCache {
	c.now = now
	return c
}

// AddIfAbsent records txnHash and returns true, unless an entry that has not
// exceeded its lifespan already exists, in which case it returns false.
func (c *SubmittedTransactionsCache) AddIfAbsent(txnHash *felt.Felt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if added, hit := c.cache.Get(*txnHash); hit && now.Sub(added) <= c.entryTTL {
		return false
	}

	c.flush(now)
	c.cache.Add(*txnHash, now)
	return true
}

// Contains returns true if the entry exists in the cache and has not exceeded its lifespan.
func (c *SubmittedTransactionsCache) Contains(txnHash *felt.Felt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	added, hit := c.cache.Get(*txnHash)
	if !hit {
		return false
	}

	if c.now().Sub(added) > c.entryTTL {
		c.cache.Remove(*txnHash)
		return false
	}
	return true
}

func (c *SubmittedTransactionsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// flush removes all entries that have exceeded their lifespan
func (c *SubmittedTransactionsCache) flush(now time.Time) {
	var expiredKeys []felt.Felt
	for _, k := range c.cache.Keys() {
		added, ok := c.cache.Peek(k)
		if ok && now.Sub(added) > c.entryTTL {
			expiredKeys = append(expiredKeys, k)
		}
	}

	for _, k := range expiredKeys {
		c.cache.Remove(k)
	}
}
