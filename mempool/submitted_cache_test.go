package mempool_test

import (
	"testing"
	"time"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/mempool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSubmittedTransactionsCache(t *testing.T) {
	capacity := 5
	entryTTL := time.Second

	newCache := func() (*mempool.SubmittedTransactionsCache, *fakeClock) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		return mempool.NewSubmittedTransactionsCache(capacity, entryTTL).WithClock(clock.Now), clock
	}

	t.Run("entry not found in cache", func(t *testing.T) {
		cache, _ := newCache()
		require.False(t, cache.Contains(&felt.One))
	})

	t.Run("second add of the same hash is refused", func(t *testing.T) {
		cache, _ := newCache()
		require.True(t, cache.AddIfAbsent(&felt.One))
		require.False(t, cache.AddIfAbsent(&felt.One))
		require.True(t, cache.Contains(&felt.One))
	})

	t.Run("expired entries can be added again", func(t *testing.T) {
		cache, clock := newCache()
		require.True(t, cache.AddIfAbsent(&felt.One))
		clock.Advance(entryTTL + time.Millisecond)
		require.False(t, cache.Contains(&felt.One))
		require.True(t, cache.AddIfAbsent(&felt.One))
	})

	t.Run("inserting to full cache with expired txs", func(t *testing.T) {
		cache, clock := newCache()
		txnHashes := make([]felt.Felt, capacity)
		for i := 0; i < capacity; i++ {
			txnHashes[i] = *new(felt.Felt).SetUint64(uint64(i))
			require.True(t, cache.AddIfAbsent(&txnHashes[i]))
		}
		clock.Advance(entryTTL + time.Millisecond)

		txnHash := new(felt.Felt).SetUint64(uint64(capacity + 1))
		require.True(t, cache.AddIfAbsent(txnHash))
		assert.Equal(t, 1, cache.Len())
		for i := 0; i < capacity; i++ {
			require.False(t, cache.Contains(&txnHashes[i]))
		}
	})

	t.Run("inserting to full cache with non-expired txs", func(t *testing.T) {
		cache, _ := newCache()
		firstTxnHash := &felt.Zero
		require.True(t, cache.AddIfAbsent(firstTxnHash))
		for i := 1; i < capacity; i++ {
			require.True(t, cache.AddIfAbsent(new(felt.Felt).SetUint64(uint64(i))))
		}

		// Expected to evict the least-recently-used entry.
		txnHash := new(felt.Felt).SetUint64(uint64(capacity))
		require.True(t, cache.AddIfAbsent(txnHash))
		require.True(t, cache.Contains(txnHash))
		require.False(t, cache.Contains(firstTxnHash))
		assert.Equal(t, capacity, cache.Len())
	})
}
