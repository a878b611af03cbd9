package engine

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/connectk/internal/board"
)

// Number of lock shards (power of 2 for fast modulo)
const cacheShardCount = 64
const cacheShardMask = cacheShardCount - 1

// cacheEntry is one slot of the evaluation cache.
type cacheEntry struct {
	Key   uint64 // full key for verification
	Score int32
	Age   uint8
	Valid bool
}

// EvalCache memoizes static evaluations by Zobrist key. It is direct-mapped:
// a new entry always replaces the slot it hashes to.
type EvalCache struct {
	entries []cacheEntry
	shards  [cacheShardCount]sync.RWMutex
	size    uint64
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewEvalCache creates a cache of roughly sizeMB megabytes. A size of 0
// returns nil, which disables caching.
func NewEvalCache(sizeMB int) *EvalCache {
	if sizeMB <= 0 {
		return nil
	}
	const entrySize = 16
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	return &EvalCache{
		entries: make([]cacheEntry, n),
		size:    n,
		mask:    n - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// cacheKey mixes the evaluating side into the board hash.
func cacheKey(hash uint64, me board.Side) uint64 {
	return hash ^ board.ZobristSide(me)
}

// Probe looks up a key. The bool is false on a miss.
func (c *EvalCache) Probe(key uint64) (int, bool) {
	c.probes.Add(1)
	idx := key & c.mask
	shard := idx & cacheShardMask

	c.shards[shard].RLock()
	e := c.entries[idx]
	c.shards[shard].RUnlock()

	if e.Valid && e.Key == key {
		c.hits.Add(1)
		return int(e.Score), true
	}
	return 0, false
}

// Store records a score for key.
func (c *EvalCache) Store(key uint64, score int) {
	idx := key & c.mask
	shard := idx & cacheShardMask

	c.shards[shard].Lock()
	c.entries[idx] = cacheEntry{
		Key:   key,
		Score: int32(score),
		Age:   uint8(c.age.Load()),
		Valid: true,
	}
	c.shards[shard].Unlock()
}

// NewSearch advances the generation used by Fill.
func (c *EvalCache) NewSearch() {
	c.age.Add(1)
}

// Clear empties the cache and resets its statistics.
func (c *EvalCache) Clear() {
	for i := range c.shards {
		c.shards[i].Lock()
	}
	clear(c.entries)
	for i := range c.shards {
		c.shards[i].Unlock()
	}
	c.age.Store(0)
	c.hits.Store(0)
	c.probes.Store(0)
}

// Fill returns the permille of sampled slots written during the current
// generation.
func (c *EvalCache) Fill() int {
	sample := uint64(1000)
	if sample > c.size {
		sample = c.size
	}
	age := uint8(c.age.Load())
	used := 0
	for i := uint64(0); i < sample; i++ {
		shard := i & cacheShardMask
		c.shards[shard].RLock()
		e := c.entries[i]
		c.shards[shard].RUnlock()
		if e.Valid && e.Age == age {
			used++
		}
	}
	return used * 1000 / int(sample)
}

// HitRate returns the hit rate as a percentage.
func (c *EvalCache) HitRate() float64 {
	probes := c.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(probes) * 100
}

// Size returns the number of slots.
func (c *EvalCache) Size() uint64 {
	return c.size
}
