package engine

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheEntrySize is the `entry_size` multiplier for phoneme_count in
// spec.md §4.6's memory-accounting formula, and cacheConstOverhead is its
// per-entry `constant_overhead`.
const (
	cacheEntrySize      = 8 // bytes charged per phoneme symbol
	cacheConstOverhead  = 64
	unboundedEntryCount = 1 << 30
)

// CacheStats is the {hits, misses, evictions, hit-rate, bytes, entries}
// snapshot spec.md §4.6 asks for.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
	Bytes     int64
	Entries   int
}

type cacheSlot struct {
	result    *SynthesisResult
	expiresAt time.Time // zero value = no TTL
}

// Cache is the fingerprint-keyed result cache: an
// hashicorp/golang-lru/v2/expirable.LRU gives strict LRU ordering and
// O(1) RemoveOldest; a accountant layered on top enforces the byte-budget
// ceiling spec.md §4.6 requires beyond what the library enforces by
// entry count alone. TTL is evaluated lazily on Get rather than via the
// library's own background sweep, so eviction bookkeeping only ever runs
// synchronously under mu.
type Cache struct {
	mu        sync.Mutex
	lru       *expirable.LRU[string, cacheSlot]
	sizes     map[string]int64
	curBytes  int64
	maxBytes  int64
	ttl       time.Duration
	hits      int64
	misses    int64
	evictions int64
}

// NewCache builds a cache with the given byte ceiling, optional entry
// count ceiling (0 = unbounded), and optional TTL (0 = disabled).
func NewCache(maxBytes int64, maxEntries int, ttl time.Duration) *Cache {
	size := maxEntries
	if size <= 0 {
		size = unboundedEntryCount
	}
	return &Cache{
		lru:      expirable.NewLRU[string, cacheSlot](size, nil, 0),
		sizes:    make(map[string]int64),
		maxBytes: maxBytes,
		ttl:      ttl,
	}
}

// Get probes the cache for fingerprint. Expired entries are removed and
// reported as a miss, per spec.md §4.6.
func (c *Cache) Get(fingerprint string) (*SynthesisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.lru.Get(fingerprint)
	if !ok {
		c.misses++
		return nil, false
	}
	if !slot.expiresAt.IsZero() && time.Now().After(slot.expiresAt) {
		c.removeLocked(fingerprint)
		c.misses++
		return nil, false
	}
	c.hits++
	return cloneResult(slot.result), true
}

// Put inserts result under fingerprint, evicting LRU-oldest entries until
// both the byte budget and any configured entry-count ceiling are
// satisfied, per spec.md §3 invariant 5 ("cache memory footprint never
// exceeds the configured ceiling after any put; eviction runs
// synchronously inside put").
func (c *Cache) Put(fingerprint string, result *SynthesisResult) {
	size := footprint(result)
	slot := cacheSlot{result: cloneResult(result)}
	if c.ttl > 0 {
		slot.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.sizes[fingerprint]; ok {
		c.curBytes -= old
		delete(c.sizes, fingerprint)
	}
	before := c.lru.Keys()
	c.lru.Add(fingerprint, slot)
	c.sizes[fingerprint] = size
	c.curBytes += size
	c.reconcileEvictedLocked(before)

	for c.curBytes > c.maxBytes && c.lru.Len() > 0 {
		key, _, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.removeAccountingLocked(key)
	}
}

// reconcileEvictedLocked detects keys the library's own entry-count
// ceiling silently dropped during Add, and true-ups the byte accountant
// for them. Must be called with mu held.
func (c *Cache) reconcileEvictedLocked(before []string) {
	still := make(map[string]struct{}, c.lru.Len())
	for _, k := range c.lru.Keys() {
		still[k] = struct{}{}
	}
	for _, k := range before {
		if _, ok := still[k]; !ok {
			c.removeAccountingLocked(k)
		}
	}
}

func (c *Cache) removeAccountingLocked(key string) {
	if sz, ok := c.sizes[key]; ok {
		c.curBytes -= sz
		delete(c.sizes, key)
	}
	c.evictions++
}

// removeLocked drops a single (typically TTL-expired) key and its
// accounting. Must be called with mu held.
func (c *Cache) removeLocked(key string) {
	c.lru.Remove(key)
	c.removeAccountingLocked(key)
}

// Clear empties the cache and its accounting.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.sizes = make(map[string]int64)
	c.curBytes = 0
}

// Stats returns the current {hits, misses, evictions, hit-rate, bytes,
// entries} snapshot.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
		Bytes:     c.curBytes,
		Entries:   c.lru.Len(),
	}
}

// footprint implements spec.md §4.6's memory-accounting formula:
// sample_count*4 + phoneme_count*entry_size + token_count*4 + error_len +
// constant_overhead.
func footprint(r *SynthesisResult) int64 {
	if r == nil {
		return cacheConstOverhead
	}
	return int64(sampleCount(r.Audio.Samples))*4 +
		int64(len(r.Phonemes))*cacheEntrySize +
		int64(len(r.TokenIDs))*4 +
		int64(len(r.ErrorMessage)) +
		cacheConstOverhead
}
