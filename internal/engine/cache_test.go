package engine

import (
	"testing"
	"time"

	"github.com/go-audio/audio"
)

func resultWithSamples(n int) *SynthesisResult {
	return &SynthesisResult{
		Status: statusOK,
		Audio:  AudioData{Samples: &audio.FloatBuffer{Data: make([]float64, n)}},
	}
}

func TestCacheGetMissAndHit(t *testing.T) {
	c := NewCache(1<<20, 0, 0)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("key", resultWithSamples(10))
	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got.Audio.Samples.Data) != 10 {
		t.Fatalf("got %d samples, want 10", len(got.Audio.Samples.Data))
	}
	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestCacheGetReturnsIndependentCopy(t *testing.T) {
	c := NewCache(1<<20, 0, 0)
	c.Put("key", resultWithSamples(4))
	got, _ := c.Get("key")
	got.Audio.Samples.Data[0] = 99

	got2, _ := c.Get("key")
	if got2.Audio.Samples.Data[0] == 99 {
		t.Fatal("mutating a returned result leaked into the cached entry")
	}
}

func TestCachePutEvictsOldestUntilUnderByteBudget(t *testing.T) {
	// Each entry of 100 samples costs 100*4 + cacheConstOverhead bytes.
	entrySize := footprint(resultWithSamples(100))
	c := NewCache(entrySize*2, 0, 0)

	c.Put("a", resultWithSamples(100))
	c.Put("b", resultWithSamples(100))
	if stats := c.Stats(); stats.Entries != 2 {
		t.Fatalf("entries = %d, want 2", stats.Entries)
	}

	// Touch "a" so "b" becomes the LRU-oldest, then insert a third entry
	// that forces an eviction.
	c.Get("a")
	c.Put("c", resultWithSamples(100))

	stats := c.Stats()
	if stats.Bytes > c.maxBytes {
		t.Fatalf("bytes %d exceeds max %d after put", stats.Bytes, c.maxBytes)
	}
	if stats.Evictions == 0 {
		t.Fatal("expected at least one eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected \"b\" (least recently used) to have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected \"a\" (recently touched) to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected \"c\" (just inserted) to survive")
	}
}

func TestCacheEntryCountCeilingReconcilesByteAccounting(t *testing.T) {
	c := NewCache(1<<30, 2, 0)
	c.Put("a", resultWithSamples(10))
	c.Put("b", resultWithSamples(10))
	c.Put("c", resultWithSamples(10)) // library drops "a" by entry-count ceiling

	stats := c.Stats()
	if stats.Entries != 2 {
		t.Fatalf("entries = %d, want 2", stats.Entries)
	}
	wantBytes := footprint(resultWithSamples(10)) * 2
	if stats.Bytes != wantBytes {
		t.Fatalf("bytes = %d, want %d (accounting must track the library's own eviction)", stats.Bytes, wantBytes)
	}
	if stats.Evictions != 1 {
		t.Fatalf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheTTLExpiresLazilyOnGet(t *testing.T) {
	c := NewCache(1<<20, 0, time.Millisecond)
	c.Put("key", resultWithSamples(1))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Fatal("expected expired entry to miss")
	}
	stats := c.Stats()
	if stats.Entries != 0 {
		t.Fatalf("entries = %d, want 0 after expired entry evicted", stats.Entries)
	}
}

func TestCacheClearResetsAccounting(t *testing.T) {
	c := NewCache(1<<20, 0, 0)
	c.Put("a", resultWithSamples(10))
	c.Put("b", resultWithSamples(10))
	c.Clear()

	stats := c.Stats()
	if stats.Entries != 0 || stats.Bytes != 0 {
		t.Fatalf("stats = %+v, want zeroed after Clear", stats)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected cache empty after Clear")
	}
}

func TestCacheHitRateComputed(t *testing.T) {
	c := NewCache(1<<20, 0, 0)
	c.Put("key", resultWithSamples(1))
	c.Get("key")
	c.Get("key")
	c.Get("missing")

	stats := c.Stats()
	want := 2.0 / 3.0
	if stats.HitRate != want {
		t.Fatalf("hit rate = %v, want %v", stats.HitRate, want)
	}
}
