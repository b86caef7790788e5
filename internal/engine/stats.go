package engine

import (
	"container/ring"
	"sync"
	"sync/atomic"
)

const latencyHistorySize = 1000

// PerformanceStats is the {requests, success, fail} totals plus the
// rolling latency history spec.md §4.6 asks for.
type PerformanceStats struct {
	Requests       int64
	Success        int64
	Fail           int64
	LatencyHistory []float64 // most recent last, oldest evicted from front when full
}

// statsTracker holds the orchestrator's hot counters (atomic) and its
// rolling latency history (mutex-guarded container/ring), matching
// spec.md §5's "atomic integers for hot counters, mutex-protected for the
// latency history deque" split.
type statsTracker struct {
	requests atomic.Int64
	success  atomic.Int64
	fail     atomic.Int64

	mu      sync.Mutex
	history *ring.Ring
	filled  int
}

func newStatsTracker() *statsTracker {
	return &statsTracker{history: ring.New(latencyHistorySize)}
}

func (s *statsTracker) recordRequest(ok bool, latencyMS float64) {
	s.requests.Add(1)
	if ok {
		s.success.Add(1)
	} else {
		s.fail.Add(1)
	}
	s.mu.Lock()
	s.history.Value = latencyMS
	s.history = s.history.Next()
	if s.filled < latencyHistorySize {
		s.filled++
	}
	s.mu.Unlock()
}

func (s *statsTracker) snapshot() PerformanceStats {
	s.mu.Lock()
	history := make([]float64, 0, s.filled)
	// s.history currently points at the slot that will be overwritten
	// next; stepping back over the filled slots lands on the oldest entry
	// (the same slot when the ring is full).
	r := s.history.Move(-s.filled)
	for i := 0; i < s.filled; i++ {
		if v, ok := r.Value.(float64); ok {
			history = append(history, v)
		}
		r = r.Next()
	}
	s.mu.Unlock()

	return PerformanceStats{
		Requests:       s.requests.Load(),
		Success:        s.success.Load(),
		Fail:           s.fail.Load(),
		LatencyHistory: history,
	}
}
