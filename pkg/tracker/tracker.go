package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tracker tracks synthesis outcomes per engine.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*EngineStats
}

// EngineStats holds counters for a specific engine.
// Fields are accessed atomically.
type EngineStats struct {
	Generated int64
	Failed    int64
	Skipped   int64
}

// Total returns the number of jobs seen.
func (s EngineStats) Total() int64 {
	return s.Generated + s.Failed + s.Skipped
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*EngineStats),
	}
}

// getStats returns the stats object for an engine, creating it if needed.
func (t *Tracker) getStats(engine string) *EngineStats {
	t.mu.RLock()
	s, ok := t.stats[engine]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[engine]; ok {
		return s
	}
	s = &EngineStats{}
	t.stats[engine] = s
	return s
}

// TrackSuccess counts a file produced by the engine.
func (t *Tracker) TrackSuccess(engine string) {
	atomic.AddInt64(&t.getStats(engine).Generated, 1)
}

// TrackFailure counts a failed synthesis attempt.
func (t *Tracker) TrackFailure(engine string) {
	atomic.AddInt64(&t.getStats(engine).Failed, 1)
}

// TrackSkip counts a job skipped because its output already existed.
func (t *Tracker) TrackSkip(engine string) {
	atomic.AddInt64(&t.getStats(engine).Skipped, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]EngineStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]EngineStats)
	for k, v := range t.stats {
		result[k] = EngineStats{
			Generated: atomic.LoadInt64(&v.Generated),
			Failed:    atomic.LoadInt64(&v.Failed),
			Skipped:   atomic.LoadInt64(&v.Skipped),
		}
	}
	return result
}

// Engines returns the tracked engine names in sorted order.
func (t *Tracker) Engines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.stats))
	for k := range t.stats {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
