package metrics

import (
	"sync"
	"sync/atomic"
)

// registry lazily creates one instrument per name.
type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func (r *registry[T]) get(name string, create func() T) T {
	r.mu.RLock()
	v, ok := r.items[name]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = r.items[name]; ok {
		return v
	}
	if r.items == nil {
		r.items = make(map[string]T)
	}
	v = create()
	r.items[name] = v
	return v
}

// BasicProvider keeps instruments in memory. It is safe for concurrent use and meant
// for tests, examples and the demo command.
type BasicProvider struct {
	counters   registry[*BasicCounter]
	updowns    registry[*BasicUpDownCounter]
	histograms registry[*BasicHistogram]

	mu   sync.Mutex
	meta map[string]InstrumentConfig
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{meta: make(map[string]InstrumentConfig)}
}

func (p *BasicProvider) remember(name string, opts []InstrumentOption) {
	p.mu.Lock()
	if _, ok := p.meta[name]; !ok {
		p.meta[name] = buildConfig(opts)
	}
	p.mu.Unlock()
}

// Config returns the metadata the named instrument was first created with.
func (p *BasicProvider) Config(name string) (InstrumentConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.meta[name]
	return c, ok
}

func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return p.counters.get(name, func() *BasicCounter {
		p.remember(name, opts)
		return &BasicCounter{}
	})
}

func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return p.updowns.get(name, func() *BasicUpDownCounter {
		p.remember(name, opts)
		return &BasicUpDownCounter{}
	})
}

func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return p.histograms.get(name, func() *BasicHistogram {
		p.remember(name, opts)
		return &BasicHistogram{}
	})
}

// CounterValue returns the value of the named counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	return p.counters.get(name, func() *BasicCounter { return &BasicCounter{} }).Snapshot()
}

// UpDownValue returns the value of the named up/down counter, or 0 if it was never created.
func (p *BasicProvider) UpDownValue(name string) int64 {
	return p.updowns.get(name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} }).Snapshot()
}

// HistogramSnapshot returns the state of the named histogram.
func (p *BasicProvider) HistogramSnapshot(name string) HistSnapshot {
	return p.histograms.get(name, func() *BasicHistogram { return &BasicHistogram{} }).Snapshot()
}

// BasicCounter is a thread-safe monotonic counter. Negative increments are ignored.
type BasicCounter struct{ val atomic.Int64 }

func (c *BasicCounter) Add(n int64) {
	if n > 0 {
		c.val.Add(n)
	}
}

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter.
type BasicUpDownCounter struct{ val atomic.Int64 }

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram aggregates count, sum, min and max without buckets.
type BasicHistogram struct {
	mu       sync.Mutex
	count    int64
	sum      float64
	min, max float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
