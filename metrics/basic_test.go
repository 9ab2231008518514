package metrics

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicProvider_SameNameSameInstrument(t *testing.T) {
	p := NewBasicProvider()

	require.Same(t, p.Counter("admitted"), p.Counter("admitted"))
	require.Same(t, p.UpDownCounter("inflight"), p.UpDownCounter("inflight"))
	require.Same(t, p.Histogram("duration"), p.Histogram("duration"))
	require.NotSame(t, p.Counter("admitted"), p.Counter("rejected"))
}

func TestBasicProvider_Values(t *testing.T) {
	p := NewBasicProvider()

	c := p.Counter("admitted", WithDescription("accepted tasks"), WithUnit("1"))
	c.Add(3)
	c.Add(2)
	c.Add(-4) // ignored for monotonic counters
	require.Equal(t, int64(5), p.CounterValue("admitted"))
	require.Zero(t, p.CounterValue("never-created"))

	u := p.UpDownCounter("queued")
	u.Add(3)
	u.Add(-1)
	require.Equal(t, int64(2), p.UpDownValue("queued"))

	h := p.Histogram("duration")
	h.Record(0.1)
	h.Record(0.3)
	h.Record(0.2)
	s := p.HistogramSnapshot("duration")
	require.Equal(t, int64(3), s.Count)
	require.InDelta(t, 0.1, s.Min, 1e-9)
	require.InDelta(t, 0.3, s.Max, 1e-9)
	require.InDelta(t, 0.6, s.Sum, 1e-9)
	require.InDelta(t, 0.2, s.Mean, 1e-9)

	cfg, ok := p.Config("admitted")
	require.True(t, ok)
	require.Equal(t, "accepted tasks", cfg.Description)
	require.Equal(t, "1", cfg.Unit)
}

func TestBasicProvider_FirstOptionsWin(t *testing.T) {
	p := NewBasicProvider()
	p.Counter("c", WithAttributes(map[string]string{"pool": "a"}))
	p.Counter("c", WithAttributes(map[string]string{"pool": "b"}))

	cfg, ok := p.Config("c")
	require.True(t, ok)
	require.Equal(t, map[string]string{"pool": "a"}, cfg.Attributes)
}

func TestBasicProvider_Concurrent(t *testing.T) {
	p := NewBasicProvider()
	workers := runtime.NumCPU() * 2
	iters := 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				p.Counter("hits").Add(1)
				if (i+id)%2 == 0 {
					p.UpDownCounter("level").Add(+1)
				} else {
					p.UpDownCounter("level").Add(-1)
				}
				p.Histogram("latency").Record(float64(i%10) / 100.0)
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, int64(workers*iters), p.CounterValue("hits"))
	require.Zero(t, p.UpDownValue("level"))
	s := p.HistogramSnapshot("latency")
	require.Equal(t, int64(workers*iters), s.Count)
	require.InDelta(t, 0.0, s.Min, 1e-9)
	require.InDelta(t, 0.09, s.Max, 1e-9)
}

func TestNoopProvider(t *testing.T) {
	var p Provider = NewNoopProvider()
	require.NotPanics(t, func() {
		p.Counter("c").Add(1)
		p.UpDownCounter("u").Add(-1)
		p.Histogram("h").Record(1.5)
	})
}
