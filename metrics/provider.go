// Package metrics defines the small instrument surface an Executor records into,
// and three providers for it: NoopProvider (the default), BasicProvider (in-memory,
// with snapshots for tests) and PrometheusProvider.
package metrics

// Provider constructs named instruments. Asking twice for the same name returns the same
// instrument. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts, such as admitted or rejected tasks.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a level that moves both ways, such as queue length.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution, such as task duration in seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries optional instrument metadata.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static labels of the instrument itself. Keep cardinality bounded.
	Attributes map[string]string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets the help text of the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets the unit of the instrument (e.g., "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static labels to the instrument. The map is copied.
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if c.Attributes == nil && len(attrs) > 0 {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func buildConfig(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
