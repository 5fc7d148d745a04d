package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrumentSet creates the instruments of one metric family, all named
// under a common prefix. The first creation failure is kept and reported by
// err, so a family is checked once after it is built.
type instrumentSet struct {
	meter  metric.Meter
	prefix string
	failed error
}

func newInstrumentSet(mt metric.Meter, prefix string) *instrumentSet {
	return &instrumentSet{meter: mt, prefix: prefix}
}

func (s *instrumentSet) name(suffix string) string {
	return s.prefix + "." + suffix
}

// counter creates a synchronous counter, incremented by the recording code.
func (s *instrumentSet) counter(suffix, desc, unit string) metric.Int64Counter {
	name := s.name(suffix)
	inst, err := s.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.keep(name, err)

	return inst
}

// latency creates a histogram in seconds over durationBucketBoundaries.
func (s *instrumentSet) latency(suffix, desc string) metric.Float64Histogram {
	name := s.name(suffix)
	inst, err := s.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	s.keep(name, err)

	return inst
}

// level creates a gauge observed from tree stats at collection time.
func (s *instrumentSet) level(suffix, desc, unit string) metric.Int64ObservableGauge {
	name := s.name(suffix)
	inst, err := s.meter.Int64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.keep(name, err)

	return inst
}

// total creates a monotonic counter observed from tree stats at collection time.
func (s *instrumentSet) total(suffix, desc, unit string) metric.Int64ObservableCounter {
	name := s.name(suffix)
	inst, err := s.meter.Int64ObservableCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.keep(name, err)

	return inst
}

func (s *instrumentSet) keep(name string, err error) {
	if err != nil && s.failed == nil {
		s.failed = fmt.Errorf("create %s: %w", name, err)
	}
}

func (s *instrumentSet) err() error {
	return s.failed
}
