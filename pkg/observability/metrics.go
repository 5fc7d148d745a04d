package observability

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

const (
	opFamily   = "ordmap"
	treeFamily = "ordmap.tree"

	attrOp     = "op"
	attrStatus = "status"
	attrKind   = "kind"

	statusOK    = "ok"
	statusError = "error"

	readHeaderTimeout = 5 * time.Second
)

// durationBucketBoundaries covers 1µs to 1s: single map operations sit at the
// low end, whole scripts at the high end.
var durationBucketBoundaries = []float64{
	1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01, 0.05, 0.1, 0.5, 1,
}

// OpMetrics holds the OTel instruments for map operation rate, errors and latency.
type OpMetrics struct {
	opsTotal    metric.Int64Counter
	opDuration  metric.Float64Histogram
	errorsTotal metric.Int64Counter
}

// NewOpMetrics creates operation metric instruments from the given meter.
func NewOpMetrics(mt metric.Meter) (*OpMetrics, error) {
	set := newInstrumentSet(mt, opFamily)

	om := &OpMetrics{
		opsTotal:    set.counter("ops.total", "Total number of map operations", "{op}"),
		opDuration:  set.latency("op.duration.seconds", "Map operation duration in seconds"),
		errorsTotal: set.counter("errors.total", "Total number of failed map operations", "{error}"),
	}

	if err := set.err(); err != nil {
		return nil, err
	}

	return om, nil
}

// Record records a completed operation. A non-nil err marks it failed.
func (om *OpMetrics) Record(ctx context.Context, op string, err error, duration time.Duration) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	om.opsTotal.Add(ctx, 1, attrs)
	om.opDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		om.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TreeStatsProvider exposes structural tree counters for OTel export.
type TreeStatsProvider interface {
	Stats() rbtree.Stats
}

// RegisterTreeMetrics registers observable instruments that report the
// counters of every named tree at collection time. Unregister the returned
// registration once the trees go away.
func RegisterTreeMetrics(mt metric.Meter, trees map[string]TreeStatsProvider) (metric.Registration, error) {
	set := newInstrumentSet(mt, treeFamily)

	size := set.level("size", "Number of entries in the tree", "{entry}")
	slots := set.level("slots", "Arena slots allocated for the tree", "{slot}")
	rotations := set.total("rotations", "Rotations performed by fix-ups", "{rotation}")
	recolorings := set.total("recolorings", "Recolouring steps performed by fix-ups", "{recoloring}")
	fixups := set.total("fixups", "Fix-up invocations", "{fixup}")

	if err := set.err(); err != nil {
		return nil, err
	}

	names := slices.Sorted(maps.Keys(trees))

	return mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, name := range names {
			stats := trees[name].Stats()
			tree := attribute.String(AttrTree, name)

			o.ObserveInt64(size, int64(stats.Size), metric.WithAttributes(tree))
			o.ObserveInt64(slots, int64(stats.Slots), metric.WithAttributes(tree))
			o.ObserveInt64(rotations, stats.Rotations, metric.WithAttributes(tree))
			o.ObserveInt64(recolorings, stats.Recolorings, metric.WithAttributes(tree))
			o.ObserveInt64(fixups, stats.InsertFixups, metric.WithAttributes(tree, attribute.String(attrKind, "insert")))
			o.ObserveInt64(fixups, stats.RemoveFixups, metric.WithAttributes(tree, attribute.String(attrKind, "remove")))
		}

		return nil
	}, size, slots, rotations, recolorings, fixups)
}

// StatsSnapshot is a TreeStatsProvider fed by the goroutine that owns a tree,
// so collection never reads the tree concurrently with its mutation.
type StatsSnapshot struct {
	mu    sync.Mutex
	stats rbtree.Stats
}

// Store publishes a new snapshot.
func (s *StatsSnapshot) Store(stats rbtree.Stats) {
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
}

// Stats returns the latest snapshot.
func (s *StatsSnapshot) Stats() rbtree.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}
