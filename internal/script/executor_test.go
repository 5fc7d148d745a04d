package script_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/ordmap/internal/render"
	"github.com/Sumatoshi-tech/ordmap/internal/script"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

const testScenarioScript = `
put 10 ten
put 20 twenty
put 30 thirty
put 15 fifteen
put 25 twenty five
put 5 five
get 25
put 10 TEN
remove 10
remove 10
get 10
contains 15
contains 10
has-value twenty five
has-value ten
size
range 12 25
min
max
empty
clear
min
empty
`

func testRun[K any](
	t *testing.T, keys script.KeySyntax[K], src string, opts script.Options,
) (*script.Executor[K], string, error) {
	t.Helper()

	commands, err := script.Parse(strings.NewReader(src))
	require.NoError(t, err)

	var out bytes.Buffer

	exec := script.NewExecutor(script.NewTree(keys), keys, &out, opts)
	err = exec.Run(context.Background(), commands)

	return exec, out.String(), err
}

func TestExecutorScenario(t *testing.T) {
	t.Parallel()

	exec, out, err := testRun(t, script.IntKeys("asc"), testScenarioScript, script.Options{Check: true})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"inserted", "inserted", "inserted", "inserted", "inserted", "inserted",
		"twenty five",
		"replaced ten",
		"removed TEN",
		"(absent)",
		"(absent)",
		"true",
		"false",
		"true",
		"false",
		"5",
		"15 fifteen", "20 twenty", "25 twenty five",
		"5 five",
		"30 thirty",
		"false",
		"cleared",
		"(empty)",
		"true",
		"",
	}, "\n")

	assert.Equal(t, expected, out)
	assert.True(t, exec.Tree().IsEmpty())
}

func TestExecutorDescendingOrder(t *testing.T) {
	t.Parallel()

	src := "put 1 a\nput 2 b\nput 3 c\nmin\nmax\nrange 3 2\n"

	exec, out, err := testRun(t, script.IntKeys("desc"), src, script.Options{})
	require.NoError(t, err)

	assert.Equal(t, "inserted\ninserted\ninserted\n3 c\n1 a\n3 c\n2 b\n", out)
	assert.Equal(t, []int64{3, 2, 1}, exec.Tree().Keys())
}

func TestExecutorStringKeys(t *testing.T) {
	t.Parallel()

	src := "put pear 1\nput apple 2\nput fig 3\nrange b g\ncheck\n"

	_, out, err := testRun(t, script.StringKeys("asc"), src, script.Options{})
	require.NoError(t, err)
	assert.Equal(t, "inserted\ninserted\ninserted\nfig 3\nok\n", out)
}

func TestExecutorBadRange(t *testing.T) {
	t.Parallel()

	_, _, err := testRun(t, script.IntKeys("asc"), "put 1 a\nrange 5 2\n", script.Options{})
	require.ErrorIs(t, err, script.ErrBadRange)
	assert.Contains(t, err.Error(), "line 2")
}

func TestExecutorBadKeyStops(t *testing.T) {
	t.Parallel()

	exec, out, err := testRun(t, script.IntKeys("asc"), "put 1 a\nput x b\nput 2 c\n", script.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, "inserted\n", out)
	assert.Equal(t, 1, exec.Tree().Size())
}

func TestExecutorKeyValidatorError(t *testing.T) {
	t.Parallel()

	keys := script.IntKeys("asc")
	tree := rbtree.New(
		rbtree.WithComparator[int64, string](keys.Compare),
		rbtree.WithKeyValidator[int64, string](func(key int64) error {
			if key < 0 {
				return assert.AnError
			}

			return nil
		}),
	)

	commands, err := script.Parse(strings.NewReader("put -1 neg\n"))
	require.NoError(t, err)

	exec := script.NewExecutor(tree, keys, &bytes.Buffer{}, script.Options{})
	err = exec.Run(context.Background(), commands)
	require.ErrorIs(t, err, rbtree.ErrInvalidKey)
}

func TestExecutorDumpJSON(t *testing.T) {
	t.Parallel()

	_, out, err := testRun(t, script.IntKeys("asc"), "put 2 b\nput 1 a\ndump\n", script.Options{Format: "json"})
	require.NoError(t, err)

	var snap render.Snapshot
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "inserted\ninserted\n")), &snap))
	assert.Equal(t, []render.Entry{{Key: "1", Value: "a"}, {Key: "2", Value: "b"}}, snap.Entries)
	assert.Equal(t, 2, snap.Size)
}

func TestExecutorDumpText(t *testing.T) {
	t.Parallel()

	_, out, err := testRun(t, script.StringKeys("asc"), "put k v\ndump\n", script.Options{Style: "ascii"})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "1 entries")
	assert.Contains(t, out, "| k ")
}

func TestExecutorCanceled(t *testing.T) {
	t.Parallel()

	commands, err := script.Parse(strings.NewReader("size\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	keys := script.IntKeys("asc")
	exec := script.NewExecutor(script.NewTree(keys), keys, &bytes.Buffer{}, script.Options{})
	require.ErrorIs(t, exec.Run(ctx, commands), context.Canceled)
}

func TestExecutorTelemetry(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
		require.NoError(t, mp.Shutdown(context.Background()))
	})

	metrics, err := observability.NewOpMetrics(mp.Meter("test"))
	require.NoError(t, err)

	opts := script.Options{Tracer: tp.Tracer("test"), Metrics: metrics}

	_, _, err = testRun(t, script.IntKeys("asc"), "put 1 a\nget 1\nget nope\n", opts)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "ordmap.script.put", spans[0].Name)
	assert.Equal(t, "ordmap.script.get", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
	assert.Equal(t, codes.Error, spans[2].Status.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "ordmap.ops.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}

	assert.Equal(t, int64(3), total)
}
