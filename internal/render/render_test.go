package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/ordmap/internal/render"
	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

var testScenarioKeys = []int{10, 20, 30, 15, 25, 5}

func testScenarioTree(t *testing.T) *rbtree.Tree[int, string] {
	t.Helper()

	tree := rbtree.NewOrdered[int, string]()

	for _, key := range testScenarioKeys {
		_, _, err := tree.Put(key, strings.Repeat("v", key/5))
		require.NoError(t, err)
	}

	return tree
}

func TestTreeDrawing(t *testing.T) {
	t.Parallel()

	tree := testScenarioTree(t)

	var buf bytes.Buffer

	depth, err := render.Tree(&buf, tree.Root(), render.Options{})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"       /------+ 30 (B)",
		"       |      \\------+ 25 (R)",
		"|------+ 20 (B)",
		"       |      /------+ 15 (R)",
		"       \\------+ 10 (B)",
		"              \\------+ 5 (R)",
		"",
	}, "\n")

	assert.Equal(t, expected, buf.String())
	assert.Equal(t, 3, depth)
}

func TestTreeDrawingEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	depth, err := render.Tree(&buf, rbtree.NewOrdered[int, int]().Root(), render.Options{Color: true})
	require.NoError(t, err)
	assert.Equal(t, "(empty)\n", buf.String())
	assert.Zero(t, depth)
}

func TestTreeDrawingValuesAndColor(t *testing.T) {
	t.Parallel()

	tree := rbtree.NewOrdered[string, int]()
	_, _, err := tree.Put("a", 1)
	require.NoError(t, err)
	_, _, err = tree.Put("b", 2)
	require.NoError(t, err)

	var buf bytes.Buffer

	_, err = render.Tree(&buf, tree.Root(), render.Options{Values: true, Color: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a → 1")
	assert.Contains(t, out, "b → 2")
	assert.Contains(t, out, "\x1b[31m", "red node is painted red")
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	snap := render.NewSnapshot(testScenarioTree(t))

	assert.Equal(t, 6, snap.Size)
	assert.Equal(t, 1, snap.BlackHeight)
	require.Len(t, snap.Entries, 6)
	assert.Equal(t, render.Entry{Key: "5", Value: "v"}, snap.Entries[0])
	assert.Equal(t, render.Entry{Key: "30", Value: "vvvvvv"}, snap.Entries[5])

	require.NotNil(t, snap.Root)
	assert.Equal(t, "20", snap.Root.Key)
	assert.Equal(t, "black", snap.Root.Color)
	require.NotNil(t, snap.Root.Left)
	assert.Equal(t, "red", snap.Root.Left.Left.Color)
	assert.Nil(t, snap.Root.Right.Right)
}

func TestEncodeSnapshotYAML(t *testing.T) {
	t.Parallel()

	snap := render.NewSnapshot(testScenarioTree(t))

	var buf bytes.Buffer
	require.NoError(t, render.EncodeSnapshot(&buf, snap, "yaml"))

	var decoded render.Snapshot
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap, decoded)
	assert.Contains(t, buf.String(), "black_height: 1")
}

func TestEncodeSnapshotJSON(t *testing.T) {
	t.Parallel()

	snap := render.NewSnapshot(testScenarioTree(t))

	var buf bytes.Buffer
	require.NoError(t, render.EncodeSnapshot(&buf, snap, "json"))

	var decoded render.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap, decoded)
}

func TestEncodeSnapshotUnknownFormat(t *testing.T) {
	t.Parallel()

	err := render.EncodeSnapshot(&bytes.Buffer{}, render.Snapshot{}, "xml")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestEntriesTable(t *testing.T) {
	t.Parallel()

	out := render.EntriesTable(render.NewSnapshot(testScenarioTree(t)), "light", 0)

	for _, key := range []string{"5", "10", "15", "20", "25", "30"} {
		assert.Contains(t, out, key)
	}

	assert.Contains(t, strings.ToLower(out), "6 entries")
	assert.NotContains(t, strings.ToLower(out), "not shown")
}

func TestEntriesTableMaxRows(t *testing.T) {
	t.Parallel()

	out := render.EntriesTable(render.NewSnapshot(testScenarioTree(t)), "ascii", 2)

	assert.Contains(t, out, "vv")
	assert.NotContains(t, out, "vvvvvv")
	assert.Contains(t, strings.ToLower(out), "4 not shown")
	assert.Contains(t, out, "+")
}

func TestStatsTable(t *testing.T) {
	t.Parallel()

	result := render.BenchResult{
		Ops:      1234567,
		Puts:     1000000,
		Removes:  234567,
		Elapsed:  time.Second,
		Stats:    rbtree.Stats{Rotations: 4321, Size: 10},
		Verified: true,
	}

	out := render.StatsTable(result, "rounded")

	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "4,321")
	assert.Contains(t, out, "1.23 Mops/s")
	assert.Contains(t, strings.ToLower(out), "invariants hold")
	assert.Contains(t, out, "╭")
}

func TestOpsPerSecond(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 500.0, render.BenchResult{Ops: 1000, Elapsed: 2 * time.Second}.OpsPerSecond(), 1e-9)
	assert.Zero(t, render.BenchResult{Ops: 1000}.OpsPerSecond())
}

func TestTableStyleFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "StyleLight", render.TableStyle("unknown").Name)
	assert.Equal(t, "StyleRounded", render.TableStyle("rounded").Name)
	assert.Equal(t, "StyleDefault", render.TableStyle("ascii").Name)
}
