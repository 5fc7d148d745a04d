package render

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

const rateDigits = 2

// TableStyle maps a configured style name to a go-pretty style.
// Unknown names fall back to the light style.
func TableStyle(name string) table.Style {
	switch name {
	case "rounded":
		return table.StyleRounded
	case "ascii":
		return table.StyleDefault
	default:
		return table.StyleLight
	}
}

// EntriesTable renders the entries of snap as a two-column table. At most
// maxRows rows are printed when maxRows is positive; the footer reports how
// many were left out.
func EntriesTable(snap Snapshot, style string, maxRows int) string {
	tbl := table.NewWriter()
	tbl.SetStyle(TableStyle(style))
	tbl.AppendHeader(table.Row{"#", "Key", "Value"})

	entries := snap.Entries
	if maxRows > 0 && len(entries) > maxRows {
		entries = entries[:maxRows]
	}

	for idx, entry := range entries {
		tbl.AppendRow(table.Row{idx + 1, entry.Key, entry.Value})
	}

	footer := fmt.Sprintf("%d entries", snap.Size)
	if hidden := len(snap.Entries) - len(entries); hidden > 0 {
		footer = fmt.Sprintf("%d entries, %d not shown", snap.Size, hidden)
	}

	tbl.AppendFooter(table.Row{"", footer, fmt.Sprintf("black height %d", snap.BlackHeight)})

	return tbl.Render()
}

// BenchResult is the outcome of a benchmark run.
type BenchResult struct {
	Ops      int
	Puts     int
	Removes  int
	Misses   int
	Elapsed  time.Duration
	Stats    rbtree.Stats
	Verified bool
}

// OpsPerSecond returns the throughput of the run.
func (r BenchResult) OpsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}

	return float64(r.Ops) / r.Elapsed.Seconds()
}

// StatsTable renders the counters of a benchmark run.
func StatsTable(result BenchResult, style string) string {
	tbl := table.NewWriter()
	tbl.SetStyle(TableStyle(style))
	tbl.AppendHeader(table.Row{"Metric", "Value"})

	stats := result.Stats

	tbl.AppendRows([]table.Row{
		{"operations", humanize.Comma(int64(result.Ops))},
		{"puts", humanize.Comma(int64(result.Puts))},
		{"removes", humanize.Comma(int64(result.Removes))},
		{"misses", humanize.Comma(int64(result.Misses))},
		{"size", humanize.Comma(int64(stats.Size))},
		{"arena slots", humanize.Comma(int64(stats.Slots))},
		{"inserts", humanize.Comma(stats.Inserts)},
		{"overwrites", humanize.Comma(stats.Overwrites)},
		{"rotations", humanize.Comma(stats.Rotations)},
		{"recolorings", humanize.Comma(stats.Recolorings)},
		{"insert fix-ups", humanize.Comma(stats.InsertFixups)},
		{"remove fix-ups", humanize.Comma(stats.RemoveFixups)},
		{"elapsed", result.Elapsed.Round(time.Microsecond).String()},
		{"throughput", humanize.SIWithDigits(result.OpsPerSecond(), rateDigits, "ops/s")},
	})

	verdict := "invariants hold"
	if !result.Verified {
		verdict = "invariants violated"
	}

	tbl.AppendFooter(table.Row{"verify", verdict})

	return tbl.Render()
}
