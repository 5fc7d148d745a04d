package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ordmap/internal/render"
	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

const (
	snapshotEvery = 1024

	opPut    = "put"
	opRemove = "remove"
)

type benchFlags struct {
	ops         int
	keySpace    int
	seed        int64
	removeRatio float64
	metricsAddr string
}

// NewBenchCommand creates the randomized workload command.
func NewBenchCommand(global *GlobalOptions) *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a randomized put/remove workload and report tree statistics",
		Long: `Run a seeded random mix of puts and removes over integer keys, verify
the red-black invariants at the end and print operation and fix-up counters.

With --metrics-addr the counters are exported on /metrics while the workload
runs and until the command is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchCommand(cmd, global, flags)
		},
	}

	cmd.Flags().IntVar(&flags.ops, "ops", 0, "number of operations (default from config)")
	cmd.Flags().IntVar(&flags.keySpace, "key-space", 0, "keys are drawn from [0, key-space) (default from config)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().Float64Var(&flags.removeRatio, "remove-ratio", 0, "share of removes in the mix (default from config)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runBenchCommand(cmd *cobra.Command, global *GlobalOptions, flags *benchFlags) error {
	rt, err := setup(cmd, global, observability.ModeBench, func(cfg *config.Config) {
		applyBenchFlags(cmd, cfg, flags)
	})
	if err != nil {
		return err
	}
	defer rt.close()

	metricsAddr := rt.cfg.Telemetry.MetricsAddr

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.NewOpMetrics(rt.providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	snapshot := &observability.StatsSnapshot{}

	reg, err := observability.RegisterTreeMetrics(rt.providers.Meter,
		map[string]observability.TreeStatsProvider{mainTree: snapshot})
	if err != nil {
		return fmt.Errorf("register tree metrics: %w", err)
	}

	defer func() {
		if unregErr := reg.Unregister(); unregErr != nil {
			rt.providers.Logger.Warn("unregister tree metrics failed", "error", unregErr)
		}
	}()

	var srv *http.Server

	if metricsAddr != "" {
		srv = observability.ServeMetrics(metricsAddr, rt.providers.MetricsHandler)

		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				rt.providers.Logger.Error("metrics server failed", "addr", metricsAddr, "error", serveErr)
			}
		}()

		rt.providers.Logger.InfoContext(ctx, "serving metrics", "addr", metricsAddr)
	}

	ctx, span := rt.providers.Tracer.Start(ctx, "ordmap.bench")
	result, err := runBench(ctx, rt.cfg.Bench, metrics, snapshot)
	observability.RecordSpanError(span, err)
	span.End()

	if err != nil {
		return err
	}

	if _, err = fmt.Fprintln(rt.out, render.StatsTable(result, rt.cfg.Render.Style)); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	if srv == nil {
		return nil
	}

	rt.providers.Logger.InfoContext(ctx, "workload finished, serving metrics until interrupted")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stop metrics server: %w", err)
	}

	return nil
}

func applyBenchFlags(cmd *cobra.Command, cfg *config.Config, flags *benchFlags) {
	bench := &cfg.Bench

	if flags.metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = flags.metricsAddr
	}

	if cmd.Flags().Changed("ops") {
		bench.Ops = flags.ops
	}

	if cmd.Flags().Changed("key-space") {
		bench.KeySpace = flags.keySpace
	}

	if cmd.Flags().Changed("seed") {
		bench.Seed = flags.seed
	}

	if cmd.Flags().Changed("remove-ratio") {
		bench.RemoveRatio = flags.removeRatio
	}
}

// runBench drives the workload on a fresh tree. It stops early, with the
// context error, when ctx is canceled.
func runBench(
	ctx context.Context, bench config.BenchConfig, metrics *observability.OpMetrics, snapshot *observability.StatsSnapshot,
) (render.BenchResult, error) {
	seed := uint64(bench.Seed) //nolint:gosec // any bit pattern is a valid seed.
	rng := rand.New(rand.NewPCG(seed, seed))
	tree := rbtree.NewOrdered[int, int]()

	result := render.BenchResult{Ops: bench.Ops}
	start := time.Now()

	for idx := range bench.Ops {
		if idx%snapshotEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("bench interrupted: %w", err)
			}

			snapshot.Store(tree.Stats())
		}

		key := rng.IntN(bench.KeySpace)
		opStart := time.Now()

		if rng.Float64() < bench.RemoveRatio {
			_, found, err := tree.Remove(key)
			metrics.Record(ctx, opRemove, err, time.Since(opStart))

			if err != nil {
				return result, fmt.Errorf("remove %d: %w", key, err)
			}

			result.Removes++

			if !found {
				result.Misses++
			}

			continue
		}

		_, _, err := tree.Put(key, idx)
		metrics.Record(ctx, opPut, err, time.Since(opStart))

		if err != nil {
			return result, fmt.Errorf("put %d: %w", key, err)
		}

		result.Puts++
	}

	result.Elapsed = time.Since(start)
	result.Stats = tree.Stats()
	snapshot.Store(result.Stats)

	verifyErr := tree.Verify()
	result.Verified = verifyErr == nil

	if verifyErr != nil {
		return result, verifyErr
	}

	return result, nil
}
