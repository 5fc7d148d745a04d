// Package commands implements CLI command handlers for ordmap.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ordmap/internal/script"
	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
	"github.com/Sumatoshi-tech/ordmap/pkg/version"
)

// GlobalOptions holds the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

// env is the per-command runtime: loaded config and telemetry providers.
type env struct {
	cfg       *config.Config
	providers observability.Providers
	out       io.Writer
}

// setup loads the configuration, lets override adjust it from command flags,
// and starts telemetry. Prometheus export is enabled for bench runs with a
// metrics address.
func setup(
	cmd *cobra.Command, global *GlobalOptions, mode observability.AppMode, override func(cfg *config.Config),
) (*env, error) {
	cfg, err := config.LoadConfig(global.ConfigPath)
	if err != nil {
		return nil, err
	}

	if global.NoColor {
		cfg.Render.Color = false
	}

	if override != nil {
		override(cfg)

		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogLevel = cfg.Logging.SlogLevel()
	obsCfg.PrometheusEnabled = mode == observability.ModeBench && cfg.Telemetry.MetricsAddr != ""

	switch {
	case global.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case global.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &env{cfg: cfg, providers: providers, out: cmd.OutOrStdout()}, nil
}

func (e *env) close() {
	if err := e.providers.Shutdown(context.Background()); err != nil {
		e.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (e *env) scriptOptions(check bool, metrics *observability.OpMetrics) script.Options {
	return script.Options{
		Check:   check,
		Format:  e.cfg.Render.Format,
		Style:   e.cfg.Render.Style,
		MaxRows: e.cfg.Render.MaxRows,
		Logger:  e.providers.Logger,
		Tracer:  e.providers.Tracer,
		Metrics: metrics,
	}
}
