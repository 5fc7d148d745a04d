package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ordmap/internal/script"
	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
)

const (
	stdinArg = "-"
	mainTree = "main"
)

type runOptions struct {
	check  bool
	dump   bool
	format string
}

// NewRunCommand creates the script runner command.
func NewRunCommand(global *GlobalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Execute an operation script against an ordered map",
		Long: `Execute a line-oriented script against an ordered map.

Operations:
  put K V        insert or replace, V spans the rest of the line
  get K          print the value stored under K
  remove K       delete K and print its value
  contains K     print whether K is present
  has-value V    print whether any key maps to V
  size, empty    print the entry count or whether it is zero
  clear          remove every entry
  check          verify the red-black invariants
  dump           print all entries in the configured format
  range LO HI    print entries with LO <= key <= HI
  min, max       print the smallest or largest entry

Lines starting with # are comments. Without a script argument, or with "-",
the script is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScriptCommand(cmd, global, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.check, "check", false, "verify invariants after every mutation")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump the final map after the script")
	cmd.Flags().StringVar(&opts.format, "format", "", "dump format: text, yaml or json (default from config)")

	return cmd
}

func runScriptCommand(cmd *cobra.Command, global *GlobalOptions, opts *runOptions, args []string) error {
	in, closeIn, err := openScript(cmd, args)
	if err != nil {
		return err
	}
	defer closeIn()

	commands, err := script.Parse(in)
	if err != nil {
		return err
	}

	rt, err := setup(cmd, global, observability.ModeRun, func(cfg *config.Config) {
		if opts.format != "" {
			cfg.Render.Format = opts.format
		}
	})
	if err != nil {
		return err
	}
	defer rt.close()

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

	runOpts := rt.scriptOptions(opts.check, metrics)

	if rt.cfg.Tree.KeyType == config.KeyTypeString {
		return execute(cmd.Context(), rt, script.StringKeys(rt.cfg.Tree.Order), commands, runOpts, opts.dump, snapshot)
	}

	return execute(cmd.Context(), rt, script.IntKeys(rt.cfg.Tree.Order), commands, runOpts, opts.dump, snapshot)
}

func execute[K any](
	ctx context.Context,
	rt *env,
	keys script.KeySyntax[K],
	commands []script.Command,
	opts script.Options,
	dump bool,
	snapshot *observability.StatsSnapshot,
) error {
	ctx = observability.ContextWithTree(ctx, mainTree)
	logger := rt.providers.Logger

	exec := script.NewExecutor(script.NewTree(keys), keys, rt.out, opts)

	logger.InfoContext(ctx, "script started", "commands", len(commands), "key_type", rt.cfg.Tree.KeyType)

	err := exec.Run(ctx, commands)
	snapshot.Store(exec.Tree().Stats())

	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "script finished", "size", exec.Tree().Size())

	if dump {
		return exec.Dump()
	}

	return nil
}

func openScript(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == stdinArg {
		return cmd.InOrStdin(), func() {}, nil
	}

	file, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open script: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}
