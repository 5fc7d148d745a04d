package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ordmap/internal/render"
	"github.com/Sumatoshi-tech/ordmap/internal/script"
	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
)

// NewShowCommand creates the tree drawing command.
func NewShowCommand(global *GlobalOptions) *cobra.Command {
	var values bool

	cmd := &cobra.Command{
		Use:   "show KEY...",
		Short: "Insert keys in order and draw the resulting red-black tree",
		Long: `Insert the given keys in order and draw the resulting red-black tree.

Larger keys are drawn above smaller ones. Red nodes are marked (R) and
painted red, black nodes are marked (B). Each key maps to its insertion
position, starting at 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, global, observability.ModeShow, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			opts := render.Options{Color: rt.cfg.Render.Color, Values: values}

			if rt.cfg.Tree.KeyType == config.KeyTypeString {
				return show(rt, script.StringKeys(rt.cfg.Tree.Order), args, opts)
			}

			return show(rt, script.IntKeys(rt.cfg.Tree.Order), args, opts)
		},
	}

	cmd.Flags().BoolVar(&values, "values", false, "print values next to keys")

	return cmd
}

func show[K any](rt *env, keys script.KeySyntax[K], args []string, opts render.Options) error {
	tree := script.NewTree(keys)

	for idx, raw := range args {
		key, err := keys.Parse(raw)
		if err != nil {
			return err
		}

		if _, _, err = tree.Put(key, fmt.Sprint(idx+1)); err != nil {
			return fmt.Errorf("put %q: %w", raw, err)
		}
	}

	if err := tree.Verify(); err != nil {
		return err
	}

	depth, err := render.Tree(rt.out, tree.Root(), opts)
	if err != nil {
		return fmt.Errorf("draw tree: %w", err)
	}

	_, err = fmt.Fprintf(rt.out, "\nsize %d, depth %d, black height %d\n", tree.Size(), depth, tree.BlackHeight())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
