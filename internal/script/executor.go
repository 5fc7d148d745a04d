package script

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/ordmap/internal/render"
	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/observability"
	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

// ErrBadRange is returned for a range whose lower bound exceeds its upper bound.
var ErrBadRange = errors.New("range lower bound exceeds upper bound")

const (
	spanPrefix = "ordmap.script."
	absent     = "(absent)"
	empty      = "(empty)"
)

// KeySyntax parses script keys and orders them.
type KeySyntax[K any] struct {
	Parse   func(raw string) (K, error)
	Compare rbtree.Comparator[K]
}

// IntKeys parses base-10 integer keys. Descending order reverses the comparator.
func IntKeys(order string) KeySyntax[int64] {
	return KeySyntax[int64]{
		Parse: func(raw string) (int64, error) {
			key, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("parse key %q: %w", raw, err)
			}

			return key, nil
		},
		Compare: ordered[int64](order),
	}
}

// StringKeys takes keys verbatim.
func StringKeys(order string) KeySyntax[string] {
	return KeySyntax[string]{
		Parse:   func(raw string) (string, error) { return raw, nil },
		Compare: ordered[string](order),
	}
}

func ordered[K cmp.Ordered](order string) rbtree.Comparator[K] {
	if order == config.OrderDesc {
		return func(a, b K) int { return cmp.Compare(b, a) }
	}

	return cmp.Compare[K]
}

// Options tunes an Executor.
type Options struct {
	// Check verifies the tree after every mutating command.
	Check bool
	// Format selects the dump encoding: text, yaml or json.
	Format string
	// Style is the table style of text dumps.
	Style string
	// MaxRows limits text dumps; zero prints every entry.
	MaxRows int

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.OpMetrics
}

// Executor runs commands against a string-valued tree.
type Executor[K any] struct {
	tree   *rbtree.Tree[K, string]
	keys   KeySyntax[K]
	out    io.Writer
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewTree creates the tree an executor for keys operates on.
func NewTree[K any](keys KeySyntax[K]) *rbtree.Tree[K, string] {
	return rbtree.New(rbtree.WithComparator[K, string](keys.Compare))
}

// NewExecutor creates an executor writing command output to out.
func NewExecutor[K any](tree *rbtree.Tree[K, string], keys KeySyntax[K], out io.Writer, opts Options) *Executor[K] {
	if opts.Format == "" {
		opts.Format = config.FormatText
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return &Executor[K]{
		tree:   tree,
		keys:   keys,
		out:    out,
		opts:   opts,
		logger: logger,
		tracer: tracer,
	}
}

// Tree returns the tree the executor operates on.
func (e *Executor[K]) Tree() *rbtree.Tree[K, string] {
	return e.tree
}

// Run executes commands in order and stops at the first failure.
func (e *Executor[K]) Run(ctx context.Context, commands []Command) error {
	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("script interrupted: %w", err)
		}

		if err := e.Exec(ctx, cmd); err != nil {
			return err
		}
	}

	return nil
}

// Exec executes a single command.
func (e *Executor[K]) Exec(ctx context.Context, cmd Command) error {
	ctx, span := e.tracer.Start(ctx, spanPrefix+string(cmd.Op),
		trace.WithAttributes(attribute.Int("script.line", cmd.Line)),
	)
	defer span.End()

	start := time.Now()
	err := e.dispatch(cmd)

	if err == nil && e.opts.Check && mutates(cmd.Op) {
		err = e.tree.Verify()
	}

	elapsed := time.Since(start)

	if e.opts.Metrics != nil {
		e.opts.Metrics.Record(ctx, string(cmd.Op), err, elapsed)
	}

	if err != nil {
		observability.RecordSpanError(span, err)
		e.logger.ErrorContext(ctx, "command failed",
			"line", cmd.Line, "command", cmd.String(), "error", err)

		return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Op, err)
	}

	e.logger.DebugContext(ctx, "command done",
		"line", cmd.Line, "command", cmd.String(), "size", e.tree.Size(), "duration", elapsed)

	return nil
}

func mutates(op Op) bool {
	return op == OpPut || op == OpRemove || op == OpClear
}

func (e *Executor[K]) dispatch(cmd Command) error {
	switch cmd.Op {
	case OpPut:
		return e.put(cmd.Args[0], cmd.Args[1])
	case OpGet:
		return e.get(cmd.Args[0])
	case OpRemove:
		return e.remove(cmd.Args[0])
	case OpContains:
		return e.withKey(cmd.Args[0], func(key K) error {
			return e.println(e.tree.ContainsKey(key))
		})
	case OpHasValue:
		return e.println(e.tree.ContainsValue(cmd.Args[0]))
	case OpSize:
		return e.println(e.tree.Size())
	case OpEmpty:
		return e.println(e.tree.IsEmpty())
	case OpClear:
		e.tree.Clear()

		return e.println("cleared")
	case OpCheck:
		if err := e.tree.Verify(); err != nil {
			return err
		}

		return e.println("ok")
	case OpDump:
		return e.Dump()
	case OpRange:
		return e.rangeScan(cmd.Args[0], cmd.Args[1])
	case OpMin:
		return e.printPosition(e.tree.Min())
	case OpMax:
		return e.printPosition(e.tree.Max())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
}

func (e *Executor[K]) withKey(raw string, fn func(key K) error) error {
	key, err := e.keys.Parse(raw)
	if err != nil {
		return err
	}

	return fn(key)
}

func (e *Executor[K]) put(rawKey, value string) error {
	return e.withKey(rawKey, func(key K) error {
		old, replaced, err := e.tree.Put(key, value)
		if err != nil {
			return fmt.Errorf("put: %w", err)
		}

		if replaced {
			return e.println("replaced", old)
		}

		return e.println("inserted")
	})
}

func (e *Executor[K]) get(rawKey string) error {
	return e.withKey(rawKey, func(key K) error {
		value, found, err := e.tree.Get(key)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}

		if !found {
			return e.println(absent)
		}

		return e.println(value)
	})
}

func (e *Executor[K]) remove(rawKey string) error {
	return e.withKey(rawKey, func(key K) error {
		value, found, err := e.tree.Remove(key)
		if err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		if !found {
			return e.println(absent)
		}

		return e.println("removed", value)
	})
}

func (e *Executor[K]) rangeScan(rawLow, rawHigh string) error {
	low, err := e.keys.Parse(rawLow)
	if err != nil {
		return err
	}

	high, err := e.keys.Parse(rawHigh)
	if err != nil {
		return err
	}

	if e.keys.Compare(low, high) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrBadRange, rawLow, rawHigh)
	}

	position, err := e.tree.FindGE(low)
	if err != nil {
		return fmt.Errorf("range: %w", err)
	}

	for ; position.Valid() && e.keys.Compare(position.Key(), high) <= 0; position = position.Next() {
		if err = e.println(position.Key(), position.Value()); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor[K]) printPosition(position rbtree.Iterator[K, string]) error {
	if !position.Valid() {
		return e.println(empty)
	}

	return e.println(position.Key(), position.Value())
}

// Dump writes every entry in the configured format.
func (e *Executor[K]) Dump() error {
	snap := render.NewSnapshot(e.tree)

	if e.opts.Format == config.FormatText {
		return e.println(render.EntriesTable(snap, e.opts.Style, e.opts.MaxRows))
	}

	if err := render.EncodeSnapshot(e.out, snap, e.opts.Format); err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	return nil
}

func (e *Executor[K]) println(args ...any) error {
	if _, err := fmt.Fprintln(e.out, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
