// Package render draws trees and tabulates entries and counters for the CLI.
package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

// branch tells the drawing routine which side of its parent a node hangs on.
type branch int

const (
	branchRoot branch = iota
	branchLeft
	branchRight
)

const (
	indentBlank = "       "
	indentBar   = "|      "
)

// Options controls tree drawing.
type Options struct {
	// Color paints red nodes red and black nodes bold.
	Color bool
	// Values prints the value next to every key.
	Values bool
}

type painter struct {
	red   *color.Color
	black *color.Color
}

func newPainter(enabled bool) painter {
	p := painter{
		red:   color.New(color.FgRed),
		black: color.New(color.Bold),
	}

	if enabled {
		p.red.EnableColor()
		p.black.EnableColor()
	} else {
		p.red.DisableColor()
		p.black.DisableColor()
	}

	return p
}

// Tree writes an ASCII drawing of the tree under root to w, larger keys on
// top. It returns the depth of the tree.
func Tree[K, V any](w io.Writer, root rbtree.Cursor[K, V], opts Options) (int, error) {
	if !root.Valid() {
		_, err := fmt.Fprintln(w, "(empty)")

		return 0, err
	}

	return drawNode(w, root, "", branchRoot, opts, newPainter(opts.Color))
}

func drawNode[K, V any](
	w io.Writer, nd rbtree.Cursor[K, V], prefix string, br branch, opts Options, paint painter,
) (int, error) {
	if !nd.Valid() {
		return 0, nil
	}

	rightDepth, err := drawNode(w, nd.Right(), prefix+indent(br, branchLeft), branchRight, opts, paint)
	if err != nil {
		return 0, err
	}

	connector := "|------+ "

	switch br {
	case branchLeft:
		connector = "\\------+ "
	case branchRight:
		connector = "/------+ "
	case branchRoot:
	}

	label := fmt.Sprintf("%v", nd.Key())
	if opts.Values {
		label = fmt.Sprintf("%v → %v", nd.Key(), nd.Value())
	}

	if nd.Red() {
		label = paint.red.Sprint(label + " (R)")
	} else {
		label = paint.black.Sprint(label + " (B)")
	}

	if _, err = fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label); err != nil {
		return 0, fmt.Errorf("draw node: %w", err)
	}

	leftDepth, err := drawNode(w, nd.Left(), prefix+indent(br, branchRight), branchLeft, opts, paint)
	if err != nil {
		return 0, err
	}

	return 1 + max(leftDepth, rightDepth), nil
}

// indent draws a vertical bar when the subtree continues towards the parent.
func indent(current, towardsParent branch) string {
	if current == towardsParent {
		return indentBar
	}

	return indentBlank
}
