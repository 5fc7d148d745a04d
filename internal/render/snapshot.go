package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/ordmap/pkg/config"
	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

// ErrUnknownFormat is returned for output formats other than text, yaml and json.
var ErrUnknownFormat = errors.New("unknown output format")

const yamlIndent = 2

// Entry is one key-value pair of a dump.
type Entry struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// NodeView is the serializable shape of one tree node.
type NodeView struct {
	Key   string    `json:"key"             yaml:"key"`
	Value string    `json:"value"           yaml:"value"`
	Color string    `json:"color"           yaml:"color"`
	Left  *NodeView `json:"left,omitempty"  yaml:"left,omitempty"`
	Right *NodeView `json:"right,omitempty" yaml:"right,omitempty"`
}

// Snapshot is the serializable document of a whole tree.
type Snapshot struct {
	Size        int       `json:"size"           yaml:"size"`
	BlackHeight int       `json:"black_height"   yaml:"black_height"`
	Entries     []Entry   `json:"entries"        yaml:"entries"`
	Root        *NodeView `json:"root,omitempty" yaml:"root,omitempty"`
}

// NewSnapshot captures the entries in ascending order and the node layout of tree.
func NewSnapshot[K, V any](tree *rbtree.Tree[K, V]) Snapshot {
	snap := Snapshot{
		Size:        tree.Size(),
		BlackHeight: tree.BlackHeight(),
		Entries:     make([]Entry, 0, tree.Size()),
		Root:        nodeView(tree.Root()),
	}

	for key, value := range tree.All() {
		snap.Entries = append(snap.Entries, Entry{Key: fmt.Sprint(key), Value: fmt.Sprint(value)})
	}

	return snap
}

func nodeView[K, V any](cursor rbtree.Cursor[K, V]) *NodeView {
	if !cursor.Valid() {
		return nil
	}

	view := &NodeView{
		Key:   fmt.Sprint(cursor.Key()),
		Value: fmt.Sprint(cursor.Value()),
		Color: "black",
		Left:  nodeView(cursor.Left()),
		Right: nodeView(cursor.Right()),
	}

	if cursor.Red() {
		view.Color = "red"
	}

	return view
}

// EncodeSnapshot writes snap to w as YAML or JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot, format string) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("close yaml encoder: %w", err)
		}

		return nil
	case config.FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		data = append(data, '\n')

		if _, err = w.Write(data); err != nil {
			return fmt.Errorf("write json: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
