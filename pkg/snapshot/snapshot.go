// Package snapshot implements the portable export/import document for one
// window's full tree state: views, nodes, pinned and group metadata.
//
// The document carries structure only. Depths are never serialized; import
// replays ordinary engine operations, so every invariant is re-validated
// on the way in and the result can never be a corrupted tree smuggled past
// the engine.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// Version is the current snapshot schema version.
const Version = 1

// Snapshot is the portable serialization of one window's tree state.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Views      []ViewSnapshot `json:"views"`
	Pinned     []model.TabRef `json:"pinned,omitempty"`
}

// ViewSnapshot is one view and its root forest.
type ViewSnapshot struct {
	Name    string         `json:"name"`
	Color   string         `json:"color,omitempty"`
	Icon    string         `json:"icon,omitempty"`
	Current bool           `json:"current,omitempty"`
	Roots   []NodeSnapshot `json:"roots,omitempty"`
}

// NodeSnapshot is one node with its subtree nested. Group nodes carry
// Group=true and a Name; their Ref is not serialized.
type NodeSnapshot struct {
	Ref      model.TabRef   `json:"ref,omitempty"`
	Group    bool           `json:"group,omitempty"`
	Name     string         `json:"name,omitempty"`
	Expanded bool           `json:"expanded"`
	Children []NodeSnapshot `json:"children,omitempty"`
}

// Export captures a window state into a snapshot document.
func Export(w *model.WindowState) *Snapshot {
	snap := &Snapshot{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Pinned:     append([]model.TabRef(nil), w.Pinned...),
	}
	for _, v := range w.Views {
		vs := ViewSnapshot{
			Name:    v.Name,
			Color:   v.Color,
			Icon:    v.Icon,
			Current: v.ID == w.CurrentViewID,
		}
		for _, rootID := range v.RootIDs {
			vs.Roots = append(vs.Roots, exportNode(w, rootID))
		}
		snap.Views = append(snap.Views, vs)
	}
	return snap
}

func exportNode(w *model.WindowState, id model.NodeID) NodeSnapshot {
	n := w.Node(id)
	ns := NodeSnapshot{Expanded: n.Expanded}
	if n.IsGroup() {
		ns.Group = true
		ns.Name = n.Name
	} else {
		ns.Ref = n.Ref
	}
	for _, c := range n.Children {
		ns.Children = append(ns.Children, exportNode(w, c))
	}
	return ns
}

// Encode serializes a snapshot as indented JSON.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot document, rejecting unknown versions.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}

// WriteFile encodes a snapshot to path, creating parent directories.
func WriteFile(s *Snapshot, path string) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadFile decodes a snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Decode(data)
}
