// Package persist is the persistence gateway: it serializes a window's
// whole tree state into one document, writes it to the durable store on a
// debounced schedule, and retries transient failures with backoff without
// ever blocking the mutating caller.
package persist

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// DocumentVersion is the current schema version of the persisted document.
const DocumentVersion = 1

// DefaultKey is the fixed store key for a window's tree document. The
// store does not support field-level writes, so every flush replaces the
// whole document under this key.
const DefaultKey = "tabtree"

// Document wraps a window state with a schema version for forward
// migrations.
type Document struct {
	Version int                `json:"version"`
	Window  *model.WindowState `json:"window"`
}

// EncodeDocument serializes a window state into a versioned document.
func EncodeDocument(w *model.WindowState) ([]byte, error) {
	doc := Document{Version: DocumentVersion, Window: w}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding tree document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a versioned document back into a window state.
// Unknown versions are rejected rather than half-parsed.
func DecodeDocument(data []byte) (*model.WindowState, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing tree document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported tree document version %d", doc.Version)
	}
	if doc.Window == nil {
		return nil, fmt.Errorf("tree document has no window state")
	}
	if doc.Window.Nodes == nil {
		doc.Window.Nodes = make(map[model.NodeID]*model.Node)
	}
	if doc.Window.Index == nil {
		doc.Window.Index = make(map[model.TabRef]model.IndexEntry)
	}
	return doc.Window, nil
}
