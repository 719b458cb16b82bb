package engine

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// Pinned rows live outside the node forest: a flat ordered list of tab refs
// with no nesting, backing the horizontal drop-target variant.

// PinTab appends a ref to the pinned row. Pinning an already-pinned ref is
// a no-op.
func (e *Engine) PinTab(ref model.TabRef) {
	w := e.state
	for _, p := range w.Pinned {
		if p == ref {
			return
		}
	}
	w.Pinned = append(w.Pinned, ref)
	e.notifyChange()
}

// UnpinTab removes a ref from the pinned row. Unknown refs are ignored.
func (e *Engine) UnpinTab(ref model.TabRef) {
	w := e.state
	for i, p := range w.Pinned {
		if p == ref {
			w.Pinned = append(w.Pinned[:i], w.Pinned[i+1:]...)
			e.notifyChange()
			return
		}
	}
}

// MovePinned moves a pinned ref to a destination gap in the row, counted
// with the moved ref excluded (same convention as MoveSubtreeBySize).
func (e *Engine) MovePinned(ref model.TabRef, gap int) error {
	w := e.state
	from := -1
	for i, p := range w.Pinned {
		if p == ref {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("move pinned ref %d: %w", ref, model.ErrNodeNotFound)
	}
	rest := append(append([]model.TabRef(nil), w.Pinned[:from]...), w.Pinned[from+1:]...)
	if gap < 0 {
		gap = 0
	}
	if gap > len(rest) {
		gap = len(rest)
	}
	out := append(append([]model.TabRef(nil), rest[:gap]...), ref)
	w.Pinned = append(out, rest[gap:]...)
	e.notifyChange()
	return nil
}
