package droptarget

import "github.com/tabgrove/tabgrove/pkg/model"

// PinnedBox is the rendered extent of one pinned row entry along the
// horizontal axis. Pinned rows do not nest, so there is no depth.
type PinnedBox struct {
	Ref   model.TabRef
	Start float64 // left edge
	End   float64 // right edge
}

// ResolvePinned classifies a pointer over the pinned row into a flat
// insertion index: 0 = before the first entry, N = after the last of N.
// Classification uses left/right midpoints instead of edge bands; there is
// no on-node case since pinned entries cannot nest. The dragged ref, if
// any, is excluded from index counting.
func ResolvePinned(pointer float64, boxes []PinnedBox, dragged model.TabRef, bounds *Bounds) (int, bool) {
	if bounds != nil && (pointer < bounds.Start || pointer > bounds.End) {
		return 0, false
	}
	index := 0
	for _, b := range boxes {
		if b.Ref == dragged {
			continue
		}
		mid := b.Start + (b.End-b.Start)/2
		if pointer < mid {
			return index, true
		}
		index++
	}
	return index, true
}
