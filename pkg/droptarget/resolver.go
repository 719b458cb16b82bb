// Package droptarget maps a pointer position during a drag gesture to a
// structurally valid insertion point in the tab tree.
//
// Resolution is a pure function over the pointer coordinate along the
// tree's scroll axis and the ordered visible node bounding boxes; it never
// touches the tree itself. The engine performs the actual move.
package droptarget

import (
	"github.com/tabgrove/tabgrove/pkg/config"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// DefaultEdgeMargin is the fraction of a node's extent, on each edge, that
// classifies as a gap hit instead of an on-node hit.
const DefaultEdgeMargin = 0.25

// Box is the rendered bounding box of one visible node along the scroll
// axis. Start and End are in the same coordinate space as the pointer.
type Box struct {
	NodeID model.NodeID
	Start  float64
	End    float64
	Depth  int
}

// Bounds limits resolution to the scrollable content area. A pointer
// outside explicit bounds resolves to KindNone.
type Bounds struct {
	Start float64
	End   float64
}

// Kind classifies a resolved target.
type Kind int

const (
	// KindNone means the pointer is outside the supplied container bounds.
	KindNone Kind = iota
	// KindOnNode means "reparent as child of NodeID".
	KindOnNode
	// KindInGap means "insert as sibling at gap index Gap".
	KindInGap
)

// Target is a resolved insertion point.
//
// For KindInGap, Gap is an integer gap index over the post-removal layout:
// 0 = before the first surviving node, N = after the last of N surviving
// nodes. Marker is the pixel position for the insertion indicator,
// interpolated against the pre-removal (currently rendered) boxes.
type Target struct {
	Kind   Kind
	NodeID model.NodeID // valid for KindOnNode
	Gap    int          // valid for KindInGap
	Marker float64      // valid for KindInGap
	Depth  int          // depth of the hit node / gap neighbor, for indent display
}

// Options tunes a resolution.
type Options struct {
	// EdgeMargin overrides DefaultEdgeMargin when > 0.
	EdgeMargin float64
	// Dragged holds the node being dragged and its whole subtree. Those
	// rows are excluded from gap counting so the marker reflects the
	// post-removal layout, while marker pixels still come from the
	// pre-removal boxes.
	Dragged map[model.NodeID]bool
	// Bounds, when non-nil, turns out-of-bounds pointers into KindNone.
	Bounds *Bounds
}

// OptionsFromBehavior seeds a resolution with the configured gap
// threshold ratio. Dragged and Bounds are per-gesture and left for the
// caller to fill in.
func OptionsFromBehavior(b config.Behavior) Options {
	return Options{EdgeMargin: b.GapRatio}
}

// Resolve classifies the pointer into OnNode, InGap, or None.
//
// Edge policy: a pointer above the first node's top edge or at/below the
// last node's bottom edge resolves to the corresponding boundary gap, never
// None, unless explicit bounds are supplied and violated.
func Resolve(pointer float64, boxes []Box, opts Options) Target {
	margin := opts.EdgeMargin
	if margin <= 0 {
		margin = DefaultEdgeMargin
	}
	if opts.Bounds != nil && (pointer < opts.Bounds.Start || pointer > opts.Bounds.End) {
		return Target{Kind: KindNone}
	}

	survivors := surviving(boxes, opts.Dragged)
	if len(survivors) == 0 {
		return Target{Kind: KindInGap, Gap: 0, Marker: pointer}
	}

	if pointer < boxes[0].Start {
		return gapTarget(0, survivors)
	}
	if pointer >= boxes[len(boxes)-1].End {
		return gapTarget(len(survivors), survivors)
	}

	for i, b := range boxes {
		if pointer < b.Start || pointer >= b.End {
			continue
		}
		extent := b.End - b.Start
		top := b.Start + extent*margin
		bottom := b.End - extent*margin
		dragged := opts.Dragged[b.NodeID]

		if !dragged && pointer >= top && pointer < bottom {
			return Target{Kind: KindOnNode, NodeID: b.NodeID, Depth: b.Depth}
		}

		// Gap before or after this box, counted over survivors only.
		before := survivorsBefore(boxes, opts.Dragged, i)
		if dragged {
			// Every position over the dragged run maps to the single
			// gap the run vacates.
			return gapTarget(before, survivors)
		}
		if pointer < b.Start+extent/2 {
			return gapTarget(before, survivors)
		}
		return gapTarget(before+1, survivors)
	}

	// Pointer in the dead space between two boxes (non-contiguous rows):
	// snap to the gap before the next box.
	for i, b := range boxes {
		if pointer < b.Start {
			return gapTarget(survivorsBefore(boxes, opts.Dragged, i), survivors)
		}
	}
	return gapTarget(len(survivors), survivors)
}

// surviving filters out dragged rows, keeping pre-removal geometry.
func surviving(boxes []Box, dragged map[model.NodeID]bool) []Box {
	if len(dragged) == 0 {
		return boxes
	}
	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if !dragged[b.NodeID] {
			out = append(out, b)
		}
	}
	return out
}

// survivorsBefore counts non-dragged boxes strictly before index i.
func survivorsBefore(boxes []Box, dragged map[model.NodeID]bool, i int) int {
	n := 0
	for _, b := range boxes[:i] {
		if !dragged[b.NodeID] {
			n++
		}
	}
	return n
}

// gapTarget builds an InGap target for gap index g over the survivors,
// interpolating the marker midpoint between the two neighbor boxes.
func gapTarget(g int, survivors []Box) Target {
	t := Target{Kind: KindInGap, Gap: g}
	switch {
	case g <= 0:
		t.Gap = 0
		t.Marker = survivors[0].Start
		t.Depth = survivors[0].Depth
	case g >= len(survivors):
		t.Gap = len(survivors)
		t.Marker = survivors[len(survivors)-1].End
		t.Depth = survivors[len(survivors)-1].Depth
	default:
		t.Marker = (survivors[g-1].End + survivors[g].Start) / 2
		t.Depth = survivors[g].Depth
	}
	return t
}
