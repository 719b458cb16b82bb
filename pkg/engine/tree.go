package engine

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// TreeNode is one entry in a materialized tree: a value copy of the node
// record with its children nested. Suitable for direct rendering.
type TreeNode struct {
	Node     model.Node
	Children []*TreeNode
}

// GetTree materializes the ordered root forest of a view with nested
// children. The result is a snapshot, not a live view: callers must
// re-request after a mutation.
func (e *Engine) GetTree(viewID model.ViewID) ([]*TreeNode, error) {
	w := e.state
	v := w.View(viewID)
	if v == nil {
		return nil, fmt.Errorf("get tree for view %d: %w", viewID, model.ErrViewNotFound)
	}
	var roots []*TreeNode
	for _, rootID := range v.RootIDs {
		roots = append(roots, e.materialize(rootID))
	}
	return roots, nil
}

func (e *Engine) materialize(id model.NodeID) *TreeNode {
	n := e.state.Node(id)
	tn := &TreeNode{Node: *n}
	tn.Node.Children = append([]model.NodeID(nil), n.Children...)
	for _, c := range n.Children {
		tn.Children = append(tn.Children, e.materialize(c))
	}
	return tn
}

// Row is one visible line of a view's tree: the node id plus its depth.
// This flattened form is what the drop target resolver consumes alongside
// the rendered bounding boxes.
type Row struct {
	NodeID model.NodeID
	Depth  int
}

// VisibleRows flattens a view's forest into display order, eliding the
// contents of collapsed subtrees. The collapsed node itself is still
// visible; only its descendants are hidden.
func (e *Engine) VisibleRows(viewID model.ViewID) ([]Row, error) {
	w := e.state
	v := w.View(viewID)
	if v == nil {
		return nil, fmt.Errorf("visible rows for view %d: %w", viewID, model.ErrViewNotFound)
	}
	var rows []Row
	var walk func(model.NodeID)
	walk = func(id model.NodeID) {
		n := w.Node(id)
		rows = append(rows, Row{NodeID: id, Depth: n.Depth})
		if !n.Expanded {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, rootID := range v.RootIDs {
		walk(rootID)
	}
	return rows, nil
}
