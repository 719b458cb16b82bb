package model

import "fmt"

// IndexEntry locates a real tab inside the window state.
type IndexEntry struct {
	ViewID ViewID `json:"viewId"`
	NodeID NodeID `json:"nodeId"`
}

// WindowState is the whole tab-tree model for one host window: every view,
// every node, the reverse index from tab ref to node, and the pinned row.
// The whole structure is replicated per window; node and view ids are unique
// only within a window.
type WindowState struct {
	Views         []*View               `json:"views"`
	CurrentViewID ViewID                `json:"currentViewId"`
	Nodes         map[NodeID]*Node      `json:"nodes"`
	Index         map[TabRef]IndexEntry `json:"index"`

	// Pinned is the flat ordered list of pinned tab refs. Pinned rows do
	// not nest, so they live outside the node forest.
	Pinned []TabRef `json:"pinned,omitempty"`

	// Allocation counters. Persisted so ids stay unique across restarts.
	NextNodeID NodeID `json:"nextNodeId"`
	NextViewID ViewID `json:"nextViewId"`
}

// NewWindowState returns a state with one default view, already current.
func NewWindowState() *WindowState {
	w := &WindowState{
		Nodes:      make(map[NodeID]*Node),
		Index:      make(map[TabRef]IndexEntry),
		NextNodeID: 1,
		NextViewID: 1,
	}
	v := &View{ID: w.AllocViewID(), Name: "Default", Color: "gray"}
	w.Views = append(w.Views, v)
	w.CurrentViewID = v.ID
	return w
}

// AllocNodeID hands out the next node id.
func (w *WindowState) AllocNodeID() NodeID {
	id := w.NextNodeID
	w.NextNodeID++
	return id
}

// AllocViewID hands out the next view id.
func (w *WindowState) AllocViewID() ViewID {
	id := w.NextViewID
	w.NextViewID++
	return id
}

// Node returns the node with the given id, or nil.
func (w *WindowState) Node(id NodeID) *Node {
	if id == NoNode {
		return nil
	}
	return w.Nodes[id]
}

// View returns the view with the given id, or nil.
func (w *WindowState) View(id ViewID) *View {
	for _, v := range w.Views {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// CurrentView returns the current view. A well-formed state always has one.
func (w *WindowState) CurrentView() *View {
	return w.View(w.CurrentViewID)
}

// RootOf walks up the parent chain from id and returns the root node id.
func (w *WindowState) RootOf(id NodeID) NodeID {
	n := w.Node(id)
	for n != nil && n.ParentID != NoNode {
		n = w.Node(n.ParentID)
	}
	if n == nil {
		return NoNode
	}
	return n.ID
}

// ViewContaining returns the view whose forest holds the given node.
func (w *WindowState) ViewContaining(id NodeID) (ViewID, bool) {
	root := w.RootOf(id)
	if root == NoNode {
		return NoView, false
	}
	for _, v := range w.Views {
		if v.RootIndex(root) >= 0 {
			return v.ID, true
		}
	}
	return NoView, false
}

// IsAncestor reports whether anc is a strict ancestor of id. The walk is a
// plain id-membership climb; cycles in a corrupted state terminate because
// every step must strictly exist in the node map and revisit detection caps
// the walk at the node count.
func (w *WindowState) IsAncestor(anc, id NodeID) bool {
	n := w.Node(id)
	steps := 0
	for n != nil && n.ParentID != NoNode {
		if n.ParentID == anc {
			return true
		}
		n = w.Node(n.ParentID)
		steps++
		if steps > len(w.Nodes) {
			return false
		}
	}
	return false
}

// Subtree returns id and all of its transitive descendants in depth-first
// pre-order.
func (w *WindowState) Subtree(id NodeID) []NodeID {
	n := w.Node(id)
	if n == nil {
		return nil
	}
	out := []NodeID{id}
	for _, c := range n.Children {
		out = append(out, w.Subtree(c)...)
	}
	return out
}

// Clone deep-copies the window state. Used by the persistence gateway so the
// flush goroutine never shares structure with the live model, and by tests
// comparing pre/post-operation state.
func (w *WindowState) Clone() *WindowState {
	c := &WindowState{
		CurrentViewID: w.CurrentViewID,
		Nodes:         make(map[NodeID]*Node, len(w.Nodes)),
		Index:         make(map[TabRef]IndexEntry, len(w.Index)),
		NextNodeID:    w.NextNodeID,
		NextViewID:    w.NextViewID,
	}
	for _, v := range w.Views {
		vc := *v
		vc.RootIDs = append([]NodeID(nil), v.RootIDs...)
		c.Views = append(c.Views, &vc)
	}
	for id, n := range w.Nodes {
		nc := *n
		nc.Children = append([]NodeID(nil), n.Children...)
		c.Nodes[id] = &nc
	}
	for ref, e := range w.Index {
		c.Index[ref] = e
	}
	c.Pinned = append([]TabRef(nil), w.Pinned...)
	return c
}

// Validate checks every structural invariant and returns the first
// violation found. A nil return means the state is well-formed.
func (w *WindowState) Validate() error {
	if w.CurrentView() == nil {
		return fmt.Errorf("current view %d: %w", w.CurrentViewID, ErrViewNotFound)
	}

	seenRoot := make(map[NodeID]bool)
	for _, v := range w.Views {
		for _, rootID := range v.RootIDs {
			root := w.Node(rootID)
			if root == nil {
				return fmt.Errorf("view %d root %d: %w", v.ID, rootID, ErrNodeNotFound)
			}
			if root.ParentID != NoNode {
				return fmt.Errorf("view %d root %d has parent %d", v.ID, rootID, root.ParentID)
			}
			if seenRoot[rootID] {
				return fmt.Errorf("node %d is a root of more than one view", rootID)
			}
			seenRoot[rootID] = true
			if err := w.validateSubtree(rootID, 0, make(map[NodeID]bool)); err != nil {
				return err
			}
		}
	}

	// Every node must be reachable from some view root.
	reachable := make(map[NodeID]bool)
	for _, v := range w.Views {
		for _, rootID := range v.RootIDs {
			for _, id := range w.Subtree(rootID) {
				reachable[id] = true
			}
		}
	}
	for id := range w.Nodes {
		if !reachable[id] {
			return fmt.Errorf("node %d is not reachable from any view", id)
		}
	}

	// Index must be in strict one-to-one correspondence with real tab nodes.
	for ref, e := range w.Index {
		n := w.Node(e.NodeID)
		if n == nil {
			return fmt.Errorf("index ref %d points at missing node %d", ref, e.NodeID)
		}
		if n.Ref != ref {
			return fmt.Errorf("index ref %d points at node %d carrying ref %d", ref, e.NodeID, n.Ref)
		}
		if vid, ok := w.ViewContaining(e.NodeID); !ok || vid != e.ViewID {
			return fmt.Errorf("index ref %d records view %d but node lives in %d", ref, e.ViewID, vid)
		}
	}
	for id, n := range w.Nodes {
		if n.IsGroup() {
			continue
		}
		e, ok := w.Index[n.Ref]
		if !ok {
			return fmt.Errorf("tab node %d (ref %d) missing from index", id, n.Ref)
		}
		if e.NodeID != id {
			return fmt.Errorf("index ref %d maps to node %d, expected %d", n.Ref, e.NodeID, id)
		}
	}
	return nil
}

func (w *WindowState) validateSubtree(id NodeID, depth int, onPath map[NodeID]bool) error {
	if onPath[id] {
		return fmt.Errorf("node %d: %w", id, ErrCycleDetected)
	}
	n := w.Node(id)
	if n == nil {
		return fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}
	if n.ID != id {
		return fmt.Errorf("node map key %d holds node with id %d", id, n.ID)
	}
	if n.Depth != depth {
		return fmt.Errorf("node %d depth %d, expected %d", id, n.Depth, depth)
	}
	onPath[id] = true
	for _, c := range n.Children {
		child := w.Node(c)
		if child == nil {
			return fmt.Errorf("node %d child %d: %w", id, c, ErrNodeNotFound)
		}
		if child.ParentID != id {
			return fmt.Errorf("node %d child %d has parent %d", id, c, child.ParentID)
		}
		if err := w.validateSubtree(c, depth+1, onPath); err != nil {
			return err
		}
	}
	delete(onPath, id)
	return nil
}
