// Package engine implements the tab tree state engine: the single funneled
// mutation API over a window's tree. Every structural change, regardless of
// trigger (host event, drag gesture, menu action, import), goes through these
// entry points so invariants are enforced exactly once.
//
// Calls are atomic with respect to the in-memory model: structural errors are
// detected before any mutation and the call is a clean no-op. Execution is
// single-threaded and event-driven, so the engine does no internal locking;
// all mutation entry points must funnel through one engine instance.
package engine

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// Option configures an Engine.
type Option func(*Engine)

// WithState starts the engine from an existing window state instead of an
// empty one (e.g. state loaded from the store).
func WithState(w *model.WindowState) Option {
	return func(e *Engine) {
		if w != nil {
			e.state = w
		}
	}
}

// WithOnChange sets the callback invoked after every successful mutation.
// The persistence gateway hooks its write-behind enqueue here.
func WithOnChange(fn func()) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// Engine owns one window's tree state and mutates it.
type Engine struct {
	state    *model.WindowState
	onChange func()
}

// New creates an engine over a fresh window state (one default view).
func New(opts ...Option) *Engine {
	e := &Engine{
		state:    model.NewWindowState(),
		onChange: func() {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State exposes the underlying window state for read-only use (validation,
// cloning by the gateway). Callers must not mutate it directly.
func (e *Engine) State() *model.WindowState {
	return e.state
}

func (e *Engine) notifyChange() {
	e.onChange()
}

// AddNode creates a node for ref in the given view, positioned relative to
// refNode according to pos:
//
//	InsertChild   appends as the last child of refNode
//	InsertSibling inserts immediately after refNode under the same parent
//	InsertEnd     appends as the last root of the view (refNode ignored)
//
// Creating a node for a ref that is already indexed returns the existing
// node id without mutating anything, so replayed host events are harmless.
// Returns ErrViewNotFound for an unknown view and ErrInvalidParent when
// refNode does not exist in that view.
func (e *Engine) AddNode(ref model.TabRef, refNode model.NodeID, viewID model.ViewID, pos model.InsertPos) (model.NodeID, error) {
	w := e.state
	if ref != model.GroupRef {
		if existing, ok := w.Index[ref]; ok {
			return existing.NodeID, nil
		}
	}
	v := w.View(viewID)
	if v == nil {
		return model.NoNode, fmt.Errorf("add node in view %d: %w", viewID, model.ErrViewNotFound)
	}

	var (
		parentID model.NodeID
		index    int
	)
	switch pos {
	case model.InsertChild, model.InsertSibling:
		anchor := w.Node(refNode)
		if anchor == nil {
			return model.NoNode, fmt.Errorf("add node under %d: %w", refNode, model.ErrInvalidParent)
		}
		if vid, ok := w.ViewContaining(refNode); !ok || vid != viewID {
			return model.NoNode, fmt.Errorf("add node: anchor %d not in view %d: %w", refNode, viewID, model.ErrInvalidParent)
		}
		if pos == model.InsertChild {
			parentID = refNode
			index = len(anchor.Children)
		} else {
			parentID = anchor.ParentID
			if parentID == model.NoNode {
				index = v.RootIndex(refNode) + 1
			} else {
				index = w.Node(parentID).ChildIndex(refNode) + 1
			}
		}
	case model.InsertEnd:
		parentID = model.NoNode
		index = len(v.RootIDs)
	default:
		return model.NoNode, fmt.Errorf("add node: unknown insertion hint %q: %w", pos, model.ErrInvalidParent)
	}

	n := &model.Node{
		ID:       w.AllocNodeID(),
		Ref:      ref,
		Expanded: true,
	}
	w.Nodes[n.ID] = n
	e.splice(n.ID, parentID, viewID, index)
	e.rederiveDepths(n.ID)
	if ref != model.GroupRef {
		w.Index[ref] = model.IndexEntry{ViewID: viewID, NodeID: n.ID}
	}

	debug.Log("add node %d (ref %d) view %d parent %d index %d", n.ID, ref, viewID, parentID, index)
	e.notifyChange()
	return n.ID, nil
}

// RemoveNode removes a node, handling its children per behavior:
//
//	PromoteChildren  children are spliced into the removed node's position,
//	                 preserving relative order, depths re-derived
//	OrphanChildren   children become new roots of the same view
//	CascadeChildren  the entire subtree is removed
//
// This is the default close-tab path for real tabs. The reverse index is
// updated for every affected node in the same call.
func (e *Engine) RemoveNode(id model.NodeID, behavior model.ChildBehavior) error {
	w := e.state
	n := w.Node(id)
	if n == nil {
		return fmt.Errorf("remove node %d: %w", id, model.ErrNodeNotFound)
	}
	if !behavior.Valid() {
		return fmt.Errorf("remove node %d: unknown child behavior %q", id, behavior)
	}
	viewID, ok := w.ViewContaining(id)
	if !ok {
		return fmt.Errorf("remove node %d: %w", id, model.ErrViewNotFound)
	}

	children := append([]model.NodeID(nil), n.Children...)
	parentID := n.ParentID
	pos := e.positionOf(n, viewID)

	switch behavior {
	case model.CascadeChildren:
		e.detach(id, viewID)
		for _, sub := range w.Subtree(id) {
			e.dropNode(sub)
		}

	case model.PromoteChildren:
		e.detach(id, viewID)
		// Splice children into the removed node's former position,
		// preserving their relative order.
		for i, c := range children {
			w.Node(c).ParentID = model.NoNode
			e.splice(c, parentID, viewID, pos+i)
			e.rederiveDepths(c)
		}
		e.dropNode(id)

	case model.OrphanChildren:
		e.detach(id, viewID)
		v := w.View(viewID)
		for _, c := range children {
			w.Node(c).ParentID = model.NoNode
			e.splice(c, model.NoNode, viewID, len(v.RootIDs))
			e.rederiveDepths(c)
		}
		e.dropNode(id)
	}

	debug.Log("remove node %d (%s) from view %d", id, behavior, viewID)
	e.notifyChange()
	return nil
}

// MoveNode is the core reparent/reorder primitive: it detaches the node
// (with its whole subtree, relative structure unchanged), splices it into
// the target parent's children at targetIndex (or the view's root list when
// targetParent is NoNode), then re-derives depth for the whole subtree.
//
// A move that would make the node its own ancestor fails with
// ErrCycleDetected and the model is left byte-for-byte unchanged.
func (e *Engine) MoveNode(id, targetParent model.NodeID, targetIndex int) error {
	w := e.state
	n := w.Node(id)
	if n == nil {
		return fmt.Errorf("move node %d: %w", id, model.ErrNodeNotFound)
	}
	viewID, ok := w.ViewContaining(id)
	if !ok {
		return fmt.Errorf("move node %d: %w", id, model.ErrViewNotFound)
	}
	if targetParent != model.NoNode {
		if w.Node(targetParent) == nil {
			return fmt.Errorf("move node %d to %d: %w", id, targetParent, model.ErrInvalidParent)
		}
		if targetParent == id || w.IsAncestor(id, targetParent) {
			return fmt.Errorf("move node %d under %d: %w", id, targetParent, model.ErrCycleDetected)
		}
	}

	e.detach(id, viewID)
	e.splice(id, targetParent, viewID, targetIndex)
	e.rederiveDepths(id)
	e.reindexSubtree(id, viewID)

	debug.Log("move node %d under %d index %d", id, targetParent, targetIndex)
	e.notifyChange()
	return nil
}

// MoveSubtreeBySize moves the node (and implicitly its whole subtree) to a
// destination gap among its siblings. The caller supplies only the gap; the
// engine counts positions with the dragged node excluded from the candidate
// list, so the subtree is never counted against itself when it passes over
// its own former location.
func (e *Engine) MoveSubtreeBySize(id model.NodeID, gap int) error {
	w := e.state
	n := w.Node(id)
	if n == nil {
		return fmt.Errorf("move subtree %d: %w", id, model.ErrNodeNotFound)
	}
	viewID, ok := w.ViewContaining(id)
	if !ok {
		return fmt.Errorf("move subtree %d: %w", id, model.ErrViewNotFound)
	}

	var siblings []model.NodeID
	if n.ParentID == model.NoNode {
		siblings = w.View(viewID).RootIDs
	} else {
		siblings = w.Node(n.ParentID).Children
	}
	// Candidate count excludes the dragged node itself; the detach in
	// MoveNode makes the post-removal gap index the absolute splice index.
	max := len(siblings) - 1
	if gap < 0 {
		gap = 0
	}
	if gap > max {
		gap = max
	}
	return e.MoveNode(id, n.ParentID, gap)
}

// Activate records read-state bookkeeping for a tab activation. No
// structural change; unknown refs are ignored.
func (e *Engine) Activate(ref model.TabRef) {
	w := e.state
	entry, ok := w.Index[ref]
	if !ok {
		return
	}
	v := w.View(entry.ViewID)
	if v == nil {
		return
	}
	if v.LastActiveRef == ref {
		return
	}
	v.LastActiveRef = ref
	e.notifyChange()
}

// SetExpanded sets a node's expand/collapse state. Not structural, but
// persisted with the document so it survives restarts.
func (e *Engine) SetExpanded(id model.NodeID, expanded bool) error {
	n := e.state.Node(id)
	if n == nil {
		return fmt.Errorf("set expanded %d: %w", id, model.ErrNodeNotFound)
	}
	if n.Expanded == expanded {
		return nil
	}
	n.Expanded = expanded
	e.notifyChange()
	return nil
}

// ToggleExpanded flips a node's expand/collapse state.
func (e *Engine) ToggleExpanded(id model.NodeID) error {
	n := e.state.Node(id)
	if n == nil {
		return fmt.Errorf("toggle expanded %d: %w", id, model.ErrNodeNotFound)
	}
	n.Expanded = !n.Expanded
	e.notifyChange()
	return nil
}

// NodeByRef resolves a host tab ref through the reverse index.
func (e *Engine) NodeByRef(ref model.TabRef) (model.NodeID, bool) {
	entry, ok := e.state.Index[ref]
	if !ok {
		return model.NoNode, false
	}
	return entry.NodeID, true
}

// --- internal splicing helpers ---------------------------------------------

// positionOf returns the node's index among its siblings (children list of
// its parent, or the view's root list).
func (e *Engine) positionOf(n *model.Node, viewID model.ViewID) int {
	if n.ParentID == model.NoNode {
		return e.state.View(viewID).RootIndex(n.ID)
	}
	return e.state.Node(n.ParentID).ChildIndex(n.ID)
}

// detach removes the node from its parent's children list or the view's
// root list. The subtree below it is untouched.
func (e *Engine) detach(id model.NodeID, viewID model.ViewID) {
	w := e.state
	n := w.Node(id)
	if n.ParentID == model.NoNode {
		v := w.View(viewID)
		v.RootIDs = removeID(v.RootIDs, id)
		return
	}
	p := w.Node(n.ParentID)
	p.Children = removeID(p.Children, id)
	n.ParentID = model.NoNode
}

// splice inserts the node into parent's children (or the view root list for
// NoNode) at index, clamping index into range.
func (e *Engine) splice(id, parentID model.NodeID, viewID model.ViewID, index int) {
	w := e.state
	n := w.Node(id)
	if parentID == model.NoNode {
		v := w.View(viewID)
		v.RootIDs = insertID(v.RootIDs, id, index)
		n.ParentID = model.NoNode
		return
	}
	p := w.Node(parentID)
	p.Children = insertID(p.Children, id, index)
	n.ParentID = parentID
}

// rederiveDepths recomputes depth for the node and every descendant in a
// single top-down traversal. Depth is always derived, never authoritative.
func (e *Engine) rederiveDepths(id model.NodeID) {
	w := e.state
	n := w.Node(id)
	if n.ParentID == model.NoNode {
		n.Depth = 0
	} else {
		n.Depth = w.Node(n.ParentID).Depth + 1
	}
	var walk func(model.NodeID)
	walk = func(pid model.NodeID) {
		p := w.Node(pid)
		for _, c := range p.Children {
			w.Node(c).Depth = p.Depth + 1
			walk(c)
		}
	}
	walk(id)
}

// reindexSubtree refreshes the view recorded in the reverse index for every
// real tab in the subtree. Needed when a move crosses view forests.
func (e *Engine) reindexSubtree(id model.NodeID, fallback model.ViewID) {
	w := e.state
	viewID, ok := w.ViewContaining(id)
	if !ok {
		viewID = fallback
	}
	for _, sub := range w.Subtree(id) {
		n := w.Node(sub)
		if n.IsGroup() {
			continue
		}
		w.Index[n.Ref] = model.IndexEntry{ViewID: viewID, NodeID: sub}
	}
}

// dropNode deletes a node record and its index entry. Callers are
// responsible for having already detached it.
func (e *Engine) dropNode(id model.NodeID) {
	n := e.state.Node(id)
	if n == nil {
		return
	}
	if !n.IsGroup() {
		delete(e.state.Index, n.Ref)
	}
	delete(e.state.Nodes, id)
}

func removeID(list []model.NodeID, id model.NodeID) []model.NodeID {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func insertID(list []model.NodeID, id model.NodeID, index int) []model.NodeID {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, 0)
	copy(list[index+1:], list[index:])
	list[index] = id
	return list
}
