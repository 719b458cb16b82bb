package engine

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// CreateGroupFromNodes creates a synthetic group node and reparents every
// listed node as its child, preserving their relative order and their own
// subtrees. The group takes the position of the first listed node (same
// parent, same index), so grouping siblings keeps the bundle in place.
// Works identically for one or many input nodes. An empty name falls back
// to model.DefaultGroupName.
//
// All preconditions are checked before any mutation: every listed node must
// exist, and none may be an ancestor of the group's insertion point.
func (e *Engine) CreateGroupFromNodes(ids []model.NodeID, name string) (model.NodeID, error) {
	w := e.state
	if len(ids) == 0 {
		return model.NoNode, fmt.Errorf("create group: no nodes: %w", model.ErrNodeNotFound)
	}
	seen := make(map[model.NodeID]bool, len(ids))
	for _, id := range ids {
		if w.Node(id) == nil {
			return model.NoNode, fmt.Errorf("create group: node %d: %w", id, model.ErrNodeNotFound)
		}
		if seen[id] {
			return model.NoNode, fmt.Errorf("create group: node %d listed twice", id)
		}
		seen[id] = true
	}

	first := w.Node(ids[0])
	viewID, ok := w.ViewContaining(first.ID)
	if !ok {
		return model.NoNode, fmt.Errorf("create group: %w", model.ErrViewNotFound)
	}
	anchorParent := first.ParentID

	// The group will live at first's position; a listed node that is (or
	// contains) that position would end up inside itself.
	for _, id := range ids {
		if id == anchorParent || w.IsAncestor(id, anchorParent) {
			return model.NoNode, fmt.Errorf("create group: node %d contains the group position: %w", id, model.ErrCycleDetected)
		}
	}

	if name == "" {
		name = model.DefaultGroupName
	}

	anchorIndex := e.positionOf(first, viewID)
	g := &model.Node{
		ID:       w.AllocNodeID(),
		Ref:      model.GroupRef,
		Name:     name,
		Expanded: true,
	}
	w.Nodes[g.ID] = g
	e.splice(g.ID, anchorParent, viewID, anchorIndex)
	e.rederiveDepths(g.ID)

	for _, id := range ids {
		memberView, _ := w.ViewContaining(id)
		e.detach(id, memberView)
		e.splice(id, g.ID, viewID, len(g.Children))
		e.rederiveDepths(id)
	}
	e.reindexSubtree(g.ID, viewID)

	debug.Log("group %d %q formed from %d nodes", g.ID, name, len(ids))
	e.notifyChange()
	return g.ID, nil
}

// AddNodeToGroup moves a node (and its subtree) to the end of a group's
// children. Fails with ErrNotAGroup if the target is not a group node.
func (e *Engine) AddNodeToGroup(id, groupID model.NodeID) error {
	w := e.state
	g := w.Node(groupID)
	if g == nil {
		return fmt.Errorf("add to group %d: %w", groupID, model.ErrNodeNotFound)
	}
	if !g.IsGroup() {
		return fmt.Errorf("add to group %d: %w", groupID, model.ErrNotAGroup)
	}
	return e.MoveNode(id, groupID, len(g.Children))
}

// DissolveGroup removes a group node, promoting its children into the
// group's former position. The inverse of CreateGroupFromNodes; groups are
// never closable through the single-tab close path, so this is their only
// removal route besides cascade.
func (e *Engine) DissolveGroup(groupID model.NodeID) error {
	w := e.state
	g := w.Node(groupID)
	if g == nil {
		return fmt.Errorf("dissolve group %d: %w", groupID, model.ErrNodeNotFound)
	}
	if !g.IsGroup() {
		return fmt.Errorf("dissolve group %d: %w", groupID, model.ErrNotAGroup)
	}
	return e.RemoveNode(groupID, model.PromoteChildren)
}

// RenameGroup updates a group's display name.
func (e *Engine) RenameGroup(groupID model.NodeID, name string) error {
	g := e.state.Node(groupID)
	if g == nil {
		return fmt.Errorf("rename group %d: %w", groupID, model.ErrNodeNotFound)
	}
	if !g.IsGroup() {
		return fmt.Errorf("rename group %d: %w", groupID, model.ErrNotAGroup)
	}
	if name == "" {
		name = model.DefaultGroupName
	}
	if g.Name == name {
		return nil
	}
	g.Name = name
	e.notifyChange()
	return nil
}
