// Package model defines the record types for a per-window tab tree: nodes,
// views, and the window state that holds them, together with the structural
// invariants the engine must preserve.
//
// Nodes reference each other only by ID inside a per-window map, never by
// direct pointer, so cycle checks are plain id-membership walks and
// serialization is trivial.
package model

// NodeID identifies a node within one window's state. IDs are unique per
// window, not globally; 0 is reserved as "no node" (a root's parent).
type NodeID int

// NoNode is the zero NodeID, used for "no parent" / "not found".
const NoNode NodeID = 0

// TabRef is the host tab identifier carried by a node. Real tabs have
// positive refs assigned by the host platform; zero is never a live tab,
// so the zero value safely means "no tab". Synthetic group nodes carry
// GroupRef instead.
type TabRef int

// NoTabRef is the zero TabRef: no tab. Used where a ref is optional, such
// as a created tab without an opener.
const NoTabRef TabRef = 0

// GroupRef is the reserved sentinel ref for synthetic group nodes. A group
// behaves like any other node for tree operations but is never closable
// through the single-tab close path and has no loading state.
const GroupRef TabRef = -1

// DefaultGroupName is the placeholder name for newly created groups.
const DefaultGroupName = "Group"

// Node is one entry in the tab tree: a real tab or a synthetic group.
//
// Invariants (enforced by the engine, checked by WindowState.Validate):
//   - Depth == parent.Depth+1, and 0 for roots
//   - a node's ID never appears in its own descendant set
//   - Children order defines sibling order
//   - every ID in Children exists and has this node as ParentID
type Node struct {
	ID       NodeID   `json:"id"`
	Ref      TabRef   `json:"ref"`
	ParentID NodeID   `json:"parentId,omitempty"` // NoNode for roots
	Children []NodeID `json:"children,omitempty"`
	Expanded bool     `json:"expanded"`
	Depth    int      `json:"depth"`

	// Name is only meaningful for group nodes; real tabs take their title
	// from the host platform and don't persist it here.
	Name string `json:"name,omitempty"`
}

// IsGroup reports whether the node is a synthetic group.
func (n *Node) IsGroup() bool {
	return n.Ref == GroupRef
}

// HasChild reports whether id appears in the node's children list.
func (n *Node) HasChild(id NodeID) bool {
	for _, c := range n.Children {
		if c == id {
			return true
		}
	}
	return false
}

// ChildIndex returns the position of id in the children list, or -1.
func (n *Node) ChildIndex(id NodeID) int {
	for i, c := range n.Children {
		if c == id {
			return i
		}
	}
	return -1
}

// InsertPos is an insertion hint for AddNode and the per-open-cause
// insertion policy in config.
type InsertPos string

const (
	// InsertChild appends as the last child of the reference node.
	InsertChild InsertPos = "child"
	// InsertSibling inserts immediately after the reference node, under
	// the same parent.
	InsertSibling InsertPos = "sibling"
	// InsertEnd appends as the last root of the view.
	InsertEnd InsertPos = "end"
)

// ChildBehavior selects what happens to a removed node's children.
type ChildBehavior string

const (
	// PromoteChildren reparents children to the removed node's parent,
	// preserving relative order.
	PromoteChildren ChildBehavior = "promote"
	// OrphanChildren makes children new roots of the same view.
	OrphanChildren ChildBehavior = "orphan"
	// CascadeChildren removes the entire subtree.
	CascadeChildren ChildBehavior = "cascade"
)

// Valid reports whether b is a known child behavior.
func (b ChildBehavior) Valid() bool {
	switch b {
	case PromoteChildren, OrphanChildren, CascadeChildren:
		return true
	}
	return false
}
