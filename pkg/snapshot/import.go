package snapshot

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/engine"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// Mode selects how an import combines with live state.
type Mode int

const (
	// Replace drops every existing view before importing, so the result
	// is exactly the document's tree.
	Replace Mode = iota
	// Merge appends the document's views alongside the existing ones.
	// Nodes whose refs already exist in the window are skipped with
	// their subtrees; a ref can only live in one place.
	Merge
)

// Import replays a snapshot into the engine through its ordinary
// operations, never by direct document substitution. Node ids are
// reallocated; refs are preserved so a round-trip through an empty window
// reproduces an isomorphic tree with the same refs.
func Import(eng *engine.Engine, s *Snapshot, mode Mode) error {
	if len(s.Views) == 0 {
		return fmt.Errorf("snapshot has no views")
	}

	// Replace clears live state first, so the document's refs can never
	// collide with nodes that are about to disappear anyway. Deleting the
	// last view makes the engine create a placeholder default view; it is
	// removed again once the imported views exist.
	var placeholders []model.ViewID
	if mode == Replace {
		var oldViews []model.ViewID
		for _, v := range eng.State().Views {
			oldViews = append(oldViews, v.ID)
		}
		for _, id := range oldViews {
			if err := eng.DeleteView(id); err != nil {
				return fmt.Errorf("replacing view %d: %w", id, err)
			}
		}
		for _, v := range eng.State().Views {
			placeholders = append(placeholders, v.ID)
		}
		for _, ref := range append([]model.TabRef(nil), eng.State().Pinned...) {
			eng.UnpinTab(ref)
		}
	}

	currentID := model.NoView
	for _, vs := range s.Views {
		viewID := eng.CreateView(vs.Name, vs.Color, vs.Icon)
		if vs.Current {
			currentID = viewID
		}
		for _, root := range vs.Roots {
			importNode(eng, root, model.NoNode, viewID)
		}
	}

	if currentID != model.NoView && mode == Replace {
		if err := eng.SwitchView(currentID); err != nil {
			return err
		}
	}
	for _, id := range placeholders {
		if err := eng.DeleteView(id); err != nil {
			return fmt.Errorf("dropping placeholder view %d: %w", id, err)
		}
	}

	for _, ref := range s.Pinned {
		eng.PinTab(ref)
	}
	return nil
}

// importNode adds one snapshot node and recurses into its children. The
// first child position per parent is InsertEnd for roots and a child
// append otherwise, so sibling order is preserved by construction.
func importNode(eng *engine.Engine, ns NodeSnapshot, parent model.NodeID, viewID model.ViewID) {
	ref := ns.Ref
	if ns.Group {
		ref = model.GroupRef
	} else if _, exists := eng.NodeByRef(ref); exists {
		debug.Log("import: ref %d already present, skipping subtree", ref)
		return
	}

	pos := model.InsertChild
	if parent == model.NoNode {
		pos = model.InsertEnd
	}
	id, err := eng.AddNode(ref, parent, viewID, pos)
	if err != nil {
		debug.Log("import: add ref %d: %v", ref, err)
		return
	}
	if ns.Group && ns.Name != "" {
		if err := eng.RenameGroup(id, ns.Name); err != nil {
			debug.Log("import: rename group %d: %v", id, err)
		}
	}
	if err := eng.SetExpanded(id, ns.Expanded); err != nil {
		debug.Log("import: set expanded %d: %v", id, err)
	}
	for _, child := range ns.Children {
		importNode(eng, child, id, viewID)
	}
}
