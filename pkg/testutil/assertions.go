// Package testutil provides shared assertions for tab-tree tests.
package testutil

import (
	"testing"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// AssertValid verifies the window state passes full invariant validation.
func AssertValid(t *testing.T, w *model.WindowState) {
	t.Helper()
	if err := w.Validate(); err != nil {
		t.Errorf("window state invalid: %v", err)
	}
}

// AssertDepths verifies depth(n) == depth(parent(n))+1 for every non-root
// node and depth 0 for roots. Validate covers this too; kept separate so a
// depth regression fails with a direct message.
func AssertDepths(t *testing.T, w *model.WindowState) {
	t.Helper()
	for id, n := range w.Nodes {
		if n.ParentID == model.NoNode {
			if n.Depth != 0 {
				t.Errorf("root node %d has depth %d, expected 0", id, n.Depth)
			}
			continue
		}
		p := w.Node(n.ParentID)
		if p == nil {
			t.Errorf("node %d has missing parent %d", id, n.ParentID)
			continue
		}
		if n.Depth != p.Depth+1 {
			t.Errorf("node %d depth %d, parent %d depth %d", id, n.Depth, p.ID, p.Depth)
		}
	}
}

// AssertRootRefs verifies a view's root order by tab ref.
func AssertRootRefs(t *testing.T, w *model.WindowState, viewID model.ViewID, want ...model.TabRef) {
	t.Helper()
	v := w.View(viewID)
	if v == nil {
		t.Fatalf("view %d not found", viewID)
	}
	got := make([]model.TabRef, 0, len(v.RootIDs))
	for _, id := range v.RootIDs {
		got = append(got, w.Node(id).Ref)
	}
	assertRefSeq(t, "roots", got, want)
}

// AssertChildRefs verifies a node's children order by tab ref.
func AssertChildRefs(t *testing.T, w *model.WindowState, parent model.NodeID, want ...model.TabRef) {
	t.Helper()
	p := w.Node(parent)
	if p == nil {
		t.Fatalf("node %d not found", parent)
	}
	got := make([]model.TabRef, 0, len(p.Children))
	for _, id := range p.Children {
		got = append(got, w.Node(id).Ref)
	}
	assertRefSeq(t, "children", got, want)
}

// AssertIsomorphic verifies two window states have the same tree shape:
// same view order, same sibling order, same refs, same group names, same
// depths. Node ids are allowed to differ.
func AssertIsomorphic(t *testing.T, a, b *model.WindowState) {
	t.Helper()
	if len(a.Views) != len(b.Views) {
		t.Errorf("view count %d vs %d", len(a.Views), len(b.Views))
		return
	}
	for i := range a.Views {
		av, bv := a.Views[i], b.Views[i]
		if av.Name != bv.Name {
			t.Errorf("view %d name %q vs %q", i, av.Name, bv.Name)
		}
		if len(av.RootIDs) != len(bv.RootIDs) {
			t.Errorf("view %q root count %d vs %d", av.Name, len(av.RootIDs), len(bv.RootIDs))
			continue
		}
		for j := range av.RootIDs {
			assertSameShape(t, a, b, av.RootIDs[j], bv.RootIDs[j])
		}
	}
}

func assertSameShape(t *testing.T, a, b *model.WindowState, aid, bid model.NodeID) {
	t.Helper()
	an, bn := a.Node(aid), b.Node(bid)
	if an.Ref != bn.Ref {
		t.Errorf("node ref %d vs %d", an.Ref, bn.Ref)
		return
	}
	if an.Name != bn.Name {
		t.Errorf("node (ref %d) name %q vs %q", an.Ref, an.Name, bn.Name)
	}
	if an.Depth != bn.Depth {
		t.Errorf("node (ref %d) depth %d vs %d", an.Ref, an.Depth, bn.Depth)
	}
	if len(an.Children) != len(bn.Children) {
		t.Errorf("node (ref %d) child count %d vs %d", an.Ref, len(an.Children), len(bn.Children))
		return
	}
	for i := range an.Children {
		assertSameShape(t, a, b, an.Children[i], bn.Children[i])
	}
}

func assertRefSeq(t *testing.T, what string, got, want []model.TabRef) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: got %v, want %v", what, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s: got %v, want %v", what, got, want)
			return
		}
	}
}
