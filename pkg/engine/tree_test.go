package engine

import (
	"errors"
	"testing"

	"github.com/tabgrove/tabgrove/pkg/model"
)

func TestGetTree(t *testing.T) {
	e := New()
	viewID := e.State().CurrentViewID

	a := addRoot(t, e, 1)
	addChild(t, e, 10, a)
	addRoot(t, e, 2)

	tree, err := e.GetTree(viewID)
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("root count = %d, want 2", len(tree))
	}
	if tree[0].Node.Ref != 1 || tree[1].Node.Ref != 2 {
		t.Errorf("root refs = %d, %d, want 1, 2", tree[0].Node.Ref, tree[1].Node.Ref)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Node.Ref != 10 {
		t.Error("nested child missing from materialized tree")
	}

	// The tree is a snapshot: later mutations must not show up in it.
	if err := e.RemoveNode(a, model.CascadeChildren); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(tree[0].Children) != 1 {
		t.Error("materialized tree changed after mutation")
	}

	if _, err := e.GetTree(model.ViewID(999)); !errors.Is(err, model.ErrViewNotFound) {
		t.Errorf("missing view: err = %v, want ErrViewNotFound", err)
	}
}

func TestVisibleRows_ElidesCollapsed(t *testing.T) {
	e := New()
	viewID := e.State().CurrentViewID

	a := addRoot(t, e, 1)
	b := addChild(t, e, 10, a)
	addChild(t, e, 11, b)
	addRoot(t, e, 2)

	rows, err := e.VisibleRows(viewID)
	if err != nil {
		t.Fatalf("visible rows: %v", err)
	}
	wantDepths := []int{0, 1, 2, 0}
	if len(rows) != len(wantDepths) {
		t.Fatalf("row count = %d, want %d", len(rows), len(wantDepths))
	}
	for i, r := range rows {
		if r.Depth != wantDepths[i] {
			t.Errorf("row %d depth = %d, want %d", i, r.Depth, wantDepths[i])
		}
	}

	// Collapsing a hides its descendants but not a itself.
	if err := e.SetExpanded(a, false); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	rows, err = e.VisibleRows(viewID)
	if err != nil {
		t.Fatalf("visible rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count after collapse = %d, want 2", len(rows))
	}
	if rows[0].NodeID != a {
		t.Error("collapsed node itself disappeared from the rows")
	}
}
