package engine

import (
	"errors"
	"testing"

	"github.com/tabgrove/tabgrove/pkg/model"
	"github.com/tabgrove/tabgrove/pkg/testutil"
)

func TestCreateGroupFromNodes(t *testing.T) {
	e := New()
	viewID := e.State().CurrentViewID

	a := addRoot(t, e, 1)
	b := addRoot(t, e, 2)
	addRoot(t, e, 3)

	g, err := e.CreateGroupFromNodes([]model.NodeID{a, b}, "Work")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	gn := e.State().Node(g)
	if !gn.IsGroup() {
		t.Fatal("group node does not carry the group ref")
	}
	if gn.Name != "Work" {
		t.Errorf("group name = %q, want %q", gn.Name, "Work")
	}
	// The group takes the first member's position.
	testutil.AssertRootRefs(t, e.State(), viewID, model.GroupRef, 3)
	testutil.AssertChildRefs(t, e.State(), g, 1, 2)
	if e.State().Node(a).Depth != 1 || e.State().Node(b).Depth != 1 {
		t.Error("grouped members not at depth 1")
	}
	testutil.AssertValid(t, e.State())
}

func TestCreateGroupFromNodes_SingleMember(t *testing.T) {
	e := New()
	a := addRoot(t, e, 1)
	addChild(t, e, 10, a)

	g, err := e.CreateGroupFromNodes([]model.NodeID{a}, "")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if got := e.State().Node(g).Name; got != model.DefaultGroupName {
		t.Errorf("group name = %q, want default %q", got, model.DefaultGroupName)
	}
	testutil.AssertChildRefs(t, e.State(), g, 1)
	testutil.AssertDepths(t, e.State())
}

func TestCreateGroupFromNodes_NestedMembers(t *testing.T) {
	e := New()
	viewID := e.State().CurrentViewID
	a := addRoot(t, e, 1)
	x := addChild(t, e, 10, a)
	b := addRoot(t, e, 2)

	// Grouping a nested node with a root: group lands at the first
	// member's position, inside a.
	g, err := e.CreateGroupFromNodes([]model.NodeID{x, b}, "Mixed")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	testutil.AssertChildRefs(t, e.State(), a, model.GroupRef)
	testutil.AssertChildRefs(t, e.State(), g, 10, 2)
	testutil.AssertRootRefs(t, e.State(), viewID, 1)
	testutil.AssertDepths(t, e.State())
	testutil.AssertValid(t, e.State())
}

func TestCreateGroupFromNodes_Errors(t *testing.T) {
	e := New()
	a := addRoot(t, e, 1)
	x := addChild(t, e, 10, a)

	if _, err := e.CreateGroupFromNodes(nil, ""); !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("empty list: err = %v, want ErrNodeNotFound", err)
	}
	if _, err := e.CreateGroupFromNodes([]model.NodeID{999}, ""); !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("missing node: err = %v, want ErrNodeNotFound", err)
	}
	if _, err := e.CreateGroupFromNodes([]model.NodeID{a, a}, ""); err == nil {
		t.Error("duplicate member accepted")
	}
	// First member x sits under a; listing a too would put a inside a
	// group that lives inside a.
	if _, err := e.CreateGroupFromNodes([]model.NodeID{x, a}, ""); !errors.Is(err, model.ErrCycleDetected) {
		t.Errorf("member containing group position: err = %v, want ErrCycleDetected", err)
	}
}

func TestAddNodeToGroup(t *testing.T) {
	e := New()
	a := addRoot(t, e, 1)
	b := addRoot(t, e, 2)
	c := addRoot(t, e, 3)

	g, err := e.CreateGroupFromNodes([]model.NodeID{a}, "Work")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := e.AddNodeToGroup(b, g); err != nil {
		t.Fatalf("add to group: %v", err)
	}
	testutil.AssertChildRefs(t, e.State(), g, 1, 2)

	if err := e.AddNodeToGroup(c, a); !errors.Is(err, model.ErrNotAGroup) {
		t.Errorf("add to non-group: err = %v, want ErrNotAGroup", err)
	}
	if err := e.AddNodeToGroup(c, model.NodeID(999)); !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("add to missing group: err = %v, want ErrNodeNotFound", err)
	}
	testutil.AssertValid(t, e.State())
}

func TestDissolveGroup(t *testing.T) {
	e := New()
	viewID := e.State().CurrentViewID

	a := addRoot(t, e, 1)
	b := addRoot(t, e, 2)
	addRoot(t, e, 3)

	g, err := e.CreateGroupFromNodes([]model.NodeID{a, b}, "Work")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := e.DissolveGroup(g); err != nil {
		t.Fatalf("dissolve: %v", err)
	}
	// Members return to the group's position, order kept.
	testutil.AssertRootRefs(t, e.State(), viewID, 1, 2, 3)
	if e.State().Node(g) != nil {
		t.Error("group node survived dissolve")
	}
	testutil.AssertDepths(t, e.State())
	testutil.AssertValid(t, e.State())

	if err := e.DissolveGroup(a); !errors.Is(err, model.ErrNotAGroup) {
		t.Errorf("dissolve non-group: err = %v, want ErrNotAGroup", err)
	}
}

func TestRenameGroup(t *testing.T) {
	e := New()
	a := addRoot(t, e, 1)
	g, err := e.CreateGroupFromNodes([]model.NodeID{a}, "Work")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if err := e.RenameGroup(g, "Research"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := e.State().Node(g).Name; got != "Research" {
		t.Errorf("name = %q, want %q", got, "Research")
	}

	// Empty name falls back to the default.
	if err := e.RenameGroup(g, ""); err != nil {
		t.Fatalf("rename to empty: %v", err)
	}
	if got := e.State().Node(g).Name; got != model.DefaultGroupName {
		t.Errorf("name = %q, want default %q", got, model.DefaultGroupName)
	}

	if err := e.RenameGroup(a, "X"); !errors.Is(err, model.ErrNotAGroup) {
		t.Errorf("rename non-group: err = %v, want ErrNotAGroup", err)
	}
}
