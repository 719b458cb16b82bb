package engine

import (
	"errors"
	"testing"

	"github.com/tabgrove/tabgrove/pkg/model"
	"github.com/tabgrove/tabgrove/pkg/testutil"
)

func TestCreateAndSwitchView(t *testing.T) {
	e := New()
	def := e.State().CurrentViewID

	work := e.CreateView("Work", "blue", "briefcase")
	if e.State().CurrentViewID != def {
		t.Error("creating a view must not switch to it")
	}
	if err := e.SwitchView(work); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if e.State().CurrentViewID != work {
		t.Errorf("current view = %d, want %d", e.State().CurrentViewID, work)
	}
	if err := e.SwitchView(model.ViewID(999)); !errors.Is(err, model.ErrViewNotFound) {
		t.Errorf("switch to missing view: err = %v, want ErrViewNotFound", err)
	}
}

func TestCreateView_DefaultName(t *testing.T) {
	e := New()
	id := e.CreateView("", "", "")
	if got := e.State().View(id).Name; got != "View 2" {
		t.Errorf("generated name = %q, want %q", got, "View 2")
	}
}

func TestDeleteView_CascadesForest(t *testing.T) {
	e := New()
	def := e.State().CurrentViewID
	work := e.CreateView("Work", "", "")

	addRoot(t, e, 1)
	a, err := e.AddNode(10, model.NoNode, work, model.InsertEnd)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := e.AddNode(11, a, work, model.InsertChild); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := e.DeleteView(work); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, ref := range []model.TabRef{10, 11} {
		if _, ok := e.NodeByRef(ref); ok {
			t.Errorf("ref %d survived view deletion", ref)
		}
	}
	if _, ok := e.NodeByRef(1); !ok {
		t.Error("node in surviving view was dropped")
	}
	if e.State().CurrentViewID != def {
		t.Errorf("current view = %d, want %d", e.State().CurrentViewID, def)
	}
	testutil.AssertValid(t, e.State())
}

func TestDeleteView_ReselectsCurrent(t *testing.T) {
	e := New()
	def := e.State().CurrentViewID
	work := e.CreateView("Work", "", "")
	if err := e.SwitchView(work); err != nil {
		t.Fatalf("switch: %v", err)
	}

	if err := e.DeleteView(work); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if e.State().CurrentViewID != def {
		t.Errorf("current view = %d, want surviving %d", e.State().CurrentViewID, def)
	}
	testutil.AssertValid(t, e.State())
}

func TestDeleteView_LastViewGetsReplacement(t *testing.T) {
	e := New()
	def := e.State().CurrentViewID
	addRoot(t, e, 1)

	if err := e.DeleteView(def); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(e.State().Views) != 1 {
		t.Fatalf("view count = %d, want 1", len(e.State().Views))
	}
	fresh := e.State().Views[0]
	if fresh.ID == def {
		t.Error("deleted view still present")
	}
	if fresh.Name != "Default" {
		t.Errorf("replacement view name = %q, want %q", fresh.Name, "Default")
	}
	if e.State().CurrentViewID != fresh.ID {
		t.Error("replacement view is not current")
	}
	if len(e.State().Nodes) != 0 {
		t.Errorf("%d nodes survived deleting the only view", len(e.State().Nodes))
	}
	testutil.AssertValid(t, e.State())
}

func TestUpdateView(t *testing.T) {
	e := New()
	id := e.CreateView("Work", "blue", "briefcase")

	name := "Research"
	color := "green"
	if err := e.UpdateView(id, model.ViewPatch{Name: &name, Color: &color}); err != nil {
		t.Fatalf("update: %v", err)
	}
	v := e.State().View(id)
	if v.Name != "Research" || v.Color != "green" {
		t.Errorf("view = %q/%q, want Research/green", v.Name, v.Color)
	}
	// Nil fields stay untouched.
	if v.Icon != "briefcase" {
		t.Errorf("icon = %q, want unchanged %q", v.Icon, "briefcase")
	}

	if err := e.UpdateView(model.ViewID(999), model.ViewPatch{}); !errors.Is(err, model.ErrViewNotFound) {
		t.Errorf("update missing view: err = %v, want ErrViewNotFound", err)
	}
}
