package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tabgrove/tabgrove/pkg/model"
)

func TestPinUnpin(t *testing.T) {
	e := New()

	e.PinTab(10)
	e.PinTab(20)
	e.PinTab(10) // no-op
	if got := e.State().Pinned; !reflect.DeepEqual(got, []model.TabRef{10, 20}) {
		t.Errorf("pinned = %v, want [10 20]", got)
	}

	e.UnpinTab(10)
	e.UnpinTab(99) // unknown, ignored
	if got := e.State().Pinned; !reflect.DeepEqual(got, []model.TabRef{20}) {
		t.Errorf("pinned = %v, want [20]", got)
	}
}

func TestMovePinned(t *testing.T) {
	e := New()
	e.PinTab(10)
	e.PinTab(20)
	e.PinTab(30)

	// Gaps count with the moved ref excluded: gap 2 over [20 30] is the
	// very end.
	if err := e.MovePinned(10, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := e.State().Pinned; !reflect.DeepEqual(got, []model.TabRef{20, 30, 10}) {
		t.Errorf("pinned = %v, want [20 30 10]", got)
	}

	if err := e.MovePinned(10, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := e.State().Pinned; !reflect.DeepEqual(got, []model.TabRef{10, 20, 30}) {
		t.Errorf("pinned = %v, want [10 20 30]", got)
	}

	// Out-of-range gaps clamp instead of failing.
	if err := e.MovePinned(10, 99); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := e.State().Pinned; !reflect.DeepEqual(got, []model.TabRef{20, 30, 10}) {
		t.Errorf("pinned = %v, want [20 30 10]", got)
	}

	if err := e.MovePinned(99, 0); !errors.Is(err, model.ErrNodeNotFound) {
		t.Errorf("move unknown ref: err = %v, want ErrNodeNotFound", err)
	}
}
