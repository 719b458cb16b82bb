package engine

import (
	"fmt"

	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// CreateView adds a new empty view. It does not become current; switching
// is always an explicit operation.
func (e *Engine) CreateView(name, color, icon string) model.ViewID {
	w := e.state
	if name == "" {
		name = fmt.Sprintf("View %d", len(w.Views)+1)
	}
	v := &model.View{
		ID:    w.AllocViewID(),
		Name:  name,
		Color: color,
		Icon:  icon,
	}
	w.Views = append(w.Views, v)
	debug.Log("view %d %q created", v.ID, name)
	e.notifyChange()
	return v.ID
}

// DeleteView removes a view and cascades away its forest. Deleting the
// current view atomically selects a remaining view first; deleting the last
// view creates a fresh default view before the deletion completes, so the
// state never has zero views or a dangling current-view pointer.
func (e *Engine) DeleteView(id model.ViewID) error {
	w := e.state
	v := w.View(id)
	if v == nil {
		return fmt.Errorf("delete view %d: %w", id, model.ErrViewNotFound)
	}

	if len(w.Views) == 1 {
		fresh := &model.View{ID: w.AllocViewID(), Name: "Default", Color: "gray"}
		w.Views = append(w.Views, fresh)
	}
	if w.CurrentViewID == id {
		for _, other := range w.Views {
			if other.ID != id {
				w.CurrentViewID = other.ID
				break
			}
		}
	}

	for _, rootID := range append([]model.NodeID(nil), v.RootIDs...) {
		for _, sub := range w.Subtree(rootID) {
			e.dropNode(sub)
		}
	}
	for i, other := range w.Views {
		if other.ID == id {
			w.Views = append(w.Views[:i], w.Views[i+1:]...)
			break
		}
	}

	debug.Log("view %d deleted, current now %d", id, w.CurrentViewID)
	e.notifyChange()
	return nil
}

// SwitchView makes the given view current. This is the only operation that
// mutates the current-view pointer.
func (e *Engine) SwitchView(id model.ViewID) error {
	w := e.state
	if w.View(id) == nil {
		return fmt.Errorf("switch view %d: %w", id, model.ErrViewNotFound)
	}
	if w.CurrentViewID == id {
		return nil
	}
	w.CurrentViewID = id
	e.notifyChange()
	return nil
}

// UpdateView applies a partial update to a view's metadata. Nil patch
// fields are left unchanged.
func (e *Engine) UpdateView(id model.ViewID, patch model.ViewPatch) error {
	v := e.state.View(id)
	if v == nil {
		return fmt.Errorf("update view %d: %w", id, model.ErrViewNotFound)
	}
	changed := false
	if patch.Name != nil && *patch.Name != v.Name {
		v.Name = *patch.Name
		changed = true
	}
	if patch.Color != nil && *patch.Color != v.Color {
		v.Color = *patch.Color
		changed = true
	}
	if patch.Icon != nil && *patch.Icon != v.Icon {
		v.Icon = *patch.Icon
		changed = true
	}
	if changed {
		e.notifyChange()
	}
	return nil
}
