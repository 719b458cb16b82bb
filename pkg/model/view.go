package model

// ViewID identifies a view within one window's state. 0 is reserved.
type ViewID int

// NoView is the zero ViewID.
const NoView ViewID = 0

// View is a named, switchable partition of the node forest within one
// window. Exactly one view is current at a time per window; the current-view
// pointer lives on WindowState and is mutated only by an explicit switch,
// never as a side effect of tree mutation.
type View struct {
	ID      ViewID   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color,omitempty"`
	Icon    string   `json:"icon,omitempty"`
	RootIDs []NodeID `json:"rootIds,omitempty"` // ordered roots of the view's forest

	// LastActiveRef is read-state bookkeeping: the tab most recently
	// activated while this view was current. Not structural.
	LastActiveRef TabRef `json:"lastActiveRef,omitempty"`
}

// ViewPatch carries partial updates for UpdateView. Nil fields are left
// unchanged.
type ViewPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

// RootIndex returns the position of id in the view's root list, or -1.
func (v *View) RootIndex(id NodeID) int {
	for i, r := range v.RootIDs {
		if r == id {
			return i
		}
	}
	return -1
}
