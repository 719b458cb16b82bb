// Package syncer reconciles asynchronous host tab-lifecycle notifications
// with the tree. It is a per-window state machine:
//
//	Uninitialized -> Syncing -> Live
//
// On start it loads persisted state and enumerates the host's live tabs
// concurrently, reconciles the two, then replays any lifecycle events that
// arrived during reconciliation in their original order. That turns the
// implicit race between initial load and live events into an explicit,
// testable ordering contract.
package syncer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tabgrove/tabgrove/pkg/config"
	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/engine"
	"github.com/tabgrove/tabgrove/pkg/model"
	"github.com/tabgrove/tabgrove/pkg/persist"
)

// TabInfo is the host platform's description of one live tab.
type TabInfo struct {
	Ref       model.TabRef
	OpenerRef model.TabRef // NoOpener when the tab was not opened from another
	Active    bool
	Pinned    bool
}

// NoOpener marks a tab with no opener. Real tab refs are positive, so the
// zero value of TabInfo.OpenerRef means "no opener".
const NoOpener = model.NoTabRef

// Host is the platform collaborator. The coordinator only consumes it and
// assumes no ordering guarantee beyond per-tab FIFO on events.
type Host interface {
	// EnumerateTabs returns a point-in-time listing of the window's tabs.
	EnumerateTabs(ctx context.Context) ([]TabInfo, error)
}

// EventKind is a host tab lifecycle notification type.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventRemoved   EventKind = "removed"
	EventActivated EventKind = "activated"
	EventMoved     EventKind = "moved"
	EventAttached  EventKind = "attached"
	EventDetached  EventKind = "detached"
)

// Event is one host tab lifecycle notification.
type Event struct {
	Kind EventKind
	Tab  TabInfo // created/attached carry the full tab description
	Ref  model.TabRef
	Gap  int // moved: destination gap among siblings
}

// State is the coordinator's lifecycle state.
type State int

const (
	Uninitialized State = iota
	Syncing
	Live
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Syncing:
		return "syncing"
	case Live:
		return "live"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Coordinator funnels host events for one window into the engine.
// It is not safe for concurrent use; like the engine, it belongs to the
// single-threaded event loop.
type Coordinator struct {
	host     Host
	gateway  *persist.Gateway
	behavior config.Behavior

	state  State
	engine *engine.Engine
	queue  []Event
}

// New creates a coordinator. The engine does not exist until Start has
// reconciled persisted state with the host.
func New(host Host, gw *persist.Gateway, behavior config.Behavior) *Coordinator {
	return &Coordinator{
		host:     host,
		gateway:  gw,
		behavior: behavior,
	}
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	return c.state
}

// Engine returns the engine once Start has completed, else nil. All other
// mutation sources (drag gestures, menu actions, import) must go through
// this same instance.
func (c *Coordinator) Engine() *engine.Engine {
	return c.engine
}

// Start performs initial reconciliation and transitions to Live. Persisted
// state and the host enumeration are fetched concurrently; events
// delivered while Syncing are queued and replayed afterward in arrival
// order, so two writers never race on the same node.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.state != Uninitialized {
		return fmt.Errorf("coordinator already started (%s)", c.state)
	}
	c.state = Syncing
	defer debug.LogEnterExit("syncer.Start")()

	var (
		persisted *model.WindowState
		hostTabs  []TabInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		persisted, err = c.gateway.Load()
		return err
	})
	g.Go(func() error {
		var err error
		hostTabs, err = c.host.EnumerateTabs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.state = Uninitialized
		return fmt.Errorf("initial sync: %w", err)
	}

	opts := []engine.Option{
		engine.WithOnChange(c.enqueue),
	}
	if persisted != nil {
		if err := persisted.Validate(); err != nil {
			debug.Log("persisted state invalid, starting fresh: %v", err)
		} else {
			opts = append(opts, engine.WithState(persisted))
		}
	}
	c.engine = engine.New(opts...)

	c.reconcile(hostTabs)

	// Replay events queued during reconciliation, in arrival order.
	queued := c.queue
	c.queue = nil
	c.state = Live
	for _, ev := range queued {
		c.apply(ev)
	}
	return nil
}

// Deliver feeds one host event into the coordinator. While Syncing (or
// before Start), events are queued; once Live they apply immediately.
// Malformed and duplicate events are absorbed, not fatal: the host's own
// ordering guarantees are weak by design.
func (c *Coordinator) Deliver(ev Event) {
	if c.state != Live {
		c.queue = append(c.queue, ev)
		return
	}
	c.apply(ev)
}

// reconcile aligns the engine's tree with a host enumeration: host tabs
// missing from the tree are appended as new roots, tree nodes missing from
// the host are removed with cascade.
func (c *Coordinator) reconcile(hostTabs []TabInfo) {
	eng := c.engine
	w := eng.State()

	live := make(map[model.TabRef]TabInfo, len(hostTabs))
	for _, tab := range hostTabs {
		live[tab.Ref] = tab
	}

	// Drop nodes whose tabs are gone. Collect first: removal mutates the
	// index we are ranging over.
	var stale []model.NodeID
	for ref, entry := range w.Index {
		if _, ok := live[ref]; !ok {
			stale = append(stale, entry.NodeID)
		}
	}
	for _, id := range stale {
		// A cascade earlier in the loop may already have removed it.
		if w.Node(id) == nil {
			continue
		}
		if err := eng.RemoveNode(id, model.CascadeChildren); err != nil {
			debug.Log("reconcile: drop node %d: %v", id, err)
		}
	}

	// Append unknown live tabs as new roots of the current view, in host
	// order.
	for _, tab := range hostTabs {
		if _, ok := eng.NodeByRef(tab.Ref); ok {
			continue
		}
		if _, err := eng.AddNode(tab.Ref, model.NoNode, w.CurrentViewID, model.InsertEnd); err != nil {
			debug.Log("reconcile: add ref %d: %v", tab.Ref, err)
			continue
		}
		if tab.Pinned {
			eng.PinTab(tab.Ref)
		}
		if tab.Active {
			eng.Activate(tab.Ref)
		}
	}

	// Pinned refs whose tabs are gone.
	for _, ref := range append([]model.TabRef(nil), w.Pinned...) {
		if _, ok := live[ref]; !ok {
			eng.UnpinTab(ref)
		}
	}

	debug.Log("reconciled %d host tabs, %d stale nodes", len(hostTabs), len(stale))
}

// apply maps one Live event to one engine call.
func (c *Coordinator) apply(ev Event) {
	eng := c.engine
	switch ev.Kind {
	case EventCreated, EventAttached:
		c.applyCreated(ev.Tab)

	case EventRemoved, EventDetached:
		id, ok := eng.NodeByRef(ev.Ref)
		if !ok {
			return // already removed, duplicate event
		}
		behavior := c.behavior.CloseBehavior
		if ev.Kind == EventDetached {
			// The subtree follows the tab to the other window.
			behavior = model.CascadeChildren
		}
		if err := eng.RemoveNode(id, behavior); err != nil {
			debug.Log("apply %s ref %d: %v", ev.Kind, ev.Ref, err)
		}
		eng.UnpinTab(ev.Ref)

	case EventActivated:
		eng.Activate(ev.Ref)

	case EventMoved:
		id, ok := eng.NodeByRef(ev.Ref)
		if !ok {
			return
		}
		if err := eng.MoveSubtreeBySize(id, ev.Gap); err != nil {
			debug.Log("apply move ref %d: %v", ev.Ref, err)
		}

	default:
		debug.Log("ignoring unknown event kind %q", ev.Kind)
	}
}

// applyCreated inserts a new tab per the configured insertion policy:
// under its opener when it has one, else per the no-opener policy.
func (c *Coordinator) applyCreated(tab TabInfo) {
	eng := c.engine
	w := eng.State()
	if _, ok := eng.NodeByRef(tab.Ref); ok {
		return // duplicate create
	}

	anchor := model.NoNode
	viewID := w.CurrentViewID
	pos := c.behavior.OpenNoOpener
	if tab.OpenerRef != NoOpener {
		if openerID, ok := eng.NodeByRef(tab.OpenerRef); ok {
			anchor = openerID
			if vid, ok := w.ViewContaining(openerID); ok {
				viewID = vid
			}
			pos = c.behavior.OpenWithOpener
		}
	}
	if pos == model.InsertEnd {
		anchor = model.NoNode
	}

	if _, err := eng.AddNode(tab.Ref, anchor, viewID, pos); err != nil {
		debug.Log("apply created ref %d: %v", tab.Ref, err)
		return
	}
	if tab.Pinned {
		eng.PinTab(tab.Ref)
	}
	if tab.Active {
		eng.Activate(tab.Ref)
	}
}

// enqueue is the engine's change hook: snapshot to the gateway after every
// successful mutation.
func (c *Coordinator) enqueue() {
	if c.gateway != nil {
		c.gateway.Enqueue(c.engine.State())
	}
}
