package engine

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/tabgrove/tabgrove/pkg/model"
)

// Random operation sequences must leave the state fully valid after every
// step, and rejected moves must leave it untouched.
func TestEngine_RandomOperationSequences(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		nextRef := model.TabRef(1)

		nodeIDs := func() []model.NodeID {
			ids := make([]model.NodeID, 0, len(e.State().Nodes))
			for id := range e.State().Nodes {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			return ids
		}
		viewIDs := func() []model.ViewID {
			ids := make([]model.ViewID, 0, len(e.State().Views))
			for _, v := range e.State().Views {
				ids = append(ids, v.ID)
			}
			return ids
		}

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom([]string{
				"add", "addChild", "remove", "move", "group", "toggle", "createView", "switchView", "deleteView",
			}).Draw(t, "op")

			switch op {
			case "add":
				view := rapid.SampledFrom(viewIDs()).Draw(t, "view")
				if _, err := e.AddNode(nextRef, model.NoNode, view, model.InsertEnd); err != nil {
					t.Fatalf("add root: %v", err)
				}
				nextRef++

			case "addChild":
				ids := nodeIDs()
				if len(ids) == 0 {
					continue
				}
				anchor := rapid.SampledFrom(ids).Draw(t, "anchor")
				view, _ := e.State().ViewContaining(anchor)
				pos := rapid.SampledFrom([]model.InsertPos{model.InsertChild, model.InsertSibling}).Draw(t, "pos")
				if _, err := e.AddNode(nextRef, anchor, view, pos); err != nil {
					t.Fatalf("add under %d: %v", anchor, err)
				}
				nextRef++

			case "remove":
				ids := nodeIDs()
				if len(ids) == 0 {
					continue
				}
				id := rapid.SampledFrom(ids).Draw(t, "id")
				behavior := rapid.SampledFrom([]model.ChildBehavior{
					model.PromoteChildren, model.OrphanChildren, model.CascadeChildren,
				}).Draw(t, "behavior")
				if err := e.RemoveNode(id, behavior); err != nil {
					t.Fatalf("remove %d: %v", id, err)
				}

			case "move":
				ids := nodeIDs()
				if len(ids) == 0 {
					continue
				}
				id := rapid.SampledFrom(ids).Draw(t, "id")
				target := model.NoNode
				if rapid.Bool().Draw(t, "toNode") {
					target = rapid.SampledFrom(ids).Draw(t, "target")
				}
				index := rapid.IntRange(0, 5).Draw(t, "index")

				before := e.State().Clone()
				err := e.MoveNode(id, target, index)
				if errors.Is(err, model.ErrCycleDetected) {
					if !reflect.DeepEqual(before, e.State()) {
						t.Fatalf("rejected move of %d under %d modified the state", id, target)
					}
				} else if err != nil {
					t.Fatalf("move %d under %d: %v", id, target, err)
				}

			case "group":
				ids := nodeIDs()
				if len(ids) == 0 {
					continue
				}
				count := rapid.IntRange(1, 3).Draw(t, "count")
				seen := map[model.NodeID]bool{}
				var members []model.NodeID
				for len(members) < count {
					id := rapid.SampledFrom(ids).Draw(t, "member")
					if seen[id] {
						break
					}
					seen[id] = true
					members = append(members, id)
				}
				// Cycle rejections are legitimate; anything else is not.
				if _, err := e.CreateGroupFromNodes(members, ""); err != nil && !errors.Is(err, model.ErrCycleDetected) {
					t.Fatalf("group %v: %v", members, err)
				}

			case "toggle":
				ids := nodeIDs()
				if len(ids) == 0 {
					continue
				}
				id := rapid.SampledFrom(ids).Draw(t, "id")
				if err := e.ToggleExpanded(id); err != nil {
					t.Fatalf("toggle %d: %v", id, err)
				}

			case "createView":
				e.CreateView("", "", "")

			case "switchView":
				view := rapid.SampledFrom(viewIDs()).Draw(t, "view")
				if err := e.SwitchView(view); err != nil {
					t.Fatalf("switch view %d: %v", view, err)
				}

			case "deleteView":
				view := rapid.SampledFrom(viewIDs()).Draw(t, "view")
				if err := e.DeleteView(view); err != nil {
					t.Fatalf("delete view %d: %v", view, err)
				}
			}

			if err := e.State().Validate(); err != nil {
				t.Fatalf("after %s: invalid state: %v", op, err)
			}
		}
	})
}
