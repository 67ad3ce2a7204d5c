package gesture

import (
	"reflect"
	"testing"

	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"
	"sortable-tree/internal/tree"
)

func n(id string, children ...model.Node) model.Node {
	return model.Node{ID: id, Title: "Item " + id, Children: children}
}

// 1{1.1, 1.2, 1.3{1.3.1, 1.3.2}}, 2(draft), 3{3.1}
func fixture() model.Forest {
	draft := n("2")
	draft.IsDraft = true
	one := n("1", n("1.1"), n("1.2"), n("1.3", n("1.3.1"), n("1.3.2")))
	one.Expanded = true
	return model.Forest{one, draft, n("3", n("3.1"))}
}

func pointer(y float64) Input {
	return Input{Pointer: Point{X: 80, Y: y}, Row: Rect{Left: 0, Top: 0, Width: 200, Height: 40}}
}

func TestModeFor(t *testing.T) {
	f := fixture()
	if got := ModeFor(f[0], 0, f); got != ModeExpanded {
		t.Fatalf("open parent: got %s", got)
	}
	if got := ModeFor(f[1], 1, f); got != ModeStandard {
		t.Fatalf("middle leaf: got %s", got)
	}
	if got := ModeFor(f[2], 2, f); got != ModeLastInGroup {
		t.Fatalf("last collapsed: got %s", got)
	}
}

func TestRowOf(t *testing.T) {
	row, ok := RowOf(fixture(), "1.3.2")
	if !ok {
		t.Fatalf("expected row")
	}
	if row.Level != 2 || row.Index != 1 || row.Mode != ModeLastInGroup {
		t.Fatalf("unexpected row: %+v", row)
	}
	if _, ok := RowOf(fixture(), "nope"); ok {
		t.Fatalf("expected missing row")
	}
}

func TestInterpret_BlocksOwnSubtree(t *testing.T) {
	t.Parallel()

	f := fixture()
	for _, target := range []string{"1", "1.3", "1.3.1"} {
		got := Interpret(f, "1", target, InputFor(f, target, pointer(20)))
		if !got.Blocked() {
			t.Fatalf("target %s: expected blocked, got %+v", target, got)
		}
	}
	if got := Interpret(f, "1.3", "3", InputFor(f, "3", pointer(20))); got.Blocked() {
		t.Fatalf("unrelated target should not be blocked: %+v", got)
	}
}

func TestInterpret_BlocksMakeChildOnDraft(t *testing.T) {
	f := fixture()

	got := Interpret(f, "3", "2", InputFor(f, "2", pointer(20)))
	if !got.Blocked() || got.Unwrap().Type != model.InstructionMakeChild {
		t.Fatalf("expected blocked make-child, got %+v", got)
	}
	above := Interpret(f, "3", "2", InputFor(f, "2", pointer(2)))
	if above.Type != model.InstructionReorderAbove {
		t.Fatalf("reorder onto a draft should pass, got %+v", above)
	}
}

func TestInterpret_Reparent(t *testing.T) {
	f := fixture()

	in := InputFor(f, "1.3.2", Input{Pointer: Point{X: 3, Y: 35}, Row: Rect{Left: 0, Top: 0, Width: 200, Height: 40}})
	got := Interpret(f, "1.1", "1.3.2", in)
	if got.Type != model.InstructionReparent || got.DesiredLevel != 0 {
		t.Fatalf("expected reparent(0), got %+v", got)
	}
	parent, ok := HighlightParentID(f, "1.3.2", got)
	if ok {
		t.Fatalf("reparent to level 0 lands at the root, got highlight %s", parent)
	}

	in.Pointer.X = 13
	got = Interpret(f, "1.1", "1.3.2", in)
	if got.Type != model.InstructionReparent || got.DesiredLevel != 1 {
		t.Fatalf("expected reparent(1), got %+v", got)
	}
	if parent, ok := HighlightParentID(f, "1.3.2", got); !ok || parent != "1" {
		t.Fatalf("highlight: got %q %v, want 1", parent, ok)
	}
}

func TestInterpret_MissingNodesAreBlocked(t *testing.T) {
	f := fixture()
	if got := Interpret(f, "ghost", "3", InputFor(f, "3", pointer(2))); !got.Blocked() {
		t.Fatalf("missing dragged: %+v", got)
	}
	if got := Interpret(f, "3", "ghost", pointer(2)); !got.Blocked() {
		t.Fatalf("missing target: %+v", got)
	}
}

// Whatever the pointer does while dragging a node over its own subtree, the reducer
// never nests the node inside itself.
func TestInterpret_NoSelfNestingThroughReducer(t *testing.T) {
	t.Parallel()

	f := fixture()
	for _, target := range []string{"1", "1.1", "1.3", "1.3.2"} {
		for x := 0.0; x <= 200; x += 7 {
			for y := 0.0; y <= 40; y += 4 {
				in := InputFor(f, target, Input{Pointer: Point{X: x, Y: y}, Row: Rect{Left: 0, Top: 0, Width: 200, Height: 40}})
				instr := Interpret(f, "1", target, in)
				next, err := mutate.Reduce(mutate.State{Forest: f}, mutate.Instruction{Instruction: instr, ItemID: "1", TargetID: target})
				if err != nil {
					t.Fatalf("reduce: %v", err)
				}
				if _, ok := tree.Find(next.Forest, "1"); !ok {
					t.Fatalf("lost dragged node for %s at (%v,%v)", target, x, y)
				}
				if !reflect.DeepEqual(next.Forest, f) {
					t.Fatalf("forest changed for %s at (%v,%v): %+v", target, x, y, instr)
				}
			}
		}
	}
}
