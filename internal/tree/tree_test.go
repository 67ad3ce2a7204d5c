package tree

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"

	"sortable-tree/internal/model"
)

func leaf(id string) model.Node { return model.Node{ID: id, Title: "Item " + id} }

func node(id string, children ...model.Node) model.Node {
	return model.Node{ID: id, Title: "Item " + id, Children: children}
}

func fixture() model.Forest {
	return model.Forest{
		node("1",
			leaf("1.1"),
			leaf("1.2"),
			node("1.3", leaf("1.3.1"), leaf("1.3.2")),
		),
		leaf("2"),
		node("3", leaf("3.1")),
	}
}

func snapshot(t *testing.T, f model.Forest) string {
	t.Helper()
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func ids(nodes []model.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestPathToItem(t *testing.T) {
	f := fixture()

	got, ok := PathToItem(f, "1.3.1")
	if !ok || !reflect.DeepEqual(got, []string{"1", "1.3"}) {
		t.Fatalf("path to 1.3.1: got %#v ok=%v", got, ok)
	}

	got, ok = PathToItem(f, "1")
	if !ok || len(got) != 0 {
		t.Fatalf("path to 1: got %#v ok=%v", got, ok)
	}

	if got, ok := PathToItem(f, "missing"); ok {
		t.Fatalf("expected not found, got %#v", got)
	}
}

func TestFind_DepthFirstPreOrder(t *testing.T) {
	f := fixture()
	n, ok := Find(f, "1.3.2")
	if !ok || n.ID != "1.3.2" {
		t.Fatalf("find 1.3.2: %#v ok=%v", n, ok)
	}
	if _, ok := Find(f, "nope"); ok {
		t.Fatalf("expected not found")
	}

	// Duplicate ids: the pre-order first match wins.
	dup := model.Forest{node("a", model.Node{ID: "x", Title: "deep"}), model.Node{ID: "x", Title: "shallow"}}
	n, _ = Find(dup, "x")
	if n.Title != "deep" {
		t.Fatalf("expected first pre-order match, got %q", n.Title)
	}
}

func TestHasChildren_NilAndEmptyEquivalent(t *testing.T) {
	if HasChildren(model.Node{ID: "a"}) {
		t.Fatalf("nil children should be false")
	}
	if HasChildren(model.Node{ID: "a", Children: []model.Node{}}) {
		t.Fatalf("empty children should be false")
	}
	if !HasChildren(node("a", leaf("b"))) {
		t.Fatalf("expected true")
	}
}

func TestRemove(t *testing.T) {
	f := fixture()
	before := snapshot(t, f)

	got := Remove(f, "1.3")
	if _, ok := Find(got, "1.3"); ok {
		t.Fatalf("1.3 still present")
	}
	if _, ok := Find(got, "1.3.1"); ok {
		t.Fatalf("subtree of 1.3 still present")
	}
	if snapshot(t, f) != before {
		t.Fatalf("input forest was mutated")
	}

	same := Remove(f, "missing")
	if snapshot(t, same) != before {
		t.Fatalf("removing a missing id should be a no-op")
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	f := fixture()

	got := InsertBefore(f, "1.2", leaf("x"))
	n, _ := Find(got, "1")
	if want := []string{"1.1", "x", "1.2", "1.3"}; !reflect.DeepEqual(ids(n.Children), want) {
		t.Fatalf("insert before: got %v want %v", ids(n.Children), want)
	}

	got = InsertAfter(f, "2", leaf("y"))
	if want := []string{"1", "2", "y", "3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("insert after: got %v want %v", ids(got), want)
	}

	before := snapshot(t, f)
	if snapshot(t, InsertAfter(f, "missing", leaf("z"))) != before {
		t.Fatalf("insert after missing target should leave forest unchanged")
	}
}

func TestInsertChild_PrependsAndExpands(t *testing.T) {
	f := fixture()
	got := InsertChild(f, "3", leaf("x"))
	n, _ := Find(got, "3")
	if want := []string{"x", "3.1"}; !reflect.DeepEqual(ids(n.Children), want) {
		t.Fatalf("children: got %v want %v", ids(n.Children), want)
	}
	if !n.Expanded {
		t.Fatalf("expected target to be expanded")
	}
	orig, _ := Find(f, "3")
	if orig.Expanded || len(orig.Children) != 1 {
		t.Fatalf("input node was mutated: %#v", orig)
	}
}

func TestUpdateHideToggle_DoNotMutateInput(t *testing.T) {
	f := fixture()
	before := snapshot(t, f)

	u := Update(f, model.Node{ID: "1.2", Title: "renamed"})
	if n, _ := Find(u, "1.2"); n.Title != "renamed" {
		t.Fatalf("update: got %q", n.Title)
	}
	if n, _ := Find(u, "1"); !reflect.DeepEqual(ids(n.Children), []string{"1.1", "1.2", "1.3"}) {
		t.Fatalf("update moved the node: %v", ids(n.Children))
	}

	h := Hide(f, "1.3")
	if n, _ := Find(h, "1.3"); !n.Hide {
		t.Fatalf("hide: expected hide=true")
	}
	if n, _ := Find(h, "1.3.1"); n.Hide {
		t.Fatalf("hide should only flip the matched node")
	}
	if n, _ := Find(Hide(h, "1.3"), "1.3"); n.Hide {
		t.Fatalf("hide twice should flip back")
	}

	tg := Toggle(f, "1")
	if n, _ := Find(tg, "1"); !n.Expanded {
		t.Fatalf("toggle: expected expanded")
	}

	if snapshot(t, f) != before {
		t.Fatalf("input forest was mutated")
	}
}

func TestToggle_LeafIsNoop(t *testing.T) {
	f := fixture()
	got := Toggle(f, "2")
	if !reflect.DeepEqual(got, f) {
		t.Fatalf("toggle on leaf changed the forest")
	}
}

func TestStructuralSharing_UntouchedSubtreesReused(t *testing.T) {
	f := fixture()
	got := Hide(f, "1.3.1")
	// Node 3 is untouched: its children must share the same backing array.
	if &got[2].Children[0] != &f[2].Children[0] {
		t.Fatalf("expected untouched subtree to be shared")
	}
	if &got[0].Children[2].Children[0] == &f[0].Children[2].Children[0] {
		t.Fatalf("expected changed path to be rebuilt")
	}
}

func TestRemoveReinsert_RoundTrip(t *testing.T) {
	f := fixture()
	orig, _ := Find(f, "1.3")

	got := InsertAfter(Remove(f, "1.3"), "1.1", orig)
	moved, ok := Find(got, "1.3")
	if !ok {
		t.Fatalf("node lost")
	}
	if !reflect.DeepEqual(moved, orig) {
		t.Fatalf("subtree changed across remove+reinsert:\n got %#v\nwant %#v", moved, orig)
	}
}

func TestCopy_IDsDisjoint(t *testing.T) {
	f := fixture()

	f1, c1 := Copy(f, "1")
	if c1 == nil {
		t.Fatalf("expected clone")
	}
	f2, c2 := Copy(f1, "1")
	if c2 == nil {
		t.Fatalf("expected second clone")
	}

	a := IDs(model.Forest{*c1})
	b := IDs(model.Forest{*c2})
	orig, _ := Find(f, "1")
	o := IDs(model.Forest{orig})
	for id := range a {
		if b[id] || o[id] {
			t.Fatalf("id %q shared between copies", id)
		}
	}
	for id := range b {
		if o[id] {
			t.Fatalf("id %q shared with original", id)
		}
	}
	if d := Duplicates(f2); len(d) != 0 {
		t.Fatalf("duplicates after two copies: %v", d)
	}

	src, _ := Find(f2, "1")
	if src.Copys != 2 {
		t.Fatalf("expected copys=2, got %d", src.Copys)
	}
	if c1.ID != "1-copy1" || c2.ID != "1-copy2" {
		t.Fatalf("unexpected clone ids %q %q", c1.ID, c2.ID)
	}
	// Clone sits right after the source.
	if want := []string{"1", "1-copy2", "1-copy1", "2", "3"}; !reflect.DeepEqual(ids(f2), want) {
		t.Fatalf("order: got %v want %v", ids(f2), want)
	}
}

func TestCopy_SkipsIDsAlreadyTaken(t *testing.T) {
	f := model.Forest{leaf("2"), leaf("2-copy1")}
	got, clone := Copy(f, "2")
	if clone == nil || clone.ID != "2-copy2" {
		t.Fatalf("expected 2-copy2, got %#v", clone)
	}
	if src, _ := Find(got, "2"); src.Copys != 2 {
		t.Fatalf("copys should record the index used, got %d", src.Copys)
	}
	if d := Duplicates(got); len(d) != 0 {
		t.Fatalf("duplicates: %v", d)
	}
}

func TestCopy_MissingIsNoop(t *testing.T) {
	f := fixture()
	got, clone := Copy(f, "missing")
	if clone != nil || !reflect.DeepEqual(got, f) {
		t.Fatalf("expected no-op")
	}
}

func TestInsertAtLast_AssignsFreshIDs(t *testing.T) {
	f := fixture()
	_, clone := Copy(f, "1")

	once := InsertAtLast(f, *clone)
	twice := InsertAtLast(once, *clone)
	if d := Duplicates(twice); len(d) != 0 {
		t.Fatalf("duplicates after pasting twice: %v", d)
	}
	if len(twice) != len(f)+2 {
		t.Fatalf("expected two appended roots, got %d", len(twice))
	}
	last := twice[len(twice)-1]
	if len(last.Children) != len(clone.Children) {
		t.Fatalf("pasted subtree shape changed")
	}
}

func TestIDUniqueness_RandomOperations(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	f := fixture()
	for step := 0; step < 300; step++ {
		all := []string{}
		Walk(f, func(n model.Node, _ int) bool {
			all = append(all, n.ID)
			return true
		})
		if len(all) == 0 {
			f = fixture()
			continue
		}
		id := all[r.Intn(len(all))]
		other := all[r.Intn(len(all))]
		switch r.Intn(6) {
		case 0:
			f, _ = Copy(f, id)
		case 1:
			if n, ok := Find(f, id); ok && !Contains(n, other) {
				f = InsertAfter(Remove(f, id), other, n)
			}
		case 2:
			if n, ok := Find(f, id); ok && !Contains(n, other) {
				f = InsertChild(Remove(f, id), other, n)
			}
		case 3:
			if n, ok := Find(f, id); ok {
				f = InsertAtLast(f, n)
			}
		case 4:
			f = Hide(Toggle(f, id), id)
		case 5:
			if len(all) > 12 {
				f = Remove(f, id)
			}
		}
		if d := Duplicates(f); len(d) != 0 {
			t.Fatalf("step %d: duplicate ids %v", step, d)
		}
	}
}

func TestChildrenOf(t *testing.T) {
	f := fixture()
	if got := ids(ChildrenOf(f, model.RootID)); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("root children: %v", got)
	}
	if got := ids(ChildrenOf(f, "1.3")); !reflect.DeepEqual(got, []string{"1.3.1", "1.3.2"}) {
		t.Fatalf("1.3 children: %v", got)
	}
	if got := ChildrenOf(f, "missing"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
