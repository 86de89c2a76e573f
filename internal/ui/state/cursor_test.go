package state

import "testing"

func newTestList(ids ...string) *List {
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Label: id}
	}
	return NewList("test", "Test", items)
}

func TestStepWraps(t *testing.T) {
	l := newTestList("a", "b", "c")
	if !l.Step(-1, true) || l.Cursor != 2 {
		t.Fatalf("expected up from the top to wrap to 2, got %d", l.Cursor)
	}
	if !l.Step(1, true) || l.Cursor != 0 {
		t.Fatalf("expected down from the bottom to wrap to 0, got %d", l.Cursor)
	}
	if l.Step(-1, false) {
		t.Fatalf("expected a clamped step at the top to do nothing")
	}

	empty := newTestList()
	empty.Cursor = 5
	if empty.Step(1, true) || empty.Cursor != 0 {
		t.Fatalf("expected empty list to reset cursor, got %d", empty.Cursor)
	}
}

func TestJumpClamps(t *testing.T) {
	l := newTestList("a", "b", "c")
	if !l.Jump(99) || l.Cursor != 2 {
		t.Fatalf("expected jump clamped to 2, got %d", l.Cursor)
	}
	if l.Jump(2) {
		t.Fatalf("expected no movement when already there")
	}
	if !l.Jump(-4) || l.Cursor != 0 {
		t.Fatalf("expected jump clamped to 0, got %d", l.Cursor)
	}
}

func TestPage(t *testing.T) {
	l := newTestList("a", "b", "c", "d", "e")
	for _, want := range []int{2, 4} {
		if !l.Page(1, 2) || l.Cursor != want {
			t.Fatalf("expected page down to %d, got %d", want, l.Cursor)
		}
	}
	if l.Page(1, 2) {
		t.Fatalf("expected no movement past the end")
	}
	if !l.Page(-1, 2) || l.Cursor != 2 {
		t.Fatalf("expected page up to 2, got %d", l.Cursor)
	}
	if !l.Page(-1, 0) || l.Cursor != 0 {
		t.Fatalf("expected an unbounded page to reach the start, got %d", l.Cursor)
	}
}

func TestEnsureCursorVisibleAdjustsViewport(t *testing.T) {
	l := newTestList("a", "b", "c", "d", "e")
	l.Cursor = 4
	l.EnsureCursorVisible(2)
	if l.ViewportOffset != 3 {
		t.Fatalf("expected offset 3, got %d", l.ViewportOffset)
	}

	l.Cursor = -1
	l.EnsureCursorVisible(2)
	if l.Cursor != 0 || l.ViewportOffset != 0 {
		t.Fatalf("expected cursor and offset at 0, got %d/%d", l.Cursor, l.ViewportOffset)
	}

	l.ViewportOffset = 4
	l.EnsureCursorVisible(0)
	if l.ViewportOffset != 0 {
		t.Fatalf("expected offset reset without a visible height, got %d", l.ViewportOffset)
	}

	l.ViewportOffset = 2
	l.Cursor = 3
	l.EnsureCursorVisible(3)
	if l.ViewportOffset != 2 {
		t.Fatalf("expected a visible cursor to leave the offset alone, got %d", l.ViewportOffset)
	}
}

func TestUpdateItemsKeepsCursorOnSameItem(t *testing.T) {
	l := newTestList("a", "b", "c")
	l.Cursor = 1
	l.UpdateItems([]Item{{ID: "z", Label: "z"}, {ID: "a", Label: "a"}, {ID: "b", Label: "b"}})
	if cur, ok := l.Current(); !ok || cur.ID != "b" {
		t.Fatalf("expected cursor to follow b, got %#v", cur)
	}
	l.UpdateItems(nil)
	if _, ok := l.Current(); ok {
		t.Fatalf("expected no current item in empty list")
	}
}

func TestUpdateItemsKeepsFilter(t *testing.T) {
	l := newTestList("alpha", "beta")
	l.SetFilter("beta", 4)
	l.UpdateItems([]Item{{ID: "alpha", Label: "alpha"}, {ID: "beta", Label: "beta"}, {ID: "gamma", Label: "gamma"}})
	if len(l.Items) != 1 || l.Items[0].ID != "beta" {
		t.Fatalf("expected the filter to apply to new items, got %#v", l.Items)
	}
}
