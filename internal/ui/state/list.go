package state

// List is the state behind one list tab: the full item set, the filtered
// view of it, the cursor and the scroll offset.
type List struct {
	ID             string
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
}

// NewList constructs a List over the provided items.
func NewList(id, title string, items []Item) *List {
	l := &List{ID: id, Title: title, LastCursor: -1}
	l.UpdateItems(items)
	return l
}

// IndexOf returns the visible index of the item with the given ID, or -1.
func (l *List) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (l *List) Current() (Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Item{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems swaps in a fresh item set from a poll, keeping the active
// filter and leaving the cursor on the same item when it survives.
func (l *List) UpdateItems(items []Item) {
	cur, hadCurrent := l.Current()
	offset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.applyFilter()
	if hadCurrent {
		if idx := l.IndexOf(cur.ID); idx >= 0 {
			l.Cursor = idx
		}
	}
	if offset < 0 || offset >= len(l.Items) {
		offset = 0
	}
	l.ViewportOffset = offset
}
