package state

// Step moves the cursor by delta. With wrap set, stepping past either end
// continues from the other one, which is how the arrow keys behave.
func (l *List) Step(delta int, wrap bool) bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	next := l.Cursor + delta
	if wrap {
		next = ((next % n) + n) % n
	}
	return l.Jump(next)
}

// Jump puts the cursor on index i, clamped to the list.
func (l *List) Jump(i int) bool {
	old := l.Cursor
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	l.Cursor = clamp(i, 0, len(l.Items)-1)
	return l.Cursor != old
}

// Page moves the cursor by whole screens; pages is negative to move up.
func (l *List) Page(pages, visible int) bool {
	if visible <= 0 || visible > len(l.Items) {
		visible = len(l.Items)
	}
	return l.Jump(clamp(l.Cursor, 0, len(l.Items)) + pages*visible)
}

// EnsureCursorVisible scrolls the viewport the least amount that keeps the
// cursor on screen.
func (l *List) EnsureCursorVisible(visible int) {
	n := len(l.Items)
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if n == 0 || visible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := n - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	off := clamp(l.ViewportOffset, 0, maxOffset)
	switch {
	case l.Cursor < off:
		off = l.Cursor
	case l.Cursor >= off+visible:
		off = l.Cursor - visible + 1
	}
	l.ViewportOffset = clamp(off, 0, maxOffset)
}
