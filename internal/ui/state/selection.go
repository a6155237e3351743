package state

import "github.com/atomicstack/eman/internal/menu"

// Selected returns the item under the cursor. ok is false when the list is
// empty.
func (l *Level) Selected() (menu.Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return menu.Item{}, false
	}
	return l.Items[l.Cursor], true
}

// Next moves the cursor down, wrapping from the last item to the first.
func (l *Level) Next() bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	if l.Cursor < 0 || l.Cursor >= n-1 {
		return l.moveTo(0)
	}
	return l.moveTo(l.Cursor + 1)
}

// Previous moves the cursor up, wrapping from the first item to the last.
func (l *Level) Previous() bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	if l.Cursor <= 0 || l.Cursor >= n {
		return l.moveTo(n - 1)
	}
	return l.moveTo(l.Cursor - 1)
}

// ScrollOffset is the scrollbar position for the current cursor.
func (l *Level) ScrollOffset() int {
	if len(l.Items) == 0 {
		return 0
	}
	return l.Cursor * RowHeight
}

// ScrollLength is the scrollbar content length for the current items.
func (l *Level) ScrollLength() int {
	if len(l.Items) == 0 {
		return 0
	}
	return (len(l.Items) - 1) * RowHeight
}

// MoveCursorHome moves the cursor to the first item.
func (l *Level) MoveCursorHome() bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	return l.moveTo(0)
}

// MoveCursorEnd moves the cursor to the last item.
func (l *Level) MoveCursorEnd() bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	return l.moveTo(len(l.Items) - 1)
}

// MoveCursorPageUp moves the cursor up by one page without wrapping.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.moveBy(-l.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by one page without wrapping.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.moveBy(l.pageSize(maxVisible))
}

func (l *Level) moveBy(delta int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	cur := l.Cursor
	if cur < 0 {
		cur = 0
	}
	return l.moveTo(clamp(cur+delta, 0, len(l.Items)-1))
}

func (l *Level) moveTo(idx int) bool {
	old := l.Cursor
	l.Cursor = idx
	return old != idx
}

func (l *Level) pageSize(maxVisible int) int {
	total := len(l.Items)
	if maxVisible <= 0 || maxVisible > total {
		return max(total, 1)
	}
	return maxVisible
}

// EnsureCursorVisible adjusts the viewport offset so the cursor row lies
// within a window of maxVisible rows.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := max(n-maxVisible, 0)
	offset := clamp(l.ViewportOffset, 0, maxOffset)
	switch {
	case l.Cursor < offset:
		offset = l.Cursor
	case l.Cursor > offset+maxVisible-1:
		offset = clamp(l.Cursor-maxVisible+1, 0, maxOffset)
	}
	l.ViewportOffset = offset
}

// Visible returns the window of items starting at the viewport offset.
func (l *Level) Visible(maxVisible int) []menu.Item {
	if maxVisible <= 0 || maxVisible >= len(l.Items) {
		return l.Items
	}
	start := clamp(l.ViewportOffset, 0, len(l.Items)-maxVisible)
	return l.Items[start : start+maxVisible]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
