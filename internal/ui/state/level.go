package state

import (
	"github.com/atomicstack/eman/internal/menu"
)

// RowHeight is the number of scroll units a single list row occupies.
const RowHeight = 4

// SelectionMode controls how the cursor survives a list replacement.
type SelectionMode int

const (
	// SelectByIndex keeps the cursor index as is, clamped to the new bounds.
	SelectByIndex SelectionMode = iota
	// SelectByID follows the previously selected item by its ID and falls
	// back to index behaviour when that item is gone.
	SelectByID
)

// Level holds one navigable list: its items, cursor, filter and viewport.
type Level struct {
	ID             string
	Title          string
	Headers        []string
	Items          []menu.Item
	Full           []menu.Item
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
}

// NewLevel constructs a Level with the cursor on the first item.
func NewLevel(id, title string, headers []string, items []menu.Item) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		Headers:    headers,
		LastCursor: -1,
	}
	l.UpdateItems(items, SelectByIndex)
	return l
}

// IndexOf returns the index for a given item identifier, or -1.
func (l *Level) IndexOf(id string) int {
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

// UpdateItems replaces the level's items. The filter is re-applied and the
// cursor is carried over according to mode.
func (l *Level) UpdateItems(items []menu.Item, mode SelectionMode) {
	prevID := ""
	if item, ok := l.Selected(); ok {
		prevID = item.ID
	}
	prevOffset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.applyFilter()
	if len(l.Items) == 0 {
		return
	}
	if mode == SelectByID {
		if idx := l.IndexOf(prevID); idx >= 0 {
			l.Cursor = idx
		}
	}
	if prevOffset < 0 || prevOffset > len(l.Items)-1 {
		prevOffset = 0
	}
	l.ViewportOffset = prevOffset
}
