package state

import "github.com/atomicstack/eman/internal/menu"

// CloneItems produces a shallow copy of the provided menu items.
func CloneItems(items []menu.Item) []menu.Item {
	dup := make([]menu.Item, len(items))
	copy(dup, items)
	return dup
}

// Rows returns the display cells of items.
func Rows(items []menu.Item) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = item.Cells
	}
	return rows
}
