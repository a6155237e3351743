package menu

import (
	"github.com/atomicstack/eman/internal/bpf"
)

// Item represents a selectable entry on a menu or object list.
type Item struct {
	ID     string
	Label  string
	Object bpf.ID
	Cells  []string
}

const (
	MapsID     = "maps"
	ProgramsID = "programs"
)

// RootItems returns the top-level menu entries.
func RootItems() []Item {
	return []Item{
		{ID: MapsID, Label: "Maps", Cells: []string{"Maps", "eBPF maps loaded in the kernel"}},
		{ID: ProgramsID, Label: "Programs", Cells: []string{"Programs", "eBPF programs loaded in the kernel"}},
	}
}

// RootHeaders labels the columns of the root menu.
var RootHeaders = []string{"Object", "Description"}

// KindFor maps a root item ID to the object kind it lists.
func KindFor(id string) (bpf.Kind, bool) {
	switch id {
	case MapsID:
		return bpf.KindMap, true
	case ProgramsID:
		return bpf.KindProgram, true
	default:
		return 0, false
	}
}

// LevelID returns the list level identifier for kind.
func LevelID(kind bpf.Kind) string {
	if kind == bpf.KindProgram {
		return ProgramsID
	}
	return MapsID
}

// Title returns the heading shown above a kind's list.
func Title(kind bpf.Kind) string {
	if kind == bpf.KindProgram {
		return "eBPF Programs"
	}
	return "eBPF Maps"
}
