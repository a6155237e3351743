package state

import (
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/format/descriptor"
	"github.com/atomicstack/eman/internal/logging/events"
	"github.com/atomicstack/eman/internal/menu"
)

// Intent is a navigational command decoded upstream from raw input.
type Intent int

const (
	IntentNext Intent = iota
	IntentPrevious
	IntentConfirm
	IntentBack
	IntentQuit
	IntentHome
	IntentEnd
	IntentPageUp
	IntentPageDown
	IntentRefresh
)

// Effect tells the caller what to do after an intent has been applied.
type Effect struct {
	// Quit ends the program.
	Quit bool
	// Lookup asks for a fresh record of program ID; the result is handed
	// back through ShowDetail or CancelLookup.
	Lookup bool
	ID     bpf.ID
	// Refresh asks for an immediate re-walk of the object lists.
	Refresh bool
	// Changed reports that the screen or cursor moved.
	Changed bool
}

// Table is the header and rows shown for a menu or list screen.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Navigator is the screen state machine. All of its state is owned by the
// caller's update loop.
type Navigator struct {
	screen   Screen
	menu     *Level
	lists    map[bpf.Kind]*Level
	maps     []bpf.MapRecord
	programs []bpf.ProgramRecord
	mode     SelectionMode
	pending  bpf.ID
	waiting  bool
}

// NewNavigator starts on root, which is a MenuScreen or a ListScreen.
func NewNavigator(root Screen, mode SelectionMode) *Navigator {
	n := &Navigator{
		menu: NewLevel("root", "eman", menu.RootHeaders, menu.RootItems()),
		lists: map[bpf.Kind]*Level{
			bpf.KindMap:     NewLevel(menu.MapsID, menu.Title(bpf.KindMap), descriptor.MapHeaders, nil),
			bpf.KindProgram: NewLevel(menu.ProgramsID, menu.Title(bpf.KindProgram), descriptor.ProgramHeaders, nil),
		},
		mode: mode,
	}
	switch s := root.(type) {
	case ListScreen:
		n.screen = s
		n.menu.Cursor = n.menu.IndexOf(menu.LevelID(s.Kind))
	default:
		n.screen = MenuScreen{}
	}
	return n
}

// Screen returns the active screen.
func (n *Navigator) Screen() Screen {
	return n.screen
}

// Level returns the level backing the active screen, or nil on a detail
// screen.
func (n *Navigator) Level() *Level {
	switch s := n.screen.(type) {
	case MenuScreen:
		return n.menu
	case ListScreen:
		return n.lists[s.Kind]
	default:
		return nil
	}
}

// List returns the level for kind.
func (n *Navigator) List(kind bpf.Kind) *Level {
	return n.lists[kind]
}

// Maps returns the last map snapshot.
func (n *Navigator) Maps() []bpf.MapRecord {
	return n.maps
}

// Programs returns the last program snapshot.
func (n *Navigator) Programs() []bpf.ProgramRecord {
	return n.programs
}

// SetMaps replaces the map list with a fresh walk result.
func (n *Navigator) SetMaps(records []bpf.MapRecord) {
	n.maps = records
	n.lists[bpf.KindMap].UpdateItems(menu.MapItems(records), n.mode)
}

// SetPrograms replaces the program list with a fresh walk result. An open
// detail screen keeps its own record.
func (n *Navigator) SetPrograms(records []bpf.ProgramRecord) {
	n.programs = records
	n.lists[bpf.KindProgram].UpdateItems(menu.ProgramItems(records), n.mode)
}

// Apply runs one intent against the active screen. maxVisible is the number
// of rows the caller can display and sizes page moves and the viewport.
func (n *Navigator) Apply(intent Intent, maxVisible int) Effect {
	if intent == IntentQuit {
		return Effect{Quit: true}
	}
	switch s := n.screen.(type) {
	case DetailScreen:
		return n.applyDetail(s, intent)
	case ListScreen:
		return n.applyList(s, intent, maxVisible)
	default:
		return n.applyMenu(intent, maxVisible)
	}
}

func (n *Navigator) applyMenu(intent Intent, maxVisible int) Effect {
	switch intent {
	case IntentBack:
		return Effect{Quit: true}
	case IntentConfirm:
		item, ok := n.menu.Selected()
		if !ok {
			return Effect{}
		}
		kind, ok := menu.KindFor(item.ID)
		if !ok {
			return Effect{}
		}
		events.UI.Enter(n.menu.ID, item.ID, item.Label)
		n.screen = ListScreen{Kind: kind}
		return Effect{Changed: true}
	case IntentRefresh:
		return Effect{Refresh: true}
	}
	return n.move(n.menu, intent, maxVisible)
}

func (n *Navigator) applyList(s ListScreen, intent Intent, maxVisible int) Effect {
	level := n.lists[s.Kind]
	switch intent {
	case IntentBack:
		events.UI.Back(level.ID, n.menu.ID)
		n.waiting = false
		n.screen = MenuScreen{}
		return Effect{Changed: true}
	case IntentRefresh:
		return Effect{Refresh: true}
	case IntentConfirm:
		if s.Kind != bpf.KindProgram {
			return Effect{}
		}
		item, ok := level.Selected()
		if !ok {
			return Effect{}
		}
		events.Detail.Request(uint32(item.Object))
		n.pending = item.Object
		n.waiting = true
		return Effect{Lookup: true, ID: item.Object}
	}
	return n.move(level, intent, maxVisible)
}

func (n *Navigator) applyDetail(s DetailScreen, intent Intent) Effect {
	switch intent {
	case IntentBack:
		events.UI.Back(s.Name(), menu.ProgramsID)
		n.screen = ListScreen{Kind: bpf.KindProgram}
		return Effect{Changed: true}
	case IntentRefresh:
		n.pending = s.ID
		n.waiting = true
		return Effect{Lookup: true, ID: s.ID}
	}
	return Effect{}
}

func (n *Navigator) move(level *Level, intent Intent, maxVisible int) Effect {
	var moved bool
	switch intent {
	case IntentNext:
		moved = level.Next()
	case IntentPrevious:
		moved = level.Previous()
	case IntentHome:
		moved = level.MoveCursorHome()
	case IntentEnd:
		moved = level.MoveCursorEnd()
	case IntentPageUp:
		moved = level.MoveCursorPageUp(maxVisible)
	case IntentPageDown:
		moved = level.MoveCursorPageDown(maxVisible)
	}
	level.EnsureCursorVisible(maxVisible)
	if moved {
		events.UI.Cursor(level.ID, level.Cursor)
	}
	return Effect{Changed: moved}
}

// ShowDetail completes a lookup. It returns false, leaving the screen
// alone, when the record does not answer the outstanding request.
func (n *Navigator) ShowDetail(rec bpf.ProgramRecord) bool {
	if !n.waiting || rec.ID != n.pending {
		return false
	}
	switch s := n.screen.(type) {
	case ListScreen:
		if s.Kind != bpf.KindProgram {
			return false
		}
	case DetailScreen:
		if s.ID != rec.ID {
			return false
		}
	default:
		return false
	}
	n.waiting = false
	n.screen = DetailScreen{ID: rec.ID, Record: rec}
	return true
}

// CancelLookup abandons the outstanding lookup, e.g. because the program
// was unloaded before it could be fetched.
func (n *Navigator) CancelLookup(id bpf.ID) {
	if n.waiting && n.pending == id {
		n.waiting = false
	}
}

// Waiting reports whether a detail lookup is outstanding.
func (n *Navigator) Waiting() bool {
	return n.waiting
}

// Table returns the headers and rows for the active menu or list screen.
func (n *Navigator) Table() Table {
	level := n.Level()
	if level == nil {
		return Table{}
	}
	return Table{Title: level.Title, Headers: level.Headers, Rows: Rows(level.Items)}
}

// Sections returns the detail fields for the active detail screen.
func (n *Navigator) Sections(clock descriptor.Clock) []descriptor.Section {
	s, ok := n.screen.(DetailScreen)
	if !ok {
		return nil
	}
	return descriptor.ProgramSections(s.Record, clock)
}

// Preview returns the full field list of the map under the cursor when the
// map list is active.
func (n *Navigator) Preview() []descriptor.Field {
	s, ok := n.screen.(ListScreen)
	if !ok || s.Kind != bpf.KindMap {
		return nil
	}
	item, ok := n.lists[bpf.KindMap].Selected()
	if !ok {
		return nil
	}
	for _, r := range n.maps {
		if r.ID == item.Object {
			return descriptor.MapFields(r)
		}
	}
	return nil
}
