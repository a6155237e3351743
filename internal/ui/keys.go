package ui

import (
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Confirm  key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Filter   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "first")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "last")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Confirm, k.Back, k.Filter, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.PageUp, k.PageDown},
		{k.Confirm, k.Back, k.Refresh},
		{k.Filter, k.Help, k.Quit},
	}
}

// intentFor decodes a key press into a navigator intent.
func (k keyMap) intentFor(msg tea.KeyMsg) (state.Intent, bool) {
	switch {
	case key.Matches(msg, k.Quit):
		return state.IntentQuit, true
	case key.Matches(msg, k.Back):
		return state.IntentBack, true
	case key.Matches(msg, k.Confirm):
		return state.IntentConfirm, true
	case key.Matches(msg, k.Up):
		return state.IntentPrevious, true
	case key.Matches(msg, k.Down):
		return state.IntentNext, true
	case key.Matches(msg, k.Home):
		return state.IntentHome, true
	case key.Matches(msg, k.End):
		return state.IntentEnd, true
	case key.Matches(msg, k.PageUp):
		return state.IntentPageUp, true
	case key.Matches(msg, k.PageDown):
		return state.IntentPageDown, true
	case key.Matches(msg, k.Refresh):
		return state.IntentRefresh, true
	}
	return 0, false
}

// syncKeys enables only the bindings that do something on screen, so the
// help line never advertises a dead key.
func (m *Model) syncKeys() {
	screen := m.nav.Screen()
	_, onDetail := screen.(state.DetailScreen)
	list, onList := screen.(state.ListScreen)

	confirm := !onDetail && !(onList && list.Kind == bpf.KindMap)
	m.keys.Confirm.SetEnabled(confirm)
	m.keys.Filter.SetEnabled(!onDetail)
	if _, onMenu := screen.(state.MenuScreen); onMenu {
		m.keys.Back.SetHelp("esc/b", "quit")
	} else {
		m.keys.Back.SetHelp("esc/b", "back")
	}
}
