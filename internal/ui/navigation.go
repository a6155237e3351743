package ui

import (
	"errors"
	"fmt"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/logging"
	"github.com/atomicstack/eman/internal/logging/events"
	"github.com/atomicstack/eman/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// detailLoadedMsg carries the result of a single-program lookup.
type detailLoadedMsg struct {
	id     bpf.ID
	record bpf.ProgramRecord
	err    error
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.filtering {
		if handled, cmd := m.handleFilterKey(keyMsg); handled {
			return cmd
		}
	}
	switch {
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if current := m.nav.Level(); current != nil {
			m.syncViewport(current)
		}
		return nil
	case key.Matches(keyMsg, m.keys.Filter):
		m.startFilter()
		return nil
	}
	if keyMsg.Type == tea.KeyEsc {
		if current := m.nav.Level(); current != nil && current.Filter != "" {
			m.clearFilter(current)
			return nil
		}
	}
	intent, ok := m.keys.intentFor(keyMsg)
	if !ok {
		return nil
	}
	if _, onDetail := m.nav.Screen().(state.DetailScreen); onDetail && m.scrollDetail(intent) {
		return nil
	}
	return m.applyIntent(intent)
}

// scrollDetail moves the detail body for the movement intents, which the
// navigator ignores on a detail screen.
func (m *Model) scrollDetail(intent state.Intent) bool {
	page := max(m.detailRows(), 1)
	switch intent {
	case state.IntentNext:
		m.detailOffset++
	case state.IntentPrevious:
		m.detailOffset--
	case state.IntentPageDown:
		m.detailOffset += page
	case state.IntentPageUp:
		m.detailOffset -= page
	case state.IntentHome:
		m.detailOffset = 0
	case state.IntentEnd:
		m.detailOffset = m.detailLineCount()
	default:
		return false
	}
	m.clampDetailOffset()
	return true
}

// applyIntent hands intent to the navigator and carries out the effect it
// asks for.
func (m *Model) applyIntent(intent state.Intent) tea.Cmd {
	before := m.nav.Screen().Name()
	effect := m.nav.Apply(intent, m.maxVisibleItems())
	if effect.Quit {
		return tea.Quit
	}
	if after := m.nav.Screen(); after.Name() != before {
		m.screenChanged(after)
	}
	if effect.Refresh {
		m.requestRefresh()
	}
	if effect.Lookup {
		m.forceClearInfo()
		return lookupProgramCmd(m.kernel, effect.ID)
	}
	return nil
}

func (m *Model) screenChanged(screen state.Screen) {
	events.UI.Screen(screen.Name())
	m.errMsg = ""
	m.forceClearInfo()
	m.filtering = false
	m.detailOffset = 0
	m.syncKeys()
	if current := m.nav.Level(); current != nil {
		m.syncViewport(current)
	}
}

func (m *Model) requestRefresh() {
	if m.backend == nil {
		return
	}
	m.backend.Refresh()
}

func lookupProgramCmd(k bpf.Kernel, id bpf.ID) tea.Cmd {
	return func() tea.Msg {
		if k == nil {
			return detailLoadedMsg{id: id, err: bpf.ErrUnsupported}
		}
		rec, err := bpf.LookupProgram(k, id)
		return detailLoadedMsg{id: id, record: rec, err: err}
	}
}

func (m *Model) handleDetailLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(detailLoadedMsg)
	if !ok {
		return nil
	}
	events.Detail.Loaded(uint32(loaded.id), loaded.err)
	if loaded.err != nil {
		m.nav.CancelLookup(loaded.id)
		if errors.Is(loaded.err, bpf.ErrNotFound) {
			m.setInfo(fmt.Sprintf("Program %d is no longer loaded", loaded.id))
			return nil
		}
		logging.Error(loaded.err)
		m.errMsg = loaded.err.Error()
		return nil
	}
	before := m.nav.Screen().Name()
	if !m.nav.ShowDetail(loaded.record) {
		return nil
	}
	if after := m.nav.Screen(); after.Name() != before {
		m.screenChanged(after)
	} else {
		m.setInfo(fmt.Sprintf("Reloaded program %d", loaded.id))
	}
	return nil
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}
