package ui

import (
	"github.com/atomicstack/eman/internal/backend"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent installs a snapshot. A failed walk still contributes
// the records it gathered; its error stays on the status line until the
// next clean walk of that kind.
func (m *Model) applyBackendEvent(evt backend.Event) {
	res := m.dispatcher.Handle(evt)
	if res.Err != nil && m.backendErr[evt.Kind] == nil {
		logging.Error(res.Err)
	}
	m.backendErr[evt.Kind] = res.Err
	if res.MapsUpdated {
		m.loaded[bpf.KindMap] = true
	}
	if res.ProgramsUpdated {
		m.loaded[bpf.KindProgram] = true
	}
	if current := m.nav.Level(); current != nil {
		m.syncViewport(current)
	}
}

// statusError returns the message for the status line: a UI error first,
// then the first failing walk.
func (m *Model) statusError() string {
	if m.errMsg != "" {
		return m.errMsg
	}
	for _, kind := range []bpf.Kind{bpf.KindMap, bpf.KindProgram} {
		if err := m.backendErr[kind]; err != nil {
			return err.Error()
		}
	}
	return ""
}
