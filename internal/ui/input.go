package ui

import (
	"unicode"

	"github.com/atomicstack/eman/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const filterPlaceholder = "(type to search)"

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(l *level, before int) {
	if l == nil {
		return
	}
	if before != l.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

func (m *Model) startFilter() {
	current := m.nav.Level()
	if current == nil {
		return
	}
	m.filtering = true
	before := current.FilterCursorPos()
	current.MoveFilterCursorEnd()
	m.noteFilterCursorChange(current, before)
	m.filterCursorDirty = true
	m.syncViewport(current)
}

func (m *Model) clearFilter(current *level) {
	before := current.FilterCursorPos()
	if current.ClearFilter() {
		events.Filter.Cleared(current.ID)
	}
	m.noteFilterCursorChange(current, before)
	m.forceClearInfo()
	m.syncViewport(current)
}

// handleFilterKey routes a key press while the filter prompt has focus.
// Keys it does not consume fall through to navigation.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.nav.Level()
	if current == nil {
		m.filtering = false
		return false, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.clearFilter(current)
		return true, nil
	case tea.KeyEnter:
		m.filtering = false
		return false, nil
	}
	return m.handleTextInput(current, msg), nil
}

func (m *Model) handleTextInput(current *level, msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+u":
		if current.Filter == "" {
			return false
		}
		m.clearFilter(current)
		return true
	case "ctrl+w":
		before := current.FilterCursorPos()
		if !current.DeleteFilterWordBackward() {
			return false
		}
		m.filterChanged(current, before)
		return true
	case "ctrl+a":
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorStart() {
			return false
		}
		m.noteFilterCursorChange(current, before)
		return true
	case "ctrl+e":
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorEnd() {
			return false
		}
		m.noteFilterCursorChange(current, before)
		return true
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		before := current.FilterCursorPos()
		if !current.DeleteFilterRuneBackward() {
			// backspace on an empty prompt closes it
			if current.Filter == "" {
				m.filtering = false
				return true
			}
			return false
		}
		m.filterChanged(current, before)
		return true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		return m.appendToFilter(current, string(msg.Runes))
	case tea.KeySpace:
		return m.appendToFilter(current, " ")
	case tea.KeyLeft:
		before := current.FilterCursorPos()
		if !current.MoveFilterCursor(-1) {
			return false
		}
		m.noteFilterCursorChange(current, before)
		return true
	case tea.KeyRight:
		before := current.FilterCursorPos()
		if !current.MoveFilterCursor(1) {
			return false
		}
		m.noteFilterCursorChange(current, before)
		return true
	}
	return false
}

func (m *Model) appendToFilter(current *level, text string) bool {
	if text == "" {
		return false
	}
	before := current.FilterCursorPos()
	if !current.InsertFilterText(text) {
		return false
	}
	m.filterChanged(current, before)
	return true
}

func (m *Model) filterChanged(current *level, before int) {
	m.noteFilterCursorChange(current, before)
	m.forceClearInfo()
	if current.Filter == "" {
		events.Filter.Cleared(current.ID)
	} else {
		events.Filter.Set(current.ID, current.Filter)
	}
	m.syncViewport(current)
}

// showFilterPrompt reports whether the prompt row is on screen.
func (m *Model) showFilterPrompt() bool {
	current := m.nav.Level()
	return current != nil && (m.filtering || current.Filter != "")
}

func (m *Model) filterPrompt() string {
	current := m.nav.Level()
	if current == nil {
		return ""
	}
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	prompt := "/ "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	if !m.filtering {
		return prompt + render(styles.Filter, current.Filter)
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	text := current.Filter
	if text == "" {
		runes := []rune(filterPlaceholder)
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		caret := m.renderFilterCursor(string(runes[0]))
		return prompt + caret + render(styles.FilterPlaceholder, string(runes[1:]))
	}
	runes := []rune(text)
	pos := current.FilterCursorPos()
	before := render(styles.Filter, string(runes[:pos]))
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy().Inline(true)
	if m.filterCursor.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		cursorStyle := styles.Cursor.Copy().Inline(true)
		return base.Inherit(cursorStyle).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
