package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/eman/internal/backend"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/data/dispatcher"
	"github.com/atomicstack/eman/internal/format/descriptor"
	"github.com/atomicstack/eman/internal/theme"
	"github.com/atomicstack/eman/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

type level = state.Level

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a new Model.
type Options struct {
	Kernel     bpf.Kernel
	Watcher    *backend.Watcher
	Width      int
	Height     int
	ShowFooter bool
	Root       state.Screen
	Selection  state.SelectionMode
	// Boot anchors program load times to the wall clock. A zero value
	// renders load timestamps as invalid.
	Boot time.Time
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model implements the Bubble Tea model for the object browser.
type Model struct {
	nav        *state.Navigator
	dispatcher *dispatcher.Dispatcher
	backend    *backend.Watcher
	kernel     bpf.Kernel
	boot       time.Time
	now        func() time.Time

	loaded     map[bpf.Kind]bool
	backendErr map[bpf.Kind]error

	errMsg     string
	infoMsg    string
	infoExpire time.Time

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool

	filtering         bool
	filterCursor      cursor.Model
	filterFocused     bool
	filterCursorDirty bool

	detailOffset int

	keys keyMap
	help help.Model

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the UI state on the configured root screen.
func NewModel(opts Options) *Model {
	root := opts.Root
	if root == nil {
		root = state.MenuScreen{}
	}
	nav := state.NewNavigator(root, opts.Selection)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &Model{
		nav:        nav,
		dispatcher: dispatcher.New(nav),
		backend:    opts.Watcher,
		kernel:     opts.Kernel,
		boot:       opts.Boot,
		now:        now,
		loaded:     map[bpf.Kind]bool{},
		backendErr: map[bpf.Kind]error{},
		showFooter: opts.ShowFooter,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
		m.help.Width = opts.Width
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.syncKeys()
	if current := m.nav.Level(); current != nil {
		m.syncViewport(current)
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	m.filterFocused = true
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(detailLoadedMsg{}):   m.handleDetailLoadedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		if m.filterFocused {
			m.filterCursor.Blink = false
			if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Screen returns the active screen.
func (m *Model) Screen() state.Screen {
	return m.nav.Screen()
}

// Navigator exposes the screen state machine.
func (m *Model) Navigator() *state.Navigator {
	return m.nav
}

func (m *Model) clock() descriptor.Clock {
	return descriptor.Clock{Boot: m.boot, Now: m.now()}
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
		m.help.Width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	if current := m.nav.Level(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = m.now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && m.now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}
