package app

import (
	"errors"
	"time"

	"github.com/atomicstack/eman/internal/backend"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/ui"
	"github.com/atomicstack/eman/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	RootMenu     = "menu"
	RootMaps     = "maps"
	RootPrograms = "programs"

	SelectionIndex = "index"
	SelectionID    = "id"
)

// Config describes user-provided application options.
type Config struct {
	Interval   time.Duration
	Width      int
	Height     int
	ShowFooter bool
	Root       string
	Selection  string
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	kernel := bpf.NewKernel()
	watcher := backend.NewWatcher(kernel, cfg.Interval)
	defer watcher.Stop()
	model := ui.NewModel(ui.Options{
		Kernel:     kernel,
		Watcher:    watcher,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Root:       RootScreen(cfg.Root),
		Selection:  SelectionMode(cfg.Selection),
		Boot:       bpf.BootTime(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// RootScreen maps a -root value to the screen the browser starts on.
func RootScreen(root string) state.Screen {
	switch root {
	case RootMaps:
		return state.ListScreen{Kind: bpf.KindMap}
	case RootPrograms:
		return state.ListScreen{Kind: bpf.KindProgram}
	default:
		return state.MenuScreen{}
	}
}

// SelectionMode maps a -selection value to a cursor policy.
func SelectionMode(selection string) state.SelectionMode {
	if selection == SelectionID {
		return state.SelectByID
	}
	return state.SelectByIndex
}
