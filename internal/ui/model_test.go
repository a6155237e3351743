package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/eman/internal/backend"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/logging"
	"github.com/atomicstack/eman/internal/testutil"
	"github.com/atomicstack/eman/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(k bpf.Kernel, root state.Screen, width, height int) *Model {
	return NewModel(Options{
		Kernel: k,
		Width:  width,
		Height: height,
		Root:   root,
		Now:    func() time.Time { return testNow },
	})
}

func program(id bpf.ID, name string, runCnt uint64) bpf.ProgramRecord {
	return bpf.ProgramRecord{ID: id, Name: testutil.Name(name), Type: 6, RunCnt: runCnt}
}

func bpfMap(id bpf.ID, name string) bpf.MapRecord {
	return bpf.MapRecord{ID: id, Name: testutil.Name(name), Type: 1, KeySize: 4, ValueSize: 8, MaxEntries: 128}
}

func newProgramKernel(records ...bpf.ProgramRecord) *testutil.FakeKernel {
	k := testutil.NewFakeKernel()
	for _, r := range records {
		k.AddProgram(r)
	}
	return k
}

// sendPrograms walks k and delivers the result the way the watcher would.
func sendPrograms(t *testing.T, h *Harness, k bpf.Kernel) {
	t.Helper()
	records, err := bpf.Programs(k)
	h.Send(backendEventMsg{event: backend.Event{Kind: bpf.KindProgram, Data: records, Err: err}})
}

func sendMaps(t *testing.T, h *Harness, k bpf.Kernel) {
	t.Helper()
	records, err := bpf.Maps(k)
	h.Send(backendEventMsg{event: backend.Event{Kind: bpf.KindMap, Data: records, Err: err}})
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if isQuit(c) {
				return true
			}
		}
	}
	return false
}

func TestMenuToProgramDetailAndBack(t *testing.T) {
	k := testutil.NewFakeKernel()
	for _, id := range []bpf.ID{9, 2, 5} {
		k.AddProgram(program(id, "prog_"+string(rune('a'+id)), 10))
	}
	h := NewHarness(newTestModel(k, nil, 100, 0))
	sendPrograms(t, h, k)

	h.Send(keyPress("down"))
	h.Send(keyPress("enter"))
	if s, ok := h.Model().Screen().(state.ListScreen); !ok || s.Kind != bpf.KindProgram {
		t.Fatalf("expected program list, got %#v", h.Model().Screen())
	}
	view := h.View()
	if !strings.Contains(view, "eBPF Programs") || !strings.Contains(view, "prog_f") {
		t.Fatalf("program list not rendered:\n%s", view)
	}

	// the kernel moves on between the list walk and the lookup
	k.AddProgram(program(5, "prog_f", 99))
	h.Send(keyPress("down"))
	h.Send(keyPress("enter"))

	detail, ok := h.Model().Screen().(state.DetailScreen)
	if !ok {
		t.Fatalf("expected detail screen, got %#v", h.Model().Screen())
	}
	if detail.ID != 5 || detail.Record.RunCnt != 99 {
		t.Fatalf("detail should hold the fresh record, got id=%d runs=%d", detail.ID, detail.Record.RunCnt)
	}
	view = h.View()
	for _, want := range []string{"Program 5 (prog_f)", "Identity", "Tags & Stats", "99"} {
		if !strings.Contains(view, want) {
			t.Fatalf("detail view missing %q:\n%s", want, view)
		}
	}

	h.Send(keyPress("esc"))
	if _, ok := h.Model().Screen().(state.ListScreen); !ok {
		t.Fatalf("back should return to the list, got %#v", h.Model().Screen())
	}
	if cursor := h.Model().Navigator().List(bpf.KindProgram).Cursor; cursor != 1 {
		t.Fatalf("selection should be untouched, cursor=%d", cursor)
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("leaked %d handles", k.OpenHandles())
	}
}

func TestVanishedProgramStaysOnList(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddProgram(program(5, "gone", 1))
	h := NewHarness(newTestModel(k, state.ListScreen{Kind: bpf.KindProgram}, 100, 20))
	sendPrograms(t, h, k)

	k.Remove(bpf.KindProgram, 5)
	h.Send(keyPress("enter"))

	if _, ok := h.Model().Screen().(state.ListScreen); !ok {
		t.Fatalf("expected to stay on the list, got %#v", h.Model().Screen())
	}
	if h.Model().Navigator().Waiting() {
		t.Fatalf("lookup should have been cancelled")
	}
	if view := h.View(); !strings.Contains(view, "Program 5 is no longer loaded") {
		t.Fatalf("expected info message:\n%s", view)
	}
}

func TestDetailRefreshFetchesAgain(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddProgram(program(3, "tick", 1))
	h := NewHarness(newTestModel(k, state.ListScreen{Kind: bpf.KindProgram}, 100, 0))
	sendPrograms(t, h, k)
	h.Send(keyPress("enter"))

	k.AddProgram(program(3, "tick", 2))
	sendPrograms(t, h, k)
	if got := h.Model().Screen().(state.DetailScreen).Record.RunCnt; got != 1 {
		t.Fatalf("detail must not follow list refreshes, runs=%d", got)
	}

	h.Send(keyPress("r"))
	detail := h.Model().Screen().(state.DetailScreen)
	if detail.Record.RunCnt != 2 {
		t.Fatalf("refresh should refetch, runs=%d", detail.Record.RunCnt)
	}
	if !strings.Contains(h.View(), "Reloaded program 3") {
		t.Fatalf("expected reload notice:\n%s", h.View())
	}
}

func TestConfirmOnMapListStays(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpfMap(1, "counters"))
	h := NewHarness(newTestModel(k, state.ListScreen{Kind: bpf.KindMap}, 100, 20))
	sendMaps(t, h, k)
	h.Send(keyPress("enter"))
	if s, ok := h.Model().Screen().(state.ListScreen); !ok || s.Kind != bpf.KindMap {
		t.Fatalf("confirm on a map should do nothing, got %#v", h.Model().Screen())
	}
	if k.Opened() != 1 {
		t.Fatalf("confirm on a map must not open anything, opened=%d", k.Opened())
	}
}

func TestQuitAndBackChain(t *testing.T) {
	m := newTestModel(nil, state.ListScreen{Kind: bpf.KindMap}, 80, 20)
	if _, cmd := m.Update(keyPress("q")); !isQuit(cmd) {
		t.Fatalf("q should quit from a list")
	}
	if _, cmd := m.Update(keyPress("esc")); isQuit(cmd) {
		t.Fatalf("esc on a list should go back, not quit")
	}
	if _, ok := m.Screen().(state.MenuScreen); !ok {
		t.Fatalf("expected menu, got %#v", m.Screen())
	}
	if _, cmd := m.Update(keyPress("esc")); !isQuit(cmd) {
		t.Fatalf("esc on the menu should quit")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Fatalf("ctrl+c should quit")
	}
}

func TestBackendErrorKeepsPartialList(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "eman.log"))
	t.Cleanup(func() { logging.Configure("") })
	h := NewHarness(newTestModel(nil, state.ListScreen{Kind: bpf.KindProgram}, 100, 20))
	partial := []bpf.ProgramRecord{program(3, "partial", 0)}
	h.Send(backendEventMsg{event: backend.Event{Kind: bpf.KindProgram, Data: partial, Err: errors.New("next id did not advance")}})

	view := h.View()
	if !strings.Contains(view, "partial") {
		t.Fatalf("partial list should be shown:\n%s", view)
	}
	if !strings.Contains(view, "Error: next id did not advance") {
		t.Fatalf("walk error should be on the status line:\n%s", view)
	}

	h.Send(backendEventMsg{event: backend.Event{Kind: bpf.KindProgram, Data: partial}})
	if strings.Contains(h.View(), "Error:") {
		t.Fatalf("clean walk should clear the error:\n%s", h.View())
	}
}

func TestLoadingUntilFirstSnapshot(t *testing.T) {
	h := NewHarness(newTestModel(nil, state.ListScreen{Kind: bpf.KindMap}, 80, 20))
	if !strings.Contains(h.View(), "Loading…") {
		t.Fatalf("expected loading marker:\n%s", h.View())
	}
	h.Send(backendEventMsg{event: backend.Event{Kind: bpf.KindMap, Data: []bpf.MapRecord{}}})
	view := h.View()
	if strings.Contains(view, "Loading…") || !strings.Contains(view, "(no entries)") {
		t.Fatalf("expected empty list:\n%s", view)
	}
}

func TestBackendDoneStopsWaiting(t *testing.T) {
	m := newTestModel(nil, nil, 80, 20)
	m.backend = &backend.Watcher{}
	m.Update(backendDoneMsg{})
	if m.backend != nil {
		t.Fatalf("watcher should be dropped once its events close")
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	m := newTestModel(nil, nil, 50, 0)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 50 {
		t.Fatalf("fixed width should win, got %d", m.width)
	}
	if m.height != 40 {
		t.Fatalf("height should follow the terminal, got %d", m.height)
	}
}
