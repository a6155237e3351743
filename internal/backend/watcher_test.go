package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/testutil"
)

func nextEvents(t *testing.T, w *Watcher, n int) map[bpf.Kind]Event {
	t.Helper()
	got := make(map[bpf.Kind]Event, n)
	timeout := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case evt, ok := <-w.Events():
			if !ok {
				t.Fatalf("events channel closed early")
			}
			got[evt.Kind] = evt
		case <-timeout:
			t.Fatalf("timed out waiting for events, have %d of %d", len(got), n)
		}
	}
	return got
}

func TestWatcherPublishesSnapshots(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 1})
	k.AddMap(bpf.MapRecord{ID: 2})
	k.AddProgram(bpf.ProgramRecord{ID: 10})

	w := NewWatcher(k, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	evts := nextEvents(t, w, 2)
	maps, ok := evts[bpf.KindMap].Data.([]bpf.MapRecord)
	if !ok || len(maps) != 2 {
		t.Fatalf("unexpected map event %#v", evts[bpf.KindMap])
	}
	progs, ok := evts[bpf.KindProgram].Data.([]bpf.ProgramRecord)
	if !ok || len(progs) != 1 || progs[0].ID != 10 {
		t.Fatalf("unexpected program event %#v", evts[bpf.KindProgram])
	}

	k.AddProgram(bpf.ProgramRecord{ID: 11})
	w.Refresh()
	evts = nextEvents(t, w, 2)
	progs, _ = evts[bpf.KindProgram].Data.([]bpf.ProgramRecord)
	if len(progs) != 2 {
		t.Fatalf("expected refreshed program list, got %d", len(progs))
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("leaked %d handles", k.OpenHandles())
	}
}

func TestWatcherReportsWalkErrors(t *testing.T) {
	k := testutil.NewFakeKernel()
	boom := errors.New("operation not permitted")
	k.FailNextID(bpf.KindMap, boom)

	w := NewWatcher(k, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	evts := nextEvents(t, w, 2)
	if !errors.Is(evts[bpf.KindMap].Err, boom) {
		t.Fatalf("expected map walk error, got %v", evts[bpf.KindMap].Err)
	}
	if evts[bpf.KindProgram].Err != nil {
		t.Fatalf("program walk should succeed, got %v", evts[bpf.KindProgram].Err)
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w := NewWatcher(testutil.NewFakeKernel(), time.Hour)
	nextEvents(t, w, 2)
	w.Stop()
	w.Wait()
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("events channel not closed")
	}
}

func TestNewWatcherEnforcesMinimumInterval(t *testing.T) {
	w := NewWatcher(testutil.NewFakeKernel(), time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	if w.interval != MinInterval {
		t.Fatalf("expected interval clamped to %v, got %v", MinInterval, w.interval)
	}
}
