package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/logging/events"
)

// MinInterval is the shortest gap allowed between two walks of one kind.
const MinInterval = 100 * time.Millisecond

// Event conveys a completed walk. Data holds []bpf.MapRecord or
// []bpf.ProgramRecord; it may be a partial list when Err is set.
type Event struct {
	Kind bpf.Kind
	Data interface{}
	Err  error
}

// Watcher walks the kernel's object lists at a fixed interval and
// publishes each snapshot as an event.
type Watcher struct {
	kernel   bpf.Kernel
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events  chan Event
	refresh []chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher that walks maps and programs every interval.
func NewWatcher(kernel bpf.Kernel, interval time.Duration) *Watcher {
	if interval < MinInterval {
		interval = MinInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		kernel:   kernel,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.start(bpf.KindMap, func() (interface{}, error) {
		return bpf.Maps(w.kernel)
	})
	w.start(bpf.KindProgram, func() (interface{}, error) {
		return bpf.Programs(w.kernel)
	})

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of walk results.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Refresh asks every poller for an immediate walk. Requests made while a
// walk is already queued are coalesced.
func (w *Watcher) Refresh() {
	events.Backend.Requested()
	for _, ch := range w.refresh {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Stop cancels the watcher. A walk in progress runs to completion before
// its poller observes the cancellation.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all pollers have exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) start(kind bpf.Kind, walk func() (interface{}, error)) {
	throttle := newThrottle(MinInterval)
	refresh := make(chan struct{}, 1)
	w.refresh = append(w.refresh, refresh)
	w.wg.Add(1)
	go w.poll(kind, refresh, func() (interface{}, error) {
		throttle.wait()
		return walk()
	})
}

func (w *Watcher) poll(kind bpf.Kind, refresh <-chan struct{}, fetch func() (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch()
		events.Backend.Refresh(kind.String(), count(data), err)
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		case <-refresh:
			ticker.Reset(w.interval)
		}
		if !emit() {
			return
		}
	}
}

func count(data interface{}) int {
	switch v := data.(type) {
	case []bpf.MapRecord:
		return len(v)
	case []bpf.ProgramRecord:
		return len(v)
	default:
		return 0
	}
}
