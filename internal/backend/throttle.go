package backend

import (
	"sync"
	"time"
)

// throttle ensures a minimum interval between successive walks.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newThrottle(interval time.Duration) *throttle {
	if interval <= 0 {
		return &throttle{}
	}
	return &throttle{interval: interval}
}

// wait blocks until the interval since the previous call has elapsed.
func (t *throttle) wait() {
	if t == nil || t.interval <= 0 {
		return
	}
	t.mu.Lock()
	now := time.Now()
	start := t.next
	if start.Before(now) {
		start = now
	}
	t.next = start.Add(t.interval)
	t.mu.Unlock()
	if d := time.Until(start); d > 0 {
		time.Sleep(d)
	}
}
