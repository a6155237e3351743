package backend

import (
	"testing"
	"time"
)

func TestThrottleSpacesCalls(t *testing.T) {
	th := newThrottle(30 * time.Millisecond)
	start := time.Now()
	th.wait()
	th.wait()
	th.wait()
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected at least 60ms across three calls, got %v", elapsed)
	}
}

func TestZeroThrottleDoesNotBlock(t *testing.T) {
	var nilThrottle *throttle
	nilThrottle.wait()
	newThrottle(0).wait()
}
