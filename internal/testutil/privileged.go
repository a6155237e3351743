package testutil

import (
	"testing"

	"github.com/atomicstack/eman/internal/bpf"
)

// RequireBPF skips the calling test unless k can enumerate kernel objects.
// On a workstation that usually means running the tests as root.
func RequireBPF(t testing.TB, k bpf.Kernel) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping live kernel test in short mode")
	}
	if _, _, err := k.NextID(bpf.KindProgram, 0); err != nil {
		t.Skipf("skipping: object enumeration unavailable: %v", err)
	}
}
