// Package bpf enumerates live kernel eBPF objects and decodes their info
// records. It never creates, attaches, pins or deletes objects.
//
// Access to the kernel goes through the Kernel interface so that walks can
// be driven by a scripted double in tests. The production implementation
// lives in kernel_linux.go.
package bpf

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no live object exists for an ID. It is expected
// whenever an object is destroyed between enumeration and resolution.
var ErrNotFound = errors.New("object not found")

// ErrUnsupported is returned by the kernel implementation on platforms
// without a BPF syscall.
var ErrUnsupported = errors.New("bpf introspection not supported on this platform")

// Kind selects which ID space and record layout a walk uses.
type Kind int

const (
	KindMap Kind = iota
	KindProgram
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindProgram:
		return "program"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ID is a kernel-assigned object identifier. IDs are unique among live
// objects of one kind but may be reused once an object is destroyed.
type ID uint32

// Handle is a process-local reference to a live object. It must be closed
// exactly once by the frame that obtained it.
type Handle interface {
	FD() int
	Close() error
}

// Descriptor is the raw info record reported for a handle. Data holds the
// bytes the kernel filled in, which may be shorter than the full record on
// older kernels.
type Descriptor struct {
	Data   []byte
	MapIDs []ID
}

// Kernel is the object-introspection capability a walk is driven by.
type Kernel interface {
	// NextID returns the first live ID strictly greater than after. ok is
	// false once the end of the ID space is reached.
	NextID(kind Kind, after ID) (next ID, ok bool, err error)
	// Open resolves id to a handle. Errors wrap ErrNotFound when the object
	// no longer exists.
	Open(kind Kind, id ID) (Handle, error)
	// Info fetches the fixed-size info record through h.
	Info(kind Kind, h Handle) (Descriptor, error)
}
