package bpf

import (
	"fmt"

	"github.com/atomicstack/eman/internal/logging/events"
)

// Resolve opens a handle for id. The caller owns the handle and must close it.
func Resolve(k Kernel, kind Kind, id ID) (Handle, error) {
	h, err := k.Open(kind, id)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %d: %w", kind, id, err)
	}
	return h, nil
}

// withHandle resolves id and runs fn with the handle, closing it on every
// exit path before returning.
func withHandle(k Kernel, kind Kind, id ID, fn func(Handle) error) error {
	h, err := Resolve(k, kind, id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			events.Walk.CloseError(kind.String(), uint32(id), cerr)
		}
	}()
	return fn(h)
}
