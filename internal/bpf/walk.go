package bpf

import (
	"errors"
	"fmt"

	"github.com/atomicstack/eman/internal/logging/events"
)

// errStalledWalk is returned when the kernel hands back an ID that does not
// advance the cursor.
var errStalledWalk = errors.New("next id did not advance")

// Spec binds a kind to the decoder for its info record.
type Spec[R any] struct {
	Kind   Kind
	Decode func(Descriptor) R
}

var (
	MapSpec     = Spec[MapRecord]{Kind: KindMap, Decode: DecodeMap}
	ProgramSpec = Spec[ProgramRecord]{Kind: KindProgram, Decode: DecodeProgram}
)

// Walk enumerates every live object of spec.Kind in kernel order. IDs that
// vanish before they can be opened, or whose info fetch fails, are skipped.
// A non-nil error means the ID walk itself stopped early; the records
// collected up to that point are still returned.
func Walk[R any](k Kernel, spec Spec[R]) ([]R, error) {
	var (
		records []R
		cursor  ID
	)
	for {
		next, ok, err := k.NextID(spec.Kind, cursor)
		if err != nil {
			events.Walk.Abort(spec.Kind.String(), uint32(cursor), err)
			return records, fmt.Errorf("next %s id after %d: %w", spec.Kind, cursor, err)
		}
		if !ok {
			break
		}
		if next <= cursor {
			events.Walk.Abort(spec.Kind.String(), uint32(cursor), errStalledWalk)
			return records, fmt.Errorf("next %s id after %d returned %d: %w", spec.Kind, cursor, next, errStalledWalk)
		}
		cursor = next

		rec, err := fetch(k, spec, next)
		if err != nil {
			events.Walk.Skip(spec.Kind.String(), uint32(next), err)
			continue
		}
		records = append(records, rec)
	}
	events.Walk.Done(spec.Kind.String(), len(records))
	return records, nil
}

// Lookup resolves and fetches a single object.
func Lookup[R any](k Kernel, spec Spec[R], id ID) (R, error) {
	return fetch(k, spec, id)
}

func fetch[R any](k Kernel, spec Spec[R], id ID) (R, error) {
	var rec R
	err := withHandle(k, spec.Kind, id, func(h Handle) error {
		desc, err := k.Info(spec.Kind, h)
		if err != nil {
			return fmt.Errorf("info %s %d: %w", spec.Kind, id, err)
		}
		rec = spec.Decode(desc)
		return nil
	})
	return rec, err
}

// Maps enumerates all live maps.
func Maps(k Kernel) ([]MapRecord, error) {
	return Walk(k, MapSpec)
}

// Programs enumerates all live programs.
func Programs(k Kernel) ([]ProgramRecord, error) {
	return Walk(k, ProgramSpec)
}

// LookupProgram fetches a fresh record for one program.
func LookupProgram(k Kernel, id ID) (ProgramRecord, error) {
	return Lookup(k, ProgramSpec, id)
}
