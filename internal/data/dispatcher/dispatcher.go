package dispatcher

import (
	"github.com/atomicstack/eman/internal/backend"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/ui/state"
)

type Result struct {
	MapsUpdated     bool
	ProgramsUpdated bool
	Err             error
}

// Dispatcher applies backend snapshots to the navigator's lists.
type Dispatcher struct {
	nav *state.Navigator
}

func New(nav *state.Navigator) *Dispatcher {
	return &Dispatcher{nav: nav}
}

// Handle installs the records carried by evt. A walk that stopped early
// still delivers the records it collected, so they are applied before the
// error is passed back.
func (d *Dispatcher) Handle(evt backend.Event) Result {
	res := Result{Err: evt.Err}
	switch evt.Kind {
	case bpf.KindMap:
		if records, ok := evt.Data.([]bpf.MapRecord); ok || evt.Data == nil {
			d.nav.SetMaps(records)
			res.MapsUpdated = true
		}
	case bpf.KindProgram:
		if records, ok := evt.Data.([]bpf.ProgramRecord); ok || evt.Data == nil {
			d.nav.SetPrograms(records)
			res.ProgramsUpdated = true
		}
	}
	return res
}
