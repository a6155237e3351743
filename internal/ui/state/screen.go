package state

import (
	"fmt"

	"github.com/atomicstack/eman/internal/bpf"
)

// Screen is the closed set of views the browser can show. Only programs
// have a detail screen; there is no map counterpart.
type Screen interface {
	Name() string
	isScreen()
}

// MenuScreen is the object-kind chooser.
type MenuScreen struct{}

// ListScreen is the summary table for one kind.
type ListScreen struct {
	Kind bpf.Kind
}

// DetailScreen shows a freshly fetched record for one program.
type DetailScreen struct {
	ID     bpf.ID
	Record bpf.ProgramRecord
}

func (MenuScreen) Name() string   { return "menu" }
func (s ListScreen) Name() string { return s.Kind.String() + "s" }
func (s DetailScreen) Name() string {
	return fmt.Sprintf("program:%d", s.ID)
}

func (MenuScreen) isScreen()   {}
func (ListScreen) isScreen()   {}
func (DetailScreen) isScreen() {}
