package menu

import (
	"strconv"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/format/descriptor"
)

// MapItems converts map records into list items in walk order.
func MapItems(records []bpf.MapRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, objectItem(r.ID, descriptor.Name(r.Name[:]), descriptor.MapRow(r)))
	}
	return items
}

// ProgramItems converts program records into list items in walk order.
func ProgramItems(records []bpf.ProgramRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, objectItem(r.ID, descriptor.Name(r.Name[:]), descriptor.ProgramRow(r)))
	}
	return items
}

func objectItem(id bpf.ID, name string, cells []string) Item {
	return Item{
		ID:     strconv.FormatUint(uint64(id), 10),
		Label:  name,
		Object: id,
		Cells:  cells,
	}
}
