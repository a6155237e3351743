package events

import "github.com/atomicstack/eman/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type DetailTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
	Detail = DetailTracer{}
)

func (UITracer) Enter(levelID, itemID, label string) {
	logging.Trace("ui.enter", map[string]interface{}{
		"level": levelID,
		"item":  itemID,
		"label": label,
	})
}

func (UITracer) Cursor(levelID string, cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"level": levelID, "cursor": cursor})
}

func (UITracer) Back(from, to string) {
	logging.Trace("ui.back", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) Screen(name string) {
	logging.Trace("ui.screen", map[string]interface{}{"screen": name})
}

func (FilterTracer) Set(levelID, filter string) {
	logging.Trace("filter.set", map[string]interface{}{"level": levelID, "filter": filter})
}

func (FilterTracer) Cleared(levelID string) {
	logging.Trace("filter.clear", map[string]interface{}{"level": levelID})
}

func (DetailTracer) Request(id uint32) {
	logging.Trace("detail.request", map[string]interface{}{"id": id})
}

func (DetailTracer) Loaded(id uint32, err error) {
	payload := map[string]interface{}{"id": id}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("detail.loaded", payload)
}
