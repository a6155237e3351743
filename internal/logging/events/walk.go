package events

import "github.com/atomicstack/eman/internal/logging"

type WalkTracer struct{}

type BackendTracer struct{}

var (
	Walk    = WalkTracer{}
	Backend = BackendTracer{}
)

// Skip records an ID that vanished or could not be read mid-walk.
func (WalkTracer) Skip(kind string, id uint32, err error) {
	logging.Trace("walk.skip", map[string]interface{}{"kind": kind, "id": id, "error": errString(err)})
}

func (WalkTracer) Abort(kind string, cursor uint32, err error) {
	logging.Trace("walk.abort", map[string]interface{}{"kind": kind, "cursor": cursor, "error": errString(err)})
}

func (WalkTracer) Done(kind string, count int) {
	logging.Trace("walk.done", map[string]interface{}{"kind": kind, "count": count})
}

func (WalkTracer) CloseError(kind string, id uint32, err error) {
	logging.Trace("walk.close-error", map[string]interface{}{"kind": kind, "id": id, "error": errString(err)})
}

func (BackendTracer) Refresh(kind string, count int, err error) {
	payload := map[string]interface{}{"kind": kind, "count": count}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("backend.refresh", payload)
}

func (BackendTracer) Requested() {
	logging.Trace("backend.refresh.requested", nil)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
