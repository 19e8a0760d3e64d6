package logfields

import "log/slog"

// Canonical log field names shared by the engine packages.
const (
	KeySlot       = "slot"
	KeyState      = "state"
	KeyKind       = "kind"
	KeyEntityID   = "entity_id"
	KeyRequestID  = "request_id"
	KeyEndpoint   = "endpoint"
	KeyOperation  = "operation"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Slot(path string) slog.Attr { return slog.String(KeySlot, path) }
func State(s string) slog.Attr { return slog.String(KeyState, s) }
func Kind(k string) slog.Attr { return slog.String(KeyKind, k) }
func EntityID(id int64) slog.Attr { return slog.Int64(KeyEntityID, id) }
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }
func Endpoint(e string) slog.Attr { return slog.String(KeyEndpoint, e) }
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
