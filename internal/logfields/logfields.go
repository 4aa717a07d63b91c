package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyEntry      = "entry"
	KeyFormat     = "format"
	KeyPath       = "path"
	KeyBytes      = "bytes"
	KeyModule     = "module"
	KeyStage      = "stage"
	KeyHook       = "hook"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Entry(name string) slog.Attr     { return slog.String(KeyEntry, name) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Module(id string) slog.Attr      { return slog.String(KeyModule, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
