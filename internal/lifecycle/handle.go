package lifecycle

import (
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"
)

// Handle is the single process-wide index handle: the open bleve index,
// its writer-serializing mutex, the directory advisory lock, and the
// settings that were active at Init time. internal/index installs one
// via Install and every subsequent operation fetches it via Current.
type Handle struct {
	Index    bleve.Index
	WriterMu *PoisonableMutex
	DirLock  *flock.Flock
	Settings Settings
}

var (
	activeHandle    atomic.Pointer[Handle]
	pendingSettings atomic.Pointer[Settings]
)

// Configure stores settings for the next Install/Init call. It never
// touches an already-installed handle.
func Configure(s Settings) {
	normalized := s.normalize()
	pendingSettings.Store(&normalized)
}

// PendingSettings returns the settings Configure last stored, or
// DefaultSettings if Configure was never called.
func PendingSettings() Settings {
	if s := pendingSettings.Load(); s != nil {
		return *s
	}
	return DefaultSettings()
}

// Install publishes h as the active handle, replacing any previous one
// without closing it — callers must Close the old handle themselves
// before calling Install again.
func Install(h *Handle) {
	activeHandle.Store(h)
}

// Current returns the active handle. ok is false when no handle has been
// installed (or it was cleared by Clear), in which case callers must
// return a NotInitialized error rather than dereference a nil handle.
func Current() (*Handle, bool) {
	h := activeHandle.Load()
	if h == nil {
		return nil, false
	}
	return h, true
}

// Clear removes the active handle slot. It does not close h; Close is
// the caller's responsibility before calling Clear.
func Clear() {
	activeHandle.Store(nil)
}
