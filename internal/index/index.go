// Package index owns the process-wide index handle and implements the
// add/update/commit/close lifecycle spec'd for the engine core: at-most-once
// document updates, dedup by identity, batched commits, reader refresh.
package index

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"

	fcerrors "github.com/fcindex/fcindex/internal/errors"
	"github.com/fcindex/fcindex/internal/identity"
	"github.com/fcindex/fcindex/internal/lifecycle"
	"github.com/fcindex/fcindex/internal/schema"
	"github.com/fcindex/fcindex/internal/scanner"
)

// Configure stores settings applied by the next Init call.
func Configure(s lifecycle.Settings) {
	lifecycle.Configure(s)
}

// Init opens or creates the on-disk index at dir, installing it as the
// active process-wide handle. It takes an advisory exclusive lock on
// dir/.fcindex.lock first, so a second process attempting Init against the
// same directory fails fast instead of corrupting the segment store.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fcerrors.IO("could not create index directory", err)
	}

	settings := lifecycle.PendingSettings()

	dirLock := flock.New(filepath.Join(dir, ".fcindex.lock"))
	timeout := time.Duration(settings.LockTimeoutMillis) * time.Millisecond
	slog.Debug("acquiring index directory lock", "dir", dir, "timeout_ms", settings.LockTimeoutMillis)
	locked, err := tryLockWithTimeout(dirLock, timeout)
	if err != nil {
		return fcerrors.IO("could not acquire index directory lock", err)
	}
	if !locked {
		return fcerrors.IO("index directory is locked by another process", nil)
	}
	slog.Debug("acquired index directory lock", "dir", dir)

	idx, err := openOrCreate(dir)
	if err != nil {
		_ = dirLock.Unlock()
		return err
	}

	handle := &lifecycle.Handle{
		Index:    idx,
		WriterMu: &lifecycle.PoisonableMutex{},
		DirLock:  dirLock,
		Settings: settings,
	}
	lifecycle.Install(handle)
	return nil
}

// lockPollInterval is how often tryLockWithTimeout re-attempts TryLock
// while another process holds the directory lock.
const lockPollInterval = 20 * time.Millisecond

// errLockHeld marks a TryLock attempt that found the lock still held, so
// fcerrors.Retry keeps polling instead of giving up on the first miss.
var errLockHeld = errors.New("index directory lock is held")

// tryLockWithTimeout polls TryLock, through fcerrors.Retry's backoff loop,
// until it succeeds or timeout elapses. The poll interval is fixed (no
// growth) since lock contention isn't the kind of transient failure
// exponential backoff is for — it just bounds how long Init waits.
func tryLockWithTimeout(l *flock.Flock, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var locked bool
	cfg := fcerrors.RetryConfig{
		MaxRetries:   math.MaxInt32,
		InitialDelay: lockPollInterval,
		MaxDelay:     lockPollInterval,
		Multiplier:   1,
	}
	err := fcerrors.Retry(ctx, cfg, func() error {
		ok, tryErr := l.TryLock()
		if tryErr != nil {
			return tryErr
		}
		if !ok {
			return errLockHeld
		}
		locked = true
		return nil
	})

	if locked {
		return true, nil
	}
	if ctx.Err() != nil {
		// Timed out waiting for the lock; Init reports this as "locked by
		// another process" rather than surfacing a raw context error.
		return false, nil
	}
	return false, err
}

// openOrCreate opens an existing index at dir, or creates one with the
// fixed document mapping if none exists. Re-opening a directory written by
// an incompatible schema surfaces as a SchemaMismatch error rather than a
// generic one, per the fatal-init-error contract.
func openOrCreate(dir string) (bleve.Index, error) {
	idx, err := bleve.Open(dir)
	switch {
	case err == nil:
		return idx, nil
	case err == bleve.ErrorIndexPathDoesNotExist:
		mapping, mErr := schema.Build()
		if mErr != nil {
			return nil, fcerrors.IO("could not build index mapping", mErr)
		}
		idx, err = bleve.New(dir, mapping)
		if err != nil {
			return nil, fcerrors.IO("could not create index", err)
		}
		return idx, nil
	case err == bleve.ErrorIndexMetaMissing || err == bleve.ErrorIndexMetaCorrupt:
		slog.Error("stored index metadata is missing or corrupt", "dir", dir, "err", err)
		return nil, fcerrors.SchemaMismatch("stored index metadata is missing or corrupt")
	default:
		return nil, fcerrors.IO("could not open index", err)
	}
}

// Close releases the active handle: closes the bleve index and unlocks
// the directory, then clears the process-wide slot. Calling Close when no
// handle is installed is a no-op.
func Close() error {
	h, ok := lifecycle.Current()
	if !ok {
		return nil
	}
	lifecycle.Clear()

	var firstErr error
	if err := h.Index.Close(); err != nil {
		firstErr = fcerrors.IO("error closing index", err)
	}
	if err := h.DirLock.Unlock(); err != nil && firstErr == nil {
		firstErr = fcerrors.IO("error releasing directory lock", err)
	}
	return firstErr
}

// AddOrUpdate indexes meta (with optional content), returning whether the
// document was Added, Updated, or Skipped relative to the last-reloaded
// reader. See classification.go for the three outcomes.
func AddOrUpdate(meta scanner.FileMeta, content *string, forceReindex bool) (Classification, error) {
	h, ok := lifecycle.Current()
	if !ok {
		return "", fcerrors.NotInitialized("add_or_update called before init_index")
	}

	id := identity.Of(meta)

	classification := Added
	if !forceReindex {
		existing, found, err := lookupIdentity(h.Index, id)
		if err != nil {
			return "", fcerrors.IO("identity lookup failed", err)
		}
		switch {
		case !found:
			classification = Added
		case existing.matches(meta):
			classification = Skipped
		default:
			classification = Updated
		}
	}

	if classification == Skipped {
		return Skipped, nil
	}

	doc := buildDocument(meta, content)
	err := h.WriterMu.Guard(func() error {
		return h.Index.Index(id, doc)
	})
	if err != nil {
		return "", fcerrors.IO("writing document failed", err)
	}
	return classification, nil
}

// Commit serializes with any in-flight writer section. bleve's scorch
// store has no separate writer-flush/reader-reload step the way a
// tantivy-style index does — every Index/Delete call is already visible
// to the next Search — so Commit's only job is to provide the same
// happens-before boundary callers rely on.
func Commit() error {
	h, ok := lifecycle.Current()
	if !ok {
		return fcerrors.NotInitialized("commit_and_refresh called before init_index")
	}
	err := h.WriterMu.Guard(func() error { return nil })
	if err == nil {
		slog.Debug("batch committed")
	}
	return err
}

// Stats reports the active handle's document count and the settings it
// was opened with, for display by status tooling. It fails with
// NotInitialized when no handle is installed.
type Stats struct {
	DocCount      uint64
	WriterThreads int
	WriterHeap    uint64
	QueryLimit    int
	LockTimeoutMs int64
}

func GetStats() (Stats, error) {
	h, ok := lifecycle.Current()
	if !ok {
		return Stats{}, fcerrors.NotInitialized("status requested before init_index")
	}
	count, err := h.Index.DocCount()
	if err != nil {
		return Stats{}, fcerrors.IO("could not read document count", err)
	}
	return Stats{
		DocCount:      count,
		WriterThreads: h.Settings.WriterThreads,
		WriterHeap:    h.Settings.WriterHeapBytes,
		QueryLimit:    h.Settings.QueryLimit,
		LockTimeoutMs: h.Settings.LockTimeoutMillis,
	}, nil
}

// ShouldReindex reports whether meta's stored document (if any) is stale
// relative to meta. Any failure fails open (returns true): preferring an
// unnecessary reindex over a missed update.
func ShouldReindex(meta scanner.FileMeta) bool {
	h, ok := lifecycle.Current()
	if !ok {
		return true
	}
	existing, found, err := lookupIdentity(h.Index, identity.Of(meta))
	if err != nil {
		return true
	}
	if !found {
		return true
	}
	return !existing.matches(meta)
}

// buildDocument projects meta/content into the map bleve indexes under
// the field names schema.Build declares. Ext and content are omitted
// entirely when absent, matching the stored-document invariant.
func buildDocument(meta scanner.FileMeta, content *string) map[string]any {
	doc := map[string]any{
		schema.FieldPath:     meta.Path,
		schema.FieldName:     meta.Name,
		schema.FieldNameRaw:  meta.Name,
		schema.FieldIdentity: identity.Of(meta),
		schema.FieldMtime:    meta.ModifiedAt,
		schema.FieldSize:     meta.Size,
	}
	if meta.Ext != "" {
		doc[schema.FieldExt] = meta.Ext
	}
	if meta.Inode != 0 {
		doc[schema.FieldInode] = meta.Inode
	}
	if meta.Dev != 0 {
		doc[schema.FieldDev] = meta.Dev
	}
	if content != nil && *content != "" {
		doc[schema.FieldContent] = *content
	}
	return doc
}
