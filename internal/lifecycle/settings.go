// Package lifecycle owns the two process-wide mutable slots every other
// core package reaches through: the active index handle and the writer
// settings read at Init time, guarded by an atomic pointer the way a
// single-slot file lock is, generalized to a full handle plus a
// poisoning-safe writer mutex in place of Rust's Mutex<T> poisoning.
package lifecycle

import "runtime"

// Settings controls how the next Init call opens the index. Configure
// stores these for the next Init; an already-open handle is unaffected.
type Settings struct {
	// WriterThreads is the writer's internal thread count. 0 selects
	// max(1, runtime.NumCPU()).
	WriterThreads int

	// WriterHeapBytes bounds the writer's in-memory batch size. Floored
	// at 16 MiB.
	WriterHeapBytes uint64

	// StopWords is carried through from configuration. The content
	// analyzer (schema.PathAnalyzerName) has no stop-word filter, so the
	// list does not change what gets indexed.
	StopWords []string

	// QueryLimit is the default search limit when the caller passes
	// limit <= 0. Values <= 0 are replaced by 50.
	QueryLimit int

	// LockTimeoutMillis bounds how long Init waits to acquire the
	// directory lock before giving up. Values <= 0 are replaced by 5000.
	LockTimeoutMillis int64
}

const minWriterHeapBytes = 16 * 1024 * 1024

// DefaultSettings returns the floor values Configure normalizes toward.
func DefaultSettings() Settings {
	return Settings{
		WriterThreads:     max(1, runtime.NumCPU()),
		WriterHeapBytes:   minWriterHeapBytes,
		StopWords:         nil,
		QueryLimit:        50,
		LockTimeoutMillis: 5000,
	}
}

// normalize applies the floors documented on each field.
func (s Settings) normalize() Settings {
	if s.WriterThreads <= 0 {
		s.WriterThreads = max(1, runtime.NumCPU())
	}
	if s.WriterHeapBytes < minWriterHeapBytes {
		s.WriterHeapBytes = minWriterHeapBytes
	}
	if s.QueryLimit <= 0 {
		s.QueryLimit = 50
	}
	if s.LockTimeoutMillis <= 0 {
		s.LockTimeoutMillis = 5000
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
