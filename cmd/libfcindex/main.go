// Command libfcindex is the cgo boundary: built with
// `go build -buildmode=c-shared`, it exports the flat C ABI spec.md §6.1
// defines. All real logic lives in internal/index, internal/query, and
// internal/ffi — this file only marshals between C structs and those
// packages' Go types.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct FileMeta {
    const char *path;
    const char *name;
    const char *ext;
    int64_t     mtime;
    uint64_t    size;
    uint64_t    inode;
    uint64_t    dev;
} FileMeta;

typedef struct Query {
    const char *q;
    const char *glob;
    int32_t     scope;
    int32_t     limit;
} Query;

typedef struct Hit {
    char    *path;
    char    *name;
    int64_t  mtime;
    uint64_t size;
    float    score;
} Hit;

typedef struct Results {
    Hit    *hits;
    int32_t count;
} Results;
*/
import "C"

import (
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/fcindex/fcindex/internal/config"
	"github.com/fcindex/fcindex/internal/ffi"
	"github.com/fcindex/fcindex/internal/index"
	"github.com/fcindex/fcindex/internal/lifecycle"
	"github.com/fcindex/fcindex/internal/logging"
	"github.com/fcindex/fcindex/internal/query"
)

func main() {}

// logCleanup releases the file handle logging.Setup opened, if any.
// init_index installs it; close_index runs it.
var logCleanup func()

// setupLogging wires the opt-in file logger: FCINDEX_DEBUG turns on
// rotating file logging at Debug level, matching internal/logging's
// documented default of stderr-only otherwise.
func setupLogging() {
	if os.Getenv("FCINDEX_DEBUG") == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		return
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		diagnose(err)
		return
	}
	slog.SetDefault(logger)
	logCleanup = cleanup
}

// goString returns "" for a nil *C.char instead of panicking, matching
// the boundary's "borrowed for the call, possibly absent" string fields.
func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

// diagnose prints the one-line "[ffi]"-prefixed stderr diagnostic the
// boundary's error policy calls for; richer reporting is out of scope.
func diagnose(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[ffi] %s\n", err.Error())
}

func decodeFileMeta(m *C.FileMeta) ffi.DecodedFileMeta {
	return ffi.DecodedFileMeta{
		Path:       goString(m.path),
		Name:       goString(m.name),
		Ext:        goString(m.ext),
		ModifiedAt: int64(m.mtime),
		Size:       uint64(m.size),
		Inode:      uint64(m.inode),
		Dev:        uint64(m.dev),
	}
}

//export init_index
func init_index(path *C.char) C.bool {
	setupLogging()
	dir := goString(path)

	if cfg, err := config.Load(dir); err != nil {
		diagnose(err)
		return C.bool(false)
	} else {
		index.Configure(lifecycle.Settings{
			WriterThreads:     cfg.WriterThreads,
			WriterHeapBytes:   cfg.WriterHeapBytes(),
			StopWords:         cfg.StopWords,
			QueryLimit:        cfg.QueryLimit,
			LockTimeoutMillis: cfg.LockTimeoutMs,
		})
	}

	if err := index.Init(dir); err != nil {
		diagnose(err)
		return C.bool(false)
	}
	return C.bool(true)
}

//export close_index
func close_index() {
	diagnose(index.Close())
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

//export add_or_update
func add_or_update(meta *C.FileMeta, content *C.char) C.bool {
	if meta == nil {
		diagnose(fmt.Errorf("add_or_update called with a nil FileMeta"))
		return C.bool(false)
	}
	decoded := decodeFileMeta(meta)

	var contentPtr *string
	if content != nil {
		s := C.GoString(content)
		contentPtr = &s
	}

	if _, err := index.AddOrUpdate(decoded.ToScannerMeta(), contentPtr, false); err != nil {
		diagnose(err)
		return C.bool(false)
	}
	return C.bool(true)
}

//export should_reindex
func should_reindex(meta *C.FileMeta) C.bool {
	if meta == nil {
		return C.bool(true)
	}
	return C.bool(index.ShouldReindex(decodeFileMeta(meta).ToScannerMeta()))
}

//export commit_and_refresh
func commit_and_refresh() C.bool {
	if err := index.Commit(); err != nil {
		diagnose(err)
		return C.bool(false)
	}
	return C.bool(true)
}

//export search
func search(q *C.Query) C.Results {
	if q == nil {
		return C.Results{}
	}

	req := query.Request{
		Term:     goString(q.q),
		Scope:    ffi.DecodeScope(int32(q.scope)),
		PathGlob: goString(q.glob),
		Limit:    ffi.NormalizeLimit(int32(q.limit)),
	}

	hits, err := query.Search(req)
	if err != nil {
		diagnose(err)
		return C.Results{}
	}
	return buildResults(ffi.BuildOutHits(hits, os.Stderr))
}

// buildResults heap-allocates the C Hit array the host owns until it
// calls free_results.
func buildResults(hits []ffi.OutHit) C.Results {
	if len(hits) == 0 {
		return C.Results{}
	}

	size := C.size_t(len(hits)) * C.size_t(unsafe.Sizeof(C.Hit{}))
	arr := (*C.Hit)(C.malloc(size))
	slice := unsafe.Slice(arr, len(hits))
	for i, h := range hits {
		slice[i] = C.Hit{
			path:  C.CString(h.Path),
			name:  C.CString(h.Name),
			mtime: C.int64_t(h.ModifiedAt),
			size:  C.uint64_t(h.Size),
			score: C.float(h.Score),
		}
	}

	return C.Results{hits: arr, count: C.int32_t(len(hits))}
}

//export free_results
func free_results(r *C.Results) {
	if r == nil || r.hits == nil {
		return
	}
	if r.count > 0 {
		for _, h := range unsafe.Slice(r.hits, int(r.count)) {
			C.free(unsafe.Pointer(h.path))
			C.free(unsafe.Pointer(h.name))
		}
	}
	C.free(unsafe.Pointer(r.hits))
	r.hits = nil
	r.count = 0
}
