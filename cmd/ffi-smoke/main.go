// Command ffi-smoke dlopens a built libfcindex shared library with purego
// and drives one init/index/search/close cycle through the exported C
// ABI, without linking against the library at build time. It exists to
// verify the shared library's symbol names and struct layouts are
// loadable from a pure-Go host that does not use cgo on the calling side.
package main

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// cFileMeta mirrors cmd/libfcindex's C FileMeta struct layout byte for
// byte; purego calls pass a pointer to this directly, so field order and
// sizes must match exactly.
type cFileMeta struct {
	path  *byte
	name  *byte
	ext   *byte
	mtime int64
	size  uint64
	inode uint64
	dev   uint64
}

type cQuery struct {
	q     *byte
	glob  *byte
	scope int32
	limit int32
}

type cHit struct {
	path  *byte
	name  *byte
	mtime int64
	size  uint64
	score float32
}

type cResults struct {
	hits  *cHit
	count int32
}

func main() {
	libPath := os.Getenv("FCINDEX_LIB_PATH")
	if len(os.Args) > 1 {
		libPath = os.Args[1]
	}
	if libPath == "" {
		fmt.Println("usage: ffi-smoke <path-to-libfcindex.so> (or set FCINDEX_LIB_PATH)")
		os.Exit(2)
	}

	fmt.Printf("ffi-smoke: OS=%s Arch=%s lib=%s\n", runtime.GOOS, runtime.GOARCH, libPath)

	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		fmt.Printf("ERROR: dlopen failed: %v\n", err)
		os.Exit(1)
	}
	defer purego.Dlclose(lib)

	var initIndex func(path *byte) bool
	var closeIndex func()
	var addOrUpdate func(meta *cFileMeta, content *byte) bool
	var shouldReindex func(meta *cFileMeta) bool
	var commitAndRefresh func() bool
	var search func(q *cQuery) cResults
	var freeResults func(r *cResults)

	purego.RegisterLibFunc(&initIndex, lib, "init_index")
	purego.RegisterLibFunc(&closeIndex, lib, "close_index")
	purego.RegisterLibFunc(&addOrUpdate, lib, "add_or_update")
	purego.RegisterLibFunc(&shouldReindex, lib, "should_reindex")
	purego.RegisterLibFunc(&commitAndRefresh, lib, "commit_and_refresh")
	purego.RegisterLibFunc(&search, lib, "search")
	purego.RegisterLibFunc(&freeResults, lib, "free_results")

	dir, err := os.MkdirTemp("", "ffi-smoke-*")
	if err != nil {
		fmt.Printf("ERROR: MkdirTemp: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	if ok := initIndex(cstring(dir)); !ok {
		fmt.Println("ERROR: init_index returned false")
		os.Exit(1)
	}
	fmt.Println("init_index: OK")

	meta := cFileMeta{
		path:  cstring(dir + "/hello.txt"),
		name:  cstring("hello.txt"),
		ext:   cstring("txt"),
		mtime: 1700000000,
		size:  11,
		inode: 1,
		dev:   1,
	}
	if ok := shouldReindex(&meta); !ok {
		fmt.Println("ERROR: should_reindex returned false for a never-seen file")
		os.Exit(1)
	}
	fmt.Println("should_reindex: OK")

	if ok := addOrUpdate(&meta, cstring("hello world")); !ok {
		fmt.Println("ERROR: add_or_update returned false")
		os.Exit(1)
	}
	fmt.Println("add_or_update: OK")

	if ok := commitAndRefresh(); !ok {
		fmt.Println("ERROR: commit_and_refresh returned false")
		os.Exit(1)
	}
	fmt.Println("commit_and_refresh: OK")

	q := cQuery{q: cstring("hello"), glob: nil, scope: 2, limit: 10}
	results := search(&q)
	fmt.Printf("search: count=%d\n", results.count)
	if results.count < 1 {
		fmt.Println("ERROR: expected at least one hit for 'hello'")
		os.Exit(1)
	}

	first := (*cHit)(unsafe.Pointer(results.hits))
	fmt.Printf("first hit: path=%s score=%f\n", goStringFromC(first.path), first.score)

	freeResults(&results)
	closeIndex()

	fmt.Println("\nVERIFICATION PASSED: libfcindex loads and answers through purego")
}

// cstring allocates a NUL-terminated C string the callee borrows for the
// duration of the call; it must outlive the call but need not be freed
// here since the process exits shortly after.
func cstring(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}

func goStringFromC(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for {
		c := *(*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + uintptr(n)))
		if c == 0 {
			break
		}
		n++
	}
	buf := unsafe.Slice(p, n)
	return string(buf)
}
