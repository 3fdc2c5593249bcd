// Package scanner discovers indexable files under a root directory and
// projects them into the FileMeta records the indexer consumes.
package scanner

// FileMeta is a single discovered file, as produced by Scan and consumed by
// internal/index.AddOrUpdate. Inode and Dev are 0 on platforms that don't
// expose them (e.g. when running against a filesystem without stable
// inodes); internal/identity falls back to a path-based key in that case.
type FileMeta struct {
	Path       string // absolute, UTF-8
	Name       string // basename
	Ext        string // lower-case, no leading dot; empty when absent
	ModifiedAt int64  // seconds since epoch
	Size       uint64
	Inode      uint64
	Dev        uint64
}

// Options configures a Scan call.
type Options struct {
	// RootDir is the directory to walk. Required.
	RootDir string

	// Workers is the number of goroutines used to stat discovered files
	// concurrently. 0 selects runtime.NumCPU().
	Workers int

	// FollowSymlinks includes symbolic links in the result as entries of
	// their own (stat'd with Lstat, so the metadata is the link's). Links
	// to directories are never descended into. Default: false — every
	// symbolic link is skipped.
	FollowSymlinks bool
}

// skipDirNames are directory basenames the scanner never descends into,
// regardless of .gitignore contents.
var skipDirNames = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"Library":      {},
	".Trash":       {},
}
