// Package identity derives the stable per-file key the indexer dedups on.
package identity

import (
	"strconv"

	"github.com/fcindex/fcindex/internal/scanner"
)

// Of returns the identity string for meta: "<dev>:<inode>" when either is
// non-zero, otherwise "path:<path>". The function is pure and total — there
// is no error case. The result is an internal dedup key, not a
// user-facing value, and callers must not surface it in query output.
func Of(meta scanner.FileMeta) string {
	if meta.Inode != 0 || meta.Dev != 0 {
		return strconv.FormatUint(meta.Dev, 10) + ":" + strconv.FormatUint(meta.Inode, 10)
	}
	return "path:" + meta.Path
}
