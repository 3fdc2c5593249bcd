//go:build !unix

package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// buildMeta stats path without inode/dev support; identity.Of falls
// back to a path-based key on these platforms.
func buildMeta(path string) (FileMeta, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileMeta{}, false
	}

	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	return FileMeta{
		Path:       path,
		Name:       name,
		Ext:        strings.ToLower(ext),
		ModifiedAt: info.ModTime().Unix(),
		Size:       uint64(info.Size()),
	}, true
}
