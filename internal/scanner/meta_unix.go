//go:build unix

package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// buildMeta stats path and projects it into a FileMeta. inode/dev come from
// the platform's syscall.Stat_t; on filesystems that don't expose them
// they're already 0, which is what identity.Of expects.
func buildMeta(path string) (FileMeta, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileMeta{}, false
	}

	var inode, dev uint64
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		inode = uint64(sys.Ino)
		dev = uint64(sys.Dev)
	}

	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	return FileMeta{
		Path:       path,
		Name:       name,
		Ext:        strings.ToLower(ext),
		ModifiedAt: info.ModTime().Unix(),
		Size:       uint64(info.Size()),
		Inode:      inode,
		Dev:        dev,
	}, true
}
