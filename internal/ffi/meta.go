package ffi

import (
	"strings"

	"github.com/fcindex/fcindex/internal/scanner"
)

// DecodedFileMeta is the Go-side decoding of the C FileMeta struct's
// fields, after cmd/libfcindex has converted the *C.char pointers to Go
// strings (C.GoString stops at the first NUL, so these are never
// NUL-containing by construction).
type DecodedFileMeta struct {
	Path       string
	Name       string
	Ext        string
	ModifiedAt int64
	Size       uint64
	Inode      uint64
	Dev        uint64
}

// ToScannerMeta converts the decoded wire struct into the scanner.FileMeta
// the indexer consumes, lower-casing Ext to match the scanner's own
// convention (an absent extension is the empty string either way).
func (d DecodedFileMeta) ToScannerMeta() scanner.FileMeta {
	return scanner.FileMeta{
		Path:       d.Path,
		Name:       d.Name,
		Ext:        strings.ToLower(d.Ext),
		ModifiedAt: d.ModifiedAt,
		Size:       d.Size,
		Inode:      d.Inode,
		Dev:        d.Dev,
	}
}
