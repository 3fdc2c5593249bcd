package ffi

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fcindex/fcindex/internal/query"
)

// OutHit is the Go-side staging struct for a C Hit, after interior-NUL
// filtering. cmd/libfcindex converts each OutHit into a C-allocated Hit
// (C.CString for Path/Name) when building the Results array.
type OutHit struct {
	Path       string
	Name       string
	ModifiedAt int64
	Size       uint64
	Score      float32
}

// BuildOutHits converts query hits into OutHits, dropping — and logging to
// diagnostics — any hit whose path or name contains an interior NUL byte,
// since such a string cannot cross the C ABI as a NUL-terminated string.
// The remaining hits are unaffected and keep their relative order.
func BuildOutHits(hits []query.Hit, diagnostics io.Writer) []OutHit {
	if diagnostics == nil {
		diagnostics = os.Stderr
	}
	out := make([]OutHit, 0, len(hits))
	for _, h := range hits {
		if strings.ContainsRune(h.Path, 0) || strings.ContainsRune(h.Name, 0) {
			fmt.Fprintf(diagnostics, "[ffi] dropping hit with interior NUL byte: path=%q\n", h.Path)
			continue
		}
		out = append(out, OutHit{
			Path:       h.Path,
			Name:       h.Name,
			ModifiedAt: h.ModifiedAt,
			Size:       h.Size,
			Score:      float32(h.Score),
		})
	}
	return out
}
