// Package ffi holds the platform-independent marshaling helpers shared
// between cmd/libfcindex's cgo exports and the tests that exercise the
// same decisions without linking cgo: scope/limit decoding, FileMeta
// conversion, and interior-NUL hit filtering.
package ffi

import "github.com/fcindex/fcindex/internal/query"

// Scope wire values, matching the C ABI's integer encoding.
const (
	WireScopeName    int32 = 0
	WireScopeContent int32 = 1
	WireScopeBoth    int32 = 2
)

// DecodeScope maps the C ABI's integer scope encoding to query.Scope.
// Unknown values default to Both, per the boundary's documented fallback.
func DecodeScope(wire int32) query.Scope {
	switch wire {
	case WireScopeName:
		return query.ScopeName
	case WireScopeContent:
		return query.ScopeContent
	default:
		return query.ScopeBoth
	}
}
