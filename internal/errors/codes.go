// Package errors provides the structured error type shared by every core
// component: one Kind per failure mode a caller must branch on, plus a
// Code string stable enough to appear in logs and the C ABI's error text.
package errors

// Kind classifies an Error by the failure mode a caller branches on.
type Kind string

const (
	// KindNotInitialized: an operation was attempted before Init or after
	// Close on the same handle.
	KindNotInitialized Kind = "NOT_INITIALIZED"
	// KindIO: opening, creating, or mmap'ing the on-disk index failed.
	KindIO Kind = "IO_ERROR"
	// KindSchemaMismatch: an existing index directory doesn't match the
	// document schema this build expects.
	KindSchemaMismatch Kind = "SCHEMA_MISMATCH"
	// KindParse: a query string failed to parse.
	KindParse Kind = "PARSE_ERROR"
	// KindGlob: a path_glob pattern failed to compile.
	KindGlob Kind = "GLOB_ERROR"
	// KindDocumentCorrupt: a stored document is missing a field every
	// document is expected to carry.
	KindDocumentCorrupt Kind = "DOCUMENT_CORRUPT"
	// KindInteriorNul: a string crossing the FFI boundary contains an
	// embedded NUL byte and cannot be represented as a C string.
	KindInteriorNul Kind = "INTERIOR_NUL"
)

// Error codes, one per Kind. Stable across releases — callers may match on
// these strings, so existing values must never be renumbered.
const (
	CodeNotInitialized  = "ERR_NOT_INITIALIZED"
	CodeIO              = "ERR_IO"
	CodeSchemaMismatch  = "ERR_SCHEMA_MISMATCH"
	CodeParse           = "ERR_PARSE"
	CodeGlob            = "ERR_GLOB"
	CodeDocumentCorrupt = "ERR_DOCUMENT_CORRUPT"
	CodeInteriorNul     = "ERR_INTERIOR_NUL"
)

// codeForKind maps a Kind to its stable Code.
func codeForKind(k Kind) string {
	switch k {
	case KindNotInitialized:
		return CodeNotInitialized
	case KindIO:
		return CodeIO
	case KindSchemaMismatch:
		return CodeSchemaMismatch
	case KindParse:
		return CodeParse
	case KindGlob:
		return CodeGlob
	case KindDocumentCorrupt:
		return CodeDocumentCorrupt
	case KindInteriorNul:
		return CodeInteriorNul
	default:
		return CodeIO
	}
}

// retryableKinds are worth an automatic retry (see Retry in retry.go) —
// only transient I/O opening or committing the index qualifies.
var retryableKinds = map[Kind]bool{
	KindIO: true,
}
