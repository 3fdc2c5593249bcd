package index

import (
	"log/slog"

	"github.com/blevesearch/bleve/v2"

	"github.com/fcindex/fcindex/internal/schema"
	"github.com/fcindex/fcindex/internal/scanner"
)

// storedTuple is the (path, mtime, size) triple AddOrUpdate and
// ShouldReindex compare against an incoming FileMeta to decide Skipped
// vs Updated.
type storedTuple struct {
	Path  string
	Mtime int64
	Size  uint64
}

func (s storedTuple) matches(meta scanner.FileMeta) bool {
	return s.Path == meta.Path && s.Mtime == meta.ModifiedAt && s.Size == meta.Size
}

// lookupIdentity fetches the stored (path, mtime, size) for the document
// whose identity-derived doc ID is id. found is false when no such
// document exists.
func lookupIdentity(idx bleve.Index, id string) (storedTuple, bool, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{id}))
	req.Fields = []string{schema.FieldPath, schema.FieldMtime, schema.FieldSize}
	req.Size = 1

	res, err := idx.Search(req)
	if err != nil {
		return storedTuple{}, false, err
	}
	if len(res.Hits) == 0 {
		return storedTuple{}, false, nil
	}

	hit := res.Hits[0]
	path, ok := hit.Fields[schema.FieldPath].(string)
	if !ok || path == "" {
		// A document with this identity exists but is missing its path
		// field: treat it as corrupt and fail open, the same way
		// ShouldReindex fails open on any lookup error.
		slog.Warn("stored document missing required field; treating as corrupt", "id", id)
		return storedTuple{}, false, nil
	}
	tuple := storedTuple{
		Path:  path,
		Mtime: int64(toFloat64(hit.Fields[schema.FieldMtime])),
		Size:  uint64(toFloat64(hit.Fields[schema.FieldSize])),
	}
	return tuple, true, nil
}

// toFloat64 normalizes the numeric value bleve hands back through the
// untyped Fields map (always float64 for JSON-sourced documents, but
// defensive against other numeric kinds).
func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
