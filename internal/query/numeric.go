package query

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
