package ffi

// defaultLimit is used whenever the caller passes limit <= 0.
const defaultLimit = 50

// NormalizeLimit applies the ABI's limit <= 0 defaulting rule.
func NormalizeLimit(wire int32) int {
	if wire <= 0 {
		return defaultLimit
	}
	return int(wire)
}
