package errors

import "fmt"

// FormatForCLI renders err for terminal output, concise and one error per
// line plus its code.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !As(err, &e) {
		return fmt.Sprintf("Error: %s\n", err.Error())
	}
	if e.Field != "" {
		return fmt.Sprintf("Error: %s [%s field=%s]\n", e.Message, e.Code, e.Field)
	}
	return fmt.Sprintf("Error: %s [%s]\n", e.Message, e.Code)
}

// FormatForLog returns key-value pairs suitable for slog.Any / slog attrs.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}
	var e *Error
	if !As(err, &e) {
		return map[string]any{"error": err.Error()}
	}
	result := map[string]any{
		"error_code": e.Code,
		"kind":       string(e.Kind),
		"message":    e.Message,
		"retryable":  e.Retryable,
	}
	if e.Field != "" {
		result["field"] = e.Field
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}
