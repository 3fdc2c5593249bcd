package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo contains index health information.
type StatusInfo struct {
	IndexDir    string    `json:"index_dir"`
	DocCount    uint64    `json:"doc_count"`
	LastIndexed time.Time `json:"last_indexed"`

	// Storage size (on-disk bleve segments, in bytes)
	IndexSize int64 `json:"index_size"`

	// Writer settings the index was opened with
	WriterThreads int    `json:"writer_threads"`
	WriterHeap    uint64 `json:"writer_heap_bytes"`
	QueryLimit    int    `json:"query_limit"`
	LockTimeoutMs int64  `json:"lock_timeout_ms"`

	// LockStatus is "held" when this process holds the directory lock,
	// "unavailable" when init_index has not been called.
	LockStatus string `json:"lock_status"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.IndexDir))

	_, _ = fmt.Fprintf(r.out, "  Documents:    %d\n", info.DocCount)
	if !info.LastIndexed.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last indexed: %s\n", formatTime(info.LastIndexed))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    On disk: %s\n", FormatBytes(info.IndexSize))
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Writer:")
	_, _ = fmt.Fprintf(r.out, "    Threads:      %d\n", info.WriterThreads)
	_, _ = fmt.Fprintf(r.out, "    Heap budget:  %s\n", FormatBytes(int64(info.WriterHeap)))
	_, _ = fmt.Fprintf(r.out, "    Query limit:  %d\n", info.QueryLimit)
	_, _ = fmt.Fprintf(r.out, "    Lock timeout: %dms\n", info.LockTimeoutMs)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Lock: %s\n", r.renderStatus(info.LockStatus))

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "held":
		return r.styles.Success.Render(status)
	case "unavailable":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
