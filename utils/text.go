package utils

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// CleanText normalizes whitespace and strips common Reddit tombstones.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "[deleted]", "")
	text = strings.ReplaceAll(text, "[removed]", "")

	return strings.Join(strings.Fields(text), " ")
}

// FormatTimestamp renders a Unix timestamp for log lines and reports.
func FormatTimestamp(timestamp float64) string {
	return time.Unix(int64(timestamp), 0).UTC().Format("2006-01-02 15:04:05")
}

// FormatFileSize renders a byte count for display.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	return humanize.Bytes(uint64(sizeBytes))
}

// SubredditDisplayName prepends the r/ prefix exactly once.
func SubredditDisplayName(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "r/") {
		name = name[2:]
	}
	return "r/" + name
}
