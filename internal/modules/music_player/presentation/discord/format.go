package discord

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Progress bar cells.
const (
	barFilled = "▰"
	barEmpty  = "▱"
)

// FormatMillis formats milliseconds as m:ss or h:mm:ss.
// Negative and non-finite values format as 0:00.
func FormatMillis(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		ms = 0
	}

	total := int64(ms / 1000)
	hours, minutes, seconds := total/3600, total%3600/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatDuration formats a duration as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	return FormatMillis(float64(d.Milliseconds()))
}

// ProgressBar renders exactly size cells with the elapsed share filled.
func ProgressBar(current, total time.Duration, size int) string {
	if size <= 0 {
		return ""
	}

	filled := 0
	switch {
	case total <= 0 || current <= 0:
	case current >= total:
		filled = size
	default:
		filled = int(float64(size) * float64(current) / float64(total))
	}

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, size-filled)
}

// truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 1 {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-1]) + "…"
}

// escapeMarkdown escapes characters Discord would interpret in titles.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "~", `\~`, "`", "\\`", "|", `\|`, "[", `\[`, "]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
