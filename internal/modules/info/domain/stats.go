package domain

import (
	"fmt"
	"time"
)

// Stats is a snapshot of the bot's runtime state.
type Stats struct {
	Version    string
	GoVersion  string
	Uptime     time.Duration
	Guilds     int
	Sessions   int
	Goroutines int
	HeapBytes  uint64
}

// FormatUptime renders d as "3d 4h 5m", dropping leading zero units.
// Durations under a minute render as seconds.
func FormatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatBytes renders n in MiB with one decimal.
func FormatBytes(n uint64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}
