package discord

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

const asciiCardWidth = 44

// ansi returns a color that always emits escape codes; Discord renders them
// inside an ansi code block regardless of the bot's own terminal.
func ansi(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// RenderASCIICard renders the "Now Playing" card as an ansi code block.
func RenderASCIICard(info *usecases.NowPlayingInfo) string {
	var (
		frame  = ansi(color.FgHiBlack)
		status = ansi(color.FgGreen, color.Bold)
		title  = ansi(color.FgHiWhite, color.Bold)
		muted  = ansi(color.FgWhite)
		bar    = ansi(color.FgCyan)
	)
	track := info.Track

	label := "▶ NOW PLAYING"
	if info.Paused {
		label = "⏸ PAUSED"
		status = ansi(color.FgYellow, color.Bold)
	}

	progress := trackLength(track)
	if !track.IsStream {
		progress = fmt.Sprintf("%s %s %s",
			FormatDuration(info.Position),
			bar.Sprint(ProgressBar(info.Position, track.Duration, 20)),
			FormatDuration(track.Duration),
		)
	}

	details := fmt.Sprintf("Volume %d%% · Loop %s", info.Volume, loopModeLabel(info.LoopMode))
	if info.Filter != "" {
		details += " · " + string(info.Filter)
	}

	line := func(s string) string { return frame.Sprint("│ ") + s }
	rule := strings.Repeat("─", asciiCardWidth)

	var sb strings.Builder
	sb.WriteString("```ansi\n")
	sb.WriteString(frame.Sprint("╭"+rule) + "\n")
	sb.WriteString(line(status.Sprint(label)) + "\n")
	sb.WriteString(line(title.Sprint(truncate(track.Title, asciiCardWidth-2))) + "\n")
	sb.WriteString(line(muted.Sprint(truncate(track.Artist, asciiCardWidth-2))) + "\n")
	sb.WriteString(line(progress) + "\n")
	sb.WriteString(line(muted.Sprint(details)) + "\n")
	sb.WriteString(frame.Sprint("╰"+rule) + "\n")
	sb.WriteString("```")
	return sb.String()
}
