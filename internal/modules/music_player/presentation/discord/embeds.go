package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x5865F2
)

// Discord limits.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxSelectLabel      = 100
	maxSelectOptions    = 25
	lyricsPageSize      = 1800
	progressBarSize     = 16
)

// Now-playing control custom IDs.
const (
	customIDPause   = "np:pause"
	customIDSkip    = "np:skip"
	customIDStop    = "np:stop"
	customIDLoop    = "np:loop"
	customIDShuffle = "np:shuffle"
)

func embedData(description string, color int, ephemeral bool) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Description: truncate(description, maxEmbedDescription),
				Color:       color,
			},
		},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// respondSuccess sends a green embed visible to the channel.
func respondSuccess(r bot.Responder, description string) error {
	return r.Send(embedData(description, colorSuccess, false))
}

// respondError sends a red embed only the invoking user can see.
func respondError(r bot.Responder, message string) error {
	return r.Send(embedData(message, colorError, true))
}

// respondEphemeral sends a green embed only the invoking user can see.
func respondEphemeral(r bot.Responder, description string) error {
	return r.Send(embedData(description, colorSuccess, true))
}

// trackLink renders a track title as a markdown link when it has a URI.
func trackLink(track *usecases.Track) string {
	title := escapeMarkdown(truncate(track.Title, 80))
	if track.URI == "" {
		return "**" + title + "**"
	}
	return fmt.Sprintf("[%s](%s)", title, track.URI)
}

func trackLength(track *usecases.Track) string {
	if track.IsStream {
		return "LIVE"
	}
	return FormatDuration(track.Duration)
}

func loopModeLabel(mode usecases.LoopMode) string {
	switch mode {
	case usecases.LoopModeTrack:
		return "Track"
	case usecases.LoopModeQueue:
		return "Queue"
	default:
		return "Off"
	}
}

// NowPlayingEmbed builds the "Now Playing" embed. Position is shown when non-zero.
func NowPlayingEmbed(info *usecases.NowPlayingInfo, artworkURL string) *discordgo.MessageEmbed {
	track := info.Track

	description := "by " + escapeMarkdown(track.Artist)
	if info.Position > 0 && !track.IsStream {
		description += fmt.Sprintf("\n\n`%s` %s `%s`",
			FormatDuration(info.Position),
			ProgressBar(info.Position, track.Duration, progressBarSize),
			FormatDuration(track.Duration),
		)
	}

	status := "Now Playing"
	if info.Paused {
		status = "Paused"
	}

	embed := &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: status},
		Title:       truncate(track.Title, maxEmbedTitle),
		URL:         track.URI,
		Description: description,
		Color:       track.Source().Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: trackLength(track), Inline: true},
			{Name: "Loop", Value: loopModeLabel(info.LoopMode), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", info.Volume), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + track.RequesterName + " • " + track.Source().Label(),
			IconURL: track.RequesterAvatarURL,
		},
	}
	if !track.EnqueuedAt.IsZero() {
		embed.Timestamp = track.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	if info.QueueLength > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Up Next", Value: fmt.Sprintf("%d tracks", info.QueueLength), Inline: true,
		})
	}
	if info.Filter != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Filter", Value: string(info.Filter), Inline: true,
		})
	}
	if info.Autoplay {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Autoplay", Value: "On", Inline: true,
		})
	}

	if artworkURL == "" {
		artworkURL = track.ArtworkURL
	}
	if artworkURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: artworkURL}
	}

	return embed
}

// NowPlayingControls returns the control buttons attached to the "Now Playing" message.
func NowPlayingControls(paused bool) []discordgo.MessageComponent {
	pause := discordgo.Button{
		Label:    "Pause",
		Style:    discordgo.SecondaryButton,
		CustomID: customIDPause,
		Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
	}
	if paused {
		pause.Label = "Resume"
		pause.Style = discordgo.SuccessButton
		pause.Emoji = &discordgo.ComponentEmoji{Name: "▶️"}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				pause,
				discordgo.Button{
					Label:    "Skip",
					Style:    discordgo.SecondaryButton,
					CustomID: customIDSkip,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏭️"},
				},
				discordgo.Button{
					Label:    "Stop",
					Style:    discordgo.DangerButton,
					CustomID: customIDStop,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
				},
				discordgo.Button{
					Label:    "Loop",
					Style:    discordgo.SecondaryButton,
					CustomID: customIDLoop,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔁"},
				},
				discordgo.Button{
					Label:    "Shuffle",
					Style:    discordgo.SecondaryButton,
					CustomID: customIDShuffle,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔀"},
				},
			},
		},
	}
}

// NowPlayingMessage builds the message posted to the notification channel.
func NowPlayingMessage(info *usecases.NowPlayingInfo, artworkURL string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{NowPlayingEmbed(info, artworkURL)},
		Components: NowPlayingControls(info.Paused),
	}
}

// QueueEmbed renders one page of the queue.
func QueueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	var sb strings.Builder

	if output.CurrentTrack != nil {
		fmt.Fprintf(&sb, "**Now Playing**\n%s `%s`\n\n",
			trackLink(output.CurrentTrack), trackLength(output.CurrentTrack))
	}

	if len(output.Tracks) == 0 {
		sb.WriteString("*Nothing queued.*")
	} else {
		sb.WriteString("**Up Next**\n")
		for i, track := range output.Tracks {
			fmt.Fprintf(&sb, "`%d.` %s `%s`\n", output.FirstPosition+i, trackLink(track), trackLength(track))
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: truncate(sb.String(), maxEmbedDescription),
		Color:       colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d · %d tracks · %s · Loop: %s",
				output.CurrentPage,
				max(output.TotalPages, 1),
				output.TotalTracks,
				FormatDuration(output.TotalDuration),
				loopModeLabel(output.LoopMode),
			),
		},
	}
}

// lyricsPages splits lyrics lines into pages no longer than lyricsPageSize.
func lyricsPages(lines []string) []string {
	var pages []string
	var sb strings.Builder

	for _, line := range lines {
		line = truncate(line, lyricsPageSize)
		if sb.Len() > 0 && sb.Len()+len(line)+1 > lyricsPageSize {
			pages = append(pages, strings.TrimRight(sb.String(), "\n"))
			sb.Reset()
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if text := strings.TrimSpace(sb.String()); text != "" {
		pages = append(pages, strings.TrimRight(sb.String(), "\n"))
	}
	return pages
}

// LyricsEmbed renders one page of lyrics.
func LyricsEmbed(lyrics *usecases.Lyrics, pages []string, page int) *discordgo.MessageEmbed {
	title := lyrics.TrackName
	if lyrics.ArtistName != "" {
		title = lyrics.ArtistName + " - " + title
	}

	embed := &discordgo.MessageEmbed{
		Title: truncate(title, maxEmbedTitle),
		Color: colorInfo,
	}

	switch {
	case lyrics.Instrumental:
		embed.Description = "*This track is instrumental.*"
	case len(pages) == 0:
		embed.Description = "*No lyrics.*"
	default:
		embed.Description = pages[page]
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d · lyrics from lrclib.net", page+1, len(pages)),
		}
	}
	return embed
}

// lyricsControls returns the pagination buttons, or nil for a single page.
func lyricsControls(token string, page, pages int) []discordgo.MessageComponent {
	if pages <= 1 {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.SecondaryButton,
					CustomID: "lyrics:" + token + ":prev",
					Disabled: page == 0,
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					CustomID: "lyrics:" + token + ":next",
					Disabled: page >= pages-1,
				},
			},
		},
	}
}

// searchMenu builds the select menu for search results.
func searchMenu(token string, tracks []*usecases.Track) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, min(len(tracks), maxSelectOptions))
	for i, track := range tracks {
		if i == maxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       truncate(track.Title, maxSelectLabel),
			Description: truncate(fmt.Sprintf("%s · %s", track.Artist, trackLength(track)), maxSelectLabel),
			Value:       fmt.Sprint(i),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "search:" + token,
					Placeholder: "Pick a track to add",
					Options:     options,
				},
			},
		},
	}
}

// searchEmbed lists search results.
func searchEmbed(query string, tracks []*usecases.Track, window time.Duration) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, track := range tracks {
		if i == maxSelectOptions {
			break
		}
		fmt.Fprintf(&sb, "`%d.` %s `%s`\n", i+1, trackLink(track), trackLength(track))
	}

	return &discordgo.MessageEmbed{
		Title:       truncate("Results for "+query, maxEmbedTitle),
		Description: truncate(sb.String(), maxEmbedDescription),
		Color:       colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Pick a track within %d seconds.", int(window.Seconds())),
		},
	}
}
