package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// filterCommands maps each filter preset command to its preset and description.
var filterCommands = []struct {
	name        string
	filter      usecases.FilterName
	description string
}{
	{"8d", usecases.Filter8D, "Make the audio rotate around you"},
	{"bassboost", usecases.FilterBassBoost, "Boost the low frequencies"},
	{"nightcore", usecases.FilterNightcore, "Speed up and pitch up the audio"},
	{"vaporwave", usecases.FilterVaporwave, "Slow down and pitch down the audio"},
	{"karaoke", usecases.FilterKaraoke, "Remove the vocals"},
	{"lowpass", usecases.FilterLowPass, "Muffle the high frequencies"},
	{"slowmode", usecases.FilterSlowmode, "Slow the audio down"},
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a track from a URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search for tracks and pick one",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause playback, or resume it when paused",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Number of tracks to skip",
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "replay",
			Description: "Restart the current track",
		},
		{
			Name:        "join",
			Description: "Join your voice channel",
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "volume",
			Description: "Show or change the volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume from 0 to 100",
					MinValue:    floatPtr(usecases.MinVolume),
					MaxValue:    usecases.MaxVolume,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "style",
					Description: "How to display the track",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Embed", Value: styleEmbed},
						{Name: "Image card", Value: styleCard},
						{Name: "Text card", Value: styleASCII},
					},
				},
			},
		},
		{
			Name:        "shuffle",
			Description: "Shuffle the queue",
		},
		{
			Name:        "loop",
			Description: "Set the loop mode",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Loop mode",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "None", Value: "none"},
						{Name: "Track", Value: "track"},
						{Name: "Queue", Value: "queue"},
					},
				},
			},
		},
		{
			Name:        "remove",
			Description: "Remove a track from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "position",
					Description:  "Queue position",
					Required:     true,
					MinValue:     floatPtr(1),
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "move",
			Description: "Move a track within the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "from",
					Description:  "Current queue position",
					Required:     true,
					MinValue:     floatPtr(1),
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "to",
					Description: "New queue position",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "lyrics",
			Description: "Show lyrics for the current track or a search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Song to look up (defaults to the current track)",
				},
			},
		},
		{
			Name:        "timescale",
			Description: "Change speed, pitch and rate",
			Options: []*discordgo.ApplicationCommandOption{
				timescaleOption("speed", "Playback speed"),
				timescaleOption("pitch", "Pitch"),
				timescaleOption("rate", "Speed and pitch together"),
			},
		},
		{
			Name:        "clearfilter",
			Description: "Remove the active audio filter",
		},
		{
			Name:        "247",
			Description: "Toggle staying in the voice channel when idle",
		},
		{
			Name:        "autoplay",
			Description: "Toggle playing related tracks when the queue runs out",
		},
	}

	for _, fc := range filterCommands {
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        fc.name,
			Description: fc.description,
		})
	}

	for _, cmd := range commands {
		cmd.DMPermission = boolPtr(false)
	}

	return commands
}

func timescaleOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        name,
		Description: description + " (0.5 to 2.0)",
		MinValue:    floatPtr(usecases.MinTimescale),
		MaxValue:    usecases.MaxTimescale,
	}
}
