package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// voiceStateHandler reacts to voice state changes of the bot itself.
type voiceStateHandler interface {
	HandleBotVoiceStateChange(ctx context.Context, input usecases.BotVoiceStateChangeInput)
}

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel voiceStateHandler
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(botID snowflake.ID, voiceChannel *usecases.VoiceChannelService) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for the bot.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if event.UserID != h.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "guild", guildID, "error", err)
			return
		}
		newChannelID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	h.voiceChannel.HandleBotVoiceStateChange(ctx, usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	})
}
