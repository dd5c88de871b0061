package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
)

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)

// VoiceStateProvider reads voice states from the discordgo state cache.
type VoiceStateProvider struct {
	state *discordgo.State
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(state *discordgo.State) *VoiceStateProvider {
	return &VoiceStateProvider{state: state}
}

// GetUserVoiceChannel returns the voice channel ID the user is currently in,
// or nil if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(guildID, userID snowflake.ID) (*snowflake.ID, error) {
	guild, err := v.state.Guild(guildID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get guild from state: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID != userID.String() || vs.ChannelID == "" {
			continue
		}
		channelID, err := snowflake.Parse(vs.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse voice channel ID: %w", err)
		}
		return &channelID, nil
	}

	return nil, nil
}
