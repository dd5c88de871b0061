package infrastructure

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

func newTestState(t *testing.T, voiceStates ...*discordgo.VoiceState) *discordgo.State {
	t.Helper()

	state := discordgo.NewState()
	err := state.GuildAdd(&discordgo.Guild{
		ID:          "1",
		VoiceStates: voiceStates,
	})
	if err != nil {
		t.Fatalf("failed to add guild: %v", err)
	}
	return state
}

func TestVoiceStateProvider_GetUserVoiceChannel(t *testing.T) {
	state := newTestState(t,
		&discordgo.VoiceState{GuildID: "1", UserID: "2", ChannelID: "3"},
		&discordgo.VoiceState{GuildID: "1", UserID: "5", ChannelID: ""},
	)
	provider := NewVoiceStateProvider(state)

	t.Run("in a channel", func(t *testing.T) {
		channelID, err := provider.GetUserVoiceChannel(1, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if channelID == nil || *channelID != snowflake.ID(3) {
			t.Errorf("expected channel 3, got %v", channelID)
		}
	})

	t.Run("not in a channel", func(t *testing.T) {
		for _, userID := range []snowflake.ID{4, 5} {
			channelID, err := provider.GetUserVoiceChannel(1, userID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if channelID != nil {
				t.Errorf("expected nil for user %d, got %v", userID, *channelID)
			}
		}
	})

	t.Run("unknown guild", func(t *testing.T) {
		if _, err := provider.GetUserVoiceChannel(42, 2); err == nil {
			t.Error("expected an error")
		}
	})
}
