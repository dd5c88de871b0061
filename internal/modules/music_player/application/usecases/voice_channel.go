package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID   snowflake.ID
	AlreadyConnected bool
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// ToggleOutput contains the result of a toggle use case.
type ToggleOutput struct {
	Enabled bool
}

// VoiceChannelService handles voice channel operations and per-guild modes.
type VoiceChannelService struct {
	repo            domain.SessionRepository
	guard           *VoiceGuard
	sessions        *SessionManager
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.SessionRepository,
	guard *VoiceGuard,
	sessions *SessionManager,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		guard:           guard,
		sessions:        sessions,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
	}
}

// Join joins the bot to the user's voice channel, creating the session on first join.
// When the bot is already in another channel it moves there and keeps the queue.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if userChannel == nil {
		return nil, ErrUserNotInVoice
	}
	voiceChannelID := *userChannel

	existing, err := acquire(ctx, v.repo, input.GuildID)
	if err == nil {
		defer existing.Unlock()

		existing.SetNotificationChannelID(input.NotificationChannelID)
		if existing.GetVoiceChannelID() == voiceChannelID {
			return &JoinOutput{VoiceChannelID: voiceChannelID, AlreadyConnected: true}, nil
		}

		if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
			return nil, err
		}
		existing.SetVoiceChannelID(voiceChannelID)
		return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
	}
	if !errors.Is(err, ErrNotConnected) {
		return nil, err
	}

	if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, err
	}

	session, err := v.sessions.Create(ctx, input.GuildID, voiceChannelID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	if !session.IsAlwaysOn() {
		v.sessions.ScheduleIdleDisconnect(input.GuildID)
	}

	slog.Info("session created", "guild", input.GuildID, "channel", voiceChannelID)

	return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
}

// RestoreAlwaysOn rejoins the stored 24/7 channel of every guild without a
// session and returns how many sessions were restored. Failures are logged
// and the guild is skipped.
func (v *VoiceChannelService) RestoreAlwaysOn(ctx context.Context) int {
	guilds, err := v.sessions.AlwaysOnGuilds(ctx)
	if err != nil {
		slog.Warn("failed to load 24/7 guilds", "error", err)
		return 0
	}

	restored := 0
	for guildID, channelID := range guilds {
		if ctx.Err() != nil {
			break
		}
		if _, err := v.repo.Get(ctx, guildID); err == nil {
			continue
		}
		if err := v.voiceConnection.JoinChannel(ctx, guildID, channelID); err != nil {
			slog.Warn("failed to rejoin 24/7 channel", "guild", guildID, "channel", channelID, "error", err)
			continue
		}
		if _, err := v.sessions.Create(ctx, guildID, channelID, 0); err != nil {
			slog.Warn("failed to restore 24/7 session", "guild", guildID, "error", err)
			continue
		}
		restored++
	}
	return restored
}

// Leave leaves the voice channel and destroys the session.
// Leaving also turns 24/7 mode off for the guild.
func (v *VoiceChannelService) Leave(ctx context.Context, scope CommandScope) error {
	session, err := v.guard.Acquire(ctx, scope)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if session.IsAlwaysOn() {
		session.SetAlwaysOn(false)
		v.sessions.SavePreferences(ctx, session)
	}

	v.sessions.Destroy(ctx, session, "")
	return nil
}

// Rejoin reconnects the bot to the session's voice channel after the
// voice connection was lost.
func (v *VoiceChannelService) Rejoin(ctx context.Context, guildID snowflake.ID) error {
	session, err := acquire(ctx, v.repo, guildID)
	if err != nil {
		return err
	}
	defer session.Unlock()

	return v.voiceConnection.JoinChannel(ctx, guildID, session.GetVoiceChannelID())
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
func (v *VoiceChannelService) HandleBotVoiceStateChange(ctx context.Context, input BotVoiceStateChangeInput) {
	session, err := acquire(ctx, v.repo, input.GuildID)
	if err != nil {
		return
	}
	defer session.Unlock()

	if input.NewChannelID == nil {
		slog.Info("bot disconnected from voice externally", "guild", input.GuildID)
		v.sessions.Detach(ctx, session)
		return
	}

	if *input.NewChannelID != session.GetVoiceChannelID() {
		slog.Info("bot moved to another voice channel",
			"guild", input.GuildID,
			"channel", *input.NewChannelID,
		)
		session.SetVoiceChannelID(*input.NewChannelID)
	}
}

// ToggleAlwaysOn toggles 24/7 mode. Enabling it cancels a pending idle disconnect;
// disabling it on an idle session starts the idle timer.
func (v *VoiceChannelService) ToggleAlwaysOn(ctx context.Context, scope CommandScope) (*ToggleOutput, error) {
	session, err := v.guard.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	enabled := !session.IsAlwaysOn()
	session.SetAlwaysOn(enabled)
	v.sessions.SavePreferences(ctx, session)

	if enabled {
		v.sessions.CancelIdleDisconnect(scope.GuildID)
	} else if session.IsIdle() {
		v.sessions.ScheduleIdleDisconnect(scope.GuildID)
	}

	return &ToggleOutput{Enabled: enabled}, nil
}

// ToggleAutoplay toggles autoplay.
func (v *VoiceChannelService) ToggleAutoplay(ctx context.Context, scope CommandScope) (*ToggleOutput, error) {
	session, err := v.guard.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	enabled := !session.IsAutoplay()
	session.SetAutoplay(enabled)
	v.sessions.SavePreferences(ctx, session)

	return &ToggleOutput{Enabled: enabled}, nil
}
