package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// CommandScope identifies where a command was issued from.
type CommandScope struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// VoiceGuard checks that a member may control the guild's player.
type VoiceGuard struct {
	repo       domain.SessionRepository
	voiceState ports.VoiceStateProvider
}

// NewVoiceGuard creates a new VoiceGuard.
func NewVoiceGuard(repo domain.SessionRepository, voiceState ports.VoiceStateProvider) *VoiceGuard {
	return &VoiceGuard{
		repo:       repo,
		voiceState: voiceState,
	}
}

// Check runs, in order: the user is in a voice channel, a session exists,
// and the user shares the session's voice channel.
func (g *VoiceGuard) Check(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (*domain.GuildSession, error) {
	userChannel, err := g.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return nil, err
	}
	if userChannel == nil {
		return nil, ErrUserNotInVoice
	}

	session, err := g.repo.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}

	if session.GetVoiceChannelID() != *userChannel {
		return nil, ErrNotSameChannel
	}

	return session, nil
}

// Acquire runs Check and returns the session locked.
// The caller must Unlock it.
func (g *VoiceGuard) Acquire(ctx context.Context, scope CommandScope) (*domain.GuildSession, error) {
	session, err := g.Check(ctx, scope.GuildID, scope.UserID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	if session.IsClosed() {
		session.Unlock()
		return nil, ErrNotConnected
	}
	if scope.NotificationChannelID != 0 {
		session.SetNotificationChannelID(scope.NotificationChannelID)
	}
	return session, nil
}

// acquire returns the guild's session locked, without membership checks.
// The caller must Unlock it.
func acquire(
	ctx context.Context,
	repo domain.SessionRepository,
	guildID snowflake.ID,
) (*domain.GuildSession, error) {
	session, err := repo.Get(ctx, guildID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, err
	}

	session.Lock()
	if session.IsClosed() {
		session.Unlock()
		return nil, ErrNotConnected
	}
	return session, nil
}
