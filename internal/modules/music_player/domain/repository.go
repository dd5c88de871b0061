package domain

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// ErrSessionNotFound is returned when no session exists for a guild.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository is the registry of live guild sessions.
type SessionRepository interface {
	// Get returns the session for the given guild, or ErrSessionNotFound.
	Get(ctx context.Context, guildID snowflake.ID) (*GuildSession, error)

	// Save registers the session, replacing any previous one for the guild.
	Save(ctx context.Context, session *GuildSession) error

	// Delete removes the session for the given guild.
	Delete(ctx context.Context, guildID snowflake.ID) error

	// Count returns the number of live sessions.
	Count() int
}

// GuildPreferences are the per-guild flags that outlive a session.
type GuildPreferences struct {
	// AlwaysOnChannelID is the voice channel kept in 24/7 mode, or 0.
	AlwaysOnChannelID snowflake.ID
	Autoplay          bool
}
