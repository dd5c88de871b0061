package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play starts playback of the given track.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// PlayAt starts playback of the given track from a position.
	PlayAt(ctx context.Context, guildID snowflake.ID, track *domain.Track, position time.Duration) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error

	// Seek moves the playback position of the current track.
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// SetVolume sets the player volume in percent.
	SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error

	// SetFilters replaces the player's filters. Zero settings clear them.
	SetFilters(ctx context.Context, guildID snowflake.ID, filters domain.FilterSettings) error

	// Position returns the playback position of the current track.
	Position(guildID snowflake.ID) time.Duration

	// Destroy removes the player from the node.
	Destroy(ctx context.Context, guildID snowflake.ID) error
}

// NodeHealth reports whether the audio node cluster can serve players.
type NodeHealth interface {
	// AnyNodeConnected returns true if at least one node is connected.
	AnyNodeConnected() bool
}
