package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Track       *domain.Track
	Position    time.Duration
	LoopMode    domain.LoopMode
	Volume      int
	Paused      bool
	Autoplay    bool
	Filter      domain.FilterName
	QueueLength int
}

// Scheduler runs delayed tasks keyed by name.
// Scheduling a key that is already pending replaces the pending task.
type Scheduler interface {
	Schedule(key string, delay time.Duration, task func(ctx context.Context))
	Cancel(key string) bool
}

// PreferenceStore persists per-guild preferences across sessions.
type PreferenceStore interface {
	Get(ctx context.Context, guildID snowflake.ID) (domain.GuildPreferences, error)
	Save(ctx context.Context, guildID snowflake.ID, prefs domain.GuildPreferences) error
	// AlwaysOnGuilds maps every guild with 24/7 mode enabled to its voice channel.
	AlwaysOnGuilds(ctx context.Context) (map[snowflake.ID]snowflake.ID, error)
}
