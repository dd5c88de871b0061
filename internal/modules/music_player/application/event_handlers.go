package application

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// PlayNextFunc starts the next queued track if nothing is playing.
type PlayNextFunc func(ctx context.Context, guildID snowflake.ID) (*domain.Track, error)

// AdvanceFunc moves past a finished track honoring the loop mode.
type AdvanceFunc func(ctx context.Context, guildID snowflake.ID) (*domain.Track, error)

// NoticeFunc posts a message to a guild's notification channel.
type NoticeFunc func(ctx context.Context, guildID snowflake.ID, message string)

// PlaybackEventHandler drives playback from queue and player events.
// Failures to start a track are announced, since no command is waiting on them.
type PlaybackEventHandler struct {
	playNext   PlayNextFunc
	advance    AdvanceFunc
	notice     NoticeFunc
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playNext PlayNextFunc,
	advance AdvanceFunc,
	notice NoticeFunc,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playNext:   playNext,
		advance:    advance,
		notice:     notice,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnqueued(h.handleTrackEnqueued)
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handler started")
}

func (h *PlaybackEventHandler) handleTrackEnqueued(ctx context.Context, event domain.TrackEnqueuedEvent) {
	if !event.WasIdle {
		return
	}

	// PlayNext re-checks under the session lock, so concurrent enqueues
	// start playback only once.
	track, err := h.playNext(ctx, event.GuildID)
	if err != nil {
		slog.Error("failed to start playback after track enqueued",
			"guild", event.GuildID,
			"autoplay", event.Autoplay,
			"error", err,
		)
		h.notice(ctx, event.GuildID, "I couldn't start playback: "+err.Error())
		return
	}
	if track != nil {
		slog.Debug("playback started", "guild", event.GuildID, "track", track.Title)
	}
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		slog.Debug("track ended without advancing",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
		return
	}

	if _, err := h.advance(ctx, event.GuildID); err != nil {
		slog.Error("failed to advance queue",
			"guild", event.GuildID,
			"error", err,
		)
		h.notice(ctx, event.GuildID, "I couldn't play the next track: "+err.Error())
	}
}

// NowPlayingNotifier manages the messages posted to notification channels.
type NowPlayingNotifier interface {
	ReplaceNowPlaying(ctx context.Context, guildID snowflake.ID, track *domain.Track) error
	ClearNowPlaying(ctx context.Context, guildID snowflake.ID) error
	Farewell(event domain.SessionDestroyedEvent)
}

// NotificationEventHandler keeps the "now playing" message in sync with playback.
type NotificationEventHandler struct {
	notifier   NowPlayingNotifier
	subscriber ports.EventSubscriber
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	notifier NowPlayingNotifier,
	subscriber ports.EventSubscriber,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		notifier:   notifier,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnTrackStarted(h.handleTrackStarted)
	h.subscriber.OnQueueEmpty(h.handleQueueEmpty)
	h.subscriber.OnSessionDestroyed(h.handleSessionDestroyed)

	slog.Debug("notification event handler started")
}

func (h *NotificationEventHandler) handleTrackStarted(ctx context.Context, event domain.TrackStartedEvent) {
	if err := h.notifier.ReplaceNowPlaying(ctx, event.GuildID, event.Track); err != nil {
		slog.Warn("failed to send now playing message",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleQueueEmpty(ctx context.Context, event domain.QueueEmptyEvent) {
	if err := h.notifier.ClearNowPlaying(ctx, event.GuildID); err != nil {
		slog.Debug("failed to clear now playing message",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleSessionDestroyed(_ context.Context, event domain.SessionDestroyedEvent) {
	h.notifier.Farewell(event)
}

// ContinueFunc keeps music going once the queue is exhausted.
type ContinueFunc func(ctx context.Context, event domain.QueueEmptyEvent)

// AutoplayEventHandler runs the queue-empty continuation: autoplay when
// enabled, otherwise the idle disconnect timer.
type AutoplayEventHandler struct {
	continueFunc ContinueFunc
	subscriber   ports.EventSubscriber
}

// NewAutoplayEventHandler creates a new AutoplayEventHandler.
func NewAutoplayEventHandler(continueFunc ContinueFunc, subscriber ports.EventSubscriber) *AutoplayEventHandler {
	return &AutoplayEventHandler{
		continueFunc: continueFunc,
		subscriber:   subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *AutoplayEventHandler) Start() {
	h.subscriber.OnQueueEmpty(h.handleQueueEmpty)

	slog.Debug("autoplay event handler started")
}

func (h *AutoplayEventHandler) handleQueueEmpty(ctx context.Context, event domain.QueueEmptyEvent) {
	h.continueFunc(ctx, event)
}
