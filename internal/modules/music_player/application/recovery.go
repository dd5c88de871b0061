package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

const (
	// ReconnectDelay is how long recovery waits before the first reconnect attempt.
	ReconnectDelay = 5 * time.Second
	// ReconnectRetryDelay is how long recovery waits before the second and last attempt.
	ReconnectRetryDelay = 10 * time.Second
)

const (
	noticeConnectionLost = "Lost connection to the audio server and could not reconnect."
	noticeQueueFinished  = "Nothing left to play after a track failed."
)

// PlaybackRecovery is the set of operations recovery can take on a session.
type PlaybackRecovery interface {
	Position(guildID snowflake.ID) time.Duration
	Rejoin(ctx context.Context, guildID snowflake.ID) error
	Restore(ctx context.Context, guildID snowflake.ID, position time.Duration) (*domain.Track, error)
	SkipFailed(ctx context.Context, guildID snowflake.ID, notice string) (*domain.Track, error)
	MoveOn(ctx context.Context, guildID snowflake.ID) (*domain.Track, error)
	Destroy(ctx context.Context, guildID snowflake.ID, notice string) error
	Notice(ctx context.Context, guildID snowflake.ID, message string)
}

// RecoveryEventHandler reacts to classified player errors.
type RecoveryEventHandler struct {
	recovery   PlaybackRecovery
	nodes      ports.NodeHealth
	scheduler  ports.Scheduler
	subscriber ports.EventSubscriber
}

// NewRecoveryEventHandler creates a new RecoveryEventHandler.
func NewRecoveryEventHandler(
	recovery PlaybackRecovery,
	nodes ports.NodeHealth,
	scheduler ports.Scheduler,
	subscriber ports.EventSubscriber,
) *RecoveryEventHandler {
	return &RecoveryEventHandler{
		recovery:   recovery,
		nodes:      nodes,
		scheduler:  scheduler,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *RecoveryEventHandler) Start() {
	h.subscriber.OnPlayerError(h.handlePlayerError)

	slog.Debug("recovery event handler started")
}

func (h *RecoveryEventHandler) handlePlayerError(ctx context.Context, event domain.PlayerErrorEvent) {
	slog.Warn("player error",
		"guild", event.GuildID,
		"kind", event.Kind,
		"message", event.Message,
	)

	switch event.Kind {
	case domain.PlayerErrorConnectionLost:
		position := h.recovery.Position(event.GuildID)
		h.scheduleReconnect(event.GuildID, position, ReconnectDelay, true)

	case domain.PlayerErrorTrackStuck, domain.PlayerErrorLoadFailed:
		h.recovery.Notice(ctx, event.GuildID, "Skipped a track that could not be played: "+event.Message)
		if _, err := h.recovery.SkipFailed(ctx, event.GuildID, noticeQueueFinished); err != nil {
			slog.Error("failed to skip past failed track", "guild", event.GuildID, "error", err)
		}

	case domain.PlayerErrorDecodeFailure:
		h.recovery.Notice(ctx, event.GuildID, "The track could not be decoded: "+event.Message)
		h.moveOn(ctx, event.GuildID)

	default:
		h.recovery.Notice(ctx, event.GuildID, "Playback hit an unexpected error: "+event.Message)
		h.moveOn(ctx, event.GuildID)
	}
}

func (h *RecoveryEventHandler) moveOn(ctx context.Context, guildID snowflake.ID) {
	if _, err := h.recovery.MoveOn(ctx, guildID); err != nil {
		slog.Error("failed to move on after player error", "guild", guildID, "error", err)
	}
}

func (h *RecoveryEventHandler) scheduleReconnect(
	guildID snowflake.ID,
	position time.Duration,
	delay time.Duration,
	retry bool,
) {
	h.scheduler.Schedule(usecases.ReconnectTaskKey(guildID), delay, func(ctx context.Context) {
		if !h.nodes.AnyNodeConnected() {
			if retry {
				slog.Info("no audio node connected, retrying", "guild", guildID)
				h.scheduleReconnect(guildID, position, ReconnectRetryDelay, false)
				return
			}
			slog.Warn("no audio node came back, giving up", "guild", guildID)
			if err := h.recovery.Destroy(ctx, guildID, noticeConnectionLost); err != nil {
				slog.Debug("session already gone", "guild", guildID, "error", err)
			}
			return
		}

		if err := h.recovery.Rejoin(ctx, guildID); err != nil {
			slog.Error("failed to rejoin voice channel", "guild", guildID, "error", err)
			return
		}
		track, err := h.recovery.Restore(ctx, guildID, position)
		if err != nil {
			slog.Error("failed to restore playback", "guild", guildID, "error", err)
			return
		}
		if track != nil {
			slog.Info("playback restored",
				"guild", guildID,
				"track", track.Title,
				"position", position,
			)
		}
	})
}

// ServiceRecovery implements PlaybackRecovery on top of the use case services.
type ServiceRecovery struct {
	audioPlayer   ports.AudioPlayer
	playback      *usecases.PlaybackService
	voiceChannels *usecases.VoiceChannelService
	sessions      *usecases.SessionManager
	notifications *usecases.NotificationChannelService
}

// NewServiceRecovery creates a new ServiceRecovery.
func NewServiceRecovery(
	audioPlayer ports.AudioPlayer,
	playback *usecases.PlaybackService,
	voiceChannels *usecases.VoiceChannelService,
	sessions *usecases.SessionManager,
	notifications *usecases.NotificationChannelService,
) *ServiceRecovery {
	return &ServiceRecovery{
		audioPlayer:   audioPlayer,
		playback:      playback,
		voiceChannels: voiceChannels,
		sessions:      sessions,
		notifications: notifications,
	}
}

func (r *ServiceRecovery) Position(guildID snowflake.ID) time.Duration {
	return r.audioPlayer.Position(guildID)
}

func (r *ServiceRecovery) Rejoin(ctx context.Context, guildID snowflake.ID) error {
	return r.voiceChannels.Rejoin(ctx, guildID)
}

func (r *ServiceRecovery) Restore(
	ctx context.Context,
	guildID snowflake.ID,
	position time.Duration,
) (*domain.Track, error) {
	return r.playback.Restore(ctx, guildID, position)
}

func (r *ServiceRecovery) SkipFailed(
	ctx context.Context,
	guildID snowflake.ID,
	notice string,
) (*domain.Track, error) {
	return r.playback.SkipFailed(ctx, guildID, notice)
}

func (r *ServiceRecovery) MoveOn(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	return r.playback.MoveOn(ctx, guildID)
}

func (r *ServiceRecovery) Destroy(ctx context.Context, guildID snowflake.ID, notice string) error {
	return r.sessions.DestroyGuild(ctx, guildID, notice)
}

func (r *ServiceRecovery) Notice(ctx context.Context, guildID snowflake.ID, message string) {
	r.notifications.NoticeGuild(ctx, guildID, message)
}
