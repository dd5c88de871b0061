package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// DefaultIdleTimeout is how long an idle session stays connected.
const DefaultIdleTimeout = 60 * time.Second

const idleNotice = "Left the voice channel due to inactivity."

// IdleTaskKey returns the scheduler key of a guild's idle disconnect.
func IdleTaskKey(guildID snowflake.ID) string {
	return "idle:" + guildID.String()
}

// ReconnectTaskKey returns the scheduler key of a guild's reconnect attempt.
func ReconnectTaskKey(guildID snowflake.ID) string {
	return "reconnect:" + guildID.String()
}

// SessionManager owns the lifecycle of guild sessions:
// creation, teardown and the idle disconnect timer.
type SessionManager struct {
	repo            domain.SessionRepository
	audioPlayer     ports.AudioPlayer
	voiceConnection ports.VoiceConnection
	publisher       ports.EventPublisher
	scheduler       ports.Scheduler
	preferences     ports.PreferenceStore
	idleTimeout     time.Duration
}

// NewSessionManager creates a new SessionManager.
// A zero idleTimeout selects DefaultIdleTimeout.
func NewSessionManager(
	repo domain.SessionRepository,
	audioPlayer ports.AudioPlayer,
	voiceConnection ports.VoiceConnection,
	publisher ports.EventPublisher,
	scheduler ports.Scheduler,
	preferences ports.PreferenceStore,
	idleTimeout time.Duration,
) *SessionManager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &SessionManager{
		repo:            repo,
		audioPlayer:     audioPlayer,
		voiceConnection: voiceConnection,
		publisher:       publisher,
		scheduler:       scheduler,
		preferences:     preferences,
		idleTimeout:     idleTimeout,
	}
}

// Create registers a new session, restoring the guild's stored preferences.
func (m *SessionManager) Create(
	ctx context.Context,
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) (*domain.GuildSession, error) {
	session := domain.NewGuildSession(guildID, voiceChannelID, notificationChannelID)

	if m.preferences != nil {
		prefs, err := m.preferences.Get(ctx, guildID)
		if err != nil {
			slog.Warn("failed to load guild preferences", "guild", guildID, "error", err)
		} else {
			session.SetAutoplay(prefs.Autoplay)
			session.SetAlwaysOn(prefs.AlwaysOnChannelID != 0)
		}
	}

	if err := m.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AlwaysOnGuilds returns the stored 24/7 guilds and their voice channels.
func (m *SessionManager) AlwaysOnGuilds(ctx context.Context) (map[snowflake.ID]snowflake.ID, error) {
	if m.preferences == nil {
		return nil, nil
	}
	return m.preferences.AlwaysOnGuilds(ctx)
}

// SavePreferences stores the session's 24/7 and autoplay flags.
// The caller must hold the session lock.
func (m *SessionManager) SavePreferences(ctx context.Context, session *domain.GuildSession) {
	if m.preferences == nil {
		return
	}

	prefs := domain.GuildPreferences{Autoplay: session.IsAutoplay()}
	if session.IsAlwaysOn() {
		prefs.AlwaysOnChannelID = session.GetVoiceChannelID()
	}
	if err := m.preferences.Save(ctx, session.GetGuildID(), prefs); err != nil {
		slog.Warn("failed to save guild preferences", "guild", session.GetGuildID(), "error", err)
	}
}

// Destroy leaves the voice channel and removes the session.
// The caller must hold the session lock. A non-empty notice is posted
// to the session's notification channel.
func (m *SessionManager) Destroy(ctx context.Context, session *domain.GuildSession, notice string) {
	m.teardown(ctx, session, true, notice)
}

// DestroyGuild locks the guild's session and destroys it.
func (m *SessionManager) DestroyGuild(ctx context.Context, guildID snowflake.ID, notice string) error {
	session, err := acquire(ctx, m.repo, guildID)
	if err != nil {
		return err
	}
	defer session.Unlock()

	m.Destroy(ctx, session, notice)
	return nil
}

// Detach removes the session after the bot was disconnected externally.
// The caller must hold the session lock.
func (m *SessionManager) Detach(ctx context.Context, session *domain.GuildSession) {
	m.teardown(ctx, session, false, "")
}

func (m *SessionManager) teardown(
	ctx context.Context,
	session *domain.GuildSession,
	leave bool,
	notice string,
) {
	guildID := session.GetGuildID()

	m.scheduler.Cancel(IdleTaskKey(guildID))
	m.scheduler.Cancel(ReconnectTaskKey(guildID))

	if err := m.audioPlayer.Destroy(ctx, guildID); err != nil {
		slog.Warn("failed to destroy player", "guild", guildID, "error", err)
	}
	if leave {
		if err := m.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
			slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
		}
	}

	session.Queue.Clear()
	session.SetPlaying(false)
	session.Close()

	if err := m.repo.Delete(ctx, guildID); err != nil {
		slog.Error("failed to delete session", "guild", guildID, "error", err)
	}

	m.publisher.PublishSessionDestroyed(domain.SessionDestroyedEvent{
		GuildID:               guildID,
		NotificationChannelID: session.GetNotificationChannelID(),
		LastMessage:           session.GetNowPlayingMessage(),
		Notice:                notice,
	})

	slog.Info("session destroyed", "guild", guildID, "left_channel", leave)
}

// ScheduleIdleDisconnect leaves the guild's channel after the idle timeout,
// unless the session has become busy or 24/7 in the meantime.
func (m *SessionManager) ScheduleIdleDisconnect(guildID snowflake.ID) {
	m.scheduler.Schedule(IdleTaskKey(guildID), m.idleTimeout, func(ctx context.Context) {
		session, err := m.repo.Get(ctx, guildID)
		if err != nil {
			return
		}

		session.Lock()
		defer session.Unlock()

		if session.IsClosed() || !session.IsIdle() || session.IsAlwaysOn() {
			slog.Debug("idle disconnect skipped", "guild", guildID)
			return
		}
		m.Destroy(ctx, session, idleNotice)
	})
}

// CancelIdleDisconnect cancels a pending idle disconnect.
func (m *SessionManager) CancelIdleDisconnect(guildID snowflake.ID) {
	if m.scheduler.Cancel(IdleTaskKey(guildID)) {
		slog.Debug("idle disconnect cancelled", "guild", guildID)
	}
}

// IdleTimeout returns the configured idle timeout.
func (m *SessionManager) IdleTimeout() time.Duration {
	return m.idleTimeout
}
