package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// NotificationChannelService owns what the bot posts to a guild's
// notification channel: the "now playing" message and notices.
type NotificationChannelService struct {
	repo        domain.SessionRepository
	notifier    ports.NotificationSender
	audioPlayer ports.AudioPlayer
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(
	repo domain.SessionRepository,
	notifier ports.NotificationSender,
	audioPlayer ports.AudioPlayer,
) *NotificationChannelService {
	return &NotificationChannelService{
		repo:        repo,
		notifier:    notifier,
		audioPlayer: audioPlayer,
	}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set updates the notification channel for the guild's session.
func (n *NotificationChannelService) Set(ctx context.Context, input SetNotificationChannelInput) error {
	session, err := acquire(ctx, n.repo, input.GuildID)
	if err != nil {
		return err
	}
	defer session.Unlock()

	session.SetNotificationChannelID(input.ChannelID)
	return nil
}

// ReplaceNowPlaying deletes the previous "now playing" message and posts
// one for track. Nothing is posted if track is no longer current.
func (n *NotificationChannelService) ReplaceNowPlaying(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
) error {
	session, err := acquire(ctx, n.repo, guildID)
	if err != nil {
		return err
	}
	defer session.Unlock()

	n.deleteLocked(session)

	if session.CurrentTrack() != track || !session.IsPlaying() {
		return nil
	}
	channelID := session.GetNotificationChannelID()
	if channelID == 0 {
		return nil
	}

	info := snapshot(session, n.audioPlayer.Position(guildID))
	messageID, err := n.notifier.SendNowPlaying(channelID, info)
	if err != nil {
		return err
	}
	session.SetNowPlayingMessage(channelID, messageID)

	return nil
}

// ClearNowPlaying deletes the "now playing" message once playback is over.
// A session that started playing again keeps its message.
func (n *NotificationChannelService) ClearNowPlaying(ctx context.Context, guildID snowflake.ID) error {
	session, err := acquire(ctx, n.repo, guildID)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if !session.IsPlaying() {
		n.deleteLocked(session)
	}
	return nil
}

// Farewell cleans up after a destroyed session: the last "now playing"
// message is deleted and the notice, if any, is posted.
func (n *NotificationChannelService) Farewell(event domain.SessionDestroyedEvent) {
	if last := event.LastMessage; last != nil {
		if err := n.notifier.DeleteMessage(last.ChannelID, last.MessageID); err != nil {
			slog.Warn("failed to delete now playing message",
				"guild", event.GuildID,
				"error", err,
			)
		}
	}

	if event.Notice != "" {
		n.Notice(event.NotificationChannelID, event.Notice)
	}
}

// Notice posts an informational message, logging failures.
func (n *NotificationChannelService) Notice(channelID snowflake.ID, message string) {
	if channelID == 0 {
		return
	}
	if err := n.notifier.SendNotice(channelID, message); err != nil {
		slog.Warn("failed to send notice", "channel", channelID, "error", err)
	}
}

// NoticeGuild posts a notice to the guild's notification channel.
func (n *NotificationChannelService) NoticeGuild(ctx context.Context, guildID snowflake.ID, message string) {
	session, err := acquire(ctx, n.repo, guildID)
	if err != nil {
		return
	}
	channelID := session.GetNotificationChannelID()
	session.Unlock()

	n.Notice(channelID, message)
}

// Error posts an error message, logging failures.
func (n *NotificationChannelService) Error(channelID snowflake.ID, message string) {
	if channelID == 0 {
		return
	}
	if err := n.notifier.SendError(channelID, message); err != nil {
		slog.Warn("failed to send error notice", "channel", channelID, "error", err)
	}
}

func (n *NotificationChannelService) deleteLocked(session *domain.GuildSession) {
	message := session.GetNowPlayingMessage()
	if message == nil {
		return
	}
	if err := n.notifier.DeleteMessage(message.ChannelID, message.MessageID); err != nil {
		slog.Warn("failed to delete now playing message",
			"guild", session.GetGuildID(),
			"error", err,
		)
	}
	session.ClearNowPlayingMessage()
}
