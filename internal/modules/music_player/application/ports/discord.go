package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection defines the interface for voice channel connection operations.
type VoiceConnection interface {
	// JoinChannel connects the bot to the specified voice channel.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot from the voice channel.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}

// VoiceStateProvider defines the interface for getting Discord voice state information.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel ID the user is currently in.
	// Returns nil if the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (*snowflake.ID, error)
}

// UserInfo contains display information for a Discord user.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider defines the interface for fetching user display information.
type UserInfoProvider interface {
	// GetUserInfo returns display info for the given user in a guild.
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)

	// BotUser returns the bot's own ID and display info.
	BotUser() (snowflake.ID, *UserInfo)
}

// NotificationSender posts playback messages to a guild's text channel.
// Notices and errors are fire-and-forget embeds; the now-playing message is
// tracked by ID so it can be replaced when the next track starts.
type NotificationSender interface {
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) (messageID snowflake.ID, err error)
	DeleteMessage(channelID, messageID snowflake.ID) error
	SendNotice(channelID snowflake.ID, message string) error
	SendError(channelID snowflake.ID, message string) error
}
