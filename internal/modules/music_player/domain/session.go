package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Volume bounds, in percent.
const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 100
)

// MetadataFilterKey is the metadata key holding the active filter name.
const MetadataFilterKey = "filter"

// NowPlayingMessage stores the channel and message ID for a "Now Playing" message.
// Both values are needed for deletion since the message may be in a different channel
// than the current notification channel.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// GuildSession is the per-guild playback session.
// It is created on first join and destroyed on leave, stop, external
// disconnect or an unrecoverable player error.
//
// Callers must hold the session lock (Lock/Unlock) while reading or
// mutating more than a single field.
type GuildSession struct {
	mu sync.Mutex

	guildID               snowflake.ID
	voiceChannelID        snowflake.ID
	notificationChannelID snowflake.ID
	nowPlayingMessage     *NowPlayingMessage
	Queue                 Queue
	loopMode              LoopMode
	volume                int
	isPlaying             bool
	isPaused              bool
	activeFilter          FilterName
	metadata              map[string]string
	alwaysOn              bool
	autoplay              bool
	closed                bool
}

// NewGuildSession creates a new GuildSession for the given guild and channels.
func NewGuildSession(guildID, voiceChannelID, notificationChannelID snowflake.ID) *GuildSession {
	return &GuildSession{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewQueue(),
		loopMode:              LoopModeNone,
		volume:                DefaultVolume,
		metadata:              make(map[string]string),
	}
}

// Lock acquires the per-guild session lock.
func (s *GuildSession) Lock() {
	s.mu.Lock()
}

// Unlock releases the per-guild session lock.
func (s *GuildSession) Unlock() {
	s.mu.Unlock()
}

// Close marks the session as torn down. Holders of a stale pointer
// must check IsClosed after acquiring the lock.
func (s *GuildSession) Close() {
	s.closed = true
}

// IsClosed returns true once the session has been torn down.
func (s *GuildSession) IsClosed() bool {
	return s.closed
}

// GetGuildID returns the guild ID.
func (s *GuildSession) GetGuildID() snowflake.ID {
	// guildID is immutable after construction
	return s.guildID
}

// GetVoiceChannelID returns the voice channel the bot is connected to.
func (s *GuildSession) GetVoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (s *GuildSession) SetVoiceChannelID(channelID snowflake.ID) {
	s.voiceChannelID = channelID
}

// GetNotificationChannelID returns the text channel used for notifications.
func (s *GuildSession) GetNotificationChannelID() snowflake.ID {
	return s.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (s *GuildSession) SetNotificationChannelID(channelID snowflake.ID) {
	s.notificationChannelID = channelID
}

// CurrentTrack returns the track being played, or nil.
func (s *GuildSession) CurrentTrack() *Track {
	return s.Queue.Current()
}

// IsPlaying returns true if a track is loaded on the player.
func (s *GuildSession) IsPlaying() bool {
	return s.isPlaying
}

// SetPlaying sets whether a track is loaded on the player.
func (s *GuildSession) SetPlaying(playing bool) {
	s.isPlaying = playing
	if !playing {
		s.isPaused = false
	}
}

// IsPaused returns true if playback is paused.
func (s *GuildSession) IsPaused() bool {
	return s.isPaused
}

// SetPaused sets the paused flag.
func (s *GuildSession) SetPaused(paused bool) {
	s.isPaused = paused
}

// IsIdle returns true if nothing is playing and nothing is queued.
func (s *GuildSession) IsIdle() bool {
	return !s.isPlaying && s.Queue.IsIdle()
}

// GetLoopMode returns the current loop mode.
func (s *GuildSession) GetLoopMode() LoopMode {
	return s.loopMode
}

// SetLoopMode sets the loop mode.
func (s *GuildSession) SetLoopMode(mode LoopMode) {
	s.loopMode = mode
}

// CycleLoopMode cycles through loop modes: None -> Track -> Queue -> None.
// Returns the new loop mode.
func (s *GuildSession) CycleLoopMode() LoopMode {
	s.loopMode = s.loopMode.Next()
	return s.loopMode
}

// GetVolume returns the volume in percent.
func (s *GuildSession) GetVolume() int {
	return s.volume
}

// SetVolume sets the volume, clamped to [MinVolume, MaxVolume].
func (s *GuildSession) SetVolume(volume int) {
	s.volume = min(max(volume, MinVolume), MaxVolume)
}

// GetActiveFilter returns the active filter name, or "" if none.
func (s *GuildSession) GetActiveFilter() FilterName {
	return s.activeFilter
}

// SetActiveFilter records the active filter, mirroring it into metadata.
// An empty name clears the filter.
func (s *GuildSession) SetActiveFilter(name FilterName) {
	s.activeFilter = name
	if name == "" {
		delete(s.metadata, MetadataFilterKey)
		return
	}
	s.metadata[MetadataFilterKey] = string(name)
}

// GetMetadata returns the metadata value for key.
func (s *GuildSession) GetMetadata(key string) (string, bool) {
	value, ok := s.metadata[key]
	return value, ok
}

// SetMetadata stores a metadata value.
func (s *GuildSession) SetMetadata(key, value string) {
	s.metadata[key] = value
}

// IsAlwaysOn returns true if 24/7 mode is enabled.
func (s *GuildSession) IsAlwaysOn() bool {
	return s.alwaysOn
}

// SetAlwaysOn sets 24/7 mode.
func (s *GuildSession) SetAlwaysOn(enabled bool) {
	s.alwaysOn = enabled
}

// IsAutoplay returns true if autoplay is enabled.
func (s *GuildSession) IsAutoplay() bool {
	return s.autoplay
}

// SetAutoplay sets autoplay.
func (s *GuildSession) SetAutoplay(enabled bool) {
	s.autoplay = enabled
}

// GetNowPlayingMessage returns a copy of the "Now Playing" message info.
func (s *GuildSession) GetNowPlayingMessage() *NowPlayingMessage {
	if s.nowPlayingMessage == nil {
		return nil
	}
	msg := *s.nowPlayingMessage
	return &msg
}

// SetNowPlayingMessage stores the "Now Playing" message info for later deletion.
func (s *GuildSession) SetNowPlayingMessage(channelID, messageID snowflake.ID) {
	s.nowPlayingMessage = &NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}

// ClearNowPlayingMessage clears the stored "Now Playing" message info.
func (s *GuildSession) ClearNowPlayingMessage() {
	s.nowPlayingMessage = nil
}

// AutoplayReference returns the track autoplay should find related tracks for:
// the previous track, else the current one.
func (s *GuildSession) AutoplayReference() *Track {
	if previous := s.Queue.Previous(); previous != nil {
		return previous
	}
	return s.Queue.Current()
}
