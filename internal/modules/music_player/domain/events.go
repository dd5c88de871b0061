package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by the user.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
// Load failures are handled by the recovery path instead.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished
}

// TrackEnqueuedEvent is published when tracks are added to the queue.
type TrackEnqueuedEvent struct {
	GuildID  snowflake.ID
	Tracks   []*Track
	WasIdle  bool // true if nothing was playing when the tracks were enqueued
	Autoplay bool // true if picked by autoplay rather than a member
}

// TrackStartedEvent is published when a track starts playing.
type TrackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 *Track
	NotificationChannelID snowflake.ID
}

// TrackEndedEvent is published when a track ends on the node.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  TrackEndReason
}

// QueueEmptyEvent is published when playback ran out of tracks.
type QueueEmptyEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	Stopped               bool // emptied by an explicit stop; autoplay does not continue
}

// PlayerErrorEvent is published when the node reports a playback failure.
type PlayerErrorEvent struct {
	GuildID snowflake.ID
	Kind    PlayerErrorKind
	Message string
}

// SessionDestroyedEvent is published after a session has been torn down.
type SessionDestroyedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	LastMessage           *NowPlayingMessage // "Now Playing" message to delete
	Notice                string             // optional message for the notification channel
}
