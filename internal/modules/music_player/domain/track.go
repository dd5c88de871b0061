package domain

import (
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is the source identifier of a track (e.g. a YouTube video ID).
type TrackID string

// Track is a resolved, playable track plus who queued it.
// Tracks from a load result carry no requester until WithRequester.
type Track struct {
	ID         TrackID
	Encoded    string // opaque node payload, required to play
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string
	IsStream   bool

	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
	EnqueuedAt         time.Time
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// IsValid reports whether the node can play the track.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// WithRequester returns a copy of the track attributed to the given requester.
// Search results are shared between requests, so they are copied before enqueueing.
func (t *Track) WithRequester(id snowflake.ID, name, avatarURL string) *Track {
	c := *t
	c.RequesterID = id
	c.RequesterName = name
	c.RequesterAvatarURL = avatarURL
	c.EnqueuedAt = time.Now().UTC()
	return &c
}

// IsSameAs reports whether two tracks refer to the same media,
// either by URI or by case-insensitive title.
func (t *Track) IsSameAs(other *Track) bool {
	if t == nil || other == nil {
		return false
	}
	if t.URI != "" && t.URI == other.URI {
		return true
	}
	return t.Title != "" && strings.EqualFold(
		strings.TrimSpace(t.Title),
		strings.TrimSpace(other.Title),
	)
}
