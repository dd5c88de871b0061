package ports

import (
	"context"
	"errors"

	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves a node identifier (URL or prefixed search) into tracks.
	LoadTracks(ctx context.Context, query string) (domain.TrackList, error)
}

// ErrLyricsNotFound is returned by LyricsProvider when nothing matches.
var ErrLyricsNotFound = errors.New("lyrics not found")

// Lyrics holds the lyrics of a song.
type Lyrics struct {
	TrackName    string
	ArtistName   string
	Lines        []string
	Instrumental bool
}

// LyricsProvider defines the interface for looking up song lyrics.
type LyricsProvider interface {
	// Search returns the best match for the query, or ErrLyricsNotFound.
	Search(ctx context.Context, query string) (*Lyrics, error)
}
