package usecases

import (
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// Re-export domain and port types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

type (
	Track          = domain.Track
	TrackID        = domain.TrackID
	TrackSource    = domain.TrackSource
	LoopMode       = domain.LoopMode
	FilterName     = domain.FilterName
	Timescale      = domain.Timescale
	NowPlayingInfo = ports.NowPlayingInfo
	Lyrics         = ports.Lyrics
	Scheduler      = ports.Scheduler
)

// Loop modes.
const (
	LoopModeNone  = domain.LoopModeNone
	LoopModeTrack = domain.LoopModeTrack
	LoopModeQueue = domain.LoopModeQueue
)

// Filter presets.
const (
	FilterBassBoost = domain.FilterBassBoost
	Filter8D        = domain.Filter8D
	FilterKaraoke   = domain.FilterKaraoke
	FilterNightcore = domain.FilterNightcore
	FilterVaporwave = domain.FilterVaporwave
	FilterSlowmode  = domain.FilterSlowmode
	FilterLowPass   = domain.FilterLowPass
	FilterTimescale = domain.FilterTimescale
)

// Volume and timescale bounds.
const (
	MinVolume    = domain.MinVolume
	MaxVolume    = domain.MaxVolume
	MinTimescale = domain.MinTimescale
	MaxTimescale = domain.MaxTimescale
)

// Errors surfaced from lower layers.
var (
	ErrInvalidTimescale = domain.ErrInvalidTimescale
	ErrLyricsNotFound   = ports.ErrLyricsNotFound
)
