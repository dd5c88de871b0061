package domain

// TrackSource is the platform a track was resolved from, as named by the
// Lavalink source manager.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceBandcamp   TrackSource = "bandcamp"
	TrackSourceHTTP       TrackSource = "http"
	TrackSourceOther      TrackSource = "other"
)

type sourceStyle struct {
	label string
	color int
}

var sourceStyles = map[TrackSource]sourceStyle{
	TrackSourceYouTube:    {"YouTube", 0xFF0000},
	TrackSourceSpotify:    {"Spotify", 0x1DB954},
	TrackSourceSoundCloud: {"SoundCloud", 0xFF5500},
	TrackSourceTwitch:     {"Twitch", 0x9146FF},
	TrackSourceBandcamp:   {"Bandcamp", 0x1DA0C3},
	TrackSourceHTTP:       {"Direct link", 0x5865F2},
}

// ParseTrackSource converts a Lavalink source name to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	if _, ok := sourceStyles[TrackSource(name)]; ok {
		return TrackSource(name)
	}
	return TrackSourceOther
}

// Color returns the brand color used for embeds of tracks from this source.
func (s TrackSource) Color() int {
	if style, ok := sourceStyles[s]; ok {
		return style.color
	}
	return 0x5865F2
}

// Label returns the platform name shown to users.
func (s TrackSource) Label() string {
	if style, ok := sourceStyles[s]; ok {
		return style.label
	}
	return "Unknown source"
}
