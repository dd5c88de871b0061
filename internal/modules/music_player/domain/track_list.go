package domain

// TrackListType represents the type of track list.
type TrackListType int

const (
	TrackListTypeEmpty TrackListType = iota
	TrackListTypeTrack
	TrackListTypePlaylist
	TrackListTypeSearch
)

// TrackList represents a collection of tracks returned by a track lookup.
type TrackList struct {
	Type   TrackListType
	Name   string // playlist name, empty for other types
	Tracks []Track
}

// IsEmpty returns true if the list has no tracks.
func (l *TrackList) IsEmpty() bool {
	return len(l.Tracks) == 0
}
