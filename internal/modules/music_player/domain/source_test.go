package domain

import "testing"

func TestParseTrackSource(t *testing.T) {
	tests := map[string]TrackSource{
		"youtube":  TrackSourceYouTube,
		"bandcamp": TrackSourceBandcamp,
		"http":     TrackSourceHTTP,
		"local":    TrackSourceOther,
		"":         TrackSourceOther,
	}

	for name, expected := range tests {
		if got := ParseTrackSource(name); got != expected {
			t.Errorf("ParseTrackSource(%q) = %q, expected %q", name, got, expected)
		}
	}
}

func TestTrackSource_Style(t *testing.T) {
	if TrackSourceSpotify.Color() != 0x1DB954 || TrackSourceSpotify.Label() != "Spotify" {
		t.Errorf("unexpected Spotify style %x / %q", TrackSourceSpotify.Color(), TrackSourceSpotify.Label())
	}
	if TrackSourceOther.Color() != 0x5865F2 || TrackSourceOther.Label() != "Unknown source" {
		t.Errorf("unexpected fallback style %x / %q", TrackSourceOther.Color(), TrackSourceOther.Label())
	}
}
