package domain

import (
	"testing"
)

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SearchQuery
	}{
		{
			name:     "search term",
			input:    "never gonna give you up",
			expected: SearchQuery{Query: "never gonna give you up", Source: SourceYouTube},
		},
		{
			name:     "surrounding whitespace",
			input:    "  hello world  ",
			expected: SearchQuery{Query: "hello world", Source: SourceYouTube},
		},
		{
			name:     "https URL",
			input:    "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expected: SearchQuery{Query: "https://youtube.com/watch?v=dQw4w9WgXcQ", IsURL: true},
		},
		{
			name:     "http URL",
			input:    "http://example.com/audio.mp3",
			expected: SearchQuery{Query: "http://example.com/audio.mp3", IsURL: true},
		},
		{
			name:     "www URL gets a scheme",
			input:    "www.youtube.com/watch?v=abc",
			expected: SearchQuery{Query: "https://www.youtube.com/watch?v=abc", IsURL: true},
		},
		{
			name:     "short source prefix",
			input:    "sc: lofi beats",
			expected: SearchQuery{Query: "lofi beats", Source: SourceSoundCloud},
		},
		{
			name:     "lavalink source prefix",
			input:    "ytmsearch:daft punk",
			expected: SearchQuery{Query: "daft punk", Source: SourceYouTubeMusic},
		},
		{
			name:     "prefix is case insensitive",
			input:    "YT:song",
			expected: SearchQuery{Query: "song", Source: SourceYouTube},
		},
		{
			name:     "unknown prefix stays in the query",
			input:    "re: zero opening",
			expected: SearchQuery{Query: "re: zero opening", Source: SourceYouTube},
		},
		{
			name:     "empty string",
			input:    "",
			expected: SearchQuery{Source: SourceYouTube},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSearchQuery(tt.input); *got != tt.expected {
				t.Errorf("NewSearchQuery(%q) = %+v, expected %+v", tt.input, *got, tt.expected)
			}
		})
	}
}

func TestNewSearchQueryWithSource(t *testing.T) {
	if got := NewSearchQueryWithSource("song", SourceSoundCloud); got.Source != SourceSoundCloud {
		t.Errorf("expected the fallback source, got %q", got.Source)
	}
	if got := NewSearchQueryWithSource("yt:song", SourceSoundCloud); got.Source != SourceYouTube {
		t.Errorf("expected an explicit prefix to win, got %q", got.Source)
	}
	if got := NewSearchQueryWithSource("https://a.b/c", SourceSoundCloud); !got.IsURL {
		t.Error("expected URLs to load directly")
	}
}

func TestSearchQuery_LavalinkQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "ytsearch:hello"},
		{"sc:hello", "scsearch:hello"},
		{"https://example.com/a.mp3", "https://example.com/a.mp3"},
	}

	for _, tt := range tests {
		if got := NewSearchQuery(tt.input).LavalinkQuery(); got != tt.expected {
			t.Errorf("LavalinkQuery(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSearchQuery_IsValid(t *testing.T) {
	for input, expected := range map[string]bool{"song": true, "": false, "   ": false, "sc:": false} {
		if got := NewSearchQuery(input).IsValid(); got != expected {
			t.Errorf("IsValid(%q) = %v, expected %v", input, got, expected)
		}
	}
}

func TestNewRelatedQuery(t *testing.T) {
	tests := []struct {
		name      string
		reference *Track
		expected  string
	}{
		{
			name: "youtube track uses radio mix",
			reference: &Track{
				ID:         "dQw4w9WgXcQ",
				Title:      "Never Gonna Give You Up",
				Artist:     "Rick Astley",
				SourceName: "youtube",
			},
			expected: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ",
		},
		{
			name: "other source searches title and artist",
			reference: &Track{
				ID:         "12345",
				Title:      "Song",
				Artist:     "Band",
				SourceName: "soundcloud",
			},
			expected: "ytsearch:Song Band",
		},
		{
			name: "title with a colon is not a prefix",
			reference: &Track{
				Title:      "sc: live",
				SourceName: "http",
			},
			expected: "ytsearch:sc: live",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRelatedQuery(tt.reference).LavalinkQuery(); got != tt.expected {
				t.Errorf("LavalinkQuery() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
