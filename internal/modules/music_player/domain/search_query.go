package domain

import (
	"strings"
)

// SearchSource is a Lavalink search prefix.
type SearchSource string

const (
	SourceYouTube      SearchSource = "ytsearch"
	SourceYouTubeMusic SearchSource = "ytmsearch"
	SourceSoundCloud   SearchSource = "scsearch"
	// SourceDirect marks a URL, which Lavalink loads without a prefix.
	SourceDirect SearchSource = ""
)

// sourcePrefixes maps what a user may type before a query to its source.
// Both the short form ("sc:") and the Lavalink form ("scsearch:") work.
var sourcePrefixes = map[string]SearchSource{
	"yt":        SourceYouTube,
	"ytsearch":  SourceYouTube,
	"ytm":       SourceYouTubeMusic,
	"ytmsearch": SourceYouTubeMusic,
	"sc":        SourceSoundCloud,
	"scsearch":  SourceSoundCloud,
}

// SearchQuery is a user query ready to send to Lavalink.
type SearchQuery struct {
	Query  string
	Source SearchSource
	IsURL  bool
}

// NewSearchQuery parses user input. URLs load directly, "www." URLs get an
// https scheme, a known source prefix selects that source, and anything
// else is a YouTube search.
func NewSearchQuery(input string) *SearchQuery {
	return NewSearchQueryWithSource(input, SourceYouTube)
}

// NewSearchQueryWithSource is NewSearchQuery with a different default source.
func NewSearchQueryWithSource(input string, fallback SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	switch {
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		return &SearchQuery{Query: input, Source: SourceDirect, IsURL: true}
	case strings.HasPrefix(input, "www."):
		return &SearchQuery{Query: "https://" + input, Source: SourceDirect, IsURL: true}
	}

	if prefix, rest, ok := strings.Cut(input, ":"); ok {
		if source, known := sourcePrefixes[strings.ToLower(prefix)]; known {
			return &SearchQuery{Query: strings.TrimSpace(rest), Source: source}
		}
	}

	return &SearchQuery{Query: input, Source: fallback}
}

// LavalinkQuery returns the identifier to load from Lavalink.
func (q *SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid reports whether there is anything to search for.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// NewRelatedQuery builds a query for tracks related to the reference track.
// YouTube tracks resolve to the video's radio mix playlist; anything else
// falls back to a text search on title and artist.
func NewRelatedQuery(reference *Track) *SearchQuery {
	if reference.Source() == TrackSourceYouTube && reference.ID != "" {
		return &SearchQuery{
			Query:  "https://www.youtube.com/watch?v=" + string(reference.ID) + "&list=RD" + string(reference.ID),
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	return &SearchQuery{
		Query:  strings.TrimSpace(reference.Title + " " + reference.Artist),
		Source: SourceYouTube,
	}
}
