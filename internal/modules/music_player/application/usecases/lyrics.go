package usecases

import (
	"context"
	"regexp"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// LyricsInput contains the input for the Lyrics use case.
type LyricsInput struct {
	GuildID snowflake.ID
	Query   string // optional; defaults to the current track
}

// titleNoise matches decorations like "(Official Video)" or "[Lyrics]".
var titleNoise = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*(official|video|audio|lyrics?|mv|hd|4k|remaster(ed)?)[^\)\]]*[\)\]]`)

// LyricsService looks up lyrics for a query or the current track.
type LyricsService struct {
	repo     domain.SessionRepository
	provider ports.LyricsProvider
}

// NewLyricsService creates a new LyricsService.
func NewLyricsService(repo domain.SessionRepository, provider ports.LyricsProvider) *LyricsService {
	return &LyricsService{
		repo:     repo,
		provider: provider,
	}
}

// Find returns lyrics for the query, or for the current track when the query is empty.
func (l *LyricsService) Find(ctx context.Context, input LyricsInput) (*ports.Lyrics, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		current, err := l.currentTrack(ctx, input.GuildID)
		if err != nil {
			return nil, err
		}
		query = LyricsQuery(current)
	}

	return l.provider.Search(ctx, query)
}

func (l *LyricsService) currentTrack(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session, err := acquire(ctx, l.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	current := session.CurrentTrack()
	if current == nil {
		return nil, ErrNotPlaying
	}
	return current, nil
}

// LyricsQuery builds a lyrics search query from a track, dropping
// common video title decorations.
func LyricsQuery(track *domain.Track) string {
	title := strings.TrimSpace(titleNoise.ReplaceAllString(track.Title, ""))
	artist := strings.TrimSuffix(track.Artist, " - Topic")
	if artist == "" || strings.Contains(strings.ToLower(title), strings.ToLower(artist)) {
		return title
	}
	return title + " " + artist
}
