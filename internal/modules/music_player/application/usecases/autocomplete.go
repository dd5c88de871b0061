package usecases

import (
	"context"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// MaxChoices is the most autocomplete choices Discord accepts.
const MaxChoices = 25

// QueueChoice is an autocomplete suggestion for a queue position.
type QueueChoice struct {
	Position int // 1-indexed
	Track    *domain.Track
}

// QueryChoice is an autocomplete suggestion for a play query.
type QueryChoice struct {
	Label string
	Value string
}

// AutocompleteService produces autocomplete suggestions.
type AutocompleteService struct {
	repo   domain.SessionRepository
	loader *TrackLoaderService
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(repo domain.SessionRepository, loader *TrackLoaderService) *AutocompleteService {
	return &AutocompleteService{
		repo:   repo,
		loader: loader,
	}
}

// QueuePositions suggests upcoming queue positions whose title matches filter.
func (s *AutocompleteService) QueuePositions(
	ctx context.Context,
	guildID snowflake.ID,
	filter string,
) []QueueChoice {
	session, err := acquire(ctx, s.repo, guildID)
	if err != nil {
		return nil
	}
	upcoming := session.Queue.Upcoming()
	session.Unlock()

	filter = strings.ToLower(strings.TrimSpace(filter))
	choices := make([]QueueChoice, 0, min(len(upcoming), MaxChoices))
	for i, track := range upcoming {
		if len(choices) == MaxChoices {
			break
		}
		if filter != "" && !strings.Contains(strings.ToLower(track.Title), filter) {
			continue
		}
		choices = append(choices, QueueChoice{Position: i + 1, Track: track})
	}
	return choices
}

// PlayQueries suggests tracks for a partial play query. URLs are offered
// as-is; playlists get one choice that loads the whole list.
func (s *AutocompleteService) PlayQueries(ctx context.Context, input string) []QueryChoice {
	query := domain.NewSearchQuery(input)
	if !query.IsValid() {
		return nil
	}

	list, err := s.loader.resolve(ctx, query)
	if err != nil {
		return nil
	}

	if list.Type == domain.TrackListTypePlaylist {
		return []QueryChoice{{Label: "Playlist: " + list.Name, Value: input}}
	}

	choices := make([]QueryChoice, 0, min(len(list.Tracks), MaxChoices))
	for _, track := range list.Tracks[:min(len(list.Tracks), MaxChoices)] {
		if track.URI == "" {
			continue
		}
		choices = append(choices, QueryChoice{
			Label: track.Title + " - " + track.Artist,
			Value: track.URI,
		})
	}
	return choices
}
