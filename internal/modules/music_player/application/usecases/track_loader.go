package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// DefaultSearchLimit is the number of results offered by a search.
const DefaultSearchLimit = 10

// Requester identifies who asked for a track.
type Requester struct {
	ID        snowflake.ID
	Name      string
	AvatarURL string
}

// LoadTrackInput contains the input for the LoadTrack use case.
type LoadTrackInput struct {
	Query     string
	Requester Requester
}

// LoadTrackOutput contains the result of the LoadTrack use case.
type LoadTrackOutput struct {
	Tracks       []*domain.Track
	PlaylistName string // set when the query resolved to a playlist
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int
}

// TrackLoaderService handles track loading operations.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(trackResolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
	}
}

// LoadTrack resolves a user query. URLs load as-is (playlists load whole);
// anything else is searched and the first result taken.
func (s *TrackLoaderService) LoadTrack(
	ctx context.Context,
	input LoadTrackInput,
) (*LoadTrackOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrNoResults
	}

	list, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := list.Tracks
	if list.Type != domain.TrackListTypePlaylist {
		candidates = candidates[:1]
	}

	tracks := make([]*domain.Track, 0, len(candidates))
	for i := range candidates {
		tracks = append(tracks, candidates[i].WithRequester(
			input.Requester.ID,
			input.Requester.Name,
			input.Requester.AvatarURL,
		))
	}

	return &LoadTrackOutput{
		Tracks:       tracks,
		PlaylistName: list.Name,
	}, nil
}

// SearchTracks returns up to Limit search results for the query.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) ([]domain.Track, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrNoResults
	}

	list, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return list.Tracks[:min(limit, len(list.Tracks))], nil
}

// Related returns tracks related to the reference, for autoplay.
func (s *TrackLoaderService) Related(ctx context.Context, reference *domain.Track) ([]domain.Track, error) {
	query := domain.NewRelatedQuery(reference)
	list, err := s.resolve(ctx, query)
	if err != nil && query.IsURL {
		// The mix playlist may not resolve; fall back to a title search.
		list, err = s.resolve(ctx, &domain.SearchQuery{
			Query:  strings.TrimSpace(reference.Title + " " + reference.Artist),
			Source: domain.SourceYouTube,
		})
	}
	if err != nil {
		return nil, err
	}
	return list.Tracks, nil
}

func (s *TrackLoaderService) resolve(ctx context.Context, query *domain.SearchQuery) (domain.TrackList, error) {
	list, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return domain.TrackList{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if list.IsEmpty() {
		return domain.TrackList{}, ErrNoResults
	}
	return list, nil
}
