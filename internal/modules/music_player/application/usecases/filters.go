package usecases

import (
	"context"

	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// ApplyFilterInput contains the input for the ApplyFilter use case.
type ApplyFilterInput struct {
	CommandScope
	Name domain.FilterName
}

// TimescaleInput contains the input for the Timescale use case.
// Zero values keep the neutral 1.0.
type TimescaleInput struct {
	CommandScope
	Speed float64
	Pitch float64
	Rate  float64
}

// FilterService applies audio filter presets to the guild's player.
type FilterService struct {
	guard       *VoiceGuard
	audioPlayer ports.AudioPlayer
}

// NewFilterService creates a new FilterService.
func NewFilterService(guard *VoiceGuard, audioPlayer ports.AudioPlayer) *FilterService {
	return &FilterService{
		guard:       guard,
		audioPlayer: audioPlayer,
	}
}

// Apply applies a named preset. Re-applying the active preset is rejected
// without touching the player.
func (f *FilterService) Apply(ctx context.Context, input ApplyFilterInput) error {
	settings, ok := domain.FilterPreset(input.Name)
	if !ok {
		return ErrUnknownFilter
	}

	session, err := f.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if session.GetActiveFilter() == input.Name {
		return ErrFilterAlreadyActive
	}

	if err := f.audioPlayer.SetFilters(ctx, input.GuildID, settings); err != nil {
		return err
	}
	session.SetActiveFilter(input.Name)

	return nil
}

// Timescale applies user-tuned speed, pitch and rate. It may be re-applied freely.
func (f *FilterService) Timescale(ctx context.Context, input TimescaleInput) (*domain.Timescale, error) {
	settings, err := domain.NewTimescaleSettings(input.Speed, input.Pitch, input.Rate)
	if err != nil {
		return nil, err
	}

	session, err := f.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if err := f.audioPlayer.SetFilters(ctx, input.GuildID, settings); err != nil {
		return nil, err
	}
	session.SetActiveFilter(domain.FilterTimescale)

	return settings.Timescale, nil
}

// Clear removes all filters.
func (f *FilterService) Clear(ctx context.Context, scope CommandScope) error {
	session, err := f.guard.Acquire(ctx, scope)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if session.GetActiveFilter() == "" {
		return ErrNoFilterActive
	}

	if err := f.audioPlayer.SetFilters(ctx, scope.GuildID, domain.FilterSettings{}); err != nil {
		return err
	}
	session.SetActiveFilter("")

	return nil
}
