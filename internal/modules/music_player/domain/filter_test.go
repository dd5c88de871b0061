package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestFilterPreset_AllNamesResolve(t *testing.T) {
	for _, name := range FilterPresetNames() {
		settings, ok := FilterPreset(name)
		if !ok {
			t.Errorf("expected preset %q to exist", name)
			continue
		}
		if settings.IsZero() {
			t.Errorf("expected preset %q to carry settings", name)
		}
	}

	if _, ok := FilterPreset(FilterTimescale); ok {
		t.Error("expected timescale not to be a preset")
	}
}

func TestFilterPreset_Values(t *testing.T) {
	bass, _ := FilterPreset(FilterBassBoost)
	if len(bass.Equalizer) != 14 {
		t.Errorf("expected 14 bassboost bands, got %d", len(bass.Equalizer))
	}

	nightcore, _ := FilterPreset(FilterNightcore)
	if nightcore.Timescale == nil || nightcore.Timescale.Rate != 1.3 {
		t.Errorf("expected nightcore rate 1.3, got %+v", nightcore.Timescale)
	}
	if nightcore.Tremolo == nil {
		t.Error("expected nightcore tremolo")
	}

	rotation, _ := FilterPreset(Filter8D)
	if rotation.Rotation == nil || rotation.Rotation.RotationHz != 0.2 {
		t.Errorf("expected 8d rotation 0.2Hz, got %+v", rotation.Rotation)
	}

	lowpass, _ := FilterPreset(FilterLowPass)
	if lowpass.LowPass == nil || lowpass.LowPass.Smoothing != 20.0 {
		t.Errorf("expected lowpass smoothing 20, got %+v", lowpass.LowPass)
	}
}

func TestFilterSettings_JSONUsesNodeFieldNames(t *testing.T) {
	settings, _ := FilterPreset(FilterKaraoke)

	data, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := string(data)
	for _, field := range []string{`"karaoke"`, `"monoLevel"`, `"filterBand"`, `"filterWidth"`} {
		if !strings.Contains(got, field) {
			t.Errorf("expected %s in %s", field, got)
		}
	}
	if strings.Contains(got, "equalizer") {
		t.Errorf("expected unset filters to be omitted, got %s", got)
	}
}

func TestNewTimescaleSettings(t *testing.T) {
	tests := []struct {
		name               string
		speed, pitch, rate float64
		want               Timescale
		wantErr            bool
	}{
		{
			name: "defaults",
			want: Timescale{Speed: 1.0, Pitch: 1.0, Rate: 1.0},
		},
		{
			name:  "custom values",
			speed: 1.5, pitch: 0.8, rate: 2.0,
			want: Timescale{Speed: 1.5, Pitch: 0.8, Rate: 2.0},
		},
		{
			name:    "too low",
			speed:   0.4,
			wantErr: true,
		},
		{
			name:    "too high",
			rate:    2.1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := NewTimescaleSettings(tt.speed, tt.pitch, tt.rate)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimescale) {
					t.Fatalf("expected ErrInvalidTimescale, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *settings.Timescale != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, *settings.Timescale)
			}
		})
	}
}
