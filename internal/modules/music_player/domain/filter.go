package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTimescale is returned when a timescale value is out of range.
var ErrInvalidTimescale = errors.New("invalid timescale value")

// FilterName identifies an audio filter preset.
type FilterName string

const (
	FilterBassBoost FilterName = "bassboost"
	Filter8D        FilterName = "8d"
	FilterKaraoke   FilterName = "karaoke"
	FilterNightcore FilterName = "nightcore"
	FilterVaporwave FilterName = "vaporwave"
	FilterSlowmode  FilterName = "slowmode"
	FilterLowPass   FilterName = "lowpass"
	FilterTimescale FilterName = "timescale"
)

// Timescale bounds accepted for user-tuned values.
const (
	MinTimescale = 0.5
	MaxTimescale = 2.0
)

// EqualizerBand sets the gain of one of the node's 15 equalizer bands.
type EqualizerBand struct {
	Band int     `json:"band"`
	Gain float64 `json:"gain"`
}

type Karaoke struct {
	Level       float64 `json:"level"`
	MonoLevel   float64 `json:"monoLevel"`
	FilterBand  float64 `json:"filterBand"`
	FilterWidth float64 `json:"filterWidth"`
}

type Timescale struct {
	Speed float64 `json:"speed"`
	Pitch float64 `json:"pitch"`
	Rate  float64 `json:"rate"`
}

type Tremolo struct {
	Frequency float64 `json:"frequency"`
	Depth     float64 `json:"depth"`
}

type Rotation struct {
	RotationHz float64 `json:"rotationHz"`
}

type LowPass struct {
	Smoothing float64 `json:"smoothing"`
}

// FilterSettings is the filter payload sent to the audio node.
// JSON field names follow the Lavalink v4 filters object.
type FilterSettings struct {
	Equalizer []EqualizerBand `json:"equalizer,omitempty"`
	Karaoke   *Karaoke        `json:"karaoke,omitempty"`
	Timescale *Timescale      `json:"timescale,omitempty"`
	Tremolo   *Tremolo        `json:"tremolo,omitempty"`
	Rotation  *Rotation       `json:"rotation,omitempty"`
	LowPass   *LowPass        `json:"lowPass,omitempty"`
}

// IsZero returns true if no filter is set.
func (f FilterSettings) IsZero() bool {
	return len(f.Equalizer) == 0 && f.Karaoke == nil && f.Timescale == nil &&
		f.Tremolo == nil && f.Rotation == nil && f.LowPass == nil
}

func equalizer(gains ...float64) []EqualizerBand {
	bands := make([]EqualizerBand, len(gains))
	for i, gain := range gains {
		bands[i] = EqualizerBand{Band: i, Gain: gain}
	}
	return bands
}

var filterPresets = map[FilterName]FilterSettings{
	FilterBassBoost: {
		Equalizer: equalizer(
			0.20, 0.15, 0.10, 0.05, 0.0, -0.05, -0.10,
			-0.10, -0.10, -0.10, -0.10, -0.10, -0.10, -0.10,
		),
	},
	Filter8D: {
		Rotation: &Rotation{RotationHz: 0.2},
	},
	FilterKaraoke: {
		Karaoke: &Karaoke{Level: 1.0, MonoLevel: 1.0, FilterBand: 220.0, FilterWidth: 100.0},
	},
	FilterNightcore: {
		Timescale: &Timescale{Speed: 1.0, Pitch: 1.0, Rate: 1.3},
		Tremolo:   &Tremolo{Frequency: 4.0, Depth: 0.3},
	},
	FilterVaporwave: {
		Timescale: &Timescale{Speed: 1.0, Pitch: 0.5, Rate: 1.0},
		Equalizer: equalizer(0.3, 0.3),
	},
	FilterSlowmode: {
		Timescale: &Timescale{Speed: 1.0, Pitch: 1.0, Rate: 0.7},
	},
	FilterLowPass: {
		LowPass: &LowPass{Smoothing: 20.0},
	},
}

// FilterPreset returns the settings of a named preset.
// Timescale is not a preset; use NewTimescaleSettings.
func FilterPreset(name FilterName) (FilterSettings, bool) {
	settings, ok := filterPresets[name]
	return settings, ok
}

// FilterPresetNames returns the names of all presets.
func FilterPresetNames() []FilterName {
	return []FilterName{
		FilterBassBoost, Filter8D, FilterKaraoke, FilterNightcore,
		FilterVaporwave, FilterSlowmode, FilterLowPass,
	}
}

// NewTimescaleSettings builds a timescale filter from user values.
// Zero values default to 1.0; others must lie within [MinTimescale, MaxTimescale].
func NewTimescaleSettings(speed, pitch, rate float64) (FilterSettings, error) {
	ts := Timescale{Speed: 1.0, Pitch: 1.0, Rate: 1.0}
	for _, v := range []struct {
		name  string
		value float64
		dst   *float64
	}{
		{"speed", speed, &ts.Speed},
		{"pitch", pitch, &ts.Pitch},
		{"rate", rate, &ts.Rate},
	} {
		if v.value == 0 {
			continue
		}
		if v.value < MinTimescale || v.value > MaxTimescale {
			return FilterSettings{}, fmt.Errorf(
				"%s must be between %.1f and %.1f: %w", v.name, MinTimescale, MaxTimescale, ErrInvalidTimescale,
			)
		}
		*v.dst = v.value
	}

	return FilterSettings{Timescale: &ts}, nil
}
