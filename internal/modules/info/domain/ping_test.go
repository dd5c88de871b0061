package domain

import (
	"testing"
	"time"
)

func TestNewPingResult(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result := NewPingResult(40*time.Millisecond, created, created.Add(120*time.Millisecond))

	if result.RoundTrip != 120*time.Millisecond {
		t.Errorf("expected round trip 120ms, got %v", result.RoundTrip)
	}

	expected := "Pong! Gateway 40ms, round trip 120ms."
	if result.Message() != expected {
		t.Errorf("expected message %q, got %q", expected, result.Message())
	}
}

func TestNewPingResult_ClockSkew(t *testing.T) {
	created := time.Now()
	result := NewPingResult(0, created, created.Add(-time.Second))

	if result.RoundTrip != 0 {
		t.Errorf("expected a negative round trip to clamp to 0, got %v", result.RoundTrip)
	}
}
