package domain

import "time"

// PingResult holds the latencies reported by /ping.
type PingResult struct {
	Gateway   time.Duration
	RoundTrip time.Duration
}

// NewPingResult measures the round trip from the time the interaction was
// created to now.
func NewPingResult(gateway time.Duration, created, now time.Time) *PingResult {
	roundTrip := now.Sub(created)
	if roundTrip < 0 {
		roundTrip = 0
	}
	return &PingResult{
		Gateway:   gateway,
		RoundTrip: roundTrip,
	}
}

// Message renders the result for a reply.
func (p *PingResult) Message() string {
	return "Pong! Gateway " + p.Gateway.Round(time.Millisecond).String() +
		", round trip " + p.RoundTrip.Round(time.Millisecond).String() + "."
}
