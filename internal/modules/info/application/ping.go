package application

import (
	"time"

	"github.com/sglre6355/cadence/internal/modules/info/domain"
)

// PingInteractor handles the ping use case.
type PingInteractor struct {
	now func() time.Time
}

// NewPingInteractor creates a new PingInteractor.
func NewPingInteractor() *PingInteractor {
	return &PingInteractor{now: time.Now}
}

// Execute measures latency for an interaction created at the given time.
func (p *PingInteractor) Execute(gateway time.Duration, created time.Time) *domain.PingResult {
	return domain.NewPingResult(gateway, created, p.now())
}
