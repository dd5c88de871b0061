package application

import (
	"runtime"
	"time"

	"github.com/sglre6355/cadence/internal/modules/info/domain"
)

// StatsSource reports counters owned by other parts of the bot.
type StatsSource struct {
	Guilds   func() int
	Sessions func() int
}

// StatsInteractor handles the stats use case.
type StatsInteractor struct {
	version string
	started time.Time
	source  StatsSource
	now     func() time.Time
}

// NewStatsInteractor creates a new StatsInteractor; uptime counts from now.
func NewStatsInteractor(version string, source StatsSource) *StatsInteractor {
	return &StatsInteractor{
		version: version,
		started: time.Now(),
		source:  source,
		now:     time.Now,
	}
}

// Execute collects a stats snapshot.
func (s *StatsInteractor) Execute() *domain.Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := &domain.Stats{
		Version:    s.version,
		GoVersion:  runtime.Version(),
		Uptime:     s.now().Sub(s.started),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
	}
	if s.source.Guilds != nil {
		stats.Guilds = s.source.Guilds()
	}
	if s.source.Sessions != nil {
		stats.Sessions = s.source.Sessions()
	}
	return stats
}
