// Package metrics holds the bot's Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cadence"

// Command outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

var (
	// CommandsTotal counts handled interactions by command and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Handled interactions by command and outcome.",
	}, []string{"command", "outcome"})

	// PlayerErrorsTotal counts player failures by kind.
	PlayerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "player_errors_total",
		Help:      "Player failures reported by the audio node, by kind.",
	}, []string{"kind"})

	// AutoplayPicksTotal counts tracks enqueued by autoplay.
	AutoplayPicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autoplay_picks_total",
		Help:      "Tracks enqueued by autoplay.",
	})

	// TracksStartedTotal counts tracks that started playing.
	TracksStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracks_started_total",
		Help:      "Tracks that started playing.",
	})

	// RateLimitedTotal counts interactions rejected by the per-user limiter.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Interactions rejected by the per-user rate limiter.",
	})

	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Guild sessions currently connected to voice.",
	}, func() float64 { return float64(ActiveSessions()) })
)

var sessionSource atomic.Pointer[func() int]

// SetSessionSource sets the function reporting the number of active sessions.
func SetSessionSource(source func() int) {
	sessionSource.Store(&source)
}

// ActiveSessions returns the number of active sessions, or 0 if no source is set.
func ActiveSessions() int {
	source := sessionSource.Load()
	if source == nil {
		return 0
	}
	return (*source)()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shut down metrics server", "error", err)
		}
	}()

	slog.Info("serving metrics", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
