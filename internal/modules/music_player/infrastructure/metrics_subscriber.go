package infrastructure

import (
	"context"

	"github.com/sglre6355/cadence/internal/metrics"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// SubscribeMetrics records playback events in the Prometheus collectors.
func SubscribeMetrics(bus ports.EventSubscriber) {
	bus.OnTrackStarted(func(context.Context, domain.TrackStartedEvent) {
		metrics.TracksStartedTotal.Inc()
	})
	bus.OnTrackEnqueued(func(_ context.Context, event domain.TrackEnqueuedEvent) {
		if event.Autoplay {
			metrics.AutoplayPicksTotal.Add(float64(len(event.Tracks)))
		}
	})
	bus.OnPlayerError(func(_ context.Context, event domain.PlayerErrorEvent) {
		metrics.PlayerErrorsTotal.WithLabelValues(event.Kind.String()).Inc()
	})
}
