package ports

import (
	"context"

	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// EventPublisher defines the interface for publishing events asynchronously.
// Publishing never blocks; events are dropped when the buffer is full.
type EventPublisher interface {
	PublishTrackEnqueued(event domain.TrackEnqueuedEvent)
	PublishTrackStarted(event domain.TrackStartedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishQueueEmpty(event domain.QueueEmptyEvent)
	PublishPlayerError(event domain.PlayerErrorEvent)
	PublishSessionDestroyed(event domain.SessionDestroyedEvent)
}

// EventSubscriber defines the interface for subscribing to events.
// Handlers run on the bus's dispatcher goroutines.
type EventSubscriber interface {
	OnTrackEnqueued(handler func(context.Context, domain.TrackEnqueuedEvent))
	OnTrackStarted(handler func(context.Context, domain.TrackStartedEvent))
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnQueueEmpty(handler func(context.Context, domain.QueueEmptyEvent))
	OnPlayerError(handler func(context.Context, domain.PlayerErrorEvent))
	OnSessionDestroyed(handler func(context.Context, domain.SessionDestroyedEvent))
}
