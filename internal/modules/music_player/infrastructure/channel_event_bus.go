package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// HandlerTimeout bounds one handler call. Topics dispatch serially, so a
// handler stuck on the node would otherwise stall the topic for every guild.
const HandlerTimeout = 30 * time.Second

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// topic delivers one event type to its handlers in publish order.
type topic[E any] struct {
	name     string
	events   chan E
	handlers []func(context.Context, E)
	mu       sync.RWMutex
}

func newTopic[E any](name string, bufferSize int) *topic[E] {
	return &topic[E]{
		name:   name,
		events: make(chan E, bufferSize),
	}
}

func (t *topic[E]) subscribe(handler func(context.Context, E)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// publish never blocks; the event is dropped when the buffer is full.
func (t *topic[E]) publish(event E) {
	select {
	case t.events <- event:
		slog.Debug("published event", "type", t.name)
	default:
		slog.Warn("event buffer full, dropping event", "type", t.name)
	}
}

func (t *topic[E]) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.events:
			if !ok {
				return
			}
			t.mu.RLock()
			handlers := t.handlers
			t.mu.RUnlock()
			for _, handler := range handlers {
				t.run(ctx, handler, event)
			}
		}
	}
}

func (t *topic[E]) run(ctx context.Context, handler func(context.Context, E), event E) {
	ctx, cancel := context.WithTimeout(ctx, HandlerTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "type", t.name, "panic", r)
		}
	}()
	handler(ctx, event)
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
type ChannelEventBus struct {
	trackEnqueued    *topic[domain.TrackEnqueuedEvent]
	trackStarted     *topic[domain.TrackStartedEvent]
	trackEnded       *topic[domain.TrackEndedEvent]
	queueEmpty       *topic[domain.QueueEmptyEvent]
	playerError      *topic[domain.PlayerErrorEvent]
	sessionDestroyed *topic[domain.SessionDestroyedEvent]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackEnqueued:    newTopic[domain.TrackEnqueuedEvent]("TrackEnqueued", bufferSize),
		trackStarted:     newTopic[domain.TrackStartedEvent]("TrackStarted", bufferSize),
		trackEnded:       newTopic[domain.TrackEndedEvent]("TrackEnded", bufferSize),
		queueEmpty:       newTopic[domain.QueueEmptyEvent]("QueueEmpty", bufferSize),
		playerError:      newTopic[domain.PlayerErrorEvent]("PlayerError", bufferSize),
		sessionDestroyed: newTopic[domain.SessionDestroyedEvent]("SessionDestroyed", bufferSize),
		ctx:              ctx,
		cancel:           cancel,
	}

	bus.start(
		bus.trackEnqueued.dispatch,
		bus.trackStarted.dispatch,
		bus.trackEnded.dispatch,
		bus.queueEmpty.dispatch,
		bus.playerError.dispatch,
		bus.sessionDestroyed.dispatch,
	)

	return bus
}

// start runs one dispatcher goroutine per topic.
func (b *ChannelEventBus) start(dispatchers ...func(context.Context)) {
	b.wg.Add(len(dispatchers))
	for _, dispatch := range dispatchers {
		go func() {
			defer b.wg.Done()
			dispatch(b.ctx)
		}()
	}
}

// publish guards against publishing after Close.
func publish[E any](b *ChannelEventBus, t *topic[E], event E) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", t.name)
		return
	}
	t.publish(event)
}

// --- EventPublisher interface ---

func (b *ChannelEventBus) PublishTrackEnqueued(event domain.TrackEnqueuedEvent) {
	publish(b, b.trackEnqueued, event)
}

func (b *ChannelEventBus) PublishTrackStarted(event domain.TrackStartedEvent) {
	publish(b, b.trackStarted, event)
}

func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	publish(b, b.trackEnded, event)
}

func (b *ChannelEventBus) PublishQueueEmpty(event domain.QueueEmptyEvent) {
	publish(b, b.queueEmpty, event)
}

func (b *ChannelEventBus) PublishPlayerError(event domain.PlayerErrorEvent) {
	publish(b, b.playerError, event)
}

func (b *ChannelEventBus) PublishSessionDestroyed(event domain.SessionDestroyedEvent) {
	publish(b, b.sessionDestroyed, event)
}

// --- EventSubscriber interface ---

func (b *ChannelEventBus) OnTrackEnqueued(handler func(context.Context, domain.TrackEnqueuedEvent)) {
	b.trackEnqueued.subscribe(handler)
}

func (b *ChannelEventBus) OnTrackStarted(handler func(context.Context, domain.TrackStartedEvent)) {
	b.trackStarted.subscribe(handler)
}

func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.trackEnded.subscribe(handler)
}

func (b *ChannelEventBus) OnQueueEmpty(handler func(context.Context, domain.QueueEmptyEvent)) {
	b.queueEmpty.subscribe(handler)
}

func (b *ChannelEventBus) OnPlayerError(handler func(context.Context, domain.PlayerErrorEvent)) {
	b.playerError.subscribe(handler)
}

func (b *ChannelEventBus) OnSessionDestroyed(handler func(context.Context, domain.SessionDestroyedEvent)) {
	b.sessionDestroyed.subscribe(handler)
}

// Close stops the dispatchers. After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
