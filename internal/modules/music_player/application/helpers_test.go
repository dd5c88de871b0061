package application

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// fakeSubscriber records handlers so tests can deliver events synchronously.
type fakeSubscriber struct {
	trackEnqueued    []func(context.Context, domain.TrackEnqueuedEvent)
	trackStarted     []func(context.Context, domain.TrackStartedEvent)
	trackEnded       []func(context.Context, domain.TrackEndedEvent)
	queueEmpty       []func(context.Context, domain.QueueEmptyEvent)
	playerError      []func(context.Context, domain.PlayerErrorEvent)
	sessionDestroyed []func(context.Context, domain.SessionDestroyedEvent)
}

func (s *fakeSubscriber) OnTrackEnqueued(h func(context.Context, domain.TrackEnqueuedEvent)) {
	s.trackEnqueued = append(s.trackEnqueued, h)
}

func (s *fakeSubscriber) OnTrackStarted(h func(context.Context, domain.TrackStartedEvent)) {
	s.trackStarted = append(s.trackStarted, h)
}

func (s *fakeSubscriber) OnTrackEnded(h func(context.Context, domain.TrackEndedEvent)) {
	s.trackEnded = append(s.trackEnded, h)
}

func (s *fakeSubscriber) OnQueueEmpty(h func(context.Context, domain.QueueEmptyEvent)) {
	s.queueEmpty = append(s.queueEmpty, h)
}

func (s *fakeSubscriber) OnPlayerError(h func(context.Context, domain.PlayerErrorEvent)) {
	s.playerError = append(s.playerError, h)
}

func (s *fakeSubscriber) OnSessionDestroyed(h func(context.Context, domain.SessionDestroyedEvent)) {
	s.sessionDestroyed = append(s.sessionDestroyed, h)
}

func deliver[E any](handlers []func(context.Context, E), event E) {
	for _, h := range handlers {
		h(context.Background(), event)
	}
}

// fakeScheduler keeps scheduled tasks until the test runs them.
type fakeScheduler struct {
	mu     sync.Mutex
	tasks  map[string]func(context.Context)
	delays map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		tasks:  make(map[string]func(context.Context)),
		delays: make(map[string]time.Duration),
	}
}

func (s *fakeScheduler) Schedule(key string, delay time.Duration, task func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[key] = task
	s.delays[key] = delay
}

func (s *fakeScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	delete(s.tasks, key)
	delete(s.delays, key)
	return ok
}

// fire runs the task under key, as if its delay elapsed.
func (s *fakeScheduler) fire(key string) bool {
	s.mu.Lock()
	task, ok := s.tasks[key]
	delete(s.tasks, key)
	delete(s.delays, key)
	s.mu.Unlock()

	if ok {
		task(context.Background())
	}
	return ok
}

func (s *fakeScheduler) delay(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delays[key]
}

type fakeNodes struct {
	connected []bool // answers in order; the last one repeats
}

func (n *fakeNodes) AnyNodeConnected() bool {
	if len(n.connected) == 0 {
		return false
	}
	answer := n.connected[0]
	if len(n.connected) > 1 {
		n.connected = n.connected[1:]
	}
	return answer
}

func testTrack(id string) *domain.Track {
	return &domain.Track{
		ID:       domain.TrackID(id),
		Title:    "Track " + id,
		Artist:   "Artist",
		URI:      "https://example.com/" + id,
		Duration: 3 * time.Minute,
	}
}

var testGuild = snowflake.ID(1)
