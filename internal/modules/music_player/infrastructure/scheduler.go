package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
)

// DefaultTaskTimeout bounds how long a scheduled task may run.
const DefaultTaskTimeout = 30 * time.Second

var _ ports.Scheduler = (*TaskScheduler)(nil)

type scheduledTask struct {
	timer *time.Timer
	id    uint64
}

// TaskScheduler runs delayed tasks keyed by name on timers.
// Rescheduling a key replaces the pending task.
type TaskScheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	tasks  map[string]scheduledTask
	nextID uint64
	wg     sync.WaitGroup
}

// NewTaskScheduler creates a new TaskScheduler.
func NewTaskScheduler() *TaskScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskScheduler{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]scheduledTask),
	}
}

// Schedule runs task after delay unless the key is cancelled or rescheduled first.
func (s *TaskScheduler) Schedule(key string, delay time.Duration, task func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if pending, ok := s.tasks[key]; ok {
		pending.timer.Stop()
	}

	s.nextID++
	id := s.nextID
	s.tasks[key] = scheduledTask{
		id: id,
		timer: time.AfterFunc(delay, func() {
			s.fire(key, id, task)
		}),
	}

	slog.Debug("task scheduled", "key", key, "delay", delay)
}

func (s *TaskScheduler) fire(key string, id uint64, task func(ctx context.Context)) {
	s.mu.Lock()
	current, ok := s.tasks[key]
	if !ok || current.id != id {
		// replaced or cancelled after the timer had already fired
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panicked", "key", key, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, DefaultTaskTimeout)
	defer cancel()

	slog.Debug("running scheduled task", "key", key)
	task(ctx)
}

// Cancel cancels a pending task. Returns true if one was pending.
func (s *TaskScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.tasks[key]
	if !ok {
		return false
	}
	pending.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending returns the number of pending tasks.
func (s *TaskScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels all pending tasks and waits for running ones.
func (s *TaskScheduler) Close() {
	s.mu.Lock()
	s.cancel()
	for key, pending := range s.tasks {
		pending.timer.Stop()
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
