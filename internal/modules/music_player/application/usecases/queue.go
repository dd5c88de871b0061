package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueAddInput contains the input for the QueueAdd use case.
type QueueAddInput struct {
	CommandScope
	Tracks []*domain.Track
}

// QueueAddOutput contains the result of the QueueAdd use case.
type QueueAddOutput struct {
	Position int  // 1-indexed queue position of the first added track, 0 if it plays next
	WasIdle  bool // true if playback will start with the added tracks
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack  *domain.Track
	Tracks        []*domain.Track
	FirstPosition int // 1-indexed queue position of Tracks[0]
	TotalTracks   int
	TotalDuration time.Duration
	CurrentPage   int
	TotalPages    int
	LoopMode      domain.LoopMode
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	CommandScope
	Position int // 1-indexed queue position
}

// QueueMoveInput contains the input for the QueueMove use case.
type QueueMoveInput struct {
	CommandScope
	From int // 1-indexed queue position
	To   int // 1-indexed queue position
}

// QueueService handles queue operations.
type QueueService struct {
	repo      domain.SessionRepository
	guard     *VoiceGuard
	sessions  *SessionManager
	publisher ports.EventPublisher
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.SessionRepository,
	guard *VoiceGuard,
	sessions *SessionManager,
	publisher ports.EventPublisher,
) *QueueService {
	return &QueueService{
		repo:      repo,
		guard:     guard,
		sessions:  sessions,
		publisher: publisher,
	}
}

// Add appends tracks to the queue and publishes an event to trigger playback if idle.
func (q *QueueService) Add(ctx context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrNoResults
	}

	session, err := q.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	return q.addLocked(session, input.Tracks, false), nil
}

// AddAsBot appends tracks without membership checks, for tracks autoplay picks.
func (q *QueueService) AddAsBot(
	ctx context.Context,
	guildID snowflake.ID,
	tracks ...*domain.Track,
) (*QueueAddOutput, error) {
	session, err := acquire(ctx, q.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	return q.addLocked(session, tracks, true), nil
}

func (q *QueueService) addLocked(
	session *domain.GuildSession,
	tracks []*domain.Track,
	autoplay bool,
) *QueueAddOutput {
	// not playing is enough: a failed start can leave upcoming tracks behind
	wasIdle := !session.IsPlaying()
	position := session.Queue.Len() + 1
	if session.IsIdle() {
		position = 0
	}

	session.Queue.Append(tracks...)
	q.sessions.CancelIdleDisconnect(session.GetGuildID())

	// PlaybackEventHandler starts playback if wasIdle
	q.publisher.PublishTrackEnqueued(domain.TrackEnqueuedEvent{
		GuildID:  session.GetGuildID(),
		Tracks:   tracks,
		WasIdle:  wasIdle,
		Autoplay: autoplay,
	})

	return &QueueAddOutput{
		Position: position,
		WasIdle:  wasIdle,
	}
}

// List returns the current queue with pagination.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	session, err := acquire(ctx, q.repo, input.GuildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	upcoming := session.Queue.Upcoming()
	totalTracks := len(upcoming)
	totalPages := max((totalTracks+pageSize-1)/pageSize, 1)
	page := min(max(input.Page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalTracks)

	var pageTracks []*domain.Track
	if start < totalTracks {
		pageTracks = upcoming[start:end]
	}

	return &QueueListOutput{
		CurrentTrack:  session.CurrentTrack(),
		Tracks:        pageTracks,
		FirstPosition: start + 1,
		TotalTracks:   totalTracks,
		TotalDuration: session.Queue.Duration(),
		CurrentPage:   page,
		TotalPages:    totalPages,
		LoopMode:      session.GetLoopMode(),
	}, nil
}

// Remove removes the track at the given 1-indexed queue position.
// The position is validated before the queue is touched.
func (q *QueueService) Remove(ctx context.Context, input QueueRemoveInput) (*domain.Track, error) {
	session, err := q.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if session.Queue.IsEmpty() {
		return nil, ErrQueueEmpty
	}

	track := session.Queue.RemoveAt(input.Position - 1)
	if track == nil {
		return nil, ErrInvalidPosition
	}
	return track, nil
}

// Move moves a track between 1-indexed queue positions.
func (q *QueueService) Move(ctx context.Context, input QueueMoveInput) (*domain.Track, error) {
	session, err := q.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if session.Queue.IsEmpty() {
		return nil, ErrQueueEmpty
	}

	from, to := input.From-1, input.To-1
	track := session.Queue.At(from)
	if track == nil || session.Queue.At(to) == nil {
		return nil, ErrInvalidPosition
	}
	if from == to {
		return nil, ErrAlreadyAtPosition
	}

	session.Queue.Move(from, to)
	return track, nil
}

// Shuffle randomizes the upcoming tracks and returns how many were shuffled.
func (q *QueueService) Shuffle(ctx context.Context, scope CommandScope) (int, error) {
	session, err := q.guard.Acquire(ctx, scope)
	if err != nil {
		return 0, err
	}
	defer session.Unlock()

	if session.Queue.IsEmpty() {
		return 0, ErrQueueEmpty
	}

	session.Queue.Shuffle()
	return session.Queue.Len(), nil
}
