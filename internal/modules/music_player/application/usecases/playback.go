package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// PauseOutput contains the result of the Pause use case.
type PauseOutput struct {
	Paused bool // false if the call resumed playback
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	CommandScope
	Amount int // number of tracks to skip, values below 1 mean 1
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if the queue is exhausted
}

// VolumeInput contains the input for the Volume use case.
type VolumeInput struct {
	CommandScope
	Level *int // nil only reads the current volume
}

// SetLoopModeInput contains the input for the SetLoopMode use case.
type SetLoopModeInput struct {
	CommandScope
	Mode string // "none", "track", "queue"
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	repo        domain.SessionRepository
	guard       *VoiceGuard
	sessions    *SessionManager
	audioPlayer ports.AudioPlayer
	publisher   ports.EventPublisher
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.SessionRepository,
	guard *VoiceGuard,
	sessions *SessionManager,
	audioPlayer ports.AudioPlayer,
	publisher ports.EventPublisher,
) *PlaybackService {
	return &PlaybackService{
		repo:        repo,
		guard:       guard,
		sessions:    sessions,
		audioPlayer: audioPlayer,
		publisher:   publisher,
	}
}

// Pause toggles pause: it pauses a playing track and resumes a paused one.
func (p *PlaybackService) Pause(ctx context.Context, scope CommandScope) (*PauseOutput, error) {
	session, err := p.guard.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if !session.IsPlaying() {
		return nil, ErrNotPlaying
	}

	if session.IsPaused() {
		if err := p.audioPlayer.Resume(ctx, scope.GuildID); err != nil {
			return nil, err
		}
		session.SetPaused(false)
		return &PauseOutput{Paused: false}, nil
	}

	if err := p.audioPlayer.Pause(ctx, scope.GuildID); err != nil {
		return nil, err
	}
	session.SetPaused(true)
	return &PauseOutput{Paused: true}, nil
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, scope CommandScope) error {
	session, err := p.guard.Acquire(ctx, scope)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if !session.IsPlaying() {
		return ErrNotPlaying
	}
	if !session.IsPaused() {
		return ErrNotPaused
	}

	if err := p.audioPlayer.Resume(ctx, scope.GuildID); err != nil {
		return err
	}
	session.SetPaused(false)

	return nil
}

// Stop clears the queue and stops playback. The session is destroyed
// unless 24/7 mode keeps the bot in the channel.
func (p *PlaybackService) Stop(ctx context.Context, scope CommandScope) error {
	session, err := p.guard.Acquire(ctx, scope)
	if err != nil {
		return err
	}
	defer session.Unlock()

	if session.IsAlwaysOn() {
		if err := p.audioPlayer.Stop(ctx, scope.GuildID); err != nil {
			return err
		}
		session.Queue.Clear()
		p.finishLocked(session, true)
		return nil
	}

	p.sessions.Destroy(ctx, session, "")
	return nil
}

// Skip skips the current track and the next Amount-1 tracks.
// Skip always moves forward, even in track loop mode.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	session, err := p.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	skipped := session.CurrentTrack()
	if skipped == nil {
		return nil, ErrNotPlaying
	}

	next := session.Queue.Skip(input.Amount, session.GetLoopMode())
	if next == nil {
		if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
			return nil, err
		}
		p.finishLocked(session, false)
		return &SkipOutput{SkippedTrack: skipped}, nil
	}

	if err := p.playLocked(ctx, session, next); err != nil {
		return nil, err
	}

	return &SkipOutput{
		SkippedTrack: skipped,
		NextTrack:    next,
	}, nil
}

// Replay restarts the current track from the beginning.
func (p *PlaybackService) Replay(ctx context.Context, scope CommandScope) (*domain.Track, error) {
	session, err := p.guard.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	current := session.CurrentTrack()
	if current == nil || !session.IsPlaying() {
		return nil, ErrNotPlaying
	}

	if err := p.audioPlayer.Seek(ctx, scope.GuildID, 0); err != nil {
		return nil, err
	}
	return current, nil
}

// Volume sets the volume when a level is given and returns the resulting volume.
func (p *PlaybackService) Volume(ctx context.Context, input VolumeInput) (int, error) {
	if input.Level == nil {
		session, err := acquire(ctx, p.repo, input.GuildID)
		if err != nil {
			return 0, err
		}
		defer session.Unlock()
		return session.GetVolume(), nil
	}

	level := *input.Level
	if level < domain.MinVolume || level > domain.MaxVolume {
		return 0, ErrInvalidVolume
	}

	session, err := p.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return 0, err
	}
	defer session.Unlock()

	if err := p.audioPlayer.SetVolume(ctx, input.GuildID, level); err != nil {
		return 0, err
	}
	session.SetVolume(level)

	return session.GetVolume(), nil
}

// SetLoopMode sets the loop mode for the guild's player.
func (p *PlaybackService) SetLoopMode(ctx context.Context, input SetLoopModeInput) (domain.LoopMode, error) {
	mode, ok := domain.ParseLoopMode(input.Mode)
	if !ok {
		return domain.LoopModeNone, ErrInvalidLoopMode
	}

	session, err := p.guard.Acquire(ctx, input.CommandScope)
	if err != nil {
		return domain.LoopModeNone, err
	}
	defer session.Unlock()

	session.SetLoopMode(mode)

	return mode, nil
}

// CycleLoopMode cycles through loop modes: None -> Track -> Queue -> None.
func (p *PlaybackService) CycleLoopMode(ctx context.Context, scope CommandScope) (domain.LoopMode, error) {
	session, err := p.guard.Acquire(ctx, scope)
	if err != nil {
		return domain.LoopModeNone, err
	}
	defer session.Unlock()

	return session.CycleLoopMode(), nil
}

// NowPlaying returns a snapshot of the current playback.
func (p *PlaybackService) NowPlaying(ctx context.Context, guildID snowflake.ID) (*ports.NowPlayingInfo, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	current := session.CurrentTrack()
	if current == nil || !session.IsPlaying() {
		return nil, ErrNotPlaying
	}

	return snapshot(session, p.audioPlayer.Position(guildID)), nil
}

// PlayNext starts the next track if the session is not already playing.
// Returns the track that started, or nil if nothing is queued.
func (p *PlaybackService) PlayNext(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if session.IsPlaying() {
		return nil, nil
	}

	next := session.CurrentTrack()
	if next == nil {
		next = session.Queue.Advance(domain.LoopModeNone)
	}
	if next == nil {
		return nil, nil
	}

	if err := p.playLocked(ctx, session, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Advance moves past a track the node finished, honoring the loop mode.
// Returns the track that started, or nil when the queue ran out.
func (p *PlaybackService) Advance(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if !session.IsPlaying() {
		return nil, nil
	}

	next := session.Queue.Advance(session.GetLoopMode())
	if next == nil {
		p.finishLocked(session, false)
		return nil, nil
	}

	if err := p.playLocked(ctx, session, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SkipFailed moves past a track that could not be played, never repeating it.
// When nothing is left the session is destroyed with notice, or merely
// stopped if 24/7 mode keeps it.
func (p *PlaybackService) SkipFailed(
	ctx context.Context,
	guildID snowflake.ID,
	notice string,
) (*domain.Track, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	next, err := p.skipLocked(ctx, session)
	if next != nil || err != nil {
		return next, err
	}

	if session.IsAlwaysOn() {
		if err := p.audioPlayer.Stop(ctx, guildID); err != nil {
			slog.Warn("failed to stop player", "guild", guildID, "error", err)
		}
		p.finishLocked(session, true)
		return nil, nil
	}

	p.sessions.Destroy(ctx, session, notice)
	return nil, nil
}

// MoveOn moves past a track that ended abnormally without repeating it.
// Unlike SkipFailed, an exhausted queue ends playback the normal way.
func (p *PlaybackService) MoveOn(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if !session.IsPlaying() {
		return nil, nil
	}

	next, err := p.skipLocked(ctx, session)
	if next == nil && err == nil {
		p.finishLocked(session, false)
	}
	return next, err
}

// skipLocked drops the failed current track and plays the next one, if any.
// The failed track is not re-queued even in queue loop mode.
// The caller must hold the session lock.
func (p *PlaybackService) skipLocked(ctx context.Context, session *domain.GuildSession) (*domain.Track, error) {
	session.Queue.DropCurrent()
	next := session.Queue.Advance(domain.LoopModeNone)
	if next == nil {
		return nil, nil
	}
	if err := p.playLocked(ctx, session, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Restore replays the current track from position on a freshly connected
// player, re-applying volume and the active filter preset.
func (p *PlaybackService) Restore(
	ctx context.Context,
	guildID snowflake.ID,
	position time.Duration,
) (*domain.Track, error) {
	session, err := acquire(ctx, p.repo, guildID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	current := session.CurrentTrack()
	if current == nil || !session.IsPlaying() {
		return nil, nil
	}

	if err := p.audioPlayer.PlayAt(ctx, guildID, current, position); err != nil {
		return nil, err
	}
	if volume := session.GetVolume(); volume != domain.DefaultVolume {
		if err := p.audioPlayer.SetVolume(ctx, guildID, volume); err != nil {
			slog.Warn("failed to restore volume", "guild", guildID, "error", err)
		}
	}
	if settings, ok := domain.FilterPreset(session.GetActiveFilter()); ok {
		if err := p.audioPlayer.SetFilters(ctx, guildID, settings); err != nil {
			slog.Warn("failed to restore filter", "guild", guildID, "error", err)
		}
	} else if session.GetActiveFilter() != "" {
		// custom timescale values are not kept
		session.SetActiveFilter("")
	}
	if session.IsPaused() {
		if err := p.audioPlayer.Pause(ctx, guildID); err != nil {
			slog.Warn("failed to restore pause", "guild", guildID, "error", err)
		}
	}

	return current, nil
}

// finishLocked marks playback as over and announces the empty queue.
// The caller must hold the session lock.
func (p *PlaybackService) finishLocked(session *domain.GuildSession, stopped bool) {
	session.SetPlaying(false)
	p.publisher.PublishQueueEmpty(domain.QueueEmptyEvent{
		GuildID:               session.GetGuildID(),
		NotificationChannelID: session.GetNotificationChannelID(),
		Stopped:               stopped,
	})
}

// playLocked plays track on the session's player. On failure the track is
// dropped and the session left idle, so a later enqueue starts playback again.
// The caller must hold the session lock.
func (p *PlaybackService) playLocked(
	ctx context.Context,
	session *domain.GuildSession,
	track *domain.Track,
) error {
	guildID := session.GetGuildID()

	if err := p.audioPlayer.Play(ctx, guildID, track); err != nil {
		session.SetPlaying(false)
		if session.CurrentTrack() == track {
			session.Queue.DropCurrent()
		}
		// no QueueEmpty here: autoplay would retry against the same node
		if !session.IsAlwaysOn() {
			p.sessions.ScheduleIdleDisconnect(guildID)
		}
		return fmt.Errorf("failed to play %q: %w", track.Title, err)
	}
	session.SetPlaying(true)
	p.sessions.CancelIdleDisconnect(guildID)

	p.publisher.PublishTrackStarted(domain.TrackStartedEvent{
		GuildID:               guildID,
		Track:                 track,
		NotificationChannelID: session.GetNotificationChannelID(),
	})
	return nil
}

// snapshot builds the now playing info of a session. The caller must hold the session lock.
func snapshot(session *domain.GuildSession, position time.Duration) *ports.NowPlayingInfo {
	return &ports.NowPlayingInfo{
		Track:       session.CurrentTrack(),
		Position:    position,
		LoopMode:    session.GetLoopMode(),
		Volume:      session.GetVolume(),
		Paused:      session.IsPaused(),
		Autoplay:    session.IsAutoplay(),
		Filter:      session.GetActiveFilter(),
		QueueLength: session.Queue.Len(),
	}
}
