package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// AutoplayResult reports what happened when the queue ran out.
type AutoplayResult struct {
	Track         *domain.Track // the track autoplay enqueued, if any
	IdleScheduled bool
}

// AutoplayService keeps music going after the queue runs out, or starts
// the idle timer when autoplay is off.
type AutoplayService struct {
	repo     domain.SessionRepository
	loader   *TrackLoaderService
	queue    *QueueService
	sessions *SessionManager
	users    ports.UserInfoProvider
	notifier ports.NotificationSender
	intn     func(n int) int
}

// NewAutoplayService creates a new AutoplayService.
func NewAutoplayService(
	repo domain.SessionRepository,
	loader *TrackLoaderService,
	queue *QueueService,
	sessions *SessionManager,
	users ports.UserInfoProvider,
	notifier ports.NotificationSender,
) *AutoplayService {
	return &AutoplayService{
		repo:     repo,
		loader:   loader,
		queue:    queue,
		sessions: sessions,
		users:    users,
		notifier: notifier,
		intn:     rand.IntN,
	}
}

type autoplayState struct {
	autoplay  bool
	alwaysOn  bool
	reference *domain.Track
	known     []*domain.Track
	channelID snowflake.ID
}

// Continue handles an exhausted queue. Failures are posted to the
// notification channel and never returned.
func (a *AutoplayService) Continue(ctx context.Context, event domain.QueueEmptyEvent) AutoplayResult {
	if event.Stopped {
		return AutoplayResult{}
	}

	state, err := a.readState(ctx, event.GuildID)
	if err != nil {
		return AutoplayResult{}
	}
	if state.channelID == 0 {
		state.channelID = event.NotificationChannelID
	}

	if !state.autoplay {
		if state.alwaysOn {
			return AutoplayResult{}
		}
		a.notice(state.channelID, fmt.Sprintf(
			"The queue has ended. I'll leave in %s unless something is added.",
			a.sessions.IdleTimeout(),
		))
		a.sessions.ScheduleIdleDisconnect(event.GuildID)
		return AutoplayResult{IdleScheduled: true}
	}

	track, err := a.pick(ctx, state)
	if err == nil {
		botID, bot := a.users.BotUser()
		track = track.WithRequester(botID, bot.DisplayName, bot.AvatarURL)
		_, err = a.queue.AddAsBot(ctx, event.GuildID, track)
	}
	if err != nil {
		slog.Warn("autoplay failed", "guild", event.GuildID, "error", err)
		a.notice(state.channelID, "Autoplay stopped: "+err.Error())
		if state.alwaysOn {
			return AutoplayResult{}
		}
		a.sessions.ScheduleIdleDisconnect(event.GuildID)
		return AutoplayResult{IdleScheduled: true}
	}

	slog.Info("autoplay picked track", "guild", event.GuildID, "title", track.Title)
	return AutoplayResult{Track: track}
}

func (a *AutoplayService) readState(ctx context.Context, guildID snowflake.ID) (autoplayState, error) {
	session, err := acquire(ctx, a.repo, guildID)
	if err != nil {
		return autoplayState{}, err
	}
	defer session.Unlock()

	return autoplayState{
		autoplay:  session.IsAutoplay(),
		alwaysOn:  session.IsAlwaysOn(),
		reference: session.AutoplayReference(),
		known:     session.Queue.Upcoming(),
		channelID: session.GetNotificationChannelID(),
	}, nil
}

func (a *AutoplayService) pick(ctx context.Context, state autoplayState) (*domain.Track, error) {
	if state.reference == nil {
		return nil, ErrNoAutoplayReference
	}

	related, err := a.loader.Related(ctx, state.reference)
	if err != nil {
		return nil, err
	}

	return PickRelated(state.reference, related, state.known, a.intn)
}

func (a *AutoplayService) notice(channelID snowflake.ID, message string) {
	if channelID == 0 {
		return
	}
	if err := a.notifier.SendNotice(channelID, message); err != nil {
		slog.Warn("failed to send autoplay notice", "channel", channelID, "error", err)
	}
}

// PickRelated drops candidates that match the reference or an already
// queued track and picks one of the rest uniformly with intn.
func PickRelated(
	reference *domain.Track,
	candidates []domain.Track,
	known []*domain.Track,
	intn func(n int) int,
) (*domain.Track, error) {
	fresh := make([]*domain.Track, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.IsSameAs(reference) || isKnown(candidate, known) {
			continue
		}
		fresh = append(fresh, candidate)
	}

	if len(fresh) == 0 {
		return nil, ErrNoAutoplayCandidates
	}
	return fresh[intn(len(fresh))], nil
}

func isKnown(track *domain.Track, known []*domain.Track) bool {
	for _, k := range known {
		if track.IsSameAs(k) {
			return true
		}
	}
	return false
}
