package application

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

func TestPlaybackEventHandler_TrackEnqueued(t *testing.T) {
	tests := []struct {
		name      string
		wasIdle   bool
		wantCalls int
	}{
		{name: "starts playback when idle", wasIdle: true, wantCalls: 1},
		{name: "ignores enqueue while playing", wasIdle: false, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubscriber{}
			calls := 0
			handler := NewPlaybackEventHandler(
				func(_ context.Context, guildID snowflake.ID) (*domain.Track, error) {
					if guildID != testGuild {
						t.Errorf("expected guild %d, got %d", testGuild, guildID)
					}
					calls++
					return testTrack("a"), nil
				},
				func(context.Context, snowflake.ID) (*domain.Track, error) { return nil, nil },
				noNotice,
				sub,
			)
			handler.Start()

			deliver(sub.trackEnqueued, domain.TrackEnqueuedEvent{
				GuildID: testGuild,
				Tracks:  []*domain.Track{testTrack("a")},
				WasIdle: tt.wasIdle,
			})

			if calls != tt.wantCalls {
				t.Errorf("expected %d PlayNext calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestPlaybackEventHandler_TrackEnded(t *testing.T) {
	tests := []struct {
		reason      domain.TrackEndReason
		wantAdvance bool
	}{
		{domain.TrackEndFinished, true},
		{domain.TrackEndLoadFailed, false},
		{domain.TrackEndStopped, false},
		{domain.TrackEndReplaced, false},
		{domain.TrackEndCleanup, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			sub := &fakeSubscriber{}
			advanced := false
			handler := NewPlaybackEventHandler(
				func(context.Context, snowflake.ID) (*domain.Track, error) { return nil, nil },
				func(context.Context, snowflake.ID) (*domain.Track, error) {
					advanced = true
					return nil, nil
				},
				noNotice,
				sub,
			)
			handler.Start()

			deliver(sub.trackEnded, domain.TrackEndedEvent{GuildID: testGuild, Reason: tt.reason})

			if advanced != tt.wantAdvance {
				t.Errorf("expected advance=%v, got %v", tt.wantAdvance, advanced)
			}
		})
	}
}

func noNotice(context.Context, snowflake.ID, string) {}

func TestPlaybackEventHandler_StartFailureNotice(t *testing.T) {
	nodeDown := errors.New("node unreachable")
	failing := func(context.Context, snowflake.ID) (*domain.Track, error) { return nil, nodeDown }

	tests := []struct {
		name    string
		publish func(sub *fakeSubscriber)
		want    string
	}{
		{
			name: "autoplay enqueue",
			publish: func(sub *fakeSubscriber) {
				deliver(sub.trackEnqueued, domain.TrackEnqueuedEvent{
					GuildID:  testGuild,
					Tracks:   []*domain.Track{testTrack("a")},
					WasIdle:  true,
					Autoplay: true,
				})
			},
			want: "I couldn't start playback: node unreachable",
		},
		{
			name: "track finished",
			publish: func(sub *fakeSubscriber) {
				deliver(sub.trackEnded, domain.TrackEndedEvent{GuildID: testGuild, Reason: domain.TrackEndFinished})
			},
			want: "I couldn't play the next track: node unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubscriber{}
			var notices []string
			NewPlaybackEventHandler(failing, failing,
				func(_ context.Context, guildID snowflake.ID, message string) {
					if guildID != testGuild {
						t.Errorf("expected guild %d, got %d", testGuild, guildID)
					}
					notices = append(notices, message)
				},
				sub,
			).Start()

			tt.publish(sub)

			if len(notices) != 1 || notices[0] != tt.want {
				t.Errorf("expected notice %q, got %v", tt.want, notices)
			}
		})
	}
}

type fakeNowPlaying struct {
	replaced  []*domain.Track
	cleared   int
	farewells []domain.SessionDestroyedEvent
}

func (f *fakeNowPlaying) ReplaceNowPlaying(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	f.replaced = append(f.replaced, track)
	return nil
}

func (f *fakeNowPlaying) ClearNowPlaying(context.Context, snowflake.ID) error {
	f.cleared++
	return nil
}

func (f *fakeNowPlaying) Farewell(event domain.SessionDestroyedEvent) {
	f.farewells = append(f.farewells, event)
}

func TestNotificationEventHandler(t *testing.T) {
	sub := &fakeSubscriber{}
	notifier := &fakeNowPlaying{}
	NewNotificationEventHandler(notifier, sub).Start()

	track := testTrack("a")
	deliver(sub.trackStarted, domain.TrackStartedEvent{GuildID: testGuild, Track: track})
	if len(notifier.replaced) != 1 || notifier.replaced[0] != track {
		t.Fatalf("expected now playing for %v, got %v", track, notifier.replaced)
	}

	deliver(sub.queueEmpty, domain.QueueEmptyEvent{GuildID: testGuild})
	if notifier.cleared != 1 {
		t.Errorf("expected now playing to be cleared once, got %d", notifier.cleared)
	}

	destroyed := domain.SessionDestroyedEvent{GuildID: testGuild, Notice: "bye"}
	deliver(sub.sessionDestroyed, destroyed)
	if len(notifier.farewells) != 1 || notifier.farewells[0].Notice != "bye" {
		t.Errorf("expected farewell with notice, got %v", notifier.farewells)
	}
}

func TestAutoplayEventHandler_ForwardsQueueEmpty(t *testing.T) {
	sub := &fakeSubscriber{}
	var got []domain.QueueEmptyEvent
	NewAutoplayEventHandler(func(_ context.Context, event domain.QueueEmptyEvent) {
		got = append(got, event)
	}, sub).Start()

	deliver(sub.queueEmpty, domain.QueueEmptyEvent{GuildID: testGuild, Stopped: true})

	if len(got) != 1 || !got[0].Stopped {
		t.Errorf("expected the stopped event to be forwarded, got %v", got)
	}
}
