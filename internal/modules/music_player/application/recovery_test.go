package application

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// fakeRecovery records the recovery steps taken.
type fakeRecovery struct {
	position time.Duration
	calls    []string
	notices  []string
	restored time.Duration
	destroy  string
}

func (f *fakeRecovery) Position(snowflake.ID) time.Duration {
	return f.position
}

func (f *fakeRecovery) Rejoin(context.Context, snowflake.ID) error {
	f.calls = append(f.calls, "rejoin")
	return nil
}

func (f *fakeRecovery) Restore(_ context.Context, _ snowflake.ID, position time.Duration) (*domain.Track, error) {
	f.calls = append(f.calls, "restore")
	f.restored = position
	return testTrack("a"), nil
}

func (f *fakeRecovery) SkipFailed(context.Context, snowflake.ID, string) (*domain.Track, error) {
	f.calls = append(f.calls, "skip")
	return nil, nil
}

func (f *fakeRecovery) MoveOn(context.Context, snowflake.ID) (*domain.Track, error) {
	f.calls = append(f.calls, "move_on")
	return nil, nil
}

func (f *fakeRecovery) Destroy(_ context.Context, _ snowflake.ID, notice string) error {
	f.calls = append(f.calls, "destroy")
	f.destroy = notice
	return nil
}

func (f *fakeRecovery) Notice(_ context.Context, _ snowflake.ID, message string) {
	f.notices = append(f.notices, message)
}

func setupRecovery(nodes ...bool) (*fakeSubscriber, *fakeRecovery, *fakeScheduler) {
	sub := &fakeSubscriber{}
	recovery := &fakeRecovery{position: 42 * time.Second}
	scheduler := newFakeScheduler()
	NewRecoveryEventHandler(recovery, &fakeNodes{connected: nodes}, scheduler, sub).Start()
	return sub, recovery, scheduler
}

func TestRecoveryEventHandler_ConnectionLost(t *testing.T) {
	key := usecases.ReconnectTaskKey(testGuild)
	event := domain.PlayerErrorEvent{GuildID: testGuild, Kind: domain.PlayerErrorConnectionLost}

	t.Run("replays at the saved position when a node is up", func(t *testing.T) {
		sub, recovery, scheduler := setupRecovery(true)
		deliver(sub.playerError, event)

		if len(recovery.calls) != 0 {
			t.Fatalf("expected nothing before the delay, got %v", recovery.calls)
		}
		if d := scheduler.delay(key); d != ReconnectDelay {
			t.Errorf("expected delay %v, got %v", ReconnectDelay, d)
		}

		scheduler.fire(key)

		if !slices.Equal(recovery.calls, []string{"rejoin", "restore"}) {
			t.Errorf("expected rejoin then restore, got %v", recovery.calls)
		}
		if recovery.restored != 42*time.Second {
			t.Errorf("expected restore at 42s, got %v", recovery.restored)
		}
	})

	t.Run("retries once after the longer delay", func(t *testing.T) {
		sub, recovery, scheduler := setupRecovery(false, true)
		deliver(sub.playerError, event)

		scheduler.fire(key)
		if d := scheduler.delay(key); d != ReconnectRetryDelay {
			t.Fatalf("expected retry after %v, got %v", ReconnectRetryDelay, d)
		}

		scheduler.fire(key)
		if !slices.Equal(recovery.calls, []string{"rejoin", "restore"}) {
			t.Errorf("expected recovery on retry, got %v", recovery.calls)
		}
	})

	t.Run("destroys the session when no node comes back", func(t *testing.T) {
		sub, recovery, scheduler := setupRecovery(false)
		deliver(sub.playerError, event)

		scheduler.fire(key)
		scheduler.fire(key)

		if !slices.Equal(recovery.calls, []string{"destroy"}) {
			t.Errorf("expected destroy, got %v", recovery.calls)
		}
		if recovery.destroy == "" {
			t.Error("expected a notice on destroy")
		}
		if scheduler.fire(key) {
			t.Error("expected no further attempts")
		}
	})
}

func TestRecoveryEventHandler_TrackFailures(t *testing.T) {
	tests := []struct {
		kind      domain.PlayerErrorKind
		wantCalls []string
	}{
		{domain.PlayerErrorTrackStuck, []string{"skip"}},
		{domain.PlayerErrorLoadFailed, []string{"skip"}},
		{domain.PlayerErrorDecodeFailure, []string{"move_on"}},
		{domain.PlayerErrorUnknown, []string{"move_on"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			sub, recovery, _ := setupRecovery(true)
			deliver(sub.playerError, domain.PlayerErrorEvent{
				GuildID: testGuild,
				Kind:    tt.kind,
				Message: "boom",
			})

			if !slices.Equal(recovery.calls, tt.wantCalls) {
				t.Errorf("expected %v, got %v", tt.wantCalls, recovery.calls)
			}
			if len(recovery.notices) != 1 {
				t.Errorf("expected one notice, got %v", recovery.notices)
			}
		})
	}
}
