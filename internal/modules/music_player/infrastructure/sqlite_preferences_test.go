package infrastructure

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

func TestSQLitePreferenceStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLitePreferenceStore(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	guildID := snowflake.ID(1000)

	prefs, err := store.Get(ctx, guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs != (domain.GuildPreferences{}) {
		t.Errorf("expected zero preferences, got %+v", prefs)
	}

	want := domain.GuildPreferences{AlwaysOnChannelID: 2000, Autoplay: true}
	if err := store.Save(ctx, guildID, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := store.Get(ctx, guildID); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	updated := domain.GuildPreferences{Autoplay: true}
	if err := store.Save(ctx, guildID, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := store.Get(ctx, guildID); got != updated {
		t.Errorf("expected upsert to %+v, got %+v", updated, got)
	}

	_ = store.Save(ctx, snowflake.ID(3000), domain.GuildPreferences{AlwaysOnChannelID: 4000})
	guilds, err := store.AlwaysOnGuilds(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guilds) != 1 || guilds[3000] != 4000 {
		t.Errorf("expected only guild 3000 in 24/7, got %v", guilds)
	}

	if err := store.Save(ctx, guildID, domain.GuildPreferences{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := store.Get(ctx, guildID); got != (domain.GuildPreferences{}) {
		t.Errorf("expected preferences removed, got %+v", got)
	}
}
