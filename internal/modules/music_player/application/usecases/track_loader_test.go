package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

func trackList(kind domain.TrackListType, name string, ids ...string) domain.TrackList {
	list := domain.TrackList{Type: kind, Name: name}
	for _, id := range ids {
		list.Tracks = append(list.Tracks, *mockTrack(id))
	}
	return list
}

func TestTrackLoaderService_LoadTrack(t *testing.T) {
	requester := Requester{ID: snowflake.ID(7), Name: "alice", AvatarURL: "https://cdn.example/a.png"}

	tests := []struct {
		name         string
		input        string
		lavalink     string
		result       domain.TrackList
		resolveErr   error
		wantIDs      []domain.TrackID
		wantPlaylist string
		wantErr      error
	}{
		{
			name:     "search takes the first result",
			input:    "never gonna",
			lavalink: "ytsearch:never gonna",
			result:   trackList(domain.TrackListTypeSearch, "", "a", "b"),
			wantIDs:  []domain.TrackID{"a"},
		},
		{
			name:         "playlist loads whole",
			input:        "https://youtube.com/playlist?list=x",
			lavalink:     "https://youtube.com/playlist?list=x",
			result:       trackList(domain.TrackListTypePlaylist, "Mix", "a", "b", "c"),
			wantIDs:      []domain.TrackID{"a", "b", "c"},
			wantPlaylist: "Mix",
		},
		{
			name:     "empty result",
			input:    "nothing",
			lavalink: "ytsearch:nothing",
			wantErr:  ErrNoResults,
		},
		{
			name:       "node failure",
			input:      "boom",
			lavalink:   "ytsearch:boom",
			resolveErr: errors.New("node down"),
			wantErr:    ErrLoadFailed,
		},
		{
			name:    "blank query",
			input:   "   ",
			wantErr: ErrNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newMockTrackResolver()
			resolver.results[tt.lavalink] = tt.result
			if tt.resolveErr != nil {
				resolver.errs[tt.lavalink] = tt.resolveErr
			}
			loader := NewTrackLoaderService(resolver)

			out, err := loader.LoadTrack(context.Background(), LoadTrackInput{Query: tt.input, Requester: requester})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}

			if len(out.Tracks) != len(tt.wantIDs) {
				t.Fatalf("expected %d tracks, got %d", len(tt.wantIDs), len(out.Tracks))
			}
			for i, track := range out.Tracks {
				if track.ID != tt.wantIDs[i] {
					t.Errorf("track %d: expected %s, got %s", i, tt.wantIDs[i], track.ID)
				}
				if track.RequesterID != requester.ID || track.RequesterName != "alice" {
					t.Errorf("track %d: requester not set", i)
				}
			}
			if out.PlaylistName != tt.wantPlaylist {
				t.Errorf("expected playlist %q, got %q", tt.wantPlaylist, out.PlaylistName)
			}
		})
	}
}

func TestTrackLoaderService_LoadTrack_DoesNotMutateResults(t *testing.T) {
	resolver := newMockTrackResolver()
	resolver.results["ytsearch:x"] = trackList(domain.TrackListTypeSearch, "", "a")
	loader := NewTrackLoaderService(resolver)

	_, err := loader.LoadTrack(context.Background(), LoadTrackInput{
		Query:     "x",
		Requester: Requester{ID: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.results["ytsearch:x"].Tracks[0].RequesterID != 123 {
		t.Error("expected the resolver's track to keep its requester")
	}
}

func TestTrackLoaderService_SearchTracks(t *testing.T) {
	resolver := newMockTrackResolver()
	resolver.results["ytsearch:x"] = trackList(domain.TrackListTypeSearch, "",
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")
	loader := NewTrackLoaderService(resolver)

	got, err := loader.SearchTracks(context.Background(), SearchTracksInput{Query: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != DefaultSearchLimit {
		t.Errorf("expected %d results, got %d", DefaultSearchLimit, len(got))
	}

	got, err = loader.SearchTracks(context.Background(), SearchTracksInput{Query: "x", Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results, got %d", len(got))
	}
}

func TestTrackLoaderService_Related(t *testing.T) {
	reference := mockTrack("abc")
	mix := "https://www.youtube.com/watch?v=abc&list=RDabc"

	t.Run("uses the radio mix", func(t *testing.T) {
		resolver := newMockTrackResolver()
		resolver.results[mix] = trackList(domain.TrackListTypePlaylist, "Mix", "abc", "d")
		loader := NewTrackLoaderService(resolver)

		got, err := loader.Related(context.Background(), reference)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 related tracks, got %d", len(got))
		}
	})

	t.Run("falls back to a title search", func(t *testing.T) {
		resolver := newMockTrackResolver()
		resolver.errs[mix] = errors.New("unavailable")
		resolver.results["ytsearch:Track abc Artist"] = trackList(domain.TrackListTypeSearch, "", "d")
		loader := NewTrackLoaderService(resolver)

		got, err := loader.Related(context.Background(), reference)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "d" {
			t.Errorf("expected fallback results, got %v", got)
		}
		if len(resolver.queries) != 2 {
			t.Errorf("expected two lookups, got %v", resolver.queries)
		}
	})
}
