package infrastructure

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// MemoryRepository is an in-memory implementation of SessionRepository.
// It hands out the stored pointer; callers synchronize through the session lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*domain.GuildSession
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[snowflake.ID]*domain.GuildSession),
	}
}

// Get returns the session of the given guild, or ErrSessionNotFound.
func (r *MemoryRepository) Get(_ context.Context, guildID snowflake.ID) (*domain.GuildSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[guildID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Save stores the session, replacing any previous one of the guild.
func (r *MemoryRepository) Save(_ context.Context, session *domain.GuildSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.GetGuildID()] = session
	return nil
}

// Delete removes the session of the given guild.
func (r *MemoryRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, guildID)
	return nil
}

// Count returns the number of active sessions.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Ensure MemoryRepository implements SessionRepository.
var _ domain.SessionRepository = (*MemoryRepository)(nil)

// MemoryPreferenceStore keeps guild preferences for the lifetime of the process.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[snowflake.ID]domain.GuildPreferences
}

// NewMemoryPreferenceStore creates a new MemoryPreferenceStore.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		prefs: make(map[snowflake.ID]domain.GuildPreferences),
	}
}

// Get returns the guild's preferences; unknown guilds get the zero value.
func (s *MemoryPreferenceStore) Get(_ context.Context, guildID snowflake.ID) (domain.GuildPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.prefs[guildID], nil
}

// Save stores the guild's preferences. Zero preferences are forgotten.
func (s *MemoryPreferenceStore) Save(_ context.Context, guildID snowflake.ID, prefs domain.GuildPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefs == (domain.GuildPreferences{}) {
		delete(s.prefs, guildID)
		return nil
	}
	s.prefs[guildID] = prefs
	return nil
}

// AlwaysOnGuilds returns every guild with 24/7 mode enabled and its channel.
func (s *MemoryPreferenceStore) AlwaysOnGuilds(context.Context) (map[snowflake.ID]snowflake.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guilds := make(map[snowflake.ID]snowflake.ID)
	for guildID, prefs := range s.prefs {
		if prefs.AlwaysOnChannelID != 0 {
			guilds[guildID] = prefs.AlwaysOnChannelID
		}
	}
	return guilds, nil
}

// Close is a no-op; memory preferences end with the process.
func (s *MemoryPreferenceStore) Close() error {
	return nil
}

var _ ports.PreferenceStore = (*MemoryPreferenceStore)(nil)
