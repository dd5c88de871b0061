package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

const createPreferencesTable = `
	CREATE TABLE IF NOT EXISTS guild_preferences (
		guild_id TEXT PRIMARY KEY,
		always_on_channel_id TEXT,
		autoplay INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLitePreferenceStore persists guild preferences in a SQLite database.
type SQLitePreferenceStore struct {
	db *sql.DB
}

// OpenSQLitePreferenceStore opens (creating if needed) the database at path.
func OpenSQLitePreferenceStore(ctx context.Context, path string) (*SQLitePreferenceStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)

	if _, err := db.ExecContext(ctx, createPreferencesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &SQLitePreferenceStore{db: db}, nil
}

// Get returns the guild's preferences; unknown guilds get the zero value.
func (s *SQLitePreferenceStore) Get(ctx context.Context, guildID snowflake.ID) (domain.GuildPreferences, error) {
	var (
		channelID sql.NullString
		autoplay  bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT always_on_channel_id, autoplay FROM guild_preferences WHERE guild_id = ?`,
		guildID.String(),
	).Scan(&channelID, &autoplay)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuildPreferences{}, nil
	}
	if err != nil {
		return domain.GuildPreferences{}, err
	}

	prefs := domain.GuildPreferences{Autoplay: autoplay}
	if channelID.Valid && channelID.String != "" {
		id, err := snowflake.Parse(channelID.String)
		if err != nil {
			return domain.GuildPreferences{}, fmt.Errorf("corrupt 24/7 channel for guild %s: %w", guildID, err)
		}
		prefs.AlwaysOnChannelID = id
	}
	return prefs, nil
}

// Save stores the guild's preferences. Zero preferences delete the row.
func (s *SQLitePreferenceStore) Save(ctx context.Context, guildID snowflake.ID, prefs domain.GuildPreferences) error {
	if prefs == (domain.GuildPreferences{}) {
		_, err := s.db.ExecContext(ctx, `DELETE FROM guild_preferences WHERE guild_id = ?`, guildID.String())
		return err
	}

	var channelID sql.NullString
	if prefs.AlwaysOnChannelID != 0 {
		channelID = sql.NullString{String: prefs.AlwaysOnChannelID.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_preferences (guild_id, always_on_channel_id, autoplay, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(guild_id) DO UPDATE SET
			always_on_channel_id = excluded.always_on_channel_id,
			autoplay = excluded.autoplay,
			updated_at = CURRENT_TIMESTAMP
	`, guildID.String(), channelID, prefs.Autoplay)
	return err
}

// AlwaysOnGuilds returns every guild with 24/7 mode enabled and its channel.
func (s *SQLitePreferenceStore) AlwaysOnGuilds(ctx context.Context) (map[snowflake.ID]snowflake.ID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guild_id, always_on_channel_id FROM guild_preferences WHERE always_on_channel_id IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guilds := make(map[snowflake.ID]snowflake.ID)
	for rows.Next() {
		var guild, channel string
		if err := rows.Scan(&guild, &channel); err != nil {
			return nil, err
		}
		guildID, err := snowflake.Parse(guild)
		if err != nil {
			continue
		}
		channelID, err := snowflake.Parse(channel)
		if err != nil {
			continue
		}
		guilds[guildID] = channelID
	}
	return guilds, rows.Err()
}

// Close closes the database.
func (s *SQLitePreferenceStore) Close() error {
	return s.db.Close()
}

var _ ports.PreferenceStore = (*SQLitePreferenceStore)(nil)
