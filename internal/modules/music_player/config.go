package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkHost     string `env:"LAVALINK_HOST,notEmpty"`
	LavalinkPort     int    `env:"LAVALINK_PORT"          envDefault:"2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"        envDefault:"false"`

	// DatabasePath selects SQLite guild preferences; empty keeps them in memory.
	DatabasePath string `env:"DATABASE_PATH"`

	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}
