package bot

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`
	ClientID     string `env:"DISCORD_CLIENT_ID,notEmpty"`

	LogLevel      slog.Level `env:"LOG_LEVEL"       envDefault:"info"`
	LogWebhookURL string     `env:"LOG_WEBHOOK_URL"`

	SupportServerURL string `env:"SUPPORT_SERVER_URL"`
	VoteURL          string `env:"VOTE_URL"`

	MetricsAddr string `env:"METRICS_ADDR"`

	// Per-user interaction rate. Zero disables limiting.
	CommandRate  float64 `env:"COMMAND_RATE"  envDefault:"1"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"5"`

	// Version is the build version, set by main rather than the environment.
	Version string `env:"-"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.CommandRate < 0 || cfg.CommandBurst < 1 {
		return nil, fmt.Errorf("COMMAND_RATE must be >= 0 and COMMAND_BURST >= 1")
	}

	return cfg, nil
}

// InviteURL returns the OAuth2 URL that adds the bot to a guild.
func (c *Config) InviteURL() string {
	// View Channels, Send Messages, Embed Links, Attach Files, Connect, Speak
	const permissions = 1024 | 2048 | 16384 | 32768 | 1048576 | 2097152
	return fmt.Sprintf(
		"https://discord.com/oauth2/authorize?client_id=%s&permissions=%d&scope=bot%%20applications.commands",
		c.ClientID, permissions,
	)
}
