package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/metrics"
	"github.com/sglre6355/cadence/internal/modules/music_player/application"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
	"github.com/sglre6355/cadence/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/cadence/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
	_ bot.AutocompleteModule = (*MusicPlayerModule)(nil)
)

// restoreDelay leaves time for the bot to register its voice event handlers
// before 24/7 channels are rejoined.
const restoreDelay = 3 * time.Second

// preferenceStore is a PreferenceStore that may hold resources.
type preferenceStore interface {
	ports.PreferenceStore
	Close() error
}

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter

	eventBus    *infrastructure.ChannelEventBus
	scheduler   *infrastructure.TaskScheduler
	preferences preferenceStore

	// Context for startup work that must stop with the module
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return m.commandHandlers.Handlers()
}

// ComponentHandlers returns the button and select menu handlers for this module.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return m.commandHandlers.ComponentHandlers()
}

// AutocompleteHandlers returns the autocomplete handlers for this module.
func (m *MusicPlayerModule) AutocompleteHandlers() map[string]bot.InteractionHandler {
	return m.autocomplete.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if cfg.LavalinkPort < 1 || cfg.LavalinkPort > 65535 {
		return errors.New("LAVALINK_PORT must be between 1 and 65535")
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a connected Discord session")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	preferences, err := m.openPreferences()
	if err != nil {
		return err
	}
	m.preferences = preferences

	// The adapter publishes node events, so the bus comes first
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)
	m.scheduler = infrastructure.NewTaskScheduler()
	infrastructure.SubscribeMetrics(m.eventBus)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		m.ctx,
		deps.Session,
		m.eventBus,
		infrastructure.LavalinkConfig{
			Host:     m.config.LavalinkHost,
			Port:     m.config.LavalinkPort,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
	)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Infrastructure
	repo := infrastructure.NewMemoryRepository()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session.State)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, discord.NowPlayingMessage)
	lyricsProvider := infrastructure.NewLRCLibClient("")
	metrics.SetSessionSource(repo.Count)

	// Use cases
	sessions := usecases.NewSessionManager(
		repo,
		lavalinkAdapter,
		lavalinkAdapter,
		m.eventBus,
		m.scheduler,
		preferences,
		m.config.IdleTimeout,
	)
	guard := usecases.NewVoiceGuard(repo, voiceState)
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter)
	queue := usecases.NewQueueService(repo, guard, sessions, m.eventBus)
	playback := usecases.NewPlaybackService(repo, guard, sessions, lavalinkAdapter, m.eventBus)
	voiceChannel := usecases.NewVoiceChannelService(repo, guard, sessions, lavalinkAdapter, voiceState)
	filters := usecases.NewFilterService(guard, lavalinkAdapter)
	lyrics := usecases.NewLyricsService(repo, lyricsProvider)
	notifications := usecases.NewNotificationChannelService(repo, notifier, lavalinkAdapter)
	autoplay := usecases.NewAutoplayService(repo, trackLoader, queue, sessions, userInfo, notifier)

	// Application event handlers
	application.NewPlaybackEventHandler(
		playback.PlayNext,
		playback.Advance,
		notifications.NoticeGuild,
		m.eventBus,
	).Start()
	application.NewNotificationEventHandler(notifications, m.eventBus).Start()
	application.NewAutoplayEventHandler(
		func(ctx context.Context, event domain.QueueEmptyEvent) {
			autoplay.Continue(ctx, event)
		},
		m.eventBus,
	).Start()
	application.NewRecoveryEventHandler(
		application.NewServiceRecovery(lavalinkAdapter, playback, voiceChannel, sessions, notifications),
		lavalinkAdapter,
		m.scheduler,
		m.eventBus,
	).Start()

	// Presentation
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		filters,
		lyrics,
		m.scheduler,
	)
	m.autocomplete = discord.NewAutocompleteHandler(usecases.NewAutocompleteService(repo, trackLoader))
	m.eventHandlers = discord.NewEventHandlers(botID, voiceChannel)

	m.scheduler.Schedule("restore:always_on", restoreDelay, func(ctx context.Context) {
		if restored := voiceChannel.RestoreAlwaysOn(ctx); restored > 0 {
			slog.Info("restored 24/7 sessions", "count", restored)
		}
	})

	slog.Info("initialized music player",
		"lavalink", m.config.LavalinkHost,
		"persistent_preferences", m.config.DatabasePath != "",
		"idle_timeout", sessions.IdleTimeout(),
	)

	return nil
}

// openPreferences opens the SQLite store when a database path is configured.
func (m *MusicPlayerModule) openPreferences() (preferenceStore, error) {
	if m.config.DatabasePath == "" {
		return infrastructure.NewMemoryPreferenceStore(), nil
	}
	return infrastructure.OpenSQLitePreferenceStore(m.ctx, m.config.DatabasePath)
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}

	// Pending search and lyrics views hold scheduler tasks
	if m.commandHandlers != nil {
		m.commandHandlers.Close()
	}
	if m.scheduler != nil {
		m.scheduler.Close()
	}
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}
	if m.preferences != nil {
		return m.preferences.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
