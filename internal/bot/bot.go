package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/cadence/internal/metrics"
)

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config  *Config
	session *discordgo.Session
	modules []Module
	limiter *RateLimiter

	handlers      *routeTable
	components    *routeTable
	autocompletes *routeTable

	cancel context.CancelFunc
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:        cfg,
		modules:       make([]Module, 0),
		limiter:       NewRateLimiter(cfg.CommandRate, cfg.CommandBurst),
		handlers:      newRouteTable("command"),
		components:    newRouteTable("component"),
		autocompletes: newRouteTable("autocomplete"),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start loads module configuration, connects to Discord, initializes modules
// and registers commands.
func (b *Bot) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)

	if err := b.loadModuleConfigs(); err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	// guild messages carry mentions of the bot even without the message content intent
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMessages
	b.session = session

	// modules need the bot user, which is only known after the handshake
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	if err := b.buildHandlerMap(); err != nil {
		return err
	}
	b.session.AddHandler(b.handleInteraction)
	b.registerEventHandlers()

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	if b.config.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, b.config.MetricsAddr); err != nil {
				slog.Error("failed to serve metrics", "error", err)
			}
		}()
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}

	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// loadModuleConfigs loads the configuration of every configurable module.
func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session:  b.session,
		Config:   b.config,
		Commands: b.collectCommands,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command, component and autocomplete routes.
func (b *Bot) buildHandlerMap() error {
	for _, mod := range b.modules {
		if err := b.handlers.add(mod.Name(), mod.CommandHandlers()); err != nil {
			return err
		}
		if components, ok := mod.(ComponentModule); ok {
			if err := b.components.add(mod.Name(), components.ComponentHandlers()); err != nil {
				return err
			}
		}
		if autocompletes, ok := mod.(AutocompleteModule); ok {
			if err := b.autocompletes.add(mod.Name(), autocompletes.AutocompleteHandlers()); err != nil {
				return err
			}
		}
	}
	slog.Debug("built interaction routes",
		"commands", b.handlers.size(),
		"components", b.components.size(),
		"autocompletes", b.autocompletes.size(),
	)
	return nil
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the global command set with the modules' commands.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands)
	if err != nil {
		return err
	}
	slog.Info("registered commands", "count", len(registered))

	return nil
}

// handleInteraction routes incoming interactions to the appropriate handler.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.handlers.lookup(name)
		if !ok {
			slog.Warn("found no handler for command", "command", name)
			b.respondWithEmbed(s, i, "Unknown Command", "This command is not recognized.", colorYellow)
			return
		}
		b.dispatch(s, i, name, handler, NewDiscordResponder(s, i.Interaction))

	case discordgo.InteractionMessageComponent:
		prefix := componentPrefix(i.MessageComponentData().CustomID)
		handler, ok := b.components.lookup(prefix)
		if !ok {
			slog.Debug("found no handler for component", "custom_id", i.MessageComponentData().CustomID)
			return
		}
		b.dispatch(s, i, "component:"+prefix, handler, NewDiscordResponder(s, i.Interaction))

	case discordgo.InteractionApplicationCommandAutocomplete:
		name := i.ApplicationCommandData().Name
		handler, ok := b.autocompletes.lookup(name)
		if !ok {
			return
		}
		// autocomplete is not rate limited; a limited user would just see no suggestions
		if err := handler(s, i, NewDiscordResponder(s, i.Interaction)); err != nil {
			slog.Debug("failed to handle autocomplete", "command", name, "error", err)
		}
	}
}

// dispatch runs a handler behind the rate limiter and records the outcome.
func (b *Bot) dispatch(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	name string,
	handler InteractionHandler,
	r Responder,
) {
	if !b.limiter.Allow(interactionUserID(i)) {
		metrics.RateLimitedTotal.Inc()
		metrics.CommandsTotal.WithLabelValues(name, metrics.OutcomeRateLimited).Inc()
		if err := r.Send(ephemeralEmbed("You're going too fast. Please wait a moment.", colorYellow)); err != nil {
			slog.Error("failed to send rate limit response", "error", err)
		}
		return
	}

	if err := runHandler(s, i, handler, r); err != nil {
		metrics.CommandsTotal.WithLabelValues(name, metrics.OutcomeError).Inc()
		slog.Error("failed to handle command", "command", name, "error", err)
		if err := r.Send(ephemeralEmbed(fmt.Sprintf("Something went wrong: %s", err.Error()), colorRed)); err != nil {
			slog.Error("failed to send error response", "command", name, "error", err)
		}
		return
	}

	metrics.CommandsTotal.WithLabelValues(name, metrics.OutcomeOK).Inc()
}

// runHandler calls the handler, converting a panic into an error.
func runHandler(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	handler InteractionHandler,
	r Responder,
) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return handler(s, i, r)
}

// componentPrefix returns the routing prefix of a custom ID, e.g. "np" for "np:pause".
func componentPrefix(customID string) string {
	prefix, _, _ := strings.Cut(customID, ":")
	return prefix
}

// interactionUserID returns the ID of the user who triggered the interaction.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func ephemeralEmbed(description string, color int) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Description: description,
				Color:       color,
			},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	}
}

// respondWithEmbed sends an embed response to an interaction.
func (b *Bot) respondWithEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	title, description string,
	color int,
) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
