package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler handles one interaction. A returned error is logged
// and answered with an error embed quoting it.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is any function discordgo's AddHandler accepts,
// e.g. func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is handed to every module's Init.
type ModuleDependencies struct {
	// Session is connected; State.User is populated.
	Session *discordgo.Session
	Config  *Config

	// Commands returns every command registered by all modules.
	Commands func() []*discordgo.ApplicationCommand
}

// Module is a self-contained feature set. The bot drives each module through
// LoadConfig (if configurable), Init after the gateway handshake, route
// registration, and Shutdown when the bot stops.
type Module interface {
	// Name must be unique across the registry.
	Name() string

	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers is keyed by command name. It is read after Init.
	CommandHandlers() map[string]InteractionHandler

	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error
	Shutdown() error
}

// ConfigurableModule loads its configuration before the bot connects, so a
// bad environment fails fast.
type ConfigurableModule interface {
	LoadConfig() error
}

// ComponentModule handles buttons and select menus.
type ComponentModule interface {
	// ComponentHandlers is keyed by custom ID prefix, the part before the first ':'.
	ComponentHandlers() map[string]InteractionHandler
}

// AutocompleteModule suggests values for autocompleted options.
type AutocompleteModule interface {
	// AutocompleteHandlers is keyed by command name.
	AutocompleteHandlers() map[string]InteractionHandler
}
