package info

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/metrics"
	"github.com/sglre6355/cadence/internal/modules/info/application"
	"github.com/sglre6355/cadence/internal/modules/info/presentation"
)

func init() {
	bot.Register(&InfoModule{})
}

// InfoModule provides commands about the bot itself, like /ping and /help.
type InfoModule struct {
	pingHandler    *presentation.PingHandler
	statsHandler   *presentation.StatsHandler
	inviteHandler  *presentation.LinkHandler
	supportHandler *presentation.LinkHandler
	voteHandler    *presentation.LinkHandler
	helpHandler    *presentation.HelpHandler
	mentionHandler *presentation.MentionHandler
}

// Name returns the module name.
func (m *InfoModule) Name() string {
	return "info"
}

// Commands returns the slash commands for this module.
func (m *InfoModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "ping", Description: "Show the bot's latency"},
		{Name: "stats", Description: "Show bot statistics"},
		{Name: "invite", Description: "Add the bot to your server"},
		{Name: "support", Description: "Join the support server"},
		{Name: "vote", Description: "Vote for the bot"},
		{Name: "help", Description: "List all commands"},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *InfoModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"ping":    m.pingHandler.Handle,
		"stats":   m.statsHandler.Handle,
		"invite":  m.inviteHandler.Handle,
		"support": m.supportHandler.Handle,
		"vote":    m.voteHandler.Handle,
		"help":    m.helpHandler.Handle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *InfoModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.mentionHandler.HandleMessage,
	}
}

// Init initializes the module.
func (m *InfoModule) Init(deps bot.ModuleDependencies) error {
	cfg := deps.Config
	if cfg == nil {
		cfg = &bot.Config{}
	}

	var botID string
	guilds := func() int { return 0 }
	if deps.Session != nil {
		botID = deps.Session.State.User.ID
		state := deps.Session.State
		guilds = func() int {
			state.RLock()
			defer state.RUnlock()
			return len(state.Guilds)
		}
	}

	commands := deps.Commands
	if commands == nil {
		commands = m.Commands
	}

	m.pingHandler = presentation.NewPingHandler()
	m.statsHandler = presentation.NewStatsHandler(application.NewStatsInteractor(cfg.Version, application.StatsSource{
		Guilds:   guilds,
		Sessions: metrics.ActiveSessions,
	}))
	m.inviteHandler = presentation.NewLinkHandler("Invite", invite(cfg), "Thanks for inviting me!")
	m.supportHandler = presentation.NewLinkHandler("Support Server", cfg.SupportServerURL, "Need help? Join the support server.")
	m.voteHandler = presentation.NewLinkHandler("Vote", cfg.VoteURL, "Enjoying the music? Vote for the bot!")
	m.helpHandler = presentation.NewHelpHandler(commands)
	m.mentionHandler = presentation.NewMentionHandler(botID)
	return nil
}

// invite returns the invite URL, or "" when the client ID is unknown.
func invite(cfg *bot.Config) string {
	if cfg.ClientID == "" {
		return ""
	}
	return cfg.InviteURL()
}

// Shutdown cleans up module resources.
func (m *InfoModule) Shutdown() error {
	return nil
}
