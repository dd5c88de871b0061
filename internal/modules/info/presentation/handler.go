package presentation

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/info/application"
	"github.com/sglre6355/cadence/internal/modules/info/domain"
)

const (
	colorInfo  = 0x5865F2
	colorError = 0xE74C3C

	maxHelpDescription = 4096
)

// PingHandler handles the /ping command.
type PingHandler struct {
	interactor *application.PingInteractor
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler() *PingHandler {
	return &PingHandler{
		interactor: application.NewPingInteractor(),
	}
}

// Handle processes the ping command and sends the response.
func (h *PingHandler) Handle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	var gateway time.Duration
	if s != nil {
		gateway = s.HeartbeatLatency()
	}

	created := time.Now()
	if id, err := snowflake.Parse(i.ID); err == nil {
		created = id.Time()
	}

	result := h.interactor.Execute(gateway, created)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: result.Message(),
		},
	})
}

// StatsHandler handles the /stats command.
type StatsHandler struct {
	interactor *application.StatsInteractor
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(interactor *application.StatsInteractor) *StatsHandler {
	return &StatsHandler{interactor: interactor}
}

// Handle replies with a snapshot of the bot's runtime state.
func (h *StatsHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	stats := h.interactor.Execute()

	return r.Send(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{StatsEmbed(stats)},
	})
}

// StatsEmbed renders stats as an embed.
func StatsEmbed(stats *domain.Stats) *discordgo.MessageEmbed {
	field := func(name, value string) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true}
	}

	return &discordgo.MessageEmbed{
		Title: "Stats",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("Servers", strconv.Itoa(stats.Guilds)),
			field("Players", strconv.Itoa(stats.Sessions)),
			field("Uptime", domain.FormatUptime(stats.Uptime)),
			field("Memory", domain.FormatBytes(stats.HeapBytes)),
			field("Goroutines", strconv.Itoa(stats.Goroutines)),
			field("Version", fmt.Sprintf("%s (%s)", stats.Version, stats.GoVersion)),
		},
	}
}

// LinkHandler answers a command with a single link button, e.g. /invite.
type LinkHandler struct {
	label   string
	url     string
	message string
}

// NewLinkHandler creates a LinkHandler. An empty url makes the command
// reply that the link is not configured.
func NewLinkHandler(label, url, message string) *LinkHandler {
	return &LinkHandler{label: label, url: url, message: message}
}

// Handle sends the link.
func (h *LinkHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	if h.url == "" {
		return r.Send(&discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Description: "This link is not configured.",
				Color:       colorError,
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		})
	}

	return r.Send(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Description: h.message,
			Color:       colorInfo,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: h.label,
						Style: discordgo.LinkButton,
						URL:   h.url,
					},
				},
			},
		},
	})
}

// HelpHandler handles the /help command.
type HelpHandler struct {
	commands func() []*discordgo.ApplicationCommand
}

// NewHelpHandler creates a HelpHandler listing the given commands.
func NewHelpHandler(commands func() []*discordgo.ApplicationCommand) *HelpHandler {
	return &HelpHandler{commands: commands}
}

// Handle replies with every registered command.
func (h *HelpHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	summaries := make([]domain.CommandSummary, 0)
	for _, cmd := range h.commands() {
		summaries = append(summaries, domain.CommandSummary{Name: cmd.Name, Description: cmd.Description})
	}

	return r.Send(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{HelpEmbed(domain.SortCommands(summaries))},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// HelpEmbed lists the commands, one per line, within the embed limit.
func HelpEmbed(commands []domain.CommandSummary) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, cmd := range commands {
		line := fmt.Sprintf("`/%s` %s\n", cmd.Name, cmd.Description)
		if b.Len()+len(line) > maxHelpDescription {
			break
		}
		b.WriteString(line)
	}

	return &discordgo.MessageEmbed{
		Title:       "Commands",
		Description: strings.TrimSuffix(b.String(), "\n"),
		Color:       colorInfo,
	}
}

// MentionHandler replies to messages that only mention the bot.
type MentionHandler struct {
	interactor *application.MentionInteractor
}

// NewMentionHandler creates a new MentionHandler.
func NewMentionHandler(botID string) *MentionHandler {
	return &MentionHandler{
		interactor: application.NewMentionInteractor(botID),
	}
}

// HandleMessage is the discordgo event handler for MessageCreate events.
func (h *MentionHandler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	result := h.interactor.Execute(m.Content)
	if result.ShouldRespond {
		if _, err := s.ChannelMessageSend(m.ChannelID, result.Response); err != nil {
			slog.Error("failed to send message", "channel", m.ChannelID, "error", err)
		}
	}
}
