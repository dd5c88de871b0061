package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// autocompleteTimeout keeps suggestions inside Discord's 3 second window.
const autocompleteTimeout = 2500 * time.Millisecond

// minQueryLength is the shortest play query worth searching for.
const minQueryLength = 2

const maxChoiceName = 100

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(autocomplete *usecases.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{
		autocomplete: autocomplete,
	}
}

// Handlers returns the autocomplete handlers, keyed by command name.
func (h *AutocompleteHandler) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   h.HandlePlay,
		"remove": h.HandleQueuePosition,
		"move":   h.HandleQueuePosition,
	}
}

// HandlePlay suggests tracks for the play query.
func (h *AutocompleteHandler) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	query := strings.TrimSpace(focusedValue(i))
	if len([]rune(query)) < minQueryLength {
		return respondChoices(r, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	suggestions := h.autocomplete.PlayQueries(ctx, query)

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, suggestion := range suggestions {
		// values over the limit would be rejected along with the whole response
		if len(suggestion.Value) > maxChoiceName {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(suggestion.Label, maxChoiceName),
			Value: suggestion.Value,
		})
	}
	return respondChoices(r, choices)
}

// HandleQueuePosition suggests upcoming queue positions. A numeric input
// narrows by position, anything else by title.
func (h *AutocompleteHandler) HandleQueuePosition(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondChoices(r, nil)
	}

	input := strings.TrimSpace(focusedValue(i))
	titleFilter := input
	if _, err := strconv.Atoi(input); err == nil {
		titleFilter = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, usecases.MaxChoices)
	for _, choice := range h.autocomplete.QueuePositions(ctx, guildID, titleFilter) {
		position := strconv.Itoa(choice.Position)
		if titleFilter == "" && input != "" && !strings.HasPrefix(position, input) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s - %s", choice.Position, choice.Track.Title, choice.Track.Artist), maxChoiceName),
			Value: choice.Position,
		})
	}
	return respondChoices(r, choices)
}

// focusedValue returns the raw text of the option being typed.
func focusedValue(i *discordgo.InteractionCreate) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Focused {
			return fmt.Sprint(opt.Value)
		}
	}
	return ""
}

func respondChoices(r bot.Responder, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}
