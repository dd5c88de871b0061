package presentation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/info/application"
	"github.com/sglre6355/cadence/internal/modules/info/domain"
)

func interaction(id string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: id}}
}

func TestPingHandler_ReturnsMessage(t *testing.T) {
	handler := NewPingHandler()
	responder := &bot.MockResponder{}

	err := handler.Handle(nil, interaction("not-a-snowflake"), responder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if responder.LastResponse == nil {
		t.Fatal("expected response, got nil")
	}

	if responder.LastResponse.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("expected response type %d, got %d",
			discordgo.InteractionResponseChannelMessageWithSource,
			responder.LastResponse.Type)
	}

	data := responder.LastResponse.Data
	if data == nil {
		t.Fatal("expected response data, got nil")
	}

	if !strings.HasPrefix(data.Content, "Pong!") {
		t.Errorf("expected content starting with %q, got %q", "Pong!", data.Content)
	}
}

func TestPingHandler_ResponderError(t *testing.T) {
	handler := NewPingHandler()
	expectedErr := errors.New("responder failed")
	responder := &bot.MockResponder{Err: expectedErr}

	err := handler.Handle(nil, interaction("1"), responder)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestStatsHandler(t *testing.T) {
	handler := NewStatsHandler(application.NewStatsInteractor("1.0.0", application.StatsSource{
		Guilds:   func() int { return 3 },
		Sessions: func() int { return 1 },
	}))
	responder := &bot.MockResponder{}

	if err := handler.Handle(nil, interaction("1"), responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	embeds := responder.LastResponse.Data.Embeds
	if len(embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(embeds))
	}
	fields := map[string]string{}
	for _, f := range embeds[0].Fields {
		fields[f.Name] = f.Value
	}
	if fields["Servers"] != "3" || fields["Players"] != "1" {
		t.Errorf("unexpected fields %v", fields)
	}
	if !strings.HasPrefix(fields["Version"], "1.0.0") {
		t.Errorf("expected the version field, got %q", fields["Version"])
	}
}

func TestLinkHandler(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		responder := &bot.MockResponder{}
		handler := NewLinkHandler("Invite", "https://example.com/invite", "Add me!")

		if err := handler.Handle(nil, interaction("1"), responder); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data := responder.LastResponse.Data
		row, ok := data.Components[0].(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("expected an actions row, got %T", data.Components[0])
		}
		button := row.Components[0].(discordgo.Button)
		if button.URL != "https://example.com/invite" || button.Style != discordgo.LinkButton {
			t.Errorf("unexpected button %+v", button)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		responder := &bot.MockResponder{}
		handler := NewLinkHandler("Vote", "", "Vote for me!")

		if err := handler.Handle(nil, interaction("1"), responder); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data := responder.LastResponse.Data
		if data.Flags&discordgo.MessageFlagsEphemeral == 0 {
			t.Error("expected an ephemeral reply")
		}
		if len(data.Components) != 0 {
			t.Error("expected no link button")
		}
	})
}

func TestHelpHandler(t *testing.T) {
	handler := NewHelpHandler(func() []*discordgo.ApplicationCommand {
		return []*discordgo.ApplicationCommand{
			{Name: "skip", Description: "Skip the current track"},
			{Name: "play", Description: "Play a track"},
		}
	})
	responder := &bot.MockResponder{}

	if err := handler.Handle(nil, interaction("1"), responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	description := responder.LastResponse.Data.Embeds[0].Description
	expected := "`/play` Play a track\n`/skip` Skip the current track"
	if description != expected {
		t.Errorf("expected %q, got %q", expected, description)
	}
}

func TestHelpEmbed_Truncates(t *testing.T) {
	commands := make([]domain.CommandSummary, 100)
	for i := range commands {
		commands[i] = domain.CommandSummary{Name: "command", Description: strings.Repeat("x", 90)}
	}

	embed := HelpEmbed(commands)
	if len(embed.Description) > maxHelpDescription {
		t.Errorf("expected at most %d characters, got %d", maxHelpDescription, len(embed.Description))
	}
}

func TestStatsEmbed_Uptime(t *testing.T) {
	embed := StatsEmbed(&domain.Stats{Uptime: 2 * time.Hour})

	for _, f := range embed.Fields {
		if f.Name == "Uptime" && f.Value != "2h 0m" {
			t.Errorf("expected uptime 2h 0m, got %q", f.Value)
		}
	}
}
