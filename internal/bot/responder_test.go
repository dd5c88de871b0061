package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestMockResponder(t *testing.T) {
	r := &MockResponder{}

	if err := r.Defer(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Deferred || !r.Ephemeral {
		t.Error("expected an ephemeral deferral to be recorded")
	}

	if err := r.Send(&discordgo.InteractionResponseData{Content: "done"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LastResponse.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("unexpected response type %d", r.LastResponse.Type)
	}
	if r.LastResponse.Data.Content != "done" {
		t.Errorf("expected content %q, got %q", "done", r.LastResponse.Data.Content)
	}
}

func TestMockResponder_Error(t *testing.T) {
	expectedErr := errors.New("unknown interaction")
	r := &MockResponder{Err: expectedErr}

	if err := r.Send(&discordgo.InteractionResponseData{}); !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestWebhookEdit(t *testing.T) {
	t.Run("omits nil slices", func(t *testing.T) {
		edit := webhookEdit(&discordgo.InteractionResponseData{Content: "hi"})
		if edit.Embeds != nil || edit.Components != nil {
			t.Error("expected nil embeds and components")
		}
		if edit.Content == nil || *edit.Content != "hi" {
			t.Error("expected the content to be set")
		}
	})

	t.Run("keeps empty components", func(t *testing.T) {
		edit := webhookEdit(&discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Description: "x"}},
			Components: []discordgo.MessageComponent{},
		})
		if edit.Embeds == nil || len(*edit.Embeds) != 1 {
			t.Error("expected one embed")
		}
		if edit.Components == nil || len(*edit.Components) != 0 {
			t.Error("expected an explicit empty component list")
		}
	})
}
