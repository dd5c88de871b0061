package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a raw initial response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction so the handler may take longer than 3 seconds.
	Defer(ephemeral bool) error

	// Send delivers a message, choosing between the initial response,
	// editing the deferred response and a follow-up.
	Send(data *discordgo.InteractionResponseData) error
}

// DiscordResponder implements Responder using a live Discord session.
// It tracks whether the interaction was already deferred or answered.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	deferred bool
	replied  bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.session.InteractionRespond(r.interaction, response); err != nil {
		return err
	}

	switch response.Type {
	case discordgo.InteractionResponseDeferredChannelMessageWithSource,
		discordgo.InteractionResponseDeferredMessageUpdate:
		r.deferred = true
	default:
		r.replied = true
	}
	return nil
}

// Defer acknowledges the interaction. It is a no-op once acknowledged.
func (r *DiscordResponder) Defer(ephemeral bool) error {
	r.mu.Lock()
	acknowledged := r.deferred || r.replied
	r.mu.Unlock()
	if acknowledged {
		return nil
	}

	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// Send delivers a message according to the interaction's state.
func (r *DiscordResponder) Send(data *discordgo.InteractionResponseData) error {
	r.mu.Lock()
	deferred, replied := r.deferred, r.replied
	r.mu.Unlock()

	switch {
	case !deferred && !replied:
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		})

	case deferred && !replied:
		if _, err := r.session.InteractionResponseEdit(r.interaction, webhookEdit(data)); err != nil {
			return err
		}
		r.mu.Lock()
		r.replied = true
		r.mu.Unlock()
		return nil

	default:
		_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
			Content:    data.Content,
			Embeds:     data.Embeds,
			Components: data.Components,
			Files:      data.Files,
			Flags:      data.Flags,
		})
		return err
	}
}

// webhookEdit converts response data into an edit of the deferred response.
// Nil slices are left out; a pointer to one would clear the field.
func webhookEdit(data *discordgo.InteractionResponseData) *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{
		Content: &data.Content,
		Files:   data.Files,
	}
	if data.Embeds != nil {
		edit.Embeds = &data.Embeds
	}
	if data.Components != nil {
		edit.Components = &data.Components
	}
	return edit
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Deferred     bool
	Ephemeral    bool
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records the deferral for testing.
func (m *MockResponder) Defer(ephemeral bool) error {
	m.Deferred = true
	m.Ephemeral = ephemeral
	return m.Err
}

// Send records the message as a channel message response.
func (m *MockResponder) Send(data *discordgo.InteractionResponseData) error {
	return m.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}
