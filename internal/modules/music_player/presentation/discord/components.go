package discord

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// How long interactive messages accept input.
const (
	searchWindow = 30 * time.Second
	lyricsWindow = 120 * time.Second
)

// interactionStore keeps state for interactive messages under random tokens.
// Entries expire through the scheduler after the window elapses.
type interactionStore[T any] struct {
	mu        sync.Mutex
	prefix    string
	scheduler usecases.Scheduler
	window    time.Duration
	entries   map[string]T
}

func newInteractionStore[T any](
	prefix string,
	scheduler usecases.Scheduler,
	window time.Duration,
) *interactionStore[T] {
	return &interactionStore[T]{
		prefix:    prefix,
		scheduler: scheduler,
		window:    window,
		entries:   make(map[string]T),
	}
}

func (s *interactionStore[T]) taskKey(token string) string {
	return "interaction:" + s.prefix + ":" + token
}

// Put stores value and returns its token. onExpire runs if the entry is
// still present when the window elapses.
func (s *interactionStore[T]) Put(value T, onExpire func(ctx context.Context, value T)) string {
	token := rand.Text()

	s.mu.Lock()
	s.entries[token] = value
	s.mu.Unlock()

	s.scheduler.Schedule(s.taskKey(token), s.window, func(ctx context.Context) {
		value, ok := s.remove(token)
		if ok && onExpire != nil {
			onExpire(ctx, value)
		}
	})
	return token
}

// Get returns the value stored under token.
func (s *interactionStore[T]) Get(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[token]
	return value, ok
}

// Take removes and returns the value stored under token, cancelling its expiry.
func (s *interactionStore[T]) Take(token string) (T, bool) {
	value, ok := s.remove(token)
	if ok {
		s.scheduler.Cancel(s.taskKey(token))
	}
	return value, ok
}

// Len returns the number of live entries.
func (s *interactionStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops every entry without running expiry callbacks.
func (s *interactionStore[T]) Clear() {
	s.mu.Lock()
	tokens := make([]string, 0, len(s.entries))
	for token := range s.entries {
		tokens = append(tokens, token)
	}
	clear(s.entries)
	s.mu.Unlock()

	for _, token := range tokens {
		s.scheduler.Cancel(s.taskKey(token))
	}
}

func (s *interactionStore[T]) remove(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	return value, ok
}

// searchView is a pending /search selection.
type searchView struct {
	scope       usecases.CommandScope
	requester   usecases.Requester
	tracks      []*usecases.Track
	interaction *discordgo.Interaction
}

// lyricsView is a paginated /lyrics message.
type lyricsView struct {
	mu          sync.Mutex
	lyrics      *usecases.Lyrics
	pages       []string
	page        int
	interaction *discordgo.Interaction
}

// turn moves to the previous or next page, staying within bounds.
func (v *lyricsView) turn(direction string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch direction {
	case "prev":
		v.page = max(v.page-1, 0)
	case "next":
		v.page = min(v.page+1, len(v.pages)-1)
	}
}

// render builds the message for the current page. An empty token omits the buttons.
func (v *lyricsView) render(token string) *discordgo.InteractionResponseData {
	v.mu.Lock()
	defer v.mu.Unlock()

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{LyricsEmbed(v.lyrics, v.pages, v.page)},
	}
	if token != "" {
		data.Components = lyricsControls(token, v.page, len(v.pages))
	}
	return data
}

// expireMessage strips the components from an interaction's original response,
// replacing its embeds with notice when one is given.
func expireMessage(ctx context.Context, s *discordgo.Session, interaction *discordgo.Interaction, notice string) {
	components := []discordgo.MessageComponent{}
	edit := &discordgo.WebhookEdit{Components: &components}
	if notice != "" {
		embeds := []*discordgo.MessageEmbed{{Description: notice, Color: colorInfo}}
		edit.Embeds = &embeds
	}

	if _, err := s.InteractionResponseEdit(interaction, edit, discordgo.WithContext(ctx)); err != nil {
		slog.Debug("failed to expire interactive message", "error", err)
	}
}

// ComponentHandlers returns the message component handlers, keyed by custom ID prefix.
func (h *CommandHandlers) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"search": h.HandleSearchSelect,
		"lyrics": h.HandleLyricsPage,
		"np":     h.HandleNowPlayingControl,
	}
}

// HandleSearchSelect handles a pick from the /search select menu.
func (h *CommandHandlers) HandleSearchSelect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	data := i.MessageComponentData()
	_, token, _ := strings.Cut(data.CustomID, ":")

	view, ok := h.searches.Get(token)
	if !ok {
		return respondError(r, "This search has expired.")
	}
	if componentUserID(i) != view.scope.UserID {
		return respondError(r, "Only the person who searched can pick a track.")
	}
	if len(data.Values) == 0 {
		return respondError(r, "Pick a track from the list.")
	}
	index, err := strconv.Atoi(data.Values[0])
	if err != nil || index < 0 || index >= len(view.tracks) {
		return respondError(r, "Pick a track from the list.")
	}

	// a concurrent pick or the expiry may have won
	if _, ok := h.searches.Take(token); !ok {
		return respondError(r, "This search has expired.")
	}

	track := view.tracks[index].WithRequester(view.requester.ID, view.requester.Name, view.requester.AvatarURL)

	err = r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Description: "Selected " + trackLink(track) + ".", Color: colorInfo},
			},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	return h.enqueue(ctx, r, view.scope, []*usecases.Track{track}, "")
}

// HandleLyricsPage handles the lyrics pagination buttons.
func (h *CommandHandlers) HandleLyricsPage(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 3 {
		return fmt.Errorf("malformed lyrics custom ID %q", i.MessageComponentData().CustomID)
	}
	token, direction := parts[1], parts[2]

	view, ok := h.pages.Get(token)
	if !ok {
		return respondError(r, "These lyrics have expired. Run /lyrics again.")
	}
	view.turn(direction)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: view.render(token),
	})
}

// HandleNowPlayingControl handles the buttons on the "Now Playing" message.
func (h *CommandHandlers) HandleNowPlayingControl(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	customID := i.MessageComponentData().CustomID

	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		switch customID {
		case customIDPause:
			out, err := h.playback.Pause(ctx, scope)
			if err != nil {
				return handleError(r, err)
			}
			var embeds []*discordgo.MessageEmbed
			if i.Message != nil {
				embeds = withStatus(i.Message.Embeds, out.Paused)
			}
			return r.Respond(&discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseUpdateMessage,
				Data: &discordgo.InteractionResponseData{
					Embeds:     embeds,
					Components: NowPlayingControls(out.Paused),
				},
			})

		case customIDSkip:
			out, err := h.playback.Skip(ctx, usecases.SkipInput{CommandScope: scope})
			if err != nil {
				return handleError(r, err)
			}
			return respondEphemeral(r, fmt.Sprintf("Skipped %s.", trackLink(out.SkippedTrack)))

		case customIDStop:
			if err := h.playback.Stop(ctx, scope); err != nil {
				return handleError(r, err)
			}
			return respondEphemeral(r, "Stopped playback and cleared the queue.")

		case customIDLoop:
			mode, err := h.playback.CycleLoopMode(ctx, scope)
			if err != nil {
				return handleError(r, err)
			}
			return respondEphemeral(r, fmt.Sprintf("Loop mode set to **%s**.", loopModeLabel(mode)))

		case customIDShuffle:
			count, err := h.queue.Shuffle(ctx, scope)
			if err != nil {
				return handleError(r, err)
			}
			return respondEphemeral(r, fmt.Sprintf("Shuffled **%d** tracks.", count))

		default:
			return fmt.Errorf("unknown now playing control %q", customID)
		}
	})
}

// withStatus copies the embeds, replacing the author line with the playback status.
func withStatus(embeds []*discordgo.MessageEmbed, paused bool) []*discordgo.MessageEmbed {
	status := "Now Playing"
	if paused {
		status = "Paused"
	}

	out := make([]*discordgo.MessageEmbed, len(embeds))
	for idx, embed := range embeds {
		c := *embed
		c.Author = &discordgo.MessageEmbedAuthor{Name: status}
		out[idx] = &c
	}
	return out
}

// componentUserID returns the ID of the member who clicked the component.
func componentUserID(i *discordgo.InteractionCreate) snowflake.ID {
	if i.Member == nil || i.Member.User == nil {
		return 0
	}
	id, _ := snowflake.Parse(i.Member.User.ID)
	return id
}
