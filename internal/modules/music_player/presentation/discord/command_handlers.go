package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/bot"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
)

// commandTimeout bounds a single command, including node round trips.
const commandTimeout = 15 * time.Second

// Now-playing styles.
const (
	styleEmbed = "embed"
	styleCard  = "card"
	styleASCII = "ascii"
)

// userErrors are shown to the user as-is; anything else is reported generically.
var userErrors = []error{
	usecases.ErrNotConnected,
	usecases.ErrUserNotInVoice,
	usecases.ErrNotSameChannel,
	usecases.ErrNotPlaying,
	usecases.ErrNotPaused,
	usecases.ErrNoResults,
	usecases.ErrQueueEmpty,
	usecases.ErrInvalidPosition,
	usecases.ErrAlreadyAtPosition,
	usecases.ErrInvalidVolume,
	usecases.ErrInvalidLoopMode,
	usecases.ErrUnknownFilter,
	usecases.ErrFilterAlreadyActive,
	usecases.ErrNoFilterActive,
	usecases.ErrNoAutoplayReference,
	usecases.ErrNoAutoplayCandidates,
	usecases.ErrLoadFailed,
	usecases.ErrInvalidTimescale,
	usecases.ErrLyricsNotFound,
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	trackLoader  *usecases.TrackLoaderService
	filters      *usecases.FilterService
	lyrics       *usecases.LyricsService

	searches *interactionStore[*searchView]
	pages    *interactionStore[*lyricsView]
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	filters *usecases.FilterService,
	lyrics *usecases.LyricsService,
	scheduler usecases.Scheduler,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		trackLoader:  trackLoader,
		filters:      filters,
		lyrics:       lyrics,
		searches:     newInteractionStore[*searchView]("search", scheduler, searchWindow),
		pages:        newInteractionStore[*lyricsView]("lyrics", scheduler, lyricsWindow),
	}
}

// Handlers returns the handler of every slash command, keyed by command name.
func (h *CommandHandlers) Handlers() map[string]bot.InteractionHandler {
	handlers := map[string]bot.InteractionHandler{
		"play":        h.HandlePlay,
		"search":      h.HandleSearch,
		"pause":       h.HandlePause,
		"resume":      h.HandleResume,
		"stop":        h.HandleStop,
		"skip":        h.HandleSkip,
		"replay":      h.HandleReplay,
		"join":        h.HandleJoin,
		"leave":       h.HandleLeave,
		"volume":      h.HandleVolume,
		"queue":       h.HandleQueue,
		"nowplaying":  h.HandleNowPlaying,
		"shuffle":     h.HandleShuffle,
		"loop":        h.HandleLoop,
		"remove":      h.HandleRemove,
		"move":        h.HandleMove,
		"lyrics":      h.HandleLyrics,
		"timescale":   h.HandleTimescale,
		"clearfilter": h.HandleClearFilter,
		"247":         h.HandleAlwaysOn,
		"autoplay":    h.HandleAutoplay,
	}
	for _, fc := range filterCommands {
		handlers[fc.name] = h.filterHandler(fc.filter)
	}
	return handlers
}

// Close releases pending search and lyrics interactions.
func (h *CommandHandlers) Close() {
	h.searches.Clear()
	h.pages.Clear()
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	scope, err := parseScope(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	query := stringOption(i, "query")

	// joining and resolving can outlast the 3 second acknowledgement window
	if err := r.Defer(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	loaded, err := h.trackLoader.LoadTrack(ctx, usecases.LoadTrackInput{
		Query:     query,
		Requester: requester(i),
	})
	if err != nil {
		return handleError(r, err)
	}

	return h.enqueue(ctx, r, scope, loaded.Tracks, loaded.PlaylistName)
}

// enqueue joins the user's channel if needed and queues the tracks.
func (h *CommandHandlers) enqueue(
	ctx context.Context,
	r bot.Responder,
	scope usecases.CommandScope,
	tracks []*usecases.Track,
	playlistName string,
) error {
	_, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               scope.GuildID,
		UserID:                scope.UserID,
		NotificationChannelID: scope.NotificationChannelID,
	})
	if err != nil {
		return handleError(r, err)
	}

	added, err := h.queue.Add(ctx, usecases.QueueAddInput{
		CommandScope: scope,
		Tracks:       tracks,
	})
	if err != nil {
		return handleError(r, err)
	}

	var description string
	switch {
	case playlistName != "":
		description = fmt.Sprintf("Added **%d tracks** from **%s** to the queue.",
			len(tracks), escapeMarkdown(playlistName))
	case added.WasIdle:
		description = fmt.Sprintf("Playing %s.", trackLink(tracks[0]))
	case added.Position == 0:
		description = fmt.Sprintf("Added %s. It plays next.", trackLink(tracks[0]))
	default:
		description = fmt.Sprintf("Added %s to the queue at position %d.", trackLink(tracks[0]), added.Position)
	}

	return respondSuccess(r, description)
}

// HandleSearch handles the /search command.
func (h *CommandHandlers) HandleSearch(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	scope, err := parseScope(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	query := stringOption(i, "query")

	if err := r.Defer(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	results, err := h.trackLoader.SearchTracks(ctx, usecases.SearchTracksInput{Query: query})
	if err != nil {
		return handleError(r, err)
	}
	if len(results) == 0 {
		return handleError(r, usecases.ErrNoResults)
	}

	tracks := make([]*usecases.Track, len(results))
	for idx := range results {
		tracks[idx] = &results[idx]
	}

	view := &searchView{
		scope:       scope,
		requester:   requester(i),
		tracks:      tracks,
		interaction: i.Interaction,
	}
	token := h.searches.Put(view, func(ctx context.Context, view *searchView) {
		expireMessage(ctx, s, view.interaction, "This search has expired.")
	})

	return r.Send(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{searchEmbed(query, tracks, searchWindow)},
		Components: searchMenu(token, tracks),
	})
}

// HandlePause handles the /pause command. It resumes playback when paused.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		out, err := h.playback.Pause(ctx, scope)
		if err != nil {
			return handleError(r, err)
		}
		if out.Paused {
			return respondSuccess(r, "Paused playback.")
		}
		return respondSuccess(r, "Resumed playback.")
	})
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		if err := h.playback.Resume(ctx, scope); err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, "Resumed playback.")
	})
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		if err := h.playback.Stop(ctx, scope); err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, "Stopped playback and cleared the queue.")
	})
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		amount, _ := intOption(i, "amount")
		out, err := h.playback.Skip(ctx, usecases.SkipInput{
			CommandScope: scope,
			Amount:       amount,
		})
		if err != nil {
			return handleError(r, err)
		}

		description := fmt.Sprintf("Skipped %s.", trackLink(out.SkippedTrack))
		if amount > 1 {
			description = fmt.Sprintf("Skipped %d tracks.", amount)
		}
		if out.NextTrack != nil {
			description += fmt.Sprintf("\nUp next: %s", trackLink(out.NextTrack))
		}
		return respondSuccess(r, description)
	})
}

// HandleReplay handles the /replay command.
func (h *CommandHandlers) HandleReplay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		track, err := h.playback.Replay(ctx, scope)
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf("Restarted %s.", trackLink(track)))
	})
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		out, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
			GuildID:               scope.GuildID,
			UserID:                scope.UserID,
			NotificationChannelID: scope.NotificationChannelID,
		})
		if err != nil {
			return handleError(r, err)
		}
		if out.AlreadyConnected {
			return respondEphemeral(r, fmt.Sprintf("Already connected to <#%d>.", out.VoiceChannelID))
		}
		return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", out.VoiceChannelID))
	})
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		if err := h.voiceChannel.Leave(ctx, scope); err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, "Disconnected.")
	})
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		input := usecases.VolumeInput{CommandScope: scope}
		if level, ok := intOption(i, "level"); ok {
			input.Level = &level
		}

		volume, err := h.playback.Volume(ctx, input)
		if err != nil {
			return handleError(r, err)
		}
		if input.Level == nil {
			return respondEphemeral(r, fmt.Sprintf("The volume is **%d%%**.", volume))
		}
		return respondSuccess(r, fmt.Sprintf("Set the volume to **%d%%**.", volume))
	})
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}
	page, ok := intOption(i, "page")
	if !ok {
		page = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := h.queue.List(ctx, usecases.QueueListInput{
		GuildID: guildID,
		Page:    page,
	})
	if err != nil {
		return handleError(r, err)
	}

	return r.Send(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{QueueEmbed(out)},
	})
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	info, err := h.playback.NowPlaying(ctx, guildID)
	if err != nil {
		return handleError(r, err)
	}

	switch stringOption(i, "style") {
	case styleCard:
		card, err := RenderNowPlayingCard(info)
		if err != nil {
			slog.Warn("failed to render card, falling back to text", "guild", guildID, "error", err)
			return r.Send(&discordgo.InteractionResponseData{Content: RenderASCIICard(info)})
		}
		return r.Send(&discordgo.InteractionResponseData{
			Files: []*discordgo.File{
				{
					Name:        "nowplaying.png",
					ContentType: "image/png",
					Reader:      bytes.NewReader(card),
				},
			},
		})
	case styleASCII:
		return r.Send(&discordgo.InteractionResponseData{Content: RenderASCIICard(info)})
	default:
		return r.Send(&discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{NowPlayingEmbed(info, "")},
		})
	}
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		count, err := h.queue.Shuffle(ctx, scope)
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf("Shuffled **%d** tracks.", count))
	})
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		mode, err := h.playback.SetLoopMode(ctx, usecases.SetLoopModeInput{
			CommandScope: scope,
			Mode:         stringOption(i, "mode"),
		})
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf("Loop mode set to **%s**.", loopModeLabel(mode)))
	})
}

// HandleRemove handles the /remove command.
func (h *CommandHandlers) HandleRemove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		position, _ := intOption(i, "position")
		track, err := h.queue.Remove(ctx, usecases.QueueRemoveInput{
			CommandScope: scope,
			Position:     position,
		})
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf("Removed %s from the queue.", trackLink(track)))
	})
}

// HandleMove handles the /move command.
func (h *CommandHandlers) HandleMove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		from, _ := intOption(i, "from")
		to, _ := intOption(i, "to")
		track, err := h.queue.Move(ctx, usecases.QueueMoveInput{
			CommandScope: scope,
			From:         from,
			To:           to,
		})
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf("Moved %s to position %d.", trackLink(track), to))
	})
}

// HandleLyrics handles the /lyrics command.
func (h *CommandHandlers) HandleLyrics(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := r.Defer(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	lyrics, err := h.lyrics.Find(ctx, usecases.LyricsInput{
		GuildID: guildID,
		Query:   stringOption(i, "query"),
	})
	if err != nil {
		return handleError(r, err)
	}

	view := &lyricsView{
		lyrics:      lyrics,
		pages:       lyricsPages(lyrics.Lines),
		interaction: i.Interaction,
	}

	var token string
	if len(view.pages) > 1 {
		token = h.pages.Put(view, func(ctx context.Context, view *lyricsView) {
			expireMessage(ctx, s, view.interaction, "")
		})
	}

	return r.Send(view.render(token))
}

// HandleTimescale handles the /timescale command.
func (h *CommandHandlers) HandleTimescale(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		timescale, err := h.filters.Timescale(ctx, usecases.TimescaleInput{
			CommandScope: scope,
			Speed:        floatOption(i, "speed"),
			Pitch:        floatOption(i, "pitch"),
			Rate:         floatOption(i, "rate"),
		})
		if err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf(
			"Set the timescale to speed **%.2f**, pitch **%.2f**, rate **%.2f**.",
			timescale.Speed, timescale.Pitch, timescale.Rate,
		))
	})
}

// filterHandler returns the handler of a filter preset command.
func (h *CommandHandlers) filterHandler(filter usecases.FilterName) bot.InteractionHandler {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
		return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
			err := h.filters.Apply(ctx, usecases.ApplyFilterInput{
				CommandScope: scope,
				Name:         filter,
			})
			if err != nil {
				return handleError(r, err)
			}
			return respondSuccess(r, fmt.Sprintf("Applied the **%s** filter.", filter))
		})
	}
}

// HandleClearFilter handles the /clearfilter command.
func (h *CommandHandlers) HandleClearFilter(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		if err := h.filters.Clear(ctx, scope); err != nil {
			return handleError(r, err)
		}
		return respondSuccess(r, "Cleared the audio filter.")
	})
}

// HandleAlwaysOn handles the /247 command.
func (h *CommandHandlers) HandleAlwaysOn(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		out, err := h.voiceChannel.ToggleAlwaysOn(ctx, scope)
		if err != nil {
			return handleError(r, err)
		}
		if out.Enabled {
			return respondSuccess(r, "24/7 mode is **on**. I'll stay in the voice channel.")
		}
		return respondSuccess(r, "24/7 mode is **off**.")
	})
}

// HandleAutoplay handles the /autoplay command.
func (h *CommandHandlers) HandleAutoplay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.withScope(i, r, func(ctx context.Context, scope usecases.CommandScope) error {
		out, err := h.voiceChannel.ToggleAutoplay(ctx, scope)
		if err != nil {
			return handleError(r, err)
		}
		if out.Enabled {
			return respondSuccess(r, "Autoplay is **on**. I'll keep playing related tracks.")
		}
		return respondSuccess(r, "Autoplay is **off**.")
	})
}

// withScope parses the command scope and runs fn with a bounded context.
func (h *CommandHandlers) withScope(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	fn func(ctx context.Context, scope usecases.CommandScope) error,
) error {
	scope, err := parseScope(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	return fn(ctx, scope)
}

// parseScope extracts the guild, user and channel of an interaction.
func parseScope(i *discordgo.InteractionCreate) (usecases.CommandScope, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return usecases.CommandScope{}, errors.New("invalid guild")
	}
	if i.Member == nil || i.Member.User == nil {
		return usecases.CommandScope{}, errors.New("invalid user")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return usecases.CommandScope{}, errors.New("invalid user")
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return usecases.CommandScope{}, errors.New("invalid notification channel")
	}

	return usecases.CommandScope{
		GuildID:               guildID,
		UserID:                userID,
		NotificationChannelID: channelID,
	}, nil
}

// requester describes the member who issued the interaction.
func requester(i *discordgo.InteractionCreate) usecases.Requester {
	if i.Member == nil || i.Member.User == nil {
		return usecases.Requester{}
	}
	user := i.Member.User
	id, _ := snowflake.Parse(user.ID)

	name := i.Member.Nick
	if name == "" {
		name = user.GlobalName
	}
	if name == "" {
		name = user.Username
	}

	return usecases.Requester{
		ID:        id,
		Name:      name,
		AvatarURL: user.AvatarURL(""),
	}
}

// handleError reports known errors to the user and returns the rest to the bot.
func handleError(r bot.Responder, err error) error {
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return respondError(r, sentence(err.Error()))
		}
	}
	return err
}

// sentence capitalizes the first letter and ends the message with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(first)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func findOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
	name string,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	if opt := findOption(i.ApplicationCommandData().Options, name); opt != nil {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func intOption(i *discordgo.InteractionCreate, name string) (int, bool) {
	if opt := findOption(i.ApplicationCommandData().Options, name); opt != nil {
		return int(opt.IntValue()), true
	}
	return 0, false
}

func floatOption(i *discordgo.InteractionCreate, name string) float64 {
	if opt := findOption(i.ApplicationCommandData().Options, name); opt != nil {
		return opt.FloatValue()
	}
	return 0
}
