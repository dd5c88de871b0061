package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// Voice gateway close codes that are not connection failures.
const (
	closeNormal       = 1000
	closeDisconnected = 4014 // kicked or channel deleted; handled via voice state updates
)

// ErrNoNode is returned when no Lavalink node is available.
var ErrNoNode = errors.New("no available Lavalink node")

// pendingVoiceConnection tracks the state of a pending voice connection.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

// onEvent marks an event as received and signals ready if both events are present.
func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer holds the voice state and voice server halves of a handshake
// until both have arrived, so Lavalink never sees a partial voice state.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceServer
}

func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState
}

// take returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID, sessionID, token, endpoint = b.channelID, b.sessionID, b.token, b.endpoint
	*b = voiceEventBuffer{}
	return
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Host     string
	Port     int
	Password string
	Secure   bool
}

// Address returns the host:port of the node.
func (c LavalinkConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LavalinkAdapter wraps DisGoLink to implement the audio, voice and track ports.
// Node events are translated into domain events on the bus.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID
	bus     ports.EventPublisher

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	// last classified exception per guild, consumed by the following loadFailed end
	failureMu sync.Mutex
	failures  map[snowflake.ID]domain.PlayerErrorKind
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.NodeHealth      = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver   = (*LavalinkAdapter)(nil)
)

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	bus ports.EventPublisher,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := newLavalinkAdapter(session, botID, bus)
	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
		disgolink.WithListenerFunc(adapter.onWebSocketClosed),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address(),
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address())

	return adapter, nil
}

func newLavalinkAdapter(session *discordgo.Session, botID snowflake.ID, bus ports.EventPublisher) *LavalinkAdapter {
	return &LavalinkAdapter{
		session:      session,
		botID:        botID,
		bus:          bus,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
		failures:     make(map[snowflake.ID]domain.PlayerErrorKind),
	}
}

// Close closes all node connections.
func (c *LavalinkAdapter) Close() {
	if c.link != nil {
		c.link.Close()
	}
}

// AnyNodeConnected returns true if at least one node is connected.
func (c *LavalinkAdapter) AnyNodeConnected() bool {
	connected := false
	c.link.ForNodes(func(node disgolink.Node) {
		if node.Status() == disgolink.StatusConnected {
			connected = true
		}
	})
	return connected
}

// JoinChannel connects to a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{
		ready: make(chan struct{}),
	}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the player and disconnects from the voice channel.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if err := c.Destroy(ctx, guildID); err != nil {
		slog.Warn("failed to destroy player", "guild", guildID, "error", err)
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play plays a track from the start.
func (c *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	return c.PlayAt(ctx, guildID, track, 0)
}

// PlayAt plays a track from a position.
func (c *LavalinkAdapter) PlayAt(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
	position time.Duration,
) error {
	c.takeFailure(guildID)

	// WithEncodedTrack avoids sending userData:null
	opts := []lavalink.PlayerUpdateOpt{
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithPaused(false),
	}
	if position > 0 {
		opts = append(opts, lavalink.WithPosition(toLavalinkDuration(position)))
	}

	if err := c.link.Player(guildID).Update(ctx, opts...); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	return c.update(ctx, guildID, "stop playback", lavalink.WithNullTrack())
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	return c.update(ctx, guildID, "pause playback", lavalink.WithPaused(true))
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	return c.update(ctx, guildID, "resume playback", lavalink.WithPaused(false))
}

// Seek moves the playback position of the current track.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	return c.update(ctx, guildID, "seek", lavalink.WithPosition(toLavalinkDuration(position)))
}

// SetVolume sets the player volume in percent.
func (c *LavalinkAdapter) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	return c.update(ctx, guildID, "set volume", lavalink.WithVolume(volume))
}

// SetFilters replaces the player's filters.
func (c *LavalinkAdapter) SetFilters(
	ctx context.Context,
	guildID snowflake.ID,
	filters domain.FilterSettings,
) error {
	converted, err := toLavalinkFilters(filters)
	if err != nil {
		return err
	}
	return c.update(ctx, guildID, "set filters", lavalink.WithFilters(converted))
}

// Position returns the playback position of the current track.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) time.Duration {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return 0
	}
	return fromLavalinkDuration(player.Position())
}

// Destroy removes the player from the node.
func (c *LavalinkAdapter) Destroy(ctx context.Context, guildID snowflake.ID) error {
	c.takeFailure(guildID)

	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return nil
	}
	if err := player.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy player: %w", err)
	}
	return nil
}

func (c *LavalinkAdapter) update(
	ctx context.Context,
	guildID snowflake.ID,
	action string,
	opts ...lavalink.PlayerUpdateOpt,
) error {
	if err := c.link.Player(guildID).Update(ctx, opts...); err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}

// LoadTracks resolves a node identifier into tracks.
func (c *LavalinkAdapter) LoadTracks(ctx context.Context, query string) (domain.TrackList, error) {
	node := c.link.BestNode()
	if node == nil {
		return domain.TrackList{}, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return domain.TrackList{}, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result)
}

// convertLoadResult converts a Lavalink result into a domain track list.
func convertLoadResult(result *lavalink.LoadResult) (domain.TrackList, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return domain.TrackList{
			Type:   domain.TrackListTypeTrack,
			Tracks: []domain.Track{convertTrack(data)},
		}, nil

	case lavalink.Playlist:
		return domain.TrackList{
			Type:   domain.TrackListTypePlaylist,
			Name:   data.Info.Name,
			Tracks: convertTracks(data.Tracks),
		}, nil

	case lavalink.Search:
		return domain.TrackList{
			Type:   domain.TrackListTypeSearch,
			Tracks: convertTracks(data),
		}, nil

	case lavalink.Exception:
		return domain.TrackList{}, fmt.Errorf("failed to load tracks: %s", data.Message)

	default:
		return domain.TrackList{Type: domain.TrackListTypeEmpty}, nil
	}
}

func convertTracks(tracks []lavalink.Track) []domain.Track {
	converted := make([]domain.Track, len(tracks))
	for i, track := range tracks {
		converted[i] = convertTrack(track)
	}
	return converted
}

// convertTrack converts a Lavalink track to a domain track without a requester.
func convertTrack(track lavalink.Track) domain.Track {
	info := track.Info
	return domain.Track{
		ID:         domain.TrackID(info.Identifier),
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   fromLavalinkDuration(info.Length),
		URI:        stringValue(info.URI),
		ArtworkURL: stringValue(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func toLavalinkFilters(filters domain.FilterSettings) (lavalink.Filters, error) {
	var converted lavalink.Filters
	if filters.IsZero() {
		return converted, nil
	}

	// the domain payload uses the node's JSON field names
	data, err := json.Marshal(filters)
	if err != nil {
		return converted, fmt.Errorf("failed to encode filters: %w", err)
	}
	if err := json.Unmarshal(data, &converted); err != nil {
		return converted, fmt.Errorf("failed to decode filters: %w", err)
	}
	return converted, nil
}

func toLavalinkDuration(d time.Duration) lavalink.Duration {
	return lavalink.Duration(d.Milliseconds())
}

func fromLavalinkDuration(d lavalink.Duration) time.Duration {
	return time.Duration(d) * time.Millisecond
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.voiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardVoiceEvents(guildID, buffer)
	}

	c.signalPending(guildID, false)
}

// OnVoiceStateUpdate handles Discord voice state updates of the bot itself.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// a disconnect needs no server update
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearVoiceBuffer(guildID)
		return
	}

	buffer := c.voiceBuffer(guildID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		c.forwardVoiceEvents(guildID, buffer)
	}

	c.signalPending(guildID, true)
}

func (c *LavalinkAdapter) signalPending(guildID snowflake.ID, isVoiceState bool) {
	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(isVoiceState)
	}
}

func (c *LavalinkAdapter) voiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

func (c *LavalinkAdapter) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

// forwardVoiceEvents sends the buffered handshake to Lavalink, state first.
func (c *LavalinkAdapter) forwardVoiceEvents(guildID snowflake.ID, buffer *voiceEventBuffer) {
	channelID, sessionID, token, endpoint := buffer.take()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", channelID,
		"hasSessionID", sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (c *LavalinkAdapter) rememberFailure(guildID snowflake.ID, kind domain.PlayerErrorKind) {
	c.failureMu.Lock()
	defer c.failureMu.Unlock()
	c.failures[guildID] = kind
}

func (c *LavalinkAdapter) takeFailure(guildID snowflake.ID) (domain.PlayerErrorKind, bool) {
	c.failureMu.Lock()
	defer c.failureMu.Unlock()

	kind, ok := c.failures[guildID]
	delete(c.failures, guildID)
	return kind, ok
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	guildID := player.GuildID()
	slog.Debug("track ended", "guild", guildID, "reason", event.Reason)

	if event.Reason == lavalink.TrackEndReasonLoadFailed {
		kind, ok := c.takeFailure(guildID)
		if !ok {
			kind = domain.PlayerErrorLoadFailed
		}
		c.bus.PublishPlayerError(domain.PlayerErrorEvent{
			GuildID: guildID,
			Kind:    kind,
			Message: "the track could not be played",
		})
		return
	}

	c.bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: guildID,
		Reason:  convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	kind, message := classifyException(event.Exception)
	slog.Warn("track exception", "guild", player.GuildID(), "kind", kind, "error", message)

	// reported together with the loadFailed end that follows
	c.rememberFailure(player.GuildID(), kind)
}

// classifyException joins message and cause. An unrecognized exception stays
// unknown.
func classifyException(exception lavalink.Exception) (domain.PlayerErrorKind, string) {
	message := exception.Message
	if exception.Cause != "" {
		message += ": " + exception.Cause
	}
	return domain.ClassifyPlayerError(message), message
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	c.bus.PublishPlayerError(domain.PlayerErrorEvent{
		GuildID: player.GuildID(),
		Kind:    domain.PlayerErrorTrackStuck,
		Message: "the track got stuck",
	})
}

func (c *LavalinkAdapter) onWebSocketClosed(player disgolink.Player, event lavalink.WebSocketClosedEvent) {
	slog.Warn("voice websocket closed",
		"guild", player.GuildID(),
		"code", event.Code,
		"reason", event.Reason,
		"byRemote", event.ByRemote,
	)

	if !isConnectionLoss(event.Code) {
		return
	}

	c.bus.PublishPlayerError(domain.PlayerErrorEvent{
		GuildID: player.GuildID(),
		Kind:    domain.PlayerErrorConnectionLost,
		Message: fmt.Sprintf("voice connection closed (%d): %s", event.Code, event.Reason),
	})
}

func isConnectionLoss(code int) bool {
	return code != closeNormal && code != closeDisconnected
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}
