package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

const (
	testGuild        = snowflake.ID(1)
	testUser         = snowflake.ID(2)
	testVoiceChannel = snowflake.ID(3)
	testTextChannel  = snowflake.ID(4)
	testBot          = snowflake.ID(99)
)

var testScope = CommandScope{GuildID: testGuild, UserID: testUser}

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(id),
		Encoded:     "encoded-" + id,
		Title:       "Track " + id,
		Artist:      "Artist",
		URI:         "https://youtube.com/watch?v=" + id,
		SourceName:  "youtube",
		Duration:    3 * time.Minute,
		RequesterID: snowflake.ID(123),
	}
}

type mockRepository struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*domain.GuildSession
	deleted  []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[snowflake.ID]*domain.GuildSession),
	}
}

func (m *mockRepository) Get(_ context.Context, guildID snowflake.ID) (*domain.GuildSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[guildID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockRepository) Save(_ context.Context, session *domain.GuildSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.GetGuildID()] = session
	return nil
}

func (m *mockRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.sessions, guildID)
	return nil
}

func (m *mockRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// connect stores a session for the test guild in the test voice channel.
func (m *mockRepository) connect() *domain.GuildSession {
	session := domain.NewGuildSession(testGuild, testVoiceChannel, testTextChannel)
	_ = m.Save(context.Background(), session)
	return session
}

// playing stores a session that is playing current with upcoming queued.
func (m *mockRepository) playing(current *domain.Track, upcoming ...*domain.Track) *domain.GuildSession {
	session := m.connect()
	session.Queue.Append(current)
	session.Queue.Advance(domain.LoopModeNone)
	session.Queue.Append(upcoming...)
	session.SetPlaying(true)
	return session
}

type mockAudioPlayer struct {
	playErr   error
	stopErr   error
	pauseErr  error
	resumeErr error
	filterErr error

	played    []*domain.Track
	playedAt  time.Duration
	stopped   int
	paused    int
	resumed   int
	seeks     []time.Duration
	volumes   []int
	filters   []domain.FilterSettings
	destroyed []snowflake.ID
	position  time.Duration
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	return nil
}

func (m *mockAudioPlayer) PlayAt(
	_ context.Context,
	_ snowflake.ID,
	track *domain.Track,
	position time.Duration,
) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	m.playedAt = position
	return nil
}

func (m *mockAudioPlayer) Stop(context.Context, snowflake.ID) error {
	m.stopped++
	return m.stopErr
}

func (m *mockAudioPlayer) Pause(context.Context, snowflake.ID) error {
	m.paused++
	return m.pauseErr
}

func (m *mockAudioPlayer) Resume(context.Context, snowflake.ID) error {
	m.resumed++
	return m.resumeErr
}

func (m *mockAudioPlayer) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockAudioPlayer) SetVolume(_ context.Context, _ snowflake.ID, volume int) error {
	m.volumes = append(m.volumes, volume)
	return nil
}

func (m *mockAudioPlayer) SetFilters(_ context.Context, _ snowflake.ID, filters domain.FilterSettings) error {
	if m.filterErr != nil {
		return m.filterErr
	}
	m.filters = append(m.filters, filters)
	return nil
}

func (m *mockAudioPlayer) Position(snowflake.ID) time.Duration {
	return m.position
}

func (m *mockAudioPlayer) Destroy(_ context.Context, guildID snowflake.ID) error {
	m.destroyed = append(m.destroyed, guildID)
	return nil
}

type mockVoiceConnection struct {
	joinErr error
	joined  []snowflake.ID
	left    int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error {
	m.left++
	return nil
}

type mockTrackResolver struct {
	results map[string]domain.TrackList
	errs    map[string]error
	queries []string
}

func newMockTrackResolver() *mockTrackResolver {
	return &mockTrackResolver{
		results: make(map[string]domain.TrackList),
		errs:    make(map[string]error),
	}
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (domain.TrackList, error) {
	m.queries = append(m.queries, query)
	if err := m.errs[query]; err != nil {
		return domain.TrackList{}, err
	}
	return m.results[query], nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // user -> channel
}

func newMockVoiceState() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{
		channels: map[snowflake.ID]snowflake.ID{testUser: testVoiceChannel},
	}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (*snowflake.ID, error) {
	channelID, ok := m.channels[userID]
	if !ok {
		return nil, nil
	}
	return &channelID, nil
}

type mockEventPublisher struct {
	mu               sync.Mutex
	trackEnqueued    []domain.TrackEnqueuedEvent
	trackStarted     []domain.TrackStartedEvent
	trackEnded       []domain.TrackEndedEvent
	queueEmpty       []domain.QueueEmptyEvent
	playerErrors     []domain.PlayerErrorEvent
	sessionDestroyed []domain.SessionDestroyedEvent
}

func (m *mockEventPublisher) PublishTrackEnqueued(event domain.TrackEnqueuedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnqueued = append(m.trackEnqueued, event)
}

func (m *mockEventPublisher) PublishTrackStarted(event domain.TrackStartedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackStarted = append(m.trackStarted, event)
}

func (m *mockEventPublisher) PublishTrackEnded(event domain.TrackEndedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnded = append(m.trackEnded, event)
}

func (m *mockEventPublisher) PublishQueueEmpty(event domain.QueueEmptyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueEmpty = append(m.queueEmpty, event)
}

func (m *mockEventPublisher) PublishPlayerError(event domain.PlayerErrorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerErrors = append(m.playerErrors, event)
}

func (m *mockEventPublisher) PublishSessionDestroyed(event domain.SessionDestroyedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionDestroyed = append(m.sessionDestroyed, event)
}

// mockScheduler keeps tasks until the test fires them.
type mockScheduler struct {
	tasks map[string]func(context.Context)
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{tasks: make(map[string]func(context.Context))}
}

func (m *mockScheduler) Schedule(key string, _ time.Duration, task func(context.Context)) {
	m.tasks[key] = task
}

func (m *mockScheduler) Cancel(key string) bool {
	_, ok := m.tasks[key]
	delete(m.tasks, key)
	return ok
}

func (m *mockScheduler) pending(key string) bool {
	_, ok := m.tasks[key]
	return ok
}

func (m *mockScheduler) fire(key string) {
	task, ok := m.tasks[key]
	delete(m.tasks, key)
	if ok {
		task(context.Background())
	}
}

type mockPreferenceStore struct {
	prefs map[snowflake.ID]domain.GuildPreferences
}

func newMockPreferenceStore() *mockPreferenceStore {
	return &mockPreferenceStore{prefs: make(map[snowflake.ID]domain.GuildPreferences)}
}

func (m *mockPreferenceStore) Get(_ context.Context, guildID snowflake.ID) (domain.GuildPreferences, error) {
	return m.prefs[guildID], nil
}

func (m *mockPreferenceStore) Save(_ context.Context, guildID snowflake.ID, prefs domain.GuildPreferences) error {
	m.prefs[guildID] = prefs
	return nil
}

func (m *mockPreferenceStore) AlwaysOnGuilds(context.Context) (map[snowflake.ID]snowflake.ID, error) {
	guilds := make(map[snowflake.ID]snowflake.ID)
	for guildID, prefs := range m.prefs {
		if prefs.AlwaysOnChannelID != 0 {
			guilds[guildID] = prefs.AlwaysOnChannelID
		}
	}
	return guilds, nil
}

type mockNotifier struct {
	nowPlaying    []*ports.NowPlayingInfo
	deleted       []snowflake.ID
	notices       []string
	errors        []string
	lastMessageID snowflake.ID
	sendErr       error
}

func (m *mockNotifier) SendNowPlaying(_ snowflake.ID, info *ports.NowPlayingInfo) (snowflake.ID, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nowPlaying = append(m.nowPlaying, info)
	m.lastMessageID++
	return m.lastMessageID, nil
}

func (m *mockNotifier) DeleteMessage(_, messageID snowflake.ID) error {
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockNotifier) SendNotice(_ snowflake.ID, message string) error {
	m.notices = append(m.notices, message)
	return nil
}

func (m *mockNotifier) SendError(_ snowflake.ID, message string) error {
	m.errors = append(m.errors, message)
	return nil
}

type mockUserInfo struct{}

func (mockUserInfo) GetUserInfo(_, userID snowflake.ID) (*ports.UserInfo, error) {
	return &ports.UserInfo{DisplayName: "user-" + userID.String()}, nil
}

func (mockUserInfo) BotUser() (snowflake.ID, *ports.UserInfo) {
	return testBot, &ports.UserInfo{DisplayName: "Cadence", AvatarURL: "https://cdn.example/bot.png"}
}

type mockLyricsProvider struct {
	queries []string
	lyrics  *ports.Lyrics
	err     error
}

func (m *mockLyricsProvider) Search(_ context.Context, query string) (*ports.Lyrics, error) {
	m.queries = append(m.queries, query)
	return m.lyrics, m.err
}

// testEnv wires the use case services over shared mocks.
type testEnv struct {
	repo        *mockRepository
	player      *mockAudioPlayer
	voice       *mockVoiceConnection
	voiceState  *mockVoiceStateProvider
	resolver    *mockTrackResolver
	publisher   *mockEventPublisher
	scheduler   *mockScheduler
	preferences *mockPreferenceStore
	notifier    *mockNotifier

	guard    *VoiceGuard
	sessions *SessionManager
	playback *PlaybackService
	queue    *QueueService
	loader   *TrackLoaderService
	channels *VoiceChannelService
	filters  *FilterService
	autoplay *AutoplayService
	notices  *NotificationChannelService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:        newMockRepository(),
		player:      &mockAudioPlayer{},
		voice:       &mockVoiceConnection{},
		voiceState:  newMockVoiceState(),
		resolver:    newMockTrackResolver(),
		publisher:   &mockEventPublisher{},
		scheduler:   newMockScheduler(),
		preferences: newMockPreferenceStore(),
		notifier:    &mockNotifier{},
	}

	env.guard = NewVoiceGuard(env.repo, env.voiceState)
	env.sessions = NewSessionManager(
		env.repo, env.player, env.voice, env.publisher, env.scheduler, env.preferences, 0,
	)
	env.playback = NewPlaybackService(env.repo, env.guard, env.sessions, env.player, env.publisher)
	env.queue = NewQueueService(env.repo, env.guard, env.sessions, env.publisher)
	env.loader = NewTrackLoaderService(env.resolver)
	env.channels = NewVoiceChannelService(env.repo, env.guard, env.sessions, env.voice, env.voiceState)
	env.filters = NewFilterService(env.guard, env.player)
	env.autoplay = NewAutoplayService(
		env.repo, env.loader, env.queue, env.sessions, mockUserInfo{}, env.notifier,
	)
	env.notices = NewNotificationChannelService(env.repo, env.notifier, env.player)
	return env
}
