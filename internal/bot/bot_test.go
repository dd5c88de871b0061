package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewBot(t *testing.T) {
	cfg := &Config{
		DiscordToken: "test-token",
	}

	b := NewBot(cfg)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.config != cfg {
		t.Error("expected config to be stored")
	}
}

func TestBot_LoadModules_InitializesModules(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	initCalled := false
	trackingMod := &trackingStubModule{
		stubModule: stubModule{name: "tracking"},
		initCalled: &initCalled,
	}
	b.modules = []Module{trackingMod}

	err := b.initModules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !initCalled {
		t.Error("expected Init to be called")
	}
	if trackingMod.deps.Config != cfg {
		t.Error("expected the config to be passed to modules")
	}
	if trackingMod.deps.Commands == nil {
		t.Error("expected a command catalog")
	}
}

func TestBot_LoadModules_ReturnsInitError(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	expectedErr := errors.New("init failed")
	mod := &stubModule{
		name:    "failing",
		initErr: expectedErr,
	}
	b.modules = []Module{mod}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_BuildHandlerMap(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	mod := &stubModule{
		name: "test",
		handlers: map[string]InteractionHandler{
			"ping": handler,
		},
	}
	b.modules = []Module{mod}

	if err := b.buildHandlerMap(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := b.handlers.lookup("ping"); !ok {
		t.Error("expected ping handler to be registered")
	}
}

func TestBot_BuildHandlerMap_MultipleModules(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	handler1 := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	handler2 := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	mod1 := &stubModule{
		name: "mod1",
		handlers: map[string]InteractionHandler{
			"cmd1": handler1,
		},
	}
	mod2 := &stubModule{
		name: "mod2",
		handlers: map[string]InteractionHandler{
			"cmd2": handler2,
		},
	}
	b.modules = []Module{mod1, mod2}

	if err := b.buildHandlerMap(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.handlers.size() != 2 {
		t.Errorf("expected 2 handlers, got %d", b.handlers.size())
	}
}

func TestBot_BuildHandlerMap_Conflict(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	b.modules = []Module{
		&stubModule{name: "info", handlers: map[string]InteractionHandler{"help": handler}},
		&stubModule{name: "music_player", handlers: map[string]InteractionHandler{"help": handler}},
	}

	err := b.buildHandlerMap()
	if err == nil {
		t.Fatal("expected an error for a command claimed twice")
	}
	if !strings.Contains(err.Error(), "info") || !strings.Contains(err.Error(), "music_player") {
		t.Errorf("expected both module names in %q", err)
	}
}

func TestBot_CollectCommands(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	cmd := &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Ping command",
	}

	mod := &stubModule{
		name:     "test",
		commands: []*discordgo.ApplicationCommand{cmd},
	}
	b.modules = []Module{mod}

	commands := b.collectCommands()

	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "ping" {
		t.Errorf("expected command name %q, got %q", "ping", commands[0].Name)
	}
}

// trackingStubModule is a stub that tracks if Init was called
type trackingStubModule struct {
	stubModule
	initCalled *bool
	deps       ModuleDependencies
}

func (m *trackingStubModule) Init(deps ModuleDependencies) error {
	*m.initCalled = true
	m.deps = deps
	return m.stubModule.Init(deps)
}

// componentStubModule also provides component and autocomplete handlers.
type componentStubModule struct {
	stubModule
	components    map[string]InteractionHandler
	autocompletes map[string]InteractionHandler
}

func (m *componentStubModule) ComponentHandlers() map[string]InteractionHandler {
	return m.components
}

func (m *componentStubModule) AutocompleteHandlers() map[string]InteractionHandler {
	return m.autocompletes
}

// configurableStubModule records LoadConfig calls.
type configurableStubModule struct {
	stubModule
	loaded  bool
	loadErr error
}

func (m *configurableStubModule) LoadConfig() error {
	m.loaded = true
	return m.loadErr
}

func TestBot_BuildHandlerMap_OptionalHandlers(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	b.modules = []Module{&componentStubModule{
		stubModule:    stubModule{name: "music"},
		components:    map[string]InteractionHandler{"np": handler},
		autocompletes: map[string]InteractionHandler{"play": handler},
	}}

	if err := b.buildHandlerMap(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := b.components.lookup("np"); !ok {
		t.Error("expected the np component handler")
	}
	if _, ok := b.autocompletes.lookup("play"); !ok {
		t.Error("expected the play autocomplete handler")
	}
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	mod := &configurableStubModule{stubModule: stubModule{name: "music"}}
	b.modules = []Module{&stubModule{name: "plain"}, mod}

	if err := b.loadModuleConfigs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mod.loaded {
		t.Error("expected LoadConfig to be called")
	}

	expectedErr := errors.New("missing LAVALINK_HOST")
	mod.loadErr = expectedErr
	if err := b.loadModuleConfigs(); !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func testInteraction(userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
	}}
}

func TestBot_Dispatch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		b := NewBot(&Config{DiscordToken: "test-token"})
		called := false
		handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
			called = true
			return r.Send(&discordgo.InteractionResponseData{Content: "ok"})
		}
		responder := &MockResponder{}

		b.dispatch(nil, testInteraction("1"), "ping", handler, responder)

		if !called {
			t.Fatal("expected the handler to run")
		}
		if responder.LastResponse.Data.Content != "ok" {
			t.Errorf("expected the handler's response, got %+v", responder.LastResponse.Data)
		}
	})

	t.Run("handler error", func(t *testing.T) {
		b := NewBot(&Config{DiscordToken: "test-token"})
		handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
			return errors.New("boom")
		}
		responder := &MockResponder{}

		b.dispatch(nil, testInteraction("1"), "ping", handler, responder)

		data := responder.LastResponse.Data
		if data.Flags != discordgo.MessageFlagsEphemeral || data.Embeds[0].Color != colorRed {
			t.Errorf("expected an ephemeral error embed, got %+v", data)
		}
		if got := data.Embeds[0].Description; got != "Something went wrong: boom" {
			t.Errorf("expected the error text in the reply, got %q", got)
		}
	})

	t.Run("handler panic", func(t *testing.T) {
		b := NewBot(&Config{DiscordToken: "test-token"})
		handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
			panic("nil session")
		}
		responder := &MockResponder{}

		b.dispatch(nil, testInteraction("1"), "ping", handler, responder)

		if responder.LastResponse == nil || responder.LastResponse.Data.Embeds[0].Color != colorRed {
			t.Error("expected an error embed after a panic")
		}
		if got := responder.LastResponse.Data.Embeds[0].Description; !strings.Contains(got, "nil session") {
			t.Errorf("expected the panic value in the reply, got %q", got)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		b := NewBot(&Config{DiscordToken: "test-token", CommandRate: 0.001, CommandBurst: 1})
		calls := 0
		handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
			calls++
			return nil
		}

		b.dispatch(nil, testInteraction("1"), "ping", handler, &MockResponder{})
		responder := &MockResponder{}
		b.dispatch(nil, testInteraction("1"), "ping", handler, responder)

		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
		if responder.LastResponse == nil || responder.LastResponse.Data.Embeds[0].Color != colorYellow {
			t.Error("expected a slow down notice")
		}
	})
}

func TestComponentPrefix(t *testing.T) {
	tests := map[string]string{
		"np:pause":        "np",
		"search:abc123":   "search",
		"lyrics:abc:next": "lyrics",
		"plain":           "plain",
	}
	for customID, want := range tests {
		if got := componentPrefix(customID); got != want {
			t.Errorf("componentPrefix(%q) = %q, want %q", customID, got, want)
		}
	}
}

func TestInteractionUserID(t *testing.T) {
	if got := interactionUserID(testInteraction("7")); got != "7" {
		t.Errorf("expected member user 7, got %q", got)
	}

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "8"}}}
	if got := interactionUserID(dm); got != "8" {
		t.Errorf("expected user 8, got %q", got)
	}
}
