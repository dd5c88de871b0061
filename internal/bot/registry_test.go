package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// stubModule is a test double for Module
type stubModule struct {
	name          string
	commands      []*discordgo.ApplicationCommand
	handlers      map[string]InteractionHandler
	eventHandlers []EventHandler
	initErr       error
	shutErr       error
}

func (m *stubModule) Name() string                                   { return m.name }
func (m *stubModule) Commands() []*discordgo.ApplicationCommand      { return m.commands }
func (m *stubModule) CommandHandlers() map[string]InteractionHandler { return m.handlers }
func (m *stubModule) EventHandlers() []EventHandler                  { return m.eventHandlers }
func (m *stubModule) Init(deps ModuleDependencies) error             { return m.initErr }
func (m *stubModule) Shutdown() error                                { return m.shutErr }

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"info", "music_player", "admin"} {
		reg.Register(&stubModule{name: name})
	}

	modules := reg.Modules()
	if len(modules) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(modules))
	}
	for i, want := range []string{"info", "music_player", "admin"} {
		if modules[i].Name() != want {
			t.Errorf("position %d: expected %q, got %q", i, want, modules[i].Name())
		}
	}
}

func TestRegistry_SnapshotIsDetached(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "info"})

	snapshot := reg.Modules()
	reg.Register(&stubModule{name: "music_player"})
	snapshot[0] = nil

	if len(snapshot) != 1 {
		t.Errorf("expected the snapshot to keep 1 module, got %d", len(snapshot))
	}
	if got := reg.Modules(); len(got) != 2 || got[0] == nil {
		t.Errorf("expected the registry to be unaffected, got %v", got)
	}
}

func TestGlobalRegistry(t *testing.T) {
	ResetGlobalRegistry()
	t.Cleanup(ResetGlobalRegistry)

	Register(&stubModule{name: "info"})

	if modules := Modules(); len(modules) != 1 || modules[0].Name() != "info" {
		t.Errorf("expected the info module, got %v", modules)
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "music_player"})

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a duplicate module name")
		}
	}()
	reg.Register(&stubModule{name: "music_player"})
}

func TestRouteTable_SameModuleMayReclaim(t *testing.T) {
	table := newRouteTable("component")
	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	if err := table.add("music_player", map[string]InteractionHandler{"np": handler}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.add("music_player", map[string]InteractionHandler{"np": handler, "search": handler}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.size() != 2 {
		t.Errorf("expected 2 routes, got %d", table.size())
	}
}

func TestRouteTable_ConflictAddsNothing(t *testing.T) {
	table := newRouteTable("component")
	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	_ = table.add("music_player", map[string]InteractionHandler{"np": handler})

	err := table.add("info", map[string]InteractionHandler{"help": handler, "np": handler})
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if _, ok := table.lookup("help"); ok {
		t.Error("expected no routes from the conflicting module")
	}
}
