package bot

import (
	"fmt"
	"sync"
)

// Registry holds modules in registration order. Module names are unique.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register adds a module. It panics on a duplicate name, since modules
// register from init() and a clash is a build mistake.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.names[m.Name()]; dup {
		panic(fmt.Sprintf("bot: module %q registered twice", m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of the registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Module, len(r.modules))
	copy(result, r.modules)
	return result
}

var globalRegistry = NewRegistry()

// Register adds a module to the global registry. Modules call it from init().
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns the modules of the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the global registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}

// routeTable maps interaction keys (command names or custom-ID prefixes) to
// handlers and remembers which module claimed each key.
type routeTable struct {
	kind     string
	handlers map[string]InteractionHandler
	owners   map[string]string
}

func newRouteTable(kind string) *routeTable {
	return &routeTable{
		kind:     kind,
		handlers: make(map[string]InteractionHandler),
		owners:   make(map[string]string),
	}
}

// add claims every key of handlers for module. A key already claimed by
// another module is an error; nothing is added in that case.
func (t *routeTable) add(module string, handlers map[string]InteractionHandler) error {
	for key := range handlers {
		if owner, ok := t.owners[key]; ok && owner != module {
			return fmt.Errorf("%s %q is handled by both %s and %s", t.kind, key, owner, module)
		}
	}
	for key, handler := range handlers {
		t.handlers[key] = handler
		t.owners[key] = module
	}
	return nil
}

func (t *routeTable) lookup(key string) (InteractionHandler, bool) {
	handler, ok := t.handlers[key]
	return handler, ok
}

func (t *routeTable) size() int {
	return len(t.handlers)
}
