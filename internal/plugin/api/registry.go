package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cadence/internal/config"
	"github.com/dshills/cadence/internal/dialog"
	"github.com/dshills/cadence/internal/menu"
	plua "github.com/dshills/cadence/internal/plugin/lua"
	"github.com/dshills/cadence/internal/settings"
)

// Module represents a Lua API module that can be registered with the plugin system.
type Module interface {
	// Name returns the module name (e.g., "config", "dialog").
	Name() string

	// RequiredCapability returns the capability required to use this module.
	// Returns empty string if no capability is required.
	RequiredCapability() plua.Capability

	// Register installs the module's globals into the Lua state.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	order   []string
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}

	r.modules[mod.Name()] = mod
	r.order = append(r.order, mod.Name())
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// InjectAll registers, in registration order, every module whose required
// capability the sandbox grants. It returns the names of injected modules.
func (r *Registry) InjectAll(L *lua.LState, sandbox *plua.Sandbox) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var injected []string
	for _, name := range r.order {
		mod := r.modules[name]

		if req := mod.RequiredCapability(); req != "" {
			if sandbox == nil || !sandbox.HasCapability(req) {
				continue
			}
		}

		if err := mod.Register(L); err != nil {
			return injected, fmt.Errorf("failed to register module %q: %w", name, err)
		}
		injected = append(injected, name)
	}

	return injected, nil
}

// Runtime is the per-extension Lua runtime the modules call back into.
// *plua.State implements it.
type Runtime interface {
	Invoke(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error)
	Bridge() *plua.Bridge
}

// ConfigStore is the part of the configuration store extensions reach.
// *config.Store implements it.
type ConfigStore interface {
	GetItem(key string) (any, bool)
	SetItem(key string, value any)
	ListenChange(key string, fn config.Listener)
	Defaults() *config.Defaults
}

// Context provides the host services API modules are built on. One
// Context is shared by every extension.
type Context struct {
	// Config is the shared configuration store.
	Config ConfigStore

	// Page is the shared settings page.
	Page *settings.Page

	// Dialogs shows alert, confirm, prompt and webview dialogs.
	Dialogs dialog.Host

	// Menus displays context menus. May be nil.
	Menus menu.Presenter

	// Logger receives callback failures. Nil discards them.
	Logger *log.Logger
}

// DefaultRegistry creates a registry with the standard modules for one
// extension. Modules whose host service is missing from ctx are left out.
func DefaultRegistry(ctx *Context, rt Runtime, extension string) (*Registry, error) {
	r := NewRegistry()
	var modules []Module
	if ctx.Config != nil {
		modules = append(modules, NewConfigModule(ctx, rt, extension))
	}
	if ctx.Page != nil {
		modules = append(modules, NewSettingsModule(ctx, rt, extension))
	}
	if ctx.Dialogs != nil {
		modules = append(modules, NewDialogModule(ctx, rt, extension))
	}
	modules = append(modules, NewMenuModule(ctx, rt, extension))

	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}

	return r, nil
}
