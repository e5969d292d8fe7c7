package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/cadence/internal/plugin/api"
	plua "github.com/dshills/cadence/internal/plugin/lua"
)

// Host manages a single extension's Lua state and lifecycle.
//
// Host does not serialize Lua execution across extensions; the Manager
// does. Direct users of Host must not run two extensions' code, or code
// and store writes that reach their listeners, concurrently.
type Host struct {
	mu sync.RWMutex

	// Identity
	name     string
	manifest *Manifest

	// Lua runtime
	state    *plua.State
	injected []string

	// State
	extState State
	err      error

	// Options
	apiCtx           *api.Context
	executionTimeout time.Duration
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostExecutionTimeout sets the execution timeout for extension code.
func WithHostExecutionTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.executionTimeout = d
	}
}

// WithAPI sets the host services injected as Lua globals.
func WithAPI(ctx *api.Context) HostOption {
	return func(h *Host) {
		h.apiCtx = ctx
	}
}

// NewHost creates a new extension host for the given manifest.
func NewHost(manifest *Manifest, opts ...HostOption) (*Host, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}

	h := &Host{
		name:             manifest.Name,
		manifest:         manifest,
		extState:         StateUnloaded,
		apiCtx:           &api.Context{},
		executionTimeout: plua.DefaultExecutionTimeout,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Name returns the extension name.
func (h *Host) Name() string {
	return h.name
}

// Manifest returns the extension manifest.
func (h *Host) Manifest() *Manifest {
	return h.manifest
}

// State returns the current extension state.
func (h *Host) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.extState
}

// Error returns the load error, if any.
func (h *Host) Error() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Modules returns the API modules injected into the extension's state.
func (h *Host) Modules() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.injected...)
}

// Load creates the Lua state, grants the manifest's capabilities, injects
// the API and runs the main file.
func (h *Host) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.extState == StateLoaded {
		return ErrAlreadyLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	state, err := plua.NewState(plua.WithExecutionTimeout(h.executionTimeout))
	if err != nil {
		return h.fail(err)
	}

	for _, c := range h.manifest.Capabilities {
		state.Sandbox().Grant(c)
	}

	reg, err := api.DefaultRegistry(h.apiCtx, state, h.name)
	if err != nil {
		state.Close()
		return h.fail(err)
	}
	injected, err := reg.InjectAll(state.LuaState(), state.Sandbox())
	if err != nil {
		state.Close()
		return h.fail(err)
	}

	if logger := h.apiCtx.Logger; logger != nil {
		extLogger := logger.With("extension", h.name)
		state.Sandbox().SetPrint(func(line string) {
			extLogger.Info(line)
		})
	}

	if err := state.DoFile(h.manifest.MainPath()); err != nil {
		state.Close()
		return h.fail(fmt.Errorf("failed to load extension: %w", err))
	}

	h.state = state
	h.injected = injected
	h.extState = StateLoaded
	h.err = nil
	return nil
}

// fail records err as the load error. Must be called with mu held.
func (h *Host) fail(err error) error {
	h.extState = StateError
	h.err = err
	return err
}

// Unload closes the Lua state. Callbacks the extension registered become
// no-ops.
func (h *Host) Unload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != nil {
		h.state.Close()
		h.state = nil
	}

	h.injected = nil
	h.extState = StateUnloaded
	h.err = nil
	return nil
}

// DoString executes Lua code in the extension's state.
func (h *Host) DoString(code string) error {
	h.mu.RLock()
	state := h.state
	h.mu.RUnlock()

	if state == nil {
		return ErrNotLoaded
	}
	return state.DoString(code)
}

// Global returns a global variable converted to Go data.
func (h *Host) Global(name string) (any, error) {
	h.mu.RLock()
	state := h.state
	h.mu.RUnlock()

	if state == nil {
		return nil, ErrNotLoaded
	}
	return state.Bridge().ToGoValue(state.GetGlobal(name))
}

// Stats returns runtime statistics for the extension.
func (h *Host) Stats() HostStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HostStats{
		Name:     h.name,
		State:    h.extState,
		Modules:  len(h.injected),
		HasError: h.err != nil,
	}
}

// HostStats contains runtime statistics for an extension host.
type HostStats struct {
	Name     string
	State    State
	Modules  int
	HasError bool
}
