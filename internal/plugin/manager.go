package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/cadence/internal/plugin/api"
	plua "github.com/dshills/cadence/internal/plugin/lua"
	"github.com/dshills/cadence/internal/settings"
)

// Manager manages the lifecycle of all extensions.
//
// All extension code shares one execution path: loading, reloading and any
// function passed to Do hold the manager's exec lock. Store writes that may
// reach an extension's listener must go through Do.
type Manager struct {
	exec sync.Mutex

	mu sync.RWMutex

	// Loader for extension discovery
	loader *Loader

	// Loaded extensions by name
	hosts map[string]*Host

	// Load order (for deterministic iteration)
	loadOrder []string

	// Event handlers (protected by mu)
	eventHandlers []EventHandler

	config ManagerConfig
	logger *log.Logger
}

// ManagerConfig configures the extension manager.
type ManagerConfig struct {
	// Paths are directories to search for extensions
	Paths []string

	// API holds the host services injected into every extension
	API *api.Context

	// ExecutionTimeout bounds each extension's top-level code
	ExecutionTimeout time.Duration
}

// DefaultManagerConfig returns sensible default configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Paths:            DefaultExtensionPaths(),
		API:              &api.Context{},
		ExecutionTimeout: plua.DefaultExecutionTimeout,
	}
}

// EventHandler handles manager events. Panics in handlers are recovered.
type EventHandler func(event ManagerEvent)

// ManagerEvent represents a manager event.
type ManagerEvent struct {
	Type      ManagerEventType
	Extension string
	Error     error
}

// ManagerEventType is the type of manager event.
type ManagerEventType int

const (
	// EventLoaded is emitted when an extension is loaded.
	EventLoaded ManagerEventType = iota
	// EventUnloaded is emitted when an extension is unloaded.
	EventUnloaded
	// EventReloaded is emitted after a full reload cycle.
	EventReloaded
	// EventError is emitted when an extension fails to load.
	EventError
)

// String returns a string representation of the event type.
func (t ManagerEventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventUnloaded:
		return "unloaded"
	case EventReloaded:
		return "reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// NewManager creates a new extension manager.
func NewManager(config ManagerConfig) *Manager {
	if config.API == nil {
		config.API = &api.Context{}
	}
	logger := config.API.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Manager{
		loader:    NewLoader(WithPaths(config.Paths...)),
		hosts:     make(map[string]*Host),
		loadOrder: make([]string, 0),
		config:    config,
		logger:    logger.With("component", "extensions"),
	}
}

// Discover searches for available extensions.
func (m *Manager) Discover() ([]*Info, error) {
	return m.loader.Discover()
}

// Do runs fn on the extension execution path.
func (m *Manager) Do(fn func() error) error {
	m.exec.Lock()
	defer m.exec.Unlock()
	return fn()
}

// Load loads an extension by name.
func (m *Manager) Load(ctx context.Context, name string) (*Host, error) {
	m.exec.Lock()
	defer m.exec.Unlock()

	info, err := m.loader.Find(name)
	if err != nil {
		return nil, err
	}
	return m.load(ctx, info)
}

// load runs one extension. Must be called with exec held.
func (m *Manager) load(ctx context.Context, info *Info) (*Host, error) {
	m.mu.RLock()
	_, exists := m.hosts[info.Name]
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("extension %q: %w", info.Name, ErrAlreadyLoaded)
	}

	if info.Error != nil {
		m.emitEvent(ManagerEvent{Type: EventError, Extension: info.Name, Error: info.Error})
		return nil, info.Error
	}

	host, err := NewHost(info.Manifest,
		WithAPI(m.config.API),
		WithHostExecutionTimeout(m.config.ExecutionTimeout),
	)
	if err != nil {
		return nil, err
	}

	if err := host.Load(ctx); err != nil {
		m.emitEvent(ManagerEvent{Type: EventError, Extension: info.Name, Error: err})
		return nil, err
	}

	m.mu.Lock()
	m.hosts[info.Name] = host
	m.loadOrder = append(m.loadOrder, info.Name)
	m.mu.Unlock()

	m.logger.Debug("extension loaded", "extension", info.Name, "modules", host.Modules())
	m.emitEvent(ManagerEvent{Type: EventLoaded, Extension: info.Name})
	return host, nil
}

// LoadAll discovers and loads every extension in name order. A failing
// extension is logged and skipped; the joined errors are returned after
// all others have loaded.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.exec.Lock()
	defer m.exec.Unlock()
	return m.loadAll(ctx)
}

func (m *Manager) loadAll(ctx context.Context) error {
	infos, err := m.loader.Discover()
	if err != nil {
		return err
	}

	var loadErrors []error
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			loadErrors = append(loadErrors, err)
			break
		}
		if _, err := m.load(ctx, info); err != nil {
			m.logger.Error("extension failed to load", "extension", info.Name, "err", err)
			loadErrors = append(loadErrors, fmt.Errorf("%s: %w", info.Name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("failed to load %d extensions: %w", len(loadErrors), errors.Join(loadErrors...))
	}
	return nil
}

// Unload unloads an extension by name.
func (m *Manager) Unload(ctx context.Context, name string) error {
	m.exec.Lock()
	defer m.exec.Unlock()
	return m.unload(ctx, name)
}

func (m *Manager) unload(ctx context.Context, name string) error {
	m.mu.Lock()
	host, exists := m.hosts[name]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("extension %q: %w", name, ErrExtensionNotFound)
	}
	delete(m.hosts, name)
	m.removeFromLoadOrder(name)
	m.mu.Unlock()

	if err := host.Unload(ctx); err != nil {
		return fmt.Errorf("failed to unload extension %q: %w", name, err)
	}

	m.emitEvent(ManagerEvent{Type: EventUnloaded, Extension: name})
	return nil
}

// UnloadAll unloads all extensions in reverse load order.
func (m *Manager) UnloadAll(ctx context.Context) error {
	m.exec.Lock()
	defer m.exec.Unlock()
	return m.unloadAll(ctx)
}

func (m *Manager) unloadAll(ctx context.Context) error {
	m.mu.RLock()
	names := make([]string, len(m.loadOrder))
	for i, name := range m.loadOrder {
		names[len(m.loadOrder)-1-i] = name
	}
	m.mu.RUnlock()

	var unloadErrors []error
	for _, name := range names {
		if err := m.unload(ctx, name); err != nil {
			unloadErrors = append(unloadErrors, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(unloadErrors) > 0 {
		return fmt.Errorf("failed to unload %d extensions: %w", len(unloadErrors), errors.Join(unloadErrors...))
	}
	return nil
}

// Reload unloads every extension, clears the default layer and loads
// everything again, so defaults come only from the code that runs now.
// Rows cannot be removed from a settings page, so page, when non-nil,
// replaces the shared page before extensions run.
func (m *Manager) Reload(ctx context.Context, page *settings.Page) error {
	m.exec.Lock()
	defer m.exec.Unlock()

	if err := m.unloadAll(ctx); err != nil {
		return fmt.Errorf("reload unload failed: %w", err)
	}

	if m.config.API.Config != nil {
		m.config.API.Config.Defaults().Reset()
	}
	if page != nil {
		m.config.API.Page = page
	}

	err := m.loadAll(ctx)
	m.emitEvent(ManagerEvent{Type: EventReloaded, Error: err})
	return err
}

// Get returns a loaded extension by name.
func (m *Manager) Get(name string) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	host, exists := m.hosts[name]
	return host, exists
}

// List returns all loaded extensions in load order.
func (m *Manager) List() []*Host {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Host, 0, len(m.loadOrder))
	for _, name := range m.loadOrder {
		if host, exists := m.hosts[name]; exists {
			result = append(result, host)
		}
	}
	return result
}

// Count returns the number of loaded extensions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hosts)
}

// Subscribe adds an event handler.
// Returns an unsubscribe function to remove the handler.
func (m *Manager) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {} // No-op for nil handlers
	}

	m.mu.Lock()
	m.eventHandlers = append(m.eventHandlers, handler)
	index := len(m.eventHandlers) - 1
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Set to nil instead of removing to avoid index shifting issues
		if index < len(m.eventHandlers) {
			m.eventHandlers[index] = nil
		}
	}
}

// Loader returns the underlying loader.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// emitEvent sends an event to all handlers.
// Handlers are called outside any locks and panics are recovered.
func (m *Manager) emitEvent(event ManagerEvent) {
	m.mu.RLock()
	handlers := make([]EventHandler, len(m.eventHandlers))
	copy(handlers, m.eventHandlers)
	m.mu.RUnlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Warn("event handler panicked", "event", event.Type, "panic", r)
				}
			}()
			handler(event)
		}()
	}
}

// removeFromLoadOrder removes a name from the load order slice.
// Must be called with mu held.
func (m *Manager) removeFromLoadOrder(name string) {
	for i, n := range m.loadOrder {
		if n == name {
			m.loadOrder = append(m.loadOrder[:i], m.loadOrder[i+1:]...)
			return
		}
	}
}
