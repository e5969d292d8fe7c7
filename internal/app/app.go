// Package app provides the main application structure and coordination
// for cadence. It wires the configuration store, the settings page, the
// dialog and menu hosts and the extension manager together and owns their
// lifecycle.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/cadence/internal/config"
	"github.com/dshills/cadence/internal/config/loader"
	"github.com/dshills/cadence/internal/config/watcher"
	"github.com/dshills/cadence/internal/dialog"
	"github.com/dshills/cadence/internal/plugin"
	"github.com/dshills/cadence/internal/plugin/api"
	"github.com/dshills/cadence/internal/settings"
)

// Application is the central coordinator for all cadence components.
//
// Everything that can run extension code (seed reloads, dialog answers,
// menu and button clicks, setItem from the host) goes through the
// extension manager's execution lock.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	logger *log.Logger
	store  *config.Store

	// Settings surface
	page      *settings.Page
	resolver  *settings.Resolver
	unbind    func()
	onVisible []func(visible []settings.Descriptor)

	// Collaborators
	dialogs *dialog.Headless
	menus   *MenuTray

	// Extensions
	api        *api.Context
	extensions *plugin.Manager
	extErr     error

	// Seed file
	seed     *loader.TOMLLoader
	reloader *watcher.Reloader
	watcher  *watcher.Watcher
	onSeed   []func(keys []string)

	// State
	running atomic.Bool
	cancel  context.CancelFunc

	// Options
	opts Options
}

// New creates a new Application with the given options. Components are
// constructed but no extension code runs until Start.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Options returns the options the application was created with.
func (app *Application) Options() Options {
	return app.opts
}

// Logger returns the application logger.
func (app *Application) Logger() *log.Logger {
	return app.logger
}

// Store returns the configuration store.
func (app *Application) Store() *config.Store {
	return app.store
}

// Page returns the current settings page. ReloadExtensions replaces it.
func (app *Application) Page() *settings.Page {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.page
}

// Resolver returns the visibility resolver for the current page.
func (app *Application) Resolver() *settings.Resolver {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.resolver
}

// Dialogs returns the headless dialog host.
func (app *Application) Dialogs() *dialog.Headless {
	return app.dialogs
}

// Menus returns the context menu presenter.
func (app *Application) Menus() *MenuTray {
	return app.menus
}

// Extensions returns the extension manager.
func (app *Application) Extensions() *plugin.Manager {
	return app.extensions
}

// ExtensionError returns the joined errors of the last extension load, or
// nil when every extension loaded.
func (app *Application) ExtensionError() error {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.extErr
}
