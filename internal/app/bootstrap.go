package app

import (
	"context"
	"time"

	"github.com/dshills/cadence/internal/config"
	"github.com/dshills/cadence/internal/config/loader"
	"github.com/dshills/cadence/internal/config/watcher"
	"github.com/dshills/cadence/internal/dialog"
	"github.com/dshills/cadence/internal/plugin"
	"github.com/dshills/cadence/internal/plugin/api"
	"github.com/dshills/cadence/internal/settings"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initStore,
		b.initSettings,
		b.initCollaborators,
		b.initExtensions,
		b.initSeed,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initLogger creates the application logger.
func (b *bootstrapper) initLogger() error {
	logger, err := NewLogger(b.opts.LogLevel, b.opts.LogOutput)
	if err != nil {
		return NewComponentError("logger", "create", err)
	}
	b.app.logger = logger
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

// initStore creates the configuration store.
func (b *bootstrapper) initStore() error {
	b.app.store = config.New(config.WithLogger(b.app.logger.With("component", "config")))
	b.initOrder = append(b.initOrder, "store")
	return nil
}

// initSettings creates the settings page and its resolver.
func (b *bootstrapper) initSettings() error {
	b.app.page = settings.NewPage()
	b.app.resolver = settings.NewResolver(b.app.store, b.app.page)
	b.app.unbind = b.app.resolver.Bind(b.app.visibleChanged)
	b.initOrder = append(b.initOrder, "settings")
	return nil
}

// initCollaborators creates the dialog host and the menu presenter.
func (b *bootstrapper) initCollaborators() error {
	dialogLogger := b.app.logger.With("component", "dialog")
	b.app.dialogs = dialog.NewHeadless()
	b.app.dialogs.OnRequest(func(p dialog.Pending) {
		dialogLogger.Debug("dialog opened", "id", p.ID, "kind", p.Kind)
	})
	b.app.menus = NewMenuTray(b.app.logger.With("component", "menu"))
	b.initOrder = append(b.initOrder, "collaborators")
	return nil
}

// initExtensions creates the extension manager. Nothing is loaded yet.
func (b *bootstrapper) initExtensions() error {
	b.app.api = &api.Context{
		Config:  b.app.store,
		Page:    b.app.page,
		Dialogs: b.app.dialogs,
		Menus:   b.app.menus,
		Logger:  b.app.logger,
	}

	cfg := plugin.DefaultManagerConfig()
	if len(b.opts.Extensions) > 0 {
		cfg.Paths = b.opts.Extensions
	}
	if b.opts.ExecutionTimeout > 0 {
		cfg.ExecutionTimeout = b.opts.ExecutionTimeout
	}
	cfg.API = b.app.api

	b.app.extensions = plugin.NewManager(cfg)
	b.initOrder = append(b.initOrder, "extensions")
	return nil
}

// initSeed prepares the seed file loader and its reloader.
func (b *bootstrapper) initSeed() error {
	if b.opts.Seed == "" {
		return nil
	}
	b.app.seed = loader.NewTOMLLoader(b.opts.Seed)
	b.app.reloader = watcher.NewReloader(b.app.seed, managedTarget{app: b.app})
	b.initOrder = append(b.initOrder, "seed")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(ctx, b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(ctx context.Context, component string) {
	switch component {
	case "extensions":
		if b.app.extensions != nil {
			_ = b.app.extensions.UnloadAll(ctx)
			b.app.extensions = nil
		}
	case "seed":
		b.app.seed = nil
		b.app.reloader = nil
	case "collaborators":
		b.app.dialogs = nil
		b.app.menus = nil
	case "settings":
		if b.app.unbind != nil {
			b.app.unbind()
			b.app.unbind = nil
		}
		b.app.page = nil
		b.app.resolver = nil
	case "store":
		b.app.store = nil
	}
}
