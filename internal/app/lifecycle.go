package app

import (
	"context"
	"fmt"

	"github.com/dshills/cadence/internal/config/watcher"
	"github.com/dshills/cadence/internal/settings"
)

// Start applies the seed file, loads every extension and, when Watch is
// set, starts watching the seed file. Extension failures are logged and
// reported by ExtensionError; they do not stop the application.
func (app *Application) Start(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if _, err := app.ReloadSeed(); err != nil {
		app.running.Store(false)
		return NewComponentError("seed", "load", err)
	}

	err := app.extensions.LoadAll(ctx)
	app.mu.Lock()
	app.extErr = err
	app.mu.Unlock()
	if err != nil {
		app.logger.Warn("some extensions failed to load", "err", err)
	}

	if app.opts.Watch {
		if err := app.startWatcher(ctx); err != nil {
			app.shutdown()
			app.running.Store(false)
			return NewComponentError("watcher", "start", err)
		}
	}

	app.logger.Debug("application started", "extensions", app.extensions.Count())
	return nil
}

// startWatcher watches the seed file and re-applies it on change.
func (app *Application) startWatcher(ctx context.Context) error {
	if app.seed == nil {
		return ErrNoSeed
	}

	w, err := watcher.New(app.seed.Path(), watcher.WithErrorHandler(func(err error) {
		app.logger.Warn("seed watch error", "err", err)
	}))
	if err != nil {
		return err
	}
	w.OnChange(func(event watcher.Event) {
		keys, err := app.ReloadSeed()
		if err != nil {
			app.logger.Warn("seed reload failed", "path", event.Path, "err", err)
			return
		}
		app.logger.Info("seed reloaded", "path", event.Path, "changed", len(keys))
	})

	ctx, cancel := context.WithCancel(ctx)
	if err := w.Start(ctx); err != nil {
		cancel()
		return err
	}

	app.mu.Lock()
	app.watcher = w
	app.cancel = cancel
	app.mu.Unlock()
	return nil
}

// Shutdown stops the watcher and unloads every extension. It is safe to
// call more than once.
func (app *Application) Shutdown() {
	if !app.running.CompareAndSwap(true, false) {
		return
	}
	app.shutdown()
}

// shutdown performs cleanup in reverse initialization order.
func (app *Application) shutdown() {
	app.mu.Lock()
	w, cancel := app.watcher, app.cancel
	app.watcher, app.cancel = nil, nil
	app.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if w != nil {
		if err := w.Close(); err != nil {
			app.logger.Warn("failed to close seed watcher", "err", err)
		}
	}

	if err := app.extensions.UnloadAll(context.Background()); err != nil {
		app.logger.Warn("failed to unload extensions", "err", err)
	}
}

// OnSeedChange registers fn to run after a seed reload changed keys.
func (app *Application) OnSeedChange(fn func(keys []string)) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.onSeed = append(app.onSeed, fn)
}

// ReloadSeed re-reads the seed file and writes every changed key with
// SetItem, so listeners fire. Keys removed from the file are cleared.
func (app *Application) ReloadSeed() ([]string, error) {
	if app.reloader == nil {
		return nil, nil
	}

	keys, err := app.reloader.Reload()
	if err != nil || len(keys) == 0 {
		return keys, err
	}

	app.mu.RLock()
	hooks := append([]func([]string){}, app.onSeed...)
	app.mu.RUnlock()
	for _, fn := range hooks {
		fn(keys)
	}
	return keys, nil
}

// ReloadExtensions re-runs every extension against a fresh settings page.
// Defaults are cleared first and re-populated by the extensions. The
// visibility binding moves to the new page and OnVisibleChange hooks run
// once with its visible rows.
func (app *Application) ReloadExtensions(ctx context.Context) error {
	app.mu.Lock()
	unbind := app.unbind
	app.unbind = nil
	app.mu.Unlock()
	if unbind != nil {
		unbind()
	}

	page := settings.NewPage()
	err := app.extensions.Reload(ctx, page)
	resolver := settings.NewResolver(app.store, page)

	app.mu.Lock()
	app.page = page
	app.resolver = resolver
	app.unbind = resolver.Bind(app.visibleChanged)
	app.extErr = err
	app.mu.Unlock()

	if err != nil {
		app.logger.Warn("some extensions failed to reload", "err", err)
	}
	app.visibleChanged(resolver.Visible())
	return err
}

// OnVisibleChange registers fn to run with the visible rows whenever an
// attachTo key changes. It runs synchronously with the write, on whatever
// goroutine made it.
func (app *Application) OnVisibleChange(fn func(visible []settings.Descriptor)) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.onVisible = append(app.onVisible, fn)
}

func (app *Application) visibleChanged(visible []settings.Descriptor) {
	app.mu.RLock()
	hooks := append([]func([]settings.Descriptor){}, app.onVisible...)
	app.mu.RUnlock()
	for _, fn := range hooks {
		fn(visible)
	}
}

// SetItem writes key from the host side.
func (app *Application) SetItem(key string, value any) {
	_ = app.extensions.Do(func() error {
		app.store.SetItem(key, value)
		return nil
	})
}

// Write stores v under the key bound to the page row at index.
func (app *Application) Write(index int, v any) error {
	d, err := app.row(index)
	if err != nil {
		return err
	}
	return app.extensions.Do(func() error {
		return settings.Write(app.store, d, v)
	})
}

// Choose selects option i of the select row at index.
func (app *Application) Choose(index, option int) error {
	d, err := app.row(index)
	if err != nil {
		return err
	}
	s, ok := d.(*settings.Select)
	if !ok {
		return fmt.Errorf("row %d is a %s, not a select", index, d.Kind())
	}
	return app.extensions.Do(func() error {
		return settings.Choose(app.store, s, option)
	})
}

// Click runs the button at index.
func (app *Application) Click(index int) error {
	d, err := app.row(index)
	if err != nil {
		return err
	}
	return app.extensions.Do(func() error {
		return settings.Click(d)
	})
}

// ResolveDialog answers the open dialog id.
func (app *Application) ResolveDialog(id string, answer any) error {
	return app.extensions.Do(func() error {
		return app.dialogs.Resolve(id, answer)
	})
}

// DismissDialog closes the open dialog id without an answer.
func (app *Application) DismissDialog(id string) error {
	return app.extensions.Do(func() error {
		return app.dialogs.Dismiss(id)
	})
}

// ClickMenu activates the item at path in the shown menu id.
func (app *Application) ClickMenu(id string, path ...int) error {
	inst, ok := app.menus.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMenu, id)
	}
	return app.extensions.Do(func() error {
		return inst.Click(path...)
	})
}

func (app *Application) row(index int) (settings.Descriptor, error) {
	d, ok := app.Page().At(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchRow, index)
	}
	return d, nil
}
