package app

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/cadence/internal/menu"
)

// managedTarget routes seed writes through the extension manager so they
// never overlap extension code.
type managedTarget struct {
	app *Application
}

func (t managedTarget) SetItem(key string, value any) {
	t.app.SetItem(key, value)
}

// MenuTray is a menu.Presenter that keeps shown instances until they are
// closed, so a CLI or a test can click them.
type MenuTray struct {
	mu     sync.Mutex
	shown  []*menu.Instance
	logger *log.Logger
}

// NewMenuTray creates an empty tray.
func NewMenuTray(logger *log.Logger) *MenuTray {
	return &MenuTray{logger: logger}
}

// Show implements menu.Presenter.
func (t *MenuTray) Show(inst *menu.Instance) {
	t.mu.Lock()
	t.shown = append(t.shown, inst)
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Debug("context menu shown", "id", inst.ID, "x", inst.Position.X, "y", inst.Position.Y)
	}
}

// Open returns the instances not yet closed, oldest first.
func (t *MenuTray) Open() []*menu.Instance {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.shown[:0]
	for _, inst := range t.shown {
		if !inst.Closed() {
			kept = append(kept, inst)
		}
	}
	t.shown = kept
	return append([]*menu.Instance(nil), kept...)
}

// Get returns the open instance with id.
func (t *MenuTray) Get(id string) (*menu.Instance, bool) {
	for _, inst := range t.Open() {
		if inst.ID == id {
			return inst, true
		}
	}
	return nil, false
}
