// Package menu models context menus opened by extensions.
//
// A Menu is built once from a list of entries and never changes. Each
// Popup creates an Instance; within one instance an item's click handler
// runs at most once.
package menu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Errors returned by menu operations.
var (
	// ErrInvalidMenu indicates an entry without a label.
	ErrInvalidMenu = errors.New("invalid menu")

	// ErrNoItem indicates the click path does not name an item.
	ErrNoItem = errors.New("no such menu item")

	// ErrDisabled indicates the item is disabled.
	ErrDisabled = errors.New("menu item is disabled")

	// ErrAlreadyClicked indicates the instance already handled a click.
	ErrAlreadyClicked = errors.New("menu item already clicked")

	// ErrClosed indicates the instance has been closed.
	ErrClosed = errors.New("menu closed")
)

// Entry is an Item or a Separator.
type Entry interface {
	entry()
}

// Item is a clickable entry, optionally with a submenu.
type Item struct {
	Label    string
	Disabled bool
	Click    func()
	Submenu  []Entry
}

// Separator is a divider line.
type Separator struct{}

func (Item) entry()      {}
func (Separator) entry() {}

// Point is a screen position or offset in pixels.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Presenter displays menu instances. Show must not block.
type Presenter interface {
	Show(inst *Instance)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(inst *Instance)

// Show implements Presenter.
func (f PresenterFunc) Show(inst *Instance) { f(inst) }

// Menu is an immutable menu definition.
type Menu struct {
	entries   []Entry
	presenter Presenter
}

// New validates entries and returns a menu holding a deep copy of them.
// presenter may be nil, in which case Popup only creates the instance.
func New(entries []Entry, presenter Presenter) (*Menu, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return &Menu{entries: cloneEntries(entries), presenter: presenter}, nil
}

// Validate rejects items without a label, at any depth.
func Validate(entries []Entry) error {
	return validate(entries, "")
}

func validate(entries []Entry, prefix string) error {
	for i, e := range entries {
		path := fmt.Sprintf("%s%d", prefix, i)
		switch v := e.(type) {
		case Item:
			if v.Label == "" {
				return fmt.Errorf("%w: item %s has no label", ErrInvalidMenu, path)
			}
			if err := validate(v.Submenu, path+"."); err != nil {
				return err
			}
		case Separator:
		default:
			return fmt.Errorf("%w: entry %s has unknown type %T", ErrInvalidMenu, path, e)
		}
	}
	return nil
}

// Entries returns a copy of the menu's entries.
func (m *Menu) Entries() []Entry {
	return cloneEntries(m.entries)
}

// Popup shows the menu at at plus an optional offset (default 0,0).
func (m *Menu) Popup(at Point, offset ...Point) *Instance {
	var off Point
	if len(offset) > 0 {
		off = offset[0]
	}

	inst := &Instance{
		ID:       uuid.New().String(),
		Position: at.Add(off),
		menu:     m,
	}
	if m.presenter != nil {
		m.presenter.Show(inst)
	}
	return inst
}

// Instance is one visible showing of a menu.
type Instance struct {
	ID       string
	Position Point

	menu    *Menu
	mu      sync.Mutex
	clicked map[string]bool
	closed  bool
}

// Entries returns the entries being shown.
func (i *Instance) Entries() []Entry {
	return i.menu.Entries()
}

// Click activates the item at path, one index per submenu level. The
// handler runs at most once per item for this instance; a panic in it is
// returned as an error.
func (i *Instance) Click(path ...int) (err error) {
	item, err := i.menu.lookup(path)
	if err != nil {
		return err
	}
	if item.Disabled {
		return fmt.Errorf("%w: %q", ErrDisabled, item.Label)
	}

	key := fmt.Sprint(path)
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrClosed
	}
	if i.clicked[key] {
		i.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrAlreadyClicked, item.Label)
	}
	if i.clicked == nil {
		i.clicked = make(map[string]bool)
	}
	i.clicked[key] = true
	i.mu.Unlock()

	if item.Click == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("menu item %q handler panicked: %v", item.Label, r)
		}
	}()
	item.Click()
	return nil
}

// Close hides the instance. Later clicks fail with ErrClosed.
func (i *Instance) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
}

// Closed reports whether Close was called.
func (i *Instance) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

func (m *Menu) lookup(path []int) (Item, error) {
	if len(path) == 0 {
		return Item{}, fmt.Errorf("%w: empty path", ErrNoItem)
	}

	entries := m.entries
	var item Item
	for depth, idx := range path {
		if idx < 0 || idx >= len(entries) {
			return Item{}, fmt.Errorf("%w: %v", ErrNoItem, path[:depth+1])
		}
		it, ok := entries[idx].(Item)
		if !ok {
			return Item{}, fmt.Errorf("%w: %v is a separator", ErrNoItem, path[:depth+1])
		}
		item = it
		entries = it.Submenu
	}
	return item, nil
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if it, ok := e.(Item); ok {
			it.Submenu = cloneEntries(it.Submenu)
			out[i] = it
			continue
		}
		out[i] = e
	}
	return out
}
