// Package notify delivers configuration change notifications.
//
// Every key has at most one listener slot, installed with Listen; a new
// registration replaces the previous one. Host components that must not
// displace an extension's listener use Subscribe or SubscribeAll instead,
// which are multicast and can be cancelled.
//
// Delivery is synchronous: Notify returns after the slot listener, the key
// observers (in registration order) and the global observers have run.
// Each callback is isolated; a panic is recovered, reported to the
// PanicHandler, and delivery continues with the next callback.
package notify

import (
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates a value was removed from the live layer.
	ChangeDelete
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Key is the opaque key that was written.
	Key string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous live value (nil if there was none).
	OldValue any

	// NewValue is the raw written value (nil for deletes).
	NewValue any
}

// Listener is the single per-key callback. It receives the raw written value.
type Listener func(value any)

// Observer is called with the full change record.
type Observer func(change Change)

// PanicHandler receives panics recovered from listeners and observers.
type PanicHandler func(key string, recovered any)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	key      string
	notifier *Notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id, s.key)
	}
}

type entry struct {
	id       uint64
	observer Observer
}

// Notifier manages listeners and observers.
type Notifier struct {
	mu sync.RWMutex

	// One listener per key
	listeners map[string]Listener

	// Key-specific observers, in registration order
	keyObservers map[string][]entry

	// Observers that receive every change
	globalObservers []entry

	nextID  uint64
	onPanic PanicHandler
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithPanicHandler sets the handler for recovered callback panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(n *Notifier) {
		n.onPanic = h
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		listeners:    make(map[string]Listener),
		keyObservers: make(map[string][]entry),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Listen installs fn as the sole listener for key, replacing any previous
// listener. A nil fn clears the slot.
func (n *Notifier) Listen(key string, fn Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if fn == nil {
		delete(n.listeners, key)
		return
	}
	n.listeners[key] = fn
}

// HasListener reports whether key has a listener installed.
func (n *Notifier) HasListener(key string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.listeners[key]
	return ok
}

// Subscribe registers an observer for changes to exactly key.
func (n *Notifier) Subscribe(key string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.keyObservers[key] = append(n.keyObservers[key], entry{id: id, observer: observer})

	return &Subscription{id: id, key: key, notifier: n}
}

// SubscribeAll registers an observer for every change.
func (n *Notifier) SubscribeAll(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers = append(n.globalObservers, entry{id: id, observer: observer})

	// Global subscriptions are found by id alone.
	return &Subscription{id: id, key: globalKey, notifier: n}
}

// globalKey cannot collide with a real key because it is never looked up
// in keyObservers.
const globalKey = "\x00global"

// Notify delivers a change synchronously.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	listener := n.listeners[change.Key]
	keyObs := snapshot(n.keyObservers[change.Key])
	globalObs := snapshot(n.globalObservers)
	n.mu.RUnlock()

	// Callbacks run outside the lock so they may register or write.
	if listener != nil {
		n.call(change.Key, func() { listener(change.NewValue) })
	}
	for _, obs := range keyObs {
		n.call(change.Key, func() { obs(change) })
	}
	for _, obs := range globalObs {
		n.call(change.Key, func() { obs(change) })
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(key string, oldValue, newValue any) {
	n.Notify(Change{
		Key:      key,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

// NotifyDelete is a convenience method for delete changes.
func (n *Notifier) NotifyDelete(key string, oldValue any) {
	n.Notify(Change{
		Key:      key,
		Type:     ChangeDelete,
		OldValue: oldValue,
	})
}

func (n *Notifier) call(key string, fn func()) {
	defer func() {
		if r := recover(); r != nil && n.onPanic != nil {
			n.onPanic(key, r)
		}
	}()
	fn()
}

func (n *Notifier) unsubscribe(id uint64, key string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if key == globalKey {
		n.globalObservers = remove(n.globalObservers, id)
		return
	}

	observers := remove(n.keyObservers[key], id)
	if len(observers) == 0 {
		delete(n.keyObservers, key)
		return
	}
	n.keyObservers[key] = observers
}

func snapshot(entries []entry) []Observer {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Observer, len(entries))
	for i, e := range entries {
		out[i] = e.observer
	}
	return out
}

func remove(entries []entry, id uint64) []entry {
	for i, e := range entries {
		if e.id == id {
			out := make([]entry, 0, len(entries)-1)
			out = append(out, entries[:i]...)
			return append(out, entries[i+1:]...)
		}
	}
	return entries
}
