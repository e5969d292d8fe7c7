package config

import (
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/cadence/internal/config/layer"
	"github.com/dshills/cadence/internal/config/notify"
)

const (
	liveLayer    = "live"
	defaultLayer = "defaults"
)

// Listener receives the raw value written to a key (nil for deletes).
type Listener = notify.Listener

// Store is the process-wide configuration store. Construct it with New and
// share the pointer; there is no package-level instance.
type Store struct {
	// Serializes read-old/write pairs so each Change carries a coherent OldValue.
	mu sync.Mutex

	layers   *layer.Manager
	notifier *notify.Notifier
	defaults *Defaults
	logger   *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report recovered listener panics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		layers: layer.NewManager(),
		logger: log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.layers.AddLayer(layer.NewLayer(defaultLayer, layer.SourceDefault, layer.PriorityDefault))
	s.layers.AddLayer(layer.NewLayer(liveLayer, layer.SourceLive, layer.PriorityLive))
	s.notifier = notify.New(notify.WithPanicHandler(s.reportPanic))
	s.defaults = &Defaults{store: s}

	return s
}

// GetItem returns the effective value for key: the live value if present,
// otherwise the default. The boolean is false when neither layer has the key.
func (s *Store) GetItem(key string) (any, bool) {
	v, _, ok := s.layers.Get(key)
	return v, ok
}

// SetItem writes value into the live layer and delivers it to the key's
// listener and then to observers before returning. A nil value deletes the
// live entry so reads fall back to the default.
func (s *Store) SetItem(key string, value any) {
	s.mu.Lock()
	old, _ := s.layers.GetLayerValue(liveLayer, key)
	if value == nil {
		_ = s.layers.Delete(liveLayer, key)
	} else {
		_ = s.layers.Set(liveLayer, key, value)
	}
	s.mu.Unlock()

	if value == nil {
		s.notifier.NotifyDelete(key, old)
		return
	}
	s.notifier.NotifySet(key, old, value)
}

// ListenChange installs fn as the only listener for key, replacing any
// previous listener. A nil fn clears the slot.
func (s *Store) ListenChange(key string, fn Listener) {
	s.notifier.Listen(key, fn)
}

// Observe registers a host observer for key. Observers run after the key's
// listener and do not occupy its slot.
func (s *Store) Observe(key string, fn notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(key, fn)
}

// ObserveAll registers a host observer for every key.
func (s *Store) ObserveAll(fn notify.Observer) *notify.Subscription {
	return s.notifier.SubscribeAll(fn)
}

// Defaults returns the default layer handle.
func (s *Store) Defaults() *Defaults {
	return s.defaults
}

// Has reports whether key has an effective value.
func (s *Store) Has(key string) bool {
	_, ok := s.GetItem(key)
	return ok
}

// Keys returns the sorted union of live and default keys.
func (s *Store) Keys() []string {
	return s.layers.Keys()
}

// Source names the layer that answers GetItem for key: "live", "default",
// or "" when the key is absent.
func (s *Store) Source(key string) string {
	_, l, ok := s.layers.Get(key)
	if !ok {
		return ""
	}
	return l.Source.String()
}

// Snapshot returns a copy of the live layer.
func (s *Store) Snapshot() map[string]any {
	return s.layers.Snapshot(liveLayer)
}

// Load applies every entry with SetItem in sorted key order, so listeners
// fire for each one.
func (s *Store) Load(values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s.SetItem(k, values[k])
	}
}

func (s *Store) reportPanic(key string, recovered any) {
	s.logger.Warn("listener panicked", "key", key, "err", &PanicError{Key: key, Value: recovered})
}

// Defaults is the lower-priority layer consulted when the live layer has
// no value. Writes never notify listeners and nothing here is persisted.
type Defaults struct {
	store *Store
}

// Set assigns a default. A nil value removes it.
func (d *Defaults) Set(key string, value any) {
	if value == nil {
		_ = d.store.layers.Delete(defaultLayer, key)
		return
	}
	_ = d.store.layers.Set(defaultLayer, key, value)
}

// Get returns the default for key, ignoring any live value.
func (d *Defaults) Get(key string) (any, bool) {
	return d.store.layers.GetLayerValue(defaultLayer, key)
}

// Delete removes the default for key.
func (d *Defaults) Delete(key string) {
	_ = d.store.layers.Delete(defaultLayer, key)
}

// Keys returns the sorted default keys.
func (d *Defaults) Keys() []string {
	l := d.store.layers.GetLayer(defaultLayer)
	if l == nil {
		return nil
	}
	snap := d.store.layers.Snapshot(defaultLayer)
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset removes every default. Extensions re-populate defaults on each load.
func (d *Defaults) Reset() {
	for _, k := range d.Keys() {
		d.Delete(k)
	}
}
