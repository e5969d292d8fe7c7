package settings

import (
	"sync"

	"github.com/dshills/cadence/internal/config/notify"
)

// RowState is a row as a renderer needs it.
type RowState struct {
	Descriptor Descriptor
	// Value is the effective bound value; HasValue is false when unset.
	Value    any
	HasValue bool
	Visible  bool
}

// Resolver decides which rows of a Page are currently visible.
type Resolver struct {
	store Store
	page  *Page
}

// NewResolver creates a resolver over page, reading values from store.
func NewResolver(store Store, page *Page) *Resolver {
	return &Resolver{store: store, page: page}
}

// Visible returns the visible rows in page order. Every call rescans the
// whole page; each row is judged only by its own AttachTo key.
func (r *Resolver) Visible() []Descriptor {
	var out []Descriptor
	for _, d := range r.page.All() {
		if r.visible(d) {
			out = append(out, d)
		}
	}
	return out
}

// Rows returns every row with its effective value and visibility.
func (r *Resolver) Rows() []RowState {
	entries := r.page.All()
	out := make([]RowState, 0, len(entries))
	for _, d := range entries {
		v, ok := Value(r.store, d)
		out = append(out, RowState{
			Descriptor: d,
			Value:      v,
			HasValue:   ok,
			Visible:    r.visible(d),
		})
	}
	return out
}

// visible reports whether d shows: no AttachTo, or the key's effective
// value is exactly true. 1, "true" and other truthy values do not count.
func (r *Resolver) visible(d Descriptor) bool {
	key := d.Common().AttachTo
	if key == "" {
		return true
	}
	v, ok := r.store.GetItem(key)
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return isBool && b
}

// Bind calls fn with the new visible list whenever an AttachTo key changes,
// including keys introduced by later appends. Delivery is synchronous with
// the write. fn is not called until the first change. The returned function
// stops delivery.
func (r *Resolver) Bind(fn func(visible []Descriptor)) (unbind func()) {
	b := &binding{
		resolver: r,
		fn:       fn,
		subs:     make(map[string]*notify.Subscription),
	}

	b.watch(r.page.AttachKeys())
	b.removeHook = r.page.OnAppend(func(added []Descriptor) {
		b.watch(attachKeys(added))
	})

	return b.close
}

type binding struct {
	mu         sync.Mutex
	resolver   *Resolver
	fn         func([]Descriptor)
	subs       map[string]*notify.Subscription
	removeHook func()
	closed     bool
}

func (b *binding) watch(keys []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, k := range keys {
		if _, ok := b.subs[k]; ok {
			continue
		}
		b.subs[k] = b.resolver.store.Observe(k, b.changed)
	}
}

func (b *binding) changed(notify.Change) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return
	}
	b.fn(b.resolver.Visible())
}

func (b *binding) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	if b.removeHook != nil {
		b.removeHook()
	}
	for _, s := range subs {
		s.Unsubscribe()
	}
}
