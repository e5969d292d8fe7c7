package settings

import (
	"errors"
	"sync"
)

// AppendHook is called after entries are appended, with just the new entries.
type AppendHook func(added []Descriptor)

// Page is the ordered list of settings rows. Entries are only ever appended;
// nothing removes or reorders them.
type Page struct {
	mu      sync.RWMutex
	entries []Descriptor
	hooks   map[uint64]AppendHook
	nextID  uint64
}

// NewPage creates an empty page.
func NewPage() *Page {
	return &Page{
		hooks: make(map[uint64]AppendHook),
	}
}

// Append validates every entry and, only if all are valid, appends them in
// order. On failure nothing is appended and the returned error joins one
// *ValidationError per bad entry, each carrying its batch index.
// Entries binding the same key as an existing row are accepted.
func (p *Page) Append(entries ...Descriptor) error {
	var errs []error
	for i, d := range entries {
		if err := Validate(d); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Index = i
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if len(entries) == 0 {
		return nil
	}

	added := make([]Descriptor, len(entries))
	copy(added, entries)

	p.mu.Lock()
	p.entries = append(p.entries, added...)
	hooks := p.hookOrder()
	p.mu.Unlock()

	for _, h := range hooks {
		h(added)
	}
	return nil
}

// OnAppend registers a hook run after each successful Append. The returned
// function removes it.
func (p *Page) OnAppend(fn AppendHook) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.hooks[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.hooks, id)
	}
}

// hookOrder returns hooks in registration order (must be called with lock held).
func (p *Page) hookOrder() []AppendHook {
	out := make([]AppendHook, 0, len(p.hooks))
	for id := uint64(0); id < p.nextID; id++ {
		if h, ok := p.hooks[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

// All returns a copy of the entries in order.
func (p *Page) All() []Descriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Descriptor, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries.
func (p *Page) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// At returns the entry at index i.
func (p *Page) At(i int) (Descriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i < 0 || i >= len(p.entries) {
		return nil, false
	}
	return p.entries[i], true
}

// AttachKeys returns the distinct AttachTo keys in first-seen order.
func (p *Page) AttachKeys() []string {
	return attachKeys(p.All())
}

func attachKeys(entries []Descriptor) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, d := range entries {
		k := d.Common().AttachTo
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
