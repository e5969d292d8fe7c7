package watcher

import (
	"reflect"
	"sort"
	"sync"
)

// Source yields the current flat contents of the watched file.
type Source interface {
	Load() (map[string]any, error)
}

// Target receives writes for keys whose seed value changed.
type Target interface {
	SetItem(key string, value any)
}

// Reloader applies seed file differences to a Target. Keys that disappear
// from the file are written as nil, so the effective value falls back to
// its default.
type Reloader struct {
	mu     sync.Mutex
	source Source
	target Target
	last   map[string]any
}

// NewReloader creates a Reloader. The initial snapshot is taken by the
// first call to Reload.
func NewReloader(source Source, target Target) *Reloader {
	return &Reloader{
		source: source,
		target: target,
		last:   map[string]any{},
	}
}

// Reload reads the source and writes every changed key to the target in
// sorted key order. It returns the keys that were written.
func (r *Reloader) Reload() ([]string, error) {
	next, err := r.source.Load()
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = map[string]any{}
	}

	r.mu.Lock()
	changed := Diff(r.last, next)
	r.last = next
	r.mu.Unlock()

	for _, k := range changed {
		r.target.SetItem(k, next[k])
	}
	return changed, nil
}

// Handler adapts Reload to an event Handler; errors go to onError.
func (r *Reloader) Handler(onError func(error)) Handler {
	return func(Event) {
		if _, err := r.Reload(); err != nil && onError != nil {
			onError(err)
		}
	}
}

// Diff returns the sorted keys whose value differs between prev and next,
// including keys present in only one of them.
func Diff(prev, next map[string]any) []string {
	var keys []string
	for k, v := range next {
		if old, ok := prev[k]; !ok || !reflect.DeepEqual(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
