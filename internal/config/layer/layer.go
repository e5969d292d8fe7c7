// Package layer provides the value layers behind the configuration store.
//
// Keys are opaque strings. A dot inside a key carries no structure, so layers
// hold flat maps and lookups never descend into nested values.
package layer

import (
	"sort"
	"time"
)

// Layer represents a single configuration layer.
type Layer struct {
	// Name identifies the layer (e.g., "live", "defaults").
	Name string

	// Priority determines lookup order (higher shadows lower).
	Priority int

	// Source indicates what populates this layer.
	Source Source

	// Data holds the values keyed by their opaque config key.
	Data map[string]any

	// ModTime is when the layer was last written.
	ModTime time.Time

	// ReadOnly prevents modifications through the Manager.
	ReadOnly bool
}

// NewLayer creates a new empty layer.
func NewLayer(name string, source Source, priority int) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     make(map[string]any),
		ModTime:  time.Now(),
	}
}

// NewLayerWithData creates a new layer with initial data.
func NewLayerWithData(name string, source Source, priority int, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     data,
		ModTime:  time.Now(),
	}
}

// Lookup returns the value stored for key in this layer only.
func (l *Layer) Lookup(key string) (any, bool) {
	if l.Data == nil {
		return nil, false
	}
	v, ok := l.Data[key]
	return v, ok
}

// Keys returns the layer's keys in sorted order.
func (l *Layer) Keys() []string {
	keys := make([]string, 0, len(l.Data))
	for k := range l.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Data:     CloneMap(l.Data),
		ModTime:  l.ModTime,
		ReadOnly: l.ReadOnly,
	}
}

// Source indicates what writes into a configuration layer.
type Source uint8

const (
	// SourceDefault is the fallback layer extensions populate on load.
	SourceDefault Source = iota
	// SourceLive is the layer written by setItem.
	SourceLive
	// SourceSeed marks values imported from a seed file.
	SourceSeed
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceLive:
		return "live"
	case SourceSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// CloneMap creates a deep copy of a value map. Nested maps and slices are
// copied; other values are shared.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return CloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
