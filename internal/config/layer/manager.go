package layer

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manager holds the configuration layers and answers lookups by precedence.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // Sorted by priority (ascending)
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{
		layers: make([]*Layer, 0, 2),
	}
}

// AddLayer adds a layer to the manager.
// Layers are automatically sorted by priority.
func (m *Manager) AddLayer(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.layers = append(m.layers, layer)
	m.sortLayers()
}

// RemoveLayer removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, layer := range m.layers {
		if layer.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// GetLayer returns a layer by name.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLayer(name)
}

// GetLayerBySource returns the first layer with the given source.
func (m *Manager) GetLayerBySource(source Source) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, layer := range m.layers {
		if layer.Source == source {
			return layer
		}
	}
	return nil
}

// Layers returns a copy of all layers sorted by priority.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Layer, len(m.layers))
	copy(result, m.layers)
	return result
}

// LayerCount returns the number of layers.
func (m *Manager) LayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layers)
}

// Get returns the effective value for a key.
// Returns the value, the layer it came from, and whether it was found.
func (m *Manager) Get(key string) (any, *Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search layers from highest to lowest priority
	for i := len(m.layers) - 1; i >= 0; i-- {
		layer := m.layers[i]
		if val, ok := layer.Lookup(key); ok {
			return val, layer, true
		}
	}

	return nil, nil, false
}

// Set sets a value in a specific layer.
// Returns an error if the layer is not found or is read-only.
func (m *Manager) Set(layerName, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writableLayer(layerName)
	if err != nil {
		return err
	}

	if layer.Data == nil {
		layer.Data = make(map[string]any)
	}
	layer.Data[key] = value
	layer.ModTime = time.Now()
	return nil
}

// Delete removes a value from a specific layer.
// Deleting an absent key is not an error.
func (m *Manager) Delete(layerName, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writableLayer(layerName)
	if err != nil {
		return err
	}

	if _, ok := layer.Data[key]; ok {
		delete(layer.Data, key)
		layer.ModTime = time.Now()
	}
	return nil
}

// GetLayerValue returns a value from a specific layer.
func (m *Manager) GetLayerValue(layerName, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layer := m.findLayer(layerName)
	if layer == nil {
		return nil, false
	}
	return layer.Lookup(key)
}

// WhichLayer returns the name of the layer that provides a value.
func (m *Manager) WhichLayer(key string) string {
	_, layer, found := m.Get(key)
	if !found {
		return ""
	}
	return layer.Name
}

// Keys returns the sorted union of keys across all layers.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, layer := range m.layers {
		for k := range layer.Data {
			seen[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a deep copy of one layer's data.
func (m *Manager) Snapshot(layerName string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layer := m.findLayer(layerName)
	if layer == nil {
		return map[string]any{}
	}
	return CloneMap(layer.Data)
}

// sortLayers sorts layers by priority (ascending).
func (m *Manager) sortLayers() {
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}

// findLayer finds a layer by name (must be called with lock held).
func (m *Manager) findLayer(name string) *Layer {
	for _, layer := range m.layers {
		if layer.Name == name {
			return layer
		}
	}
	return nil
}

func (m *Manager) writableLayer(name string) (*Layer, error) {
	layer := m.findLayer(name)
	if layer == nil {
		return nil, fmt.Errorf("layer not found: %s", name)
	}
	if layer.ReadOnly {
		return nil, fmt.Errorf("layer is read-only: %s", name)
	}
	return layer, nil
}
