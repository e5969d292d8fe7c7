package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader discovers extensions on the filesystem.
type Loader struct {
	// Search paths (checked in order; the first path to provide a name wins)
	paths []string

	// Discovered extensions cache
	discovered map[string]*Info
}

// Info contains discovery information about an extension.
type Info struct {
	Name     string
	Path     string
	Manifest *Manifest
	Error    error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the extension search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// NewLoader creates a new extension loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		paths:      DefaultExtensionPaths(),
		discovered: make(map[string]*Info),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// DefaultExtensionPaths returns the default extension search paths.
func DefaultExtensionPaths() []string {
	paths := make([]string, 0, 2)

	// User extensions: ~/.config/cadence/extensions/
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadence", "extensions"))
	}

	// Project extensions: .cadence/extensions/
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".cadence", "extensions"))
	}

	return paths
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath adds a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover finds all extensions in the search paths, sorted by name.
// Extensions that failed inspection are included with Error set.
func (l *Loader) Discover() ([]*Info, error) {
	l.discovered = make(map[string]*Info)

	for _, basePath := range l.paths {
		if err := l.discoverInPath(basePath); err != nil {
			return nil, fmt.Errorf("scan %s: %w", basePath, err)
		}
	}

	infos := make([]*Info, 0, len(l.discovered))
	for _, info := range l.discovered {
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos, nil
}

// discoverInPath finds extensions in a single directory.
func (l *Loader) discoverInPath(basePath string) error {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if path doesn't exist
		}
		return err
	}

	for _, entry := range entries {
		var info *Info
		switch {
		case entry.IsDir():
			info = inspect(entry.Name(), filepath.Join(basePath, entry.Name()))
		case filepath.Ext(entry.Name()) == ".lua":
			name := strings.TrimSuffix(entry.Name(), ".lua")
			info = &Info{
				Name:     name,
				Path:     basePath,
				Manifest: NewManifestMinimal(name, basePath, entry.Name()),
			}
		default:
			continue
		}

		if _, exists := l.discovered[info.Name]; !exists {
			l.discovered[info.Name] = info
		}
	}

	return nil
}

// inspect examines an extension directory and returns its info.
func inspect(name, path string) *Info {
	info := &Info{
		Name: name,
		Path: path,
	}

	if manifestPath := FindManifest(path); manifestPath != "" {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			info.Error = fmt.Errorf("invalid manifest: %w", err)
			return info
		}
		if _, err := os.Stat(manifest.MainPath()); err != nil {
			info.Error = fmt.Errorf("%w: %s", ErrNoEntryPoint, manifest.Main)
			return info
		}
		info.Manifest = manifest
		info.Name = manifest.Name // Use name from manifest
		return info
	}

	if _, err := os.Stat(filepath.Join(path, DefaultMain)); err == nil {
		info.Manifest = NewManifestMinimal(name, path, DefaultMain)
		return info
	}

	info.Error = ErrNoEntryPoint
	return info
}

// Get returns info for a discovered extension by name.
func (l *Loader) Get(name string) (*Info, bool) {
	info, ok := l.discovered[name]
	return info, ok
}

// Find returns a discovered extension, running discovery if the cache
// does not have it.
func (l *Loader) Find(name string) (*Info, error) {
	if info, ok := l.discovered[name]; ok {
		return info, nil
	}
	if _, err := l.Discover(); err != nil {
		return nil, err
	}
	if info, ok := l.discovered[name]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, name)
}

// ListNames returns the names of all discovered extensions.
func (l *Loader) ListNames() []string {
	names := make([]string, 0, len(l.discovered))
	for name := range l.discovered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of discovered extensions.
func (l *Loader) Count() int {
	return len(l.discovered)
}

// Errors returns discovered extensions that failed inspection.
func (l *Loader) Errors() []*Info {
	var errored []*Info
	for _, name := range l.ListNames() {
		if info := l.discovered[name]; info.Error != nil {
			errored = append(errored, info)
		}
	}
	return errored
}
