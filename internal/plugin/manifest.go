package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	plua "github.com/dshills/cadence/internal/plugin/lua"
)

// Manifest file names, in lookup order.
const (
	ManifestJSON = "extension.json"
	ManifestYAML = "extension.yaml"
	ManifestYML  = "extension.yml"
)

// DefaultMain is the entry point used when a manifest names none.
const DefaultMain = "init.lua"

// Manifest describes an extension's metadata and requirements.
type Manifest struct {
	// Identity
	Name        string `json:"name" yaml:"name"`               // Unique identifier (e.g., "lyrics-sync")
	Version     string `json:"version" yaml:"version"`         // Semver (e.g., "1.2.0")
	DisplayName string `json:"displayName" yaml:"displayName"` // Human-readable name
	Description string `json:"description" yaml:"description"` // Short description
	Author      string `json:"author" yaml:"author"`           // Author name or org

	// Entry point
	Main string `json:"main" yaml:"main"` // Relative path to main Lua file (default: "init.lua")

	// Capabilities requested
	Capabilities []plua.Capability `json:"capabilities" yaml:"capabilities"`

	// Internal: path to the extension directory
	path string
}

// Validation errors.
var (
	ErrMissingName       = errors.New("manifest: name is required")
	ErrInvalidName       = errors.New("manifest: name must be lowercase alphanumeric with hyphens or dots")
	ErrMissingVersion    = errors.New("manifest: version is required")
	ErrInvalidVersion    = errors.New("manifest: version must be valid semver")
	ErrInvalidMain       = errors.New("manifest: main must be a relative .lua file")
	ErrInvalidCapability = errors.New("manifest: invalid capability")
)

// namePattern validates extension names.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9.-]*[a-z0-9]$|^[a-z]$`)

// semverPattern validates version strings (simplified semver).
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// LoadManifest loads and validates a manifest file. The decoder is chosen
// by the file extension: .json, or .yaml/.yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// FindManifest returns the manifest path in dir, or "" if there is none.
func FindManifest(dir string) string {
	for _, name := range []string{ManifestJSON, ManifestYAML, ManifestYML} {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// LoadManifestFromDir loads the manifest found in an extension directory.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	p := FindManifest(dir)
	if p == "" {
		return nil, fmt.Errorf("no manifest in %s", dir)
	}
	return LoadManifest(p)
}

// NewManifestMinimal creates a manifest for an extension without a
// manifest file. It is granted every known capability.
func NewManifestMinimal(name, dir, main string) *Manifest {
	return &Manifest{
		Name:         name,
		Version:      "0.0.0",
		Main:         main,
		Capabilities: append([]plua.Capability(nil), plua.KnownCapabilities...),
		path:         dir,
	}
}

// applyDefaults sets default values for optional fields.
func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = DefaultMain
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks that the manifest is valid.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, m.Name)
	}

	if m.Version == "" {
		return ErrMissingVersion
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}

	if m.Main != "" {
		if filepath.Ext(m.Main) != ".lua" || filepath.IsAbs(m.Main) || strings.HasPrefix(filepath.Clean(m.Main), "..") {
			return fmt.Errorf("%w: %s", ErrInvalidMain, m.Main)
		}
	}

	for _, c := range m.Capabilities {
		if _, err := plua.ParseCapability(string(c)); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidCapability, c)
		}
	}

	return nil
}

// Path returns the path to the extension directory.
func (m *Manifest) Path() string {
	return m.path
}

// MainPath returns the full path to the main Lua file.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.path, m.Main)
}

// HasCapability returns true if the extension requests the capability.
func (m *Manifest) HasCapability(c plua.Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// String returns a string representation of the manifest.
func (m *Manifest) String() string {
	display := m.DisplayName
	if display == "" {
		display = m.Name
	}
	return fmt.Sprintf("%s v%s", display, m.Version)
}

// Clone creates a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	clone := *m
	if m.Capabilities != nil {
		clone.Capabilities = append([]plua.Capability(nil), m.Capabilities...)
	}
	return &clone
}
