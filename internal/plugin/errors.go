package plugin

import "errors"

// Extension system errors.
var (
	// ErrExtensionNotFound is returned when an extension cannot be located.
	ErrExtensionNotFound = errors.New("extension not found")

	// ErrNoEntryPoint is returned when an extension has no valid entry point.
	ErrNoEntryPoint = errors.New("extension has no entry point (init.lua)")

	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")

	// ErrAlreadyLoaded is returned when attempting to load an already loaded extension.
	ErrAlreadyLoaded = errors.New("extension is already loaded")

	// ErrNotLoaded is returned when attempting to use an unloaded extension.
	ErrNotLoaded = errors.New("extension is not loaded")
)
