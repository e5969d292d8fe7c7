package plugin

// State represents the lifecycle state of an extension.
type State int

// Extension states.
const (
	// StateUnloaded - Extension code has not run, or its state was closed.
	StateUnloaded State = iota

	// StateLoaded - Extension code ran to completion.
	StateLoaded

	// StateError - Loading failed; Host.Error has the cause.
	StateError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsUsable returns true if the extension's globals and callbacks are live.
func (s State) IsUsable() bool {
	return s == StateLoaded
}
