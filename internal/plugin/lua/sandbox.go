package lua

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Capability represents a host API an extension may be granted.
type Capability string

// Available capabilities.
const (
	// CapabilityConfig grants the config table and defaultConfig.
	CapabilityConfig Capability = "config"

	// CapabilitySettings grants the SettingsPage global.
	CapabilitySettings Capability = "settings"

	// CapabilityUI grants the dialog functions and ContextMenu.
	CapabilityUI Capability = "ui"
)

// KnownCapabilities lists every capability the host understands.
var KnownCapabilities = []Capability{
	CapabilityConfig,
	CapabilitySettings,
	CapabilityUI,
}

// ParseCapability converts a manifest string to a Capability.
func ParseCapability(s string) (Capability, error) {
	for _, c := range KnownCapabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability: %q", s)
}

// CapabilityError is returned when an operation needs an ungranted capability.
type CapabilityError struct {
	Capability Capability
	Operation  string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires capability %q", e.Operation, e.Capability)
}

// PrintFunc receives the arguments of a Lua print call, already joined
// with tabs.
type PrintFunc func(line string)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L *lua.LState

	mu           sync.RWMutex
	capabilities map[Capability]bool
	print        PrintFunc
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{
		L:            L,
		capabilities: make(map[Capability]bool),
	}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	// Remove functions that load code from outside the host's control.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installSafeRequire()
}

// SetPrint routes Lua print output to fn. A nil fn discards it.
func (s *Sandbox) SetPrint(fn PrintFunc) {
	s.mu.Lock()
	s.print = fn
	s.mu.Unlock()
}

func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}

		s.mu.RLock()
		fn := s.print
		s.mu.RUnlock()
		if fn != nil {
			fn(strings.Join(parts, "\t"))
		}
		return 0
	}))
}

// installSafeRequire clears the module search paths and replaces require
// with a whitelist of built-in modules.
func (s *Sandbox) installSafeRequire() {
	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
	}

	if pkgTable, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkgTable, "path", lua.LString(""))
		s.L.SetField(pkgTable, "cpath", lua.LString(""))
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)
		if !safeModules[modName] {
			L.RaiseError("module %q is not available", modName)
			return 0
		}
		L.Push(L.GetGlobal(modName))
		return 1
	}))
}

// Grant enables a capability.
func (s *Sandbox) Grant(cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capabilities[cap] = true
}

// Revoke disables a capability. Globals already injected for it remain.
func (s *Sandbox) Revoke(cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.capabilities, cap)
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(cap Capability) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities[cap]
}

// CheckCapability returns a CapabilityError if cap is not granted.
func (s *Sandbox) CheckCapability(cap Capability, operation string) error {
	if s.HasCapability(cap) {
		return nil
	}
	return &CapabilityError{Capability: cap, Operation: operation}
}

// Capabilities returns all granted capabilities, sorted.
func (s *Sandbox) Capabilities() []Capability {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps := make([]Capability, 0, len(s.capabilities))
	for cap, granted := range s.capabilities {
		if granted {
			caps = append(caps, cap)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
