package lua

import (
	"errors"
	"reflect"
	"testing"
)

func TestSandboxSafeRequire(t *testing.T) {
	state := newTestState(t)

	if err := state.DoString(`local s = require("string"); up = s.upper("a")`); err != nil {
		t.Fatalf("require(string) error = %v", err)
	}

	for _, mod := range []string{"io", "os", "debug", "socket"} {
		if err := state.DoString(`require("` + mod + `")`); err == nil {
			t.Errorf("require(%q) should fail", mod)
		}
	}
}

func TestSandboxPrint(t *testing.T) {
	state := newTestState(t)

	var lines []string
	state.Sandbox().SetPrint(func(line string) { lines = append(lines, line) })

	if err := state.DoString(`print("a", 1, true, nil)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	want := []string{"a\t1\ttrue\tnil"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("print lines = %q, want %q", lines, want)
	}

	state.Sandbox().SetPrint(nil)
	if err := state.DoString(`print("dropped")`); err != nil {
		t.Errorf("print with nil sink error = %v", err)
	}
}

func TestSandboxCapabilities(t *testing.T) {
	state := newTestState(t)
	sb := state.Sandbox()

	if sb.HasCapability(CapabilityConfig) {
		t.Error("capability granted before Grant")
	}

	sb.Grant(CapabilityUI)
	sb.Grant(CapabilityConfig)

	want := []Capability{CapabilityConfig, CapabilityUI}
	if got := sb.Capabilities(); !reflect.DeepEqual(got, want) {
		t.Errorf("Capabilities() = %v, want %v", got, want)
	}

	sb.Revoke(CapabilityUI)
	err := sb.CheckCapability(CapabilityUI, "alert")
	var capErr *CapabilityError
	if !errors.As(err, &capErr) || capErr.Capability != CapabilityUI {
		t.Fatalf("CheckCapability() error = %v, want CapabilityError", err)
	}
	if capErr.Error() != `alert requires capability "ui"` {
		t.Errorf("Error() = %q", capErr.Error())
	}
	if err := sb.CheckCapability(CapabilityConfig, "config.getItem"); err != nil {
		t.Errorf("CheckCapability(config) error = %v", err)
	}
}

func TestParseCapability(t *testing.T) {
	for _, c := range KnownCapabilities {
		got, err := ParseCapability(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCapability(%q) = %v, %v", c, got, err)
		}
	}
	if _, err := ParseCapability("network"); err == nil {
		t.Error("ParseCapability(network) should fail")
	}
}
