package plugin

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/cadence/internal/config"
	"github.com/dshills/cadence/internal/plugin/api"
	plua "github.com/dshills/cadence/internal/plugin/lua"
	"github.com/dshills/cadence/internal/settings"
)

func createTestExtension(t *testing.T, name, code string, caps ...plua.Capability) *Manifest {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultMain), code)

	return &Manifest{
		Name:         name,
		Version:      "1.0.0",
		Main:         DefaultMain,
		Capabilities: caps,
		path:         dir,
	}
}

func TestNewHost(t *testing.T) {
	manifest := &Manifest{Name: "test", Version: "1.0.0"}

	host, err := NewHost(manifest)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	if host.Name() != "test" || host.Manifest() != manifest {
		t.Errorf("host = %q, %p", host.Name(), host.Manifest())
	}
	if host.State() != StateUnloaded {
		t.Errorf("State() = %v, want %v", host.State(), StateUnloaded)
	}

	if _, err := NewHost(nil); !errors.Is(err, ErrNilManifest) {
		t.Errorf("NewHost(nil) error = %v", err)
	}
}

func TestHostLoad(t *testing.T) {
	store := config.New()
	page := settings.NewPage()
	manifest := createTestExtension(t, "seed", `
		defaultConfig["seed.enabled"] = true
		SettingsPage.data.push({type = "boolean", text = "Enabled", configItem = "seed.enabled"})
		loaded = "yes"
	`, plua.CapabilityConfig, plua.CapabilitySettings)

	host, err := NewHost(manifest, WithAPI(&api.Context{Config: store, Page: page}))
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}

	if err := host.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer host.Unload(context.Background())

	if host.State() != StateLoaded {
		t.Errorf("State() = %v, want loaded", host.State())
	}
	if v, _ := store.GetItem("seed.enabled"); v != true {
		t.Errorf("seed.enabled = %v, want true", v)
	}
	if page.Len() != 1 {
		t.Errorf("page len = %d, want 1", page.Len())
	}
	if v, err := host.Global("loaded"); err != nil || v != "yes" {
		t.Errorf("Global(loaded) = %v, %v", v, err)
	}
	if got := host.Modules(); len(got) != 2 {
		t.Errorf("Modules() = %v, want config and settings", got)
	}

	if err := host.Load(context.Background()); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second Load() error = %v", err)
	}
}

func TestHostLoadWithoutCapability(t *testing.T) {
	manifest := createTestExtension(t, "nocap", `config.setItem("k", 1)`)

	host, _ := NewHost(manifest, WithAPI(&api.Context{Config: config.New()}))
	err := host.Load(context.Background())
	if err == nil {
		t.Fatal("Load() should fail when config is not granted")
	}
	if host.State() != StateError || host.Error() == nil {
		t.Errorf("State() = %v, Error() = %v", host.State(), host.Error())
	}
}

func TestHostLoadSyntaxError(t *testing.T) {
	manifest := createTestExtension(t, "broken", `this is not lua`)

	host, _ := NewHost(manifest)
	if err := host.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "failed to load extension") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestHostLoadTimeout(t *testing.T) {
	manifest := createTestExtension(t, "spin", `while true do end`)

	host, _ := NewHost(manifest, WithHostExecutionTimeout(50*time.Millisecond))
	if err := host.Load(context.Background()); !errors.Is(err, plua.ErrExecutionTimeout) {
		t.Errorf("Load() error = %v, want ErrExecutionTimeout", err)
	}
}

func TestHostLoadCanceled(t *testing.T) {
	manifest := createTestExtension(t, "late", `x = 1`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	host, _ := NewHost(manifest)
	if err := host.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestHostUnload(t *testing.T) {
	store := config.New()
	manifest := createTestExtension(t, "listener", `
		hits = 0
		config.listenChange("k", function() hits = hits + 1 end)
	`, plua.CapabilityConfig)

	host, _ := NewHost(manifest, WithAPI(&api.Context{Config: store}))
	if err := host.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	store.SetItem("k", 1)
	if v, _ := host.Global("hits"); v != int64(1) {
		t.Errorf("hits = %v, want 1", v)
	}

	if err := host.Unload(context.Background()); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if host.State() != StateUnloaded {
		t.Errorf("State() = %v, want unloaded", host.State())
	}

	// The orphaned listener is a no-op once the state is closed.
	store.SetItem("k", 2)

	if err := host.DoString(`x = 1`); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("DoString() after Unload error = %v", err)
	}
	if _, err := host.Global("hits"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Global() after Unload error = %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnloaded, "unloaded"},
		{StateLoaded, "loaded"},
		{StateError, "error"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
	if !StateLoaded.IsUsable() || StateError.IsUsable() {
		t.Error("IsUsable() mismatch")
	}
}
