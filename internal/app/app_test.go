package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/cadence/internal/dialog"
	"github.com/dshills/cadence/internal/settings"
)

const demoExtension = `
defaultConfig["demo.enabled"] = false
SettingsPage.data.push(
	{type = "title", text = "Demo"},
	{type = "boolean", text = "Enabled", configItem = "demo.enabled"},
	{type = "button", text = "Action", button = "Run", onclick = function() clicked = true end},
	{type = "input", text = "Name", configItem = "demo.name", attachTo = "demo.enabled"}
)

changes = 0
config.listenChange("demo.name", function(v)
	changes = changes + 1
	last = v
end)
`

type testApp struct {
	*Application
	extDir string
	seed   string
	logs   *bytes.Buffer
}

func newTestApp(t *testing.T, extensions map[string]string, seed string) *testApp {
	t.Helper()

	extDir := t.TempDir()
	for name, code := range extensions {
		if err := os.WriteFile(filepath.Join(extDir, name+".lua"), []byte(code), 0644); err != nil {
			t.Fatalf("failed to write extension: %v", err)
		}
	}

	seedPath := filepath.Join(t.TempDir(), "settings.toml")
	if seed != "" {
		if err := os.WriteFile(seedPath, []byte(seed), 0644); err != nil {
			t.Fatalf("failed to write seed: %v", err)
		}
	}

	logs := &bytes.Buffer{}
	app, err := New(Options{
		Extensions: []string{extDir},
		Seed:       seedPath,
		LogLevel:   "debug",
		LogOutput:  logs,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(app.Shutdown)

	return &testApp{Application: app, extDir: extDir, seed: seedPath, logs: logs}
}

func (a *testApp) global(t *testing.T, ext, name string) any {
	t.Helper()
	host, ok := a.Extensions().Get(ext)
	if !ok {
		t.Fatalf("extension %q not loaded", ext)
	}
	v, err := host.Global(name)
	if err != nil {
		t.Fatalf("Global(%q) failed: %v", name, err)
	}
	return v
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t, nil, "")

	if app.Store() == nil || app.Page() == nil || app.Resolver() == nil {
		t.Error("expected store, page and resolver to be initialized")
	}
	if app.Dialogs() == nil || app.Menus() == nil || app.Extensions() == nil {
		t.Error("expected collaborators and extensions to be initialized")
	}
	if app.IsRunning() {
		t.Error("expected IsRunning() to be false before Start()")
	}
}

func TestNewApplication_BadLogLevel(t *testing.T) {
	_, err := New(Options{LogLevel: "loud"})
	var ce *ComponentError
	if !errors.As(err, &ce) || ce.Component != "logger" {
		t.Fatalf("New() error = %v, want logger ComponentError", err)
	}
}

func TestApplication_Start(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, `
[demo]
name = "seeded"
`)

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !app.IsRunning() {
		t.Error("expected IsRunning() after Start()")
	}
	if err := app.ExtensionError(); err != nil {
		t.Errorf("ExtensionError() = %v", err)
	}

	if v, _ := app.Store().GetItem("demo.name"); v != "seeded" {
		t.Errorf("demo.name = %v, want seeded", v)
	}
	if v, _ := app.Store().GetItem("demo.enabled"); v != false {
		t.Errorf("demo.enabled = %v, want default false", v)
	}
	if app.Page().Len() != 4 {
		t.Fatalf("page len = %d, want 4", app.Page().Len())
	}

	// The input row is attached to demo.enabled, which is false.
	if got := len(app.Resolver().Visible()); got != 3 {
		t.Errorf("visible rows = %d, want 3", got)
	}
	app.SetItem("demo.enabled", true)
	if got := len(app.Resolver().Visible()); got != 4 {
		t.Errorf("visible rows after enabling = %d, want 4", got)
	}

	if err := app.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestApplication_StartWithFailingExtension(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"bad":  `error("broken on purpose")`,
		"good": `config.setItem("good.loaded", true)`,
	}, "")

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := app.ExtensionError(); err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("ExtensionError() = %v, want failure for bad", err)
	}
	if v, _ := app.Store().GetItem("good.loaded"); v != true {
		t.Error("good extension did not load after bad one failed")
	}
	if !strings.Contains(app.logs.String(), "some extensions failed to load") {
		t.Errorf("expected warning in logs, got %q", app.logs.String())
	}
}

func TestApplication_ReloadSeed(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, `
[demo]
name = "one"
`)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var seen [][]string
	app.OnSeedChange(func(keys []string) { seen = append(seen, keys) })

	if err := os.WriteFile(app.seed, []byte("[demo]\nname = \"two\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	keys, err := app.ReloadSeed()
	if err != nil {
		t.Fatalf("ReloadSeed() failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "demo.name" {
		t.Errorf("ReloadSeed() keys = %v", keys)
	}
	if len(seen) != 1 {
		t.Errorf("OnSeedChange calls = %d, want 1", len(seen))
	}
	if got := app.global(t, "demo", "last"); got != "two" {
		t.Errorf("listener saw %v, want two", got)
	}

	// Removing the key clears the live value.
	if err := os.WriteFile(app.seed, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := app.ReloadSeed(); err != nil {
		t.Fatalf("ReloadSeed() failed: %v", err)
	}
	if app.Store().Has("demo.name") {
		t.Error("demo.name should be cleared after removal from seed")
	}
	if got := app.global(t, "demo", "last"); got != nil {
		t.Errorf("listener saw %v, want nil", got)
	}
}

func TestApplication_ReloadExtensions(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, "")
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	oldPage := app.Page()
	if err := app.ReloadExtensions(context.Background()); err != nil {
		t.Fatalf("ReloadExtensions() failed: %v", err)
	}

	if app.Page() == oldPage {
		t.Error("expected a fresh page after reload")
	}
	if app.Page().Len() != 4 {
		t.Errorf("page len = %d, want 4", app.Page().Len())
	}
	if v, _ := app.Store().GetItem("demo.enabled"); v != false {
		t.Errorf("demo.enabled = %v, want re-populated default", v)
	}
}

const advancedExtension = `
defaultConfig["demo.mode"] = "off"
SettingsPage.data.push(
	{type = "select", text = "Mode", configItem = "demo.mode", options = {{"off", "Off"}, {"on", "On"}}},
	{type = "input", text = "Host", configItem = "demo.host", attachTo = "demo.advanced"}
)

config.listenChange("demo.mode", function(v)
	config.setItem("demo.advanced", v == "on")
end)
`

func TestApplication_OnVisibleChange(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": advancedExtension}, "")

	var calls [][]settings.Descriptor
	app.OnVisibleChange(func(visible []settings.Descriptor) {
		calls = append(calls, visible)
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("visible hook ran %d times during load, want 0", len(calls))
	}

	// The listener flips the attach key of the host row.
	if err := app.Choose(0, 1); err != nil {
		t.Fatalf("Choose() failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("visible hook ran %d times, want 1", len(calls))
	}
	if got := len(calls[0]); got != 2 {
		t.Errorf("visible rows = %d, want 2", got)
	}

	if err := app.ReloadExtensions(context.Background()); err != nil {
		t.Fatalf("ReloadExtensions() failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("visible hook ran %d times after reload, want 2", len(calls))
	}
	if got := len(calls[1]); got != 2 {
		t.Errorf("visible rows after reload = %d, want 2", got)
	}

	// Only the binding on the new page may report.
	if err := app.Choose(0, 0); err != nil {
		t.Fatalf("Choose() after reload failed: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("visible hook ran %d times, want 3", len(calls))
	}
	if got := len(calls[2]); got != 1 {
		t.Errorf("visible rows = %d, want 1", got)
	}
	if calls[2][0] != app.Page().All()[0] {
		t.Error("visible rows should come from the reloaded page")
	}
}

func TestApplication_RowOperations(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, "")
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := app.Click(2); err != nil {
		t.Fatalf("Click() failed: %v", err)
	}
	if got := app.global(t, "demo", "clicked"); got != true {
		t.Errorf("clicked = %v, want true", got)
	}

	if err := app.Write(3, "typed"); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if got := app.global(t, "demo", "changes"); got != int64(1) {
		t.Errorf("changes = %v, want 1", got)
	}

	tests := []struct {
		name string
		err  error
		fn   func() error
	}{
		{"click title", settings.ErrNotClickable, func() error { return app.Click(0) }},
		{"write button", settings.ErrNotBindable, func() error { return app.Write(2, true) }},
		{"out of range", ErrNoSuchRow, func() error { return app.Click(42) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}

	if err := app.Choose(1, 0); err == nil {
		t.Error("Choose() on a boolean row should fail")
	}
}

func TestApplication_Dialogs(t *testing.T) {
	app := newTestApp(t, map[string]string{"ask": `
		confirm("Proceed?", function() accepted = true end)
		prompt("Name?", function(s) answer = s end)
	`}, "")
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	pending := app.Dialogs().Pending()
	if len(pending) != 2 {
		t.Fatalf("pending dialogs = %d, want 2", len(pending))
	}
	if pending[0].Kind != dialog.KindConfirm || pending[1].Kind != dialog.KindPrompt {
		t.Errorf("kinds = %v, %v", pending[0].Kind, pending[1].Kind)
	}

	if err := app.ResolveDialog(pending[0].ID, true); err != nil {
		t.Fatalf("ResolveDialog(confirm) failed: %v", err)
	}
	if err := app.ResolveDialog(pending[1].ID, "ada"); err != nil {
		t.Fatalf("ResolveDialog(prompt) failed: %v", err)
	}

	if got := app.global(t, "ask", "accepted"); got != true {
		t.Errorf("accepted = %v", got)
	}
	if got := app.global(t, "ask", "answer"); got != "ada" {
		t.Errorf("answer = %v", got)
	}
	if err := app.DismissDialog(pending[0].ID); !errors.Is(err, dialog.ErrUnknownRequest) {
		t.Errorf("DismissDialog() after resolve error = %v", err)
	}
}

func TestApplication_Menus(t *testing.T) {
	app := newTestApp(t, map[string]string{"menu": `
		local m = ContextMenu.new({
			{label = "Copy", click = function() picked = "copy" end},
			{type = "separator"},
			{label = "More", submenu = {
				{label = "Deep", click = function() picked = "deep" end},
			}},
		})
		m:popup({10, 20}, {1, 2})
	`}, "")
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	open := app.Menus().Open()
	if len(open) != 1 {
		t.Fatalf("open menus = %d, want 1", len(open))
	}
	if open[0].Position.X != 11 || open[0].Position.Y != 22 {
		t.Errorf("position = %+v, want {11 22}", open[0].Position)
	}

	if err := app.ClickMenu(open[0].ID, 2, 0); err != nil {
		t.Fatalf("ClickMenu() failed: %v", err)
	}
	if got := app.global(t, "menu", "picked"); got != "deep" {
		t.Errorf("picked = %v, want deep", got)
	}

	open[0].Close()
	if len(app.Menus().Open()) != 0 {
		t.Error("closed menu still open")
	}
	if err := app.ClickMenu(open[0].ID, 0); !errors.Is(err, ErrUnknownMenu) {
		t.Errorf("ClickMenu() on closed menu error = %v", err)
	}
}

func TestApplication_Watch(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, "[demo]\nname = \"before\"\n")
	app.opts.Watch = true

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	changed := make(chan []string, 4)
	app.OnSeedChange(func(keys []string) { changed <- keys })

	if err := os.WriteFile(app.seed, []byte("[demo]\nname = \"after\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for seed reload")
	}
	if v, _ := app.Store().GetItem("demo.name"); v != "after" {
		t.Errorf("demo.name = %v, want after", v)
	}
}

func TestApplication_WatchWithoutSeed(t *testing.T) {
	app, err := New(Options{Extensions: []string{t.TempDir()}, Watch: true, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer app.Shutdown()

	if err := app.Start(context.Background()); !errors.Is(err, ErrNoSeed) {
		t.Errorf("Start() error = %v, want ErrNoSeed", err)
	}
	if app.IsRunning() {
		t.Error("application should not be running after a failed start")
	}
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	app := newTestApp(t, map[string]string{"demo": demoExtension}, "")
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	app.Shutdown()
	app.Shutdown()

	if app.IsRunning() {
		t.Error("expected IsRunning() to be false after Shutdown()")
	}
	if app.Extensions().Count() != 0 {
		t.Errorf("extensions still loaded: %d", app.Extensions().Count())
	}
}
