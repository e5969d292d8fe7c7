package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	plua "github.com/dshills/cadence/internal/plugin/lua"
)

func TestLoadOptions_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := LoadOptions(NewViper(), "")
	if err != nil {
		t.Fatalf("LoadOptions() failed: %v", err)
	}

	want := DefaultOptions()
	if !reflect.DeepEqual(opts.Extensions, want.Extensions) {
		t.Errorf("Extensions = %v, want %v", opts.Extensions, want.Extensions)
	}
	if opts.LogLevel != "info" || opts.Watch {
		t.Errorf("LogLevel = %q, Watch = %v", opts.LogLevel, opts.Watch)
	}
	if opts.ExecutionTimeout != plua.DefaultExecutionTimeout {
		t.Errorf("ExecutionTimeout = %v", opts.ExecutionTimeout)
	}
}

func TestLoadOptions_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cadence.toml")
	content := `
extensions = ["/opt/ext", "./ext"]
seed = "/tmp/seed.toml"
log_level = "debug"
watch = true
execution_timeout = "250ms"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(NewViper(), path)
	if err != nil {
		t.Fatalf("LoadOptions() failed: %v", err)
	}

	if !reflect.DeepEqual(opts.Extensions, []string{"/opt/ext", "./ext"}) {
		t.Errorf("Extensions = %v", opts.Extensions)
	}
	if opts.Seed != "/tmp/seed.toml" || opts.LogLevel != "debug" || !opts.Watch {
		t.Errorf("opts = %+v", opts)
	}
	if opts.ExecutionTimeout != 250*time.Millisecond {
		t.Errorf("ExecutionTimeout = %v", opts.ExecutionTimeout)
	}
}

func TestLoadOptions_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "cadence.toml"), []byte(`seed = "local.toml"`), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(NewViper(), "")
	if err != nil {
		t.Fatalf("LoadOptions() failed: %v", err)
	}
	if opts.Seed != "local.toml" {
		t.Errorf("Seed = %q, want local.toml", opts.Seed)
	}
}

func TestLoadOptions_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CADENCE_LOG_LEVEL", "warn")
	t.Setenv("CADENCE_WATCH", "true")
	t.Setenv("CADENCE_EXECUTION_TIMEOUT", "2s")

	opts, err := LoadOptions(NewViper(), "")
	if err != nil {
		t.Fatalf("LoadOptions() failed: %v", err)
	}
	if opts.LogLevel != "warn" || !opts.Watch || opts.ExecutionTimeout != 2*time.Second {
		t.Errorf("opts = %+v", opts)
	}
}

func TestLoadOptions_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("this is = = not toml"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "missing.toml")},
		{"invalid toml", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadOptions(NewViper(), tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
