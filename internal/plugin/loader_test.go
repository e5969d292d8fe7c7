package plugin

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLoaderDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zeta.lua"), `x = 1`)
	writeFile(t, filepath.Join(dir, "alpha", "init.lua"), `x = 1`)
	writeFile(t, filepath.Join(dir, "beta-dir", ManifestJSON), `{"name": "beta", "main": "main.lua"}`)
	writeFile(t, filepath.Join(dir, "beta-dir", "main.lua"), `x = 1`)
	writeFile(t, filepath.Join(dir, "empty", "README"), `nothing`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)

	l := NewLoader(WithPaths(dir, filepath.Join(dir, "missing")))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	want := []string{"alpha", "beta", "empty", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}

	if infos[1].Manifest.MainPath() != filepath.Join(dir, "beta-dir", "main.lua") {
		t.Errorf("beta MainPath() = %q", infos[1].Manifest.MainPath())
	}
	if !errors.Is(infos[2].Error, ErrNoEntryPoint) {
		t.Errorf("empty Error = %v, want ErrNoEntryPoint", infos[2].Error)
	}
	if infos[3].Manifest.Main != "zeta.lua" {
		t.Errorf("zeta Main = %q", infos[3].Manifest.Main)
	}

	if errs := l.Errors(); len(errs) != 1 || errs[0].Name != "empty" {
		t.Errorf("Errors() = %v", errs)
	}
	if l.Count() != 4 {
		t.Errorf("Count() = %d, want 4", l.Count())
	}
}

func TestLoaderFirstPathWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "dup.lua"), `x = 1`)
	writeFile(t, filepath.Join(second, "dup.lua"), `x = 2`)

	l := NewLoader(WithPaths(first, second))
	if _, err := l.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	info, ok := l.Get("dup")
	if !ok || info.Path != first {
		t.Errorf("Get(dup) = %+v, want path %s", info, first)
	}
}

func TestLoaderInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad", ManifestJSON), `{"name": "Bad!"}`)
	writeFile(t, filepath.Join(dir, "nomain", ManifestJSON), `{"name": "nomain"}`)

	l := NewLoader(WithPaths(dir))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Discover() = %d infos, want 2", len(infos))
	}
	if !errors.Is(infos[0].Error, ErrInvalidName) {
		t.Errorf("bad Error = %v", infos[0].Error)
	}
	if !errors.Is(infos[1].Error, ErrNoEntryPoint) {
		t.Errorf("nomain Error = %v", infos[1].Error)
	}
}

func TestLoaderFind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.lua"), `x = 1`)

	l := NewLoader(WithPaths(dir))
	if _, err := l.Find("one"); err != nil {
		t.Errorf("Find(one) error = %v", err)
	}
	if _, err := l.Find("two"); !errors.Is(err, ErrExtensionNotFound) {
		t.Errorf("Find(two) error = %v, want ErrExtensionNotFound", err)
	}
}
