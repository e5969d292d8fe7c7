package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/seed.toml", `
showAdvanced = true
"ext.vol" = 50

[player]
theme = "dark"
ratio = 0.5
tags = ["a", "b"]
`)

	l := NewTOMLLoaderWithFS(memfs, "/seed.toml")
	values, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"showAdvanced", true},
		{"ext.vol", int64(50)},
		{"player.theme", "dark"},
		{"player.ratio", 0.5},
	}
	for _, tt := range tests {
		if got := values[tt.key]; got != tt.want {
			t.Errorf("values[%q] = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
		}
	}

	tags, ok := values["player.tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("player.tags = %v, want [a b]", values["player.tags"])
	}
	if _, ok := values["player"]; ok {
		t.Error("tables should be flattened away")
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	l := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml")

	values, err := l.Load()
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if values != nil {
		t.Errorf("expected nil values, got %v", values)
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "this is = = not toml")

	l := NewTOMLLoaderWithFS(memfs, "/bad.toml")
	_, err := l.Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", pe.Path)
	}
	if !strings.Contains(err.Error(), "parse error in /bad.toml") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	l := NewTOMLLoader("")
	values, err := l.LoadFromReader(strings.NewReader(`"a.b" = "x"`))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if values["a.b"] != "x" {
		t.Errorf("a.b = %v, want x", values["a.b"])
	}
}

func TestFlatten_EmptyTableKept(t *testing.T) {
	values := Flatten(map[string]any{
		"empty": map[string]any{},
		"outer": map[string]any{"inner": map[string]any{"leaf": 1}},
	})

	if _, ok := values["empty"]; !ok {
		t.Error("empty table should be kept as a value")
	}
	if values["outer.inner.leaf"] != 1 {
		t.Errorf("outer.inner.leaf = %v, want 1", values["outer.inner.leaf"])
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	in := map[string]any{
		"ext.vol":      int64(80),
		"showAdvanced": true,
		"name":         `say "hi"`,
		"":             "empty key",
		"ratio":        0.25,
		"list":         []any{int64(1), int64(2)},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out, err := NewTOMLLoader("").LoadFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("decoding encoded snapshot failed: %v\n%s", err, data)
	}

	for _, k := range []string{"ext.vol", "showAdvanced", "name", "", "ratio"} {
		if out[k] != in[k] {
			t.Errorf("out[%q] = %v, want %v", k, out[k], in[k])
		}
	}
	if list, ok := out["list"].([]any); !ok || len(list) != 2 {
		t.Errorf("list = %v", out["list"])
	}
}

func TestEncode_SortedQuotedKeys(t *testing.T) {
	data, err := Encode(map[string]any{"b": 1, "a.x": 2})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "\"a.x\" = 2\n\"b\" = 1\n"
	if string(data) != want {
		t.Errorf("Encode = %q, want %q", data, want)
	}
}

func TestEncode_Nil(t *testing.T) {
	if _, err := Encode(map[string]any{"k": nil}); err == nil {
		t.Error("expected error for nil value")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"80", int64(80)},
		{"0.5", 0.5},
		{`"quoted"`, "quoted"},
		{"bare", "bare"},
		{"two words", "two words"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseValue(tt.in); got != tt.want {
			t.Errorf("ParseValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}
