package assets

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/mmd-core/pkg/model"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

// newTestManager registers a directory, then an archive overriding one of
// its files.
func newTestManager(t *testing.T) (*Manager, string, string) {
	t.Helper()
	root := t.TempDir()

	dir := filepath.Join(root, "data")
	writeFile(t, filepath.Join(dir, "tex", "body.png"), "dir body")
	writeFile(t, filepath.Join(dir, "tex", "face.png"), "dir face")

	zipPath := filepath.Join(root, "toon.zip")
	writeZip(t, zipPath, map[string]string{
		"tex/body.png":   "zip body",
		"toon/toon1.bmp": "zip toon",
	})

	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if err := m.AddArchive(zipPath); err != nil {
		t.Fatalf("AddArchive: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, dir, zipPath
}

func TestManager_Load(t *testing.T) {
	m, _, _ := newTestManager(t)

	tests := []struct {
		path    string
		want    string
		fromZip bool
	}{
		{"tex/body.png", "zip body", true}, // archive added last wins
		{`tex\face.png`, "dir face", false},
		{"toon/toon1.bmp", "zip toon", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			a, err := m.Load(tt.path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if string(a.Data) != tt.want {
				t.Errorf("Load = %q, want %q", a.Data, tt.want)
			}
			if got := filepath.Ext(a.Source) == ".zip"; got != tt.fromZip {
				t.Errorf("Source = %s", a.Source)
			}
		})
	}

	if _, err := m.Load("missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestManager_LoadCaches(t *testing.T) {
	m, dir, _ := newTestManager(t)

	if _, err := m.Load("tex/face.png"); err != nil {
		t.Fatal(err)
	}
	// Served from cache after the file is gone.
	if err := os.Remove(filepath.Join(dir, "tex", "face.png")); err != nil {
		t.Fatal(err)
	}
	a, err := m.Load("TEX/Face.png")
	if err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if string(a.Data) != "dir face" || a.Source != dir {
		t.Errorf("cached Load = %q from %s", a.Data, a.Source)
	}

	hits, misses := m.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", hits, misses)
	}
}

func TestManager_Resolve(t *testing.T) {
	m, _, zipPath := newTestManager(t)

	modelDir := t.TempDir()
	writeFile(t, filepath.Join(modelDir, "tex", "local.png"), "local")

	mdl := &model.Model{Textures: []string{
		`tex\local.png`,
		"toon/toon1.bmp",
		"tex/face.png",
		"tex/missing.png",
	}}

	got := m.Resolve(mdl, modelDir)
	sources := make([]string, len(got))
	for i, s := range got {
		if s.Index != i || s.Path != mdl.Textures[i] {
			t.Errorf("status %d = %+v", i, s)
		}
		sources[i] = s.Source
	}

	want := []string{modelDir, zipPath, filepath.Join(filepath.Dir(zipPath), "data"), ""}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
	if got[3].Found() || !got[0].Found() {
		t.Error("Found mismatch")
	}
	if !errors.Is(got[0].Err, ErrUnknownTexture) || got[3].Err != nil {
		t.Errorf("header errors = %v / %v", got[0].Err, got[3].Err)
	}
}

func TestManager_ResolveCaches(t *testing.T) {
	m, _, zipPath := newTestManager(t)
	mdl := &model.Model{Textures: []string{"toon/toon1.bmp", "tex/face.png", "tex/missing.png"}}

	first := m.Resolve(mdl, "")
	if hits, misses := m.CacheStats(); hits != 0 || misses != 3 {
		t.Errorf("first Resolve hits/misses = %d/%d, want 0/3", hits, misses)
	}

	second := m.Resolve(mdl, "")
	if hits, misses := m.CacheStats(); hits != 2 || misses != 4 {
		t.Errorf("second Resolve hits/misses = %d/%d, want 2/4", hits, misses)
	}
	for i := range first {
		if first[i].Source != second[i].Source || first[i].Info != second[i].Info {
			t.Errorf("cached status %d = %+v, want %+v", i, second[i], first[i])
		}
	}
	if second[0].Source != zipPath {
		t.Errorf("cached source = %s, want %s", second[0].Source, zipPath)
	}
}

func TestManager_AddErrors(t *testing.T) {
	m := NewManager()
	defer m.Close()

	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, "x")

	if err := m.AddDir(filepath.Join(root, "missing")); err == nil {
		t.Error("AddDir accepted a missing directory")
	}
	if err := m.AddDir(file); err == nil {
		t.Error("AddDir accepted a file")
	}
	if err := m.AddArchive(file); err == nil {
		t.Error("AddArchive accepted a non-zip file")
	}
}

func TestManager_Close(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, err := m.Load("tex/body.png"); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if m.cache.Len() != 0 {
		t.Error("Close should clear the cache")
	}
	if _, err := m.Load("toon/toon1.bmp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Close err = %v, want ErrNotFound", err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("a"); ok {
		t.Error("empty cache returned a value")
	}
	c.Set("a", Asset{Data: []byte("1"), Source: "data"})
	if a, ok := c.Get("a"); !ok || string(a.Data) != "1" || a.Source != "data" {
		t.Errorf("Get = %+v, %v", a, ok)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats = %d/%d, want 1/1", hits, misses)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("Clear left items")
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats after Clear = %d/%d", hits, misses)
	}
}
