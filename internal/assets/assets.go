// Package assets resolves model and motion resources across search
// directories and zip archives.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mmd-core/internal/logger"
	"github.com/Faultbox/mmd-core/pkg/archive"
	"github.com/Faultbox/mmd-core/pkg/encoding"
	"github.com/Faultbox/mmd-core/pkg/model"
)

// ErrNotFound is returned when no source holds the requested file.
var ErrNotFound = errors.New("asset not found")

// source is a directory or an archive.
type source interface {
	String() string
	Read(path string) ([]byte, error)
	Close() error
}

type dirSource string

func (d dirSource) String() string { return string(d) }

func (d dirSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), osPath(path)))
}

func (d dirSource) Close() error { return nil }

type archiveSource struct {
	path string
	*archive.Archive
}

func (a archiveSource) String() string { return a.path }

// osPath turns a stored texture path (often with backslashes) into a
// relative OS path.
func osPath(path string) string {
	return filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
}

// Manager loads files from directories and archives.
// Sources are searched in reverse order (last added = highest priority).
type Manager struct {
	sources []source
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddDir adds a search directory.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding directory %s: not a directory", dir)
	}

	m.mu.Lock()
	m.sources = append(m.sources, dirSource(dir))
	m.mu.Unlock()
	return nil
}

// AddArchive opens a zip archive and adds it as a source.
func (m *Manager) AddArchive(path string) error {
	a, err := archive.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.sources = append(m.sources, archiveSource{path: path, Archive: a})
	m.mu.Unlock()

	logger.Named("assets").Debug("archive added",
		zap.String("path", path),
		zap.Int("entries", len(a.List())))
	return nil
}

// Asset is a loaded file and the source it was read from.
type Asset struct {
	Data   []byte
	Source string
}

// Load loads a file from the first source holding it.
func (m *Manager) Load(path string) (Asset, error) {
	key := encoding.NormalizePath(path)
	if a, ok := m.cache.Get(key); ok {
		return a, nil
	}

	data, src, err := m.find(path)
	if err != nil {
		return Asset{}, err
	}
	a := Asset{Data: data, Source: src}
	m.cache.Set(key, a)
	return a, nil
}

// CacheStats returns the hit and miss counts of Load.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}

// find searches sources from the last added.
func (m *Manager) find(path string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].Read(path)
		if err == nil {
			return data, m.sources[i].String(), nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// TextureStatus reports where a model texture was found and, when its
// header could be read, its dimensions.
type TextureStatus struct {
	Index  int
	Path   string
	Source string // empty when missing
	Info   TextureInfo
	Err    error // header probe failure
}

// Found reports whether the texture was located.
func (s TextureStatus) Found() bool {
	return s.Source != ""
}

// Resolve locates every texture of m. Paths are tried relative to baseDir
// (usually the model's directory) before the manager's sources.
func (m *Manager) Resolve(mdl *model.Model, baseDir string) []TextureStatus {
	result := make([]TextureStatus, len(mdl.Textures))
	for i, path := range mdl.Textures {
		result[i] = TextureStatus{Index: i, Path: path}

		var data []byte
		if baseDir != "" {
			if b, err := os.ReadFile(filepath.Join(baseDir, osPath(path))); err == nil {
				data, result[i].Source = b, baseDir
			}
		}
		if !result[i].Found() {
			if a, err := m.Load(path); err == nil {
				data, result[i].Source = a.Data, a.Source
			}
		}
		if result[i].Found() {
			result[i].Probe(data)
		}
	}
	return result
}

// Probe fills Info or Err from the texture bytes.
func (s *TextureStatus) Probe(data []byte) {
	s.Info, s.Err = ProbeTexture(s.Path, data)
}

// Close closes all archives and clears the cache.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for _, s := range m.sources {
		if cerr := s.Close(); cerr != nil && !errors.Is(cerr, fs.ErrClosed) {
			err = multierr.Append(err, fmt.Errorf("closing %s: %w", s, cerr))
		}
	}
	m.sources = nil
	m.cache.Clear()
	return err
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string]Asset
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]Asset),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Asset)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
