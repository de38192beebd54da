// Package archive provides read-only access to zip archives of MMD assets.
//
// Model distributions are usually zipped on Japanese Windows, so entry names
// without the UTF-8 flag are decoded as Shift-JIS. Lookups are
// case-insensitive and accept either path separator.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Faultbox/mmd-core/pkg/encoding"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("file not found in archive")

// flagUTF8 is the general purpose flag bit marking UTF-8 names.
const flagUTF8 = 0x800

// Archive represents an opened zip archive.
type Archive struct {
	closer  io.Closer
	entries map[string]*Entry
}

// Entry is a regular file in the archive.
type Entry struct {
	Name string // decoded, as stored
	Size uint64 // uncompressed

	file *zip.File
}

// Open opens a zip archive for reading.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	a := newArchive(&rc.Reader)
	a.closer = rc
	return a, nil
}

// NewReader reads an archive from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return newArchive(zr), nil
}

func newArchive(zr *zip.Reader) *Archive {
	a := &Archive{entries: make(map[string]*Entry, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := decodeName(f)
		a.entries[encoding.NormalizePath(name)] = &Entry{
			Name: name,
			Size: f.UncompressedSize64,
			file: f,
		}
	}
	return a
}

func decodeName(f *zip.File) string {
	if f.Flags&flagUTF8 != 0 {
		return f.Name
	}
	return encoding.ShiftJISToUTF8([]byte(f.Name))
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// List returns all normalized file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for path := range a.entries {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[encoding.NormalizePath(path)]
	return ok
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (*Entry, error) {
	entry, ok := a.entries[encoding.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return entry, nil
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, err := a.Stat(path)
	if err != nil {
		return nil, err
	}

	rc, err := entry.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
	}
	return data, nil
}
