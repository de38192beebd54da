package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Faultbox/mmd-core/pkg/archive"
)

// archiveSep separates an archive from the entry path inside it.
const archiveSep = ".zip:"

// splitArchivePath splits "models.zip:dir/file.pmx". ok is false for plain
// file paths.
func splitArchivePath(p string) (zipPath, entry string, ok bool) {
	for i := 0; i+len(archiveSep) <= len(p); i++ {
		if strings.EqualFold(p[i:i+len(archiveSep)], archiveSep) {
			return p[:i+len(".zip")], p[i+len(archiveSep):], true
		}
	}
	return "", "", false
}

// readInput reads a file from disk or from inside a zip archive.
func readInput(p string) ([]byte, error) {
	zipPath, entry, ok := splitArchivePath(p)
	if !ok {
		return os.ReadFile(p)
	}

	ar, err := archive.Open(zipPath)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	data, err := ar.Read(entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", zipPath, err)
	}
	return data, nil
}

// entryDir returns the directory of an archive entry, using forward slashes.
func entryDir(entry string) string {
	dir := path.Dir(strings.ReplaceAll(entry, "\\", "/"))
	if dir == "." {
		return ""
	}
	return dir
}

// isMMDFile reports whether name has a model or motion extension.
func isMMDFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pmx", ".vmd":
		return true
	}
	return false
}
