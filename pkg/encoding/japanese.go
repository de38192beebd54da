// Package encoding provides text decoding utilities for MMD file formats.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISToUTF8 converts Shift-JIS (Windows-31J) encoded bytes to a UTF-8 string.
// Undecodable bytes are replaced with U+FFFD.
func ShiftJISToUTF8(data []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		// Return as-is if decoding fails
		return string(data)
	}
	return string(result)
}

// UTF8ToShiftJIS converts a UTF-8 string to Shift-JIS encoded bytes.
// Returns the original bytes if conversion fails.
func UTF8ToShiftJIS(s string) []byte {
	encoder := japanese.ShiftJIS.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// NormalizePath normalizes an archive path for case-insensitive lookup.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return strings.ToLower(path)
}

// FixedStringToUTF8 converts a fixed-size Shift-JIS field to a UTF-8 string.
// Everything from the first null byte on is ignored; real files often carry
// garbage after the terminator.
func FixedStringToUTF8(data []byte) string {
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return ShiftJISToUTF8(data)
}

// UTF8ToFixedString converts a UTF-8 string to a fixed-size Shift-JIS field.
// Pads with null bytes to fill the specified size.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToShiftJIS(s))
	return result
}
