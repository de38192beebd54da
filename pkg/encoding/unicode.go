package encoding

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ConversionError reports a text field that is not valid in its declared encoding.
type ConversionError struct {
	Encoding string
	Offset   int // byte offset of the offending unit within the field
	Reason   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid %s text at byte %d: %s", e.Encoding, e.Offset, e.Reason)
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16LEToUTF8 decodes little-endian UTF-16 bytes. Unlike the x/text decoder on
// its own, unpaired surrogates and odd byte counts are rejected.
func UTF16LEToUTF8(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", &ConversionError{Encoding: "UTF-16LE", Offset: len(data) - 1, Reason: "odd byte count"}
	}

	for i := 0; i < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+3 >= len(data) {
				return "", &ConversionError{Encoding: "UTF-16LE", Offset: i, Reason: "truncated surrogate pair"}
			}
			next := uint16(data[i+2]) | uint16(data[i+3])<<8
			if next < 0xDC00 || next > 0xDFFF {
				return "", &ConversionError{Encoding: "UTF-16LE", Offset: i, Reason: "unpaired high surrogate"}
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return "", &ConversionError{Encoding: "UTF-16LE", Offset: i, Reason: "unpaired low surrogate"}
		}
	}

	result, _, err := transform.Bytes(utf16LE.NewDecoder(), data)
	if err != nil {
		return "", &ConversionError{Encoding: "UTF-16LE", Reason: err.Error()}
	}
	return string(result), nil
}

// UTF16LEToUTF8Lossy decodes little-endian UTF-16 bytes, replacing unpaired
// surrogates with U+FFFD and dropping a trailing odd byte.
func UTF16LEToUTF8Lossy(data []byte) string {
	data = data[:len(data)&^1]
	result, _, err := transform.Bytes(utf16LE.NewDecoder(), data)
	if err != nil {
		return ""
	}
	return string(result)
}

// UTF8ToUTF16LE encodes a UTF-8 string as little-endian UTF-16 bytes.
func UTF8ToUTF16LE(s string) []byte {
	result, _, err := transform.Bytes(utf16LE.NewEncoder(), []byte(s))
	if err != nil {
		return nil
	}
	return result
}

// ValidUTF8 returns data as a string, or a ConversionError if it is not valid UTF-8.
func ValidUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		offset := 0
		for offset < len(data) {
			r, size := utf8.DecodeRune(data[offset:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			offset += size
		}
		return "", &ConversionError{Encoding: "UTF-8", Offset: offset, Reason: "invalid byte sequence"}
	}
	return string(data), nil
}
