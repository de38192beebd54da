package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Faultbox/mmd-core/pkg/encoding"
)

// Shared decoding errors.
var (
	ErrTruncatedData     = errors.New("truncated data")
	ErrInvalidIndexWidth = errors.New("invalid index width")
)

// IndexWidth is the byte width of a variable-width index field.
type IndexWidth uint8

const (
	Width8  IndexWidth = 1
	Width16 IndexWidth = 2
	Width32 IndexWidth = 4
)

// ResolveIndexWidth maps a header width byte to an IndexWidth.
func ResolveIndexWidth(code uint8) (IndexWidth, error) {
	switch code {
	case 1:
		return Width8, nil
	case 2:
		return Width16, nil
	case 4:
		return Width32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidIndexWidth, code)
	}
}

// String returns the width as "int8", "int16" or "int32".
func (w IndexWidth) String() string {
	switch w {
	case Width8:
		return "int8"
	case Width16:
		return "int16"
	case Width32:
		return "int32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(w))
	}
}

// reader reads little-endian primitives from an in-memory buffer.
// Every short read is reported as ErrTruncatedData.
type reader struct {
	r *bytes.Reader
}

func newReader(data []byte) *reader {
	return &reader{r: bytes.NewReader(data)}
}

// pos returns the number of bytes consumed so far.
func (r *reader) pos() int64 {
	return r.r.Size() - int64(r.r.Len())
}

func (r *reader) read(field string, v any) error {
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("%w: reading %s", ErrTruncatedData, field)
	}
	return nil
}

func (r *reader) bytes(field string, n int) ([]byte, error) {
	if n < 0 || n > r.r.Len() {
		return nil, fmt.Errorf("%w: reading %s (%d bytes)", ErrTruncatedData, field, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedData, field)
	}
	return buf, nil
}

func (r *reader) u8(field string) (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncatedData, field)
	}
	return b, nil
}

func (r *reader) u16(field string) (uint16, error) {
	var v uint16
	err := r.read(field, &v)
	return v, err
}

func (r *reader) u32(field string) (uint32, error) {
	var v uint32
	err := r.read(field, &v)
	return v, err
}

func (r *reader) f32(field string) (float32, error) {
	var bits uint32
	if err := r.read(field, &bits); err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *reader) vec2(field string) ([2]float32, error) {
	var v [2]float32
	err := r.read(field, &v)
	return v, err
}

func (r *reader) vec3(field string) ([3]float32, error) {
	var v [3]float32
	err := r.read(field, &v)
	return v, err
}

func (r *reader) vec4(field string) ([4]float32, error) {
	var v [4]float32
	err := r.read(field, &v)
	return v, err
}

// count reads a u32 element count and rejects counts that could not possibly
// fit in the remaining buffer given the minimum record size.
func (r *reader) count(field string, minRecord int) (int, error) {
	n, err := r.u32(field)
	if err != nil {
		return 0, err
	}
	if minRecord > 0 && uint64(n)*uint64(minRecord) > uint64(r.r.Len()) {
		return 0, fmt.Errorf("%w: %s count %d exceeds remaining %d bytes", ErrTruncatedData, field, n, r.r.Len())
	}
	return int(n), nil
}

// index reads a sign-extended variable-width index.
func (r *reader) index(field string, w IndexWidth) (int32, error) {
	switch w {
	case Width8:
		var v int8
		err := r.read(field, &v)
		return int32(v), err
	case Width16:
		var v int16
		err := r.read(field, &v)
		return int32(v), err
	case Width32:
		var v int32
		err := r.read(field, &v)
		return v, err
	default:
		return 0, fmt.Errorf("%w: %d reading %s", ErrInvalidIndexWidth, uint8(w), field)
	}
}

// text reads a u32 length-prefixed string in the given encoding.
func (r *reader) text(field string, enc TextEncoding) (string, error) {
	n, err := r.u32(field + " length")
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.r.Len()) {
		return "", fmt.Errorf("%w: reading %s (%d bytes)", ErrTruncatedData, field, n)
	}
	raw, err := r.bytes(field, int(n))
	if err != nil {
		return "", err
	}

	var s string
	if enc == EncodingUTF8 {
		s, err = encoding.ValidUTF8(raw)
	} else {
		s, err = encoding.UTF16LEToUTF8(raw)
	}
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", field, err)
	}
	return s, nil
}

// fixedString reads an n-byte zero-terminated Shift-JIS field.
func (r *reader) fixedString(field string, n int) (string, error) {
	raw, err := r.bytes(field, n)
	if err != nil {
		return "", err
	}
	return encoding.FixedStringToUTF8(raw), nil
}
