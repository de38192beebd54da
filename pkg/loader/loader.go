// Package loader turns raw model and motion files into domain objects.
//
// Each format is served by a Decoder that can sniff its input. A Registry
// holds decoders of one output type and hands a buffer to the first one
// that accepts it.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/mmd-core/pkg/animation"
	"github.com/Faultbox/mmd-core/pkg/model"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported format: no decoder recognized the input")
	ErrIndexOverrun      = errors.New("material index range exceeds the index buffer")
	ErrVertexOutOfRange  = errors.New("index references a missing vertex")
)

// Decoder decodes one file format into T.
type Decoder[T any] interface {
	// CanRead reports whether data looks like this decoder's format.
	CanRead(data []byte) bool
	// Decode decodes data. It fails on the first malformed field.
	Decode(data []byte) (T, error)
}

// Registry dispatches buffers to the first decoder that accepts them.
type Registry[T any] struct {
	decoders []Decoder[T]
}

// NewRegistry creates a registry trying decoders in the given order.
func NewRegistry[T any](decoders ...Decoder[T]) *Registry[T] {
	r := &Registry[T]{}
	r.Register(decoders...)
	return r
}

// Register appends decoders after the existing ones.
func (r *Registry[T]) Register(decoders ...Decoder[T]) {
	r.decoders = append(r.decoders, decoders...)
}

// Find returns the first decoder accepting data, or nil.
func (r *Registry[T]) Find(data []byte) Decoder[T] {
	for _, d := range r.decoders {
		if d.CanRead(data) {
			return d
		}
	}
	return nil
}

// Decode decodes data with the first accepting decoder. Decoder errors
// are returned as is; ErrUnsupportedFormat means none accepted.
func (r *Registry[T]) Decode(data []byte) (T, error) {
	d := r.Find(data)
	if d == nil {
		var zero T
		return zero, ErrUnsupportedFormat
	}
	return d.Decode(data)
}

// Models is the default model registry.
var Models = NewRegistry[*model.Model](&PMXLoader{})

// Motions is the default motion registry.
var Motions = NewRegistry[*animation.Animator[float32]](&VMDLoader{})

// LoadModel decodes a model buffer with the default registry.
func LoadModel(data []byte) (*model.Model, error) {
	return Models.Decode(data)
}

// LoadMotion decodes a motion buffer with the default registry.
func LoadMotion(data []byte) (*animation.Animator[float32], error) {
	return Motions.Decode(data)
}

// OpenModel reads and decodes a model file.
func OpenModel(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	m, err := LoadModel(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

// OpenMotion reads and decodes a motion file.
func OpenMotion(path string) (*animation.Animator[float32], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading motion file: %w", err)
	}
	a, err := LoadMotion(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return a, nil
}
