package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/mmd-core/pkg/formats"
	"github.com/Faultbox/mmd-core/pkg/formats/formatstest"
)

type fakeDecoder struct {
	prefix string
	result string
	err    error
}

func (d *fakeDecoder) CanRead(data []byte) bool {
	return len(data) >= len(d.prefix) && string(data[:len(d.prefix)]) == d.prefix
}

func (d *fakeDecoder) Decode([]byte) (string, error) {
	return d.result, d.err
}

func TestRegistry(t *testing.T) {
	failure := errors.New("broken body")
	r := NewRegistry[string](
		&fakeDecoder{prefix: "AB", result: "first"},
		&fakeDecoder{prefix: "A", result: "second"},
	)
	r.Register(&fakeDecoder{prefix: "X", err: failure})

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr error
	}{
		{"first match wins", "ABC", "first", nil},
		{"falls through", "AC", "second", nil},
		{"decoder error passes through", "XYZ", "", failure},
		{"nothing matches", "ZZZ", "", ErrUnsupportedFormat},
		{"empty input", "", "", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Decode([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if r.Find([]byte("ZZZ")) != nil {
		t.Error("Find should return nil when nothing matches")
	}
}

func TestDefaultRegistries(t *testing.T) {
	pmx := makeTestPMX().Bytes()
	vmd := formatstest.NewVMD("test").Bytes()

	if _, err := LoadModel(pmx); err != nil {
		t.Errorf("LoadModel(pmx): %v", err)
	}
	if _, err := LoadMotion(vmd); err != nil {
		t.Errorf("LoadMotion(vmd): %v", err)
	}

	// Each registry only knows its own format.
	if _, err := LoadModel(vmd); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadModel(vmd) err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadMotion(pmx); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadMotion(pmx) err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUnsupportedIsDistinct(t *testing.T) {
	// A header the probe rejects never reaches the decoder.
	p := makeTestPMX()
	p.Header.Version = 2.1
	_, err := LoadModel(p.Bytes())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if errors.Is(err, formats.ErrInvalidPMXHeader) {
		t.Error("unsupported error should not carry decoder errors")
	}

	// A valid header with a broken body is the decoder's own failure.
	data := makeTestPMX().Bytes()
	_, err = LoadModel(data[:len(data)-3])
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Fatal("truncated body reported as unsupported")
	}
	if !errors.Is(err, formats.ErrTruncatedData) {
		t.Errorf("err = %v, want ErrTruncatedData", err)
	}
}

func TestOpenModelAndMotion(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "miku.pmx")
	motionPath := filepath.Join(dir, "dance.vmd")

	if err := os.WriteFile(modelPath, makeTestPMX().Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(motionPath, makeTestVMD().Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := OpenModel(modelPath)
	if err != nil {
		t.Fatalf("OpenModel: %v", err)
	}
	if len(m.Meshes) != 2 {
		t.Errorf("meshes = %d, want 2", len(m.Meshes))
	}

	a, err := OpenMotion(motionPath)
	if err != nil {
		t.Fatalf("OpenMotion: %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("clips = %d, want 2", a.Len())
	}

	if _, err := OpenModel(filepath.Join(dir, "missing.pmx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v, want ErrNotExist", err)
	}
	if _, err := OpenMotion(modelPath); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("OpenMotion(pmx) err = %v, want ErrUnsupportedFormat", err)
	}
}
