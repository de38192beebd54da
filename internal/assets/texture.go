package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnknownTexture is returned for image data no decoder recognizes.
var ErrUnknownTexture = errors.New("unknown texture format")

// TextureInfo is the header of a texture image.
type TextureInfo struct {
	Format string
	Width  int
	Height int
}

func (t TextureInfo) String() string {
	return fmt.Sprintf("%dx%d %s", t.Width, t.Height, t.Format)
}

type configFunc func(io.Reader) (image.Config, error)

// Formats are matched by magic. '?' matches any byte.
var textureFormats = []struct {
	name   string
	magic  string
	config configFunc
}{
	{"png", "\x89PNG\r\n\x1a\n", png.DecodeConfig},
	{"jpeg", "\xff\xd8", jpeg.DecodeConfig},
	{"gif", "GIF8", gif.DecodeConfig},
	{"bmp", "BM", bmp.DecodeConfig},
	{"tiff", "II*\x00", tiff.DecodeConfig},
	{"tiff", "MM\x00*", tiff.DecodeConfig},
	{"webp", "RIFF????WEBP", webp.DecodeConfig},
}

func matchMagic(magic string, data []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != data[i] {
			return false
		}
	}
	return true
}

// ProbeTexture reads the image header of data. Sphere maps (.spa, .sph)
// are ordinary images and are detected by content. TGA has no magic and
// is only tried when name ends in .tga.
func ProbeTexture(name string, data []byte) (TextureInfo, error) {
	config, format := configFunc(nil), ""
	for _, f := range textureFormats {
		if matchMagic(f.magic, data) {
			config, format = f.config, f.name
			break
		}
	}
	if config == nil && strings.EqualFold(path.Ext(strings.ReplaceAll(name, "\\", "/")), ".tga") {
		config, format = tga.DecodeConfig, "tga"
	}
	if config == nil {
		return TextureInfo{}, fmt.Errorf("%s: %w", name, ErrUnknownTexture)
	}

	cfg, err := config(bytes.NewReader(data))
	if err != nil {
		return TextureInfo{}, fmt.Errorf("%s: decoding %s header: %w", name, format, err)
	}
	return TextureInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
