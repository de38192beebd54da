package model

// Material is a surface description. Texture references index Model.Textures.
type Material struct {
	Name        string
	NameEnglish string

	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
	Opacity   float32
	Flags     uint8

	EdgeColor [4]float32
	EdgeSize  float32

	DiffuseTexture *int // nil when untextured
	SphereTexture  *int
	SphereMode     uint8

	// ToonTexture is a shared toon number (toon01..toon10) when SharedToon
	// is set, otherwise a texture reference (-1 = none).
	ToonTexture int
	SharedToon  bool

	Memo string
}

// DoubleSided reports whether back faces are drawn.
func (m *Material) DoubleSided() bool {
	return m.Flags&0x01 != 0
}

// HasEdge reports whether the outline pass is enabled.
func (m *Material) HasEdge() bool {
	return m.Flags&0x10 != 0
}
