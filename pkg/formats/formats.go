// Package formats provides parsers for MikuMikuDance file formats.
//
// Parsers decode raw bytes into record structs that mirror the file layout.
// Assembling them into renderable models or animators is done by the
// loader package.
package formats

// Note: PMX (Polygon Model eXtended) 2.0 is implemented in pmx.go
// Note: VMD (Vocaloid Motion Data) 0002 is implemented in vmd.go

// Format identifies a file format by its signature.
type Format int

const (
	FormatUnknown Format = iota
	FormatPMX
	FormatVMD
)

func (f Format) String() string {
	switch f {
	case FormatPMX:
		return "PMX"
	case FormatVMD:
		return "VMD"
	default:
		return "Unknown"
	}
}

// Detect sniffs the format from the leading bytes. Only signatures are
// checked; a detected file may still fail to parse.
func Detect(data []byte) Format {
	if _, err := ParsePMXHeader(data); err == nil {
		return FormatPMX
	}
	if _, err := ParseVMDHeader(data); err == nil {
		return FormatVMD
	}
	return FormatUnknown
}
