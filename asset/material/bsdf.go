package material

import "fmt"

// BSDFType represents the surface types that the Nori exporter can emit.
type BSDFType int

const (
	bsdfInvalid BSDFType = iota
	BSDFDiffuse
	BSDFMirror
)

// Lookup BSDF type by its name.
func BSDFTypeFromName(name string) (BSDFType, error) {
	switch name {
	case "diffuse", "":
		return BSDFDiffuse, nil
	case "mirror":
		return BSDFMirror, nil
	}

	return bsdfInvalid, fmt.Errorf("material: unsupported bsdf type %q", name)
}

func (t BSDFType) String() string {
	switch t {
	case BSDFDiffuse:
		return "diffuse"
	case BSDFMirror:
		return "mirror"
	}

	return "invalid"
}
