package material

import "github.com/achilleasa/nori-export/types"

var (
	// Albedo assigned to meshes without any material slots.
	DefaultAlbedo = types.Vec3{0.75, 0.75, 0.75}

	// Albedo assigned to wavefront materials that do not define Kd.
	DefaultWavefrontAlbedo = types.Vec3{0.7, 0.7, 0.7}
)
