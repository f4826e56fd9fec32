package exporter

import (
	"math"
	"strconv"

	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/types"
)

// The renderer's cameras look down +Z while host cameras look down -Z.
var cameraFlip = types.Scale4(types.Vec3{-1, 1, -1})

// Convert a host transformation into the renderer's coordinate system.
func toRenderer(world types.Mat4) types.Mat4 {
	return types.ZUpToYUp4().Mul4(world)
}

// Build the camera element. The field of view is converted to degrees and the
// frame size is derived from the scene render settings.
func cameraElement(node *scene.Node, render scene.RenderSettings) *Element {
	width, height := render.FrameSize()
	fov := float32(float64(node.Camera.FOV) * 180.0 / math.Pi)

	return Typed("camera", "perspective",
		Entry("float", "fov", FormatFloat(fov)),
		Entry("float", "nearClip", FormatFloat(node.Camera.NearClip)),
		Entry("float", "farClip", FormatFloat(node.Camera.FarClip)),
		Entry("integer", "width", strconv.Itoa(width)),
		Entry("integer", "height", strconv.Itoa(height)),
		transformElement(cameraTransform(node.World)),
	)
}

// Get the camera to world matrix in renderer space.
func cameraTransform(world types.Mat4) types.Mat4 {
	return toRenderer(world).Mul4(cameraFlip)
}

func transformElement(m types.Mat4) *Element {
	return NewElement("transform", []Attr{{"name", "toWorld"}},
		NewElement("matrix", []Attr{{"value", FormatMat4(m)}}),
	)
}
