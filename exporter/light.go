package exporter

import (
	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/types"
)

// Build an emitter element for a point light placed at the node position
// converted to the renderer frame.
func pointLightElement(node *scene.Node) *Element {
	pos := types.ZUpToYUp4().Mul4x1(node.Position().Vec4(1)).Vec3()
	return Typed("emitter", "point",
		Entry("point", "position", FormatVec3(pos)),
	)
}
