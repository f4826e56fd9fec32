package scene

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Render a table describing the scene graph contents.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "Type", "Parent", "Vertices", "Faces", "Materials"})

	var cameras, lights, meshes, faces int
	sc.Walk(func(n *Node) {
		parent := "-"
		if n.Parent != nil {
			parent = n.Parent.Name
		}

		row := []string{n.Name, n.Kind.String(), parent, "", "", ""}
		switch n.Kind {
		case KindCamera:
			cameras++
		case KindLight:
			lights++
			if n.Light != nil {
				row[1] = fmt.Sprintf("light (%s)", n.Light.Type)
			}
		case KindMesh:
			meshes++
			if n.Mesh == nil {
				break
			}
			faces += len(n.Mesh.Faces)
			row[3] = fmt.Sprintf("%d", len(n.Mesh.Vertices))
			row[4] = fmt.Sprintf("%d", len(n.Mesh.Faces))
			names := make([]string, 0, len(n.Mesh.Materials))
			for _, mat := range n.Mesh.Materials {
				if mat == nil {
					names = append(names, "-")
					continue
				}
				names = append(names, fmt.Sprintf("%s (%s)", mat.Name, mat.BSDF))
			}
			row[5] = strings.Join(names, ", ")
		}
		table.Append(row)
	})

	frameW, frameH := sc.Render.FrameSize()
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d cam / %d light / %d mesh", cameras, lights, meshes),
		" ",
		" ",
		fmt.Sprintf("%d", faces),
		fmt.Sprintf("frame %dx%d", frameW, frameH),
	})

	table.Render()
	return buf.String()
}
