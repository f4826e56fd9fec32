package exporter

import (
	"bytes"
	"math"
	"testing"

	"github.com/achilleasa/nori-export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentWrite(t *testing.T) {
	doc := NewElement("scene", nil,
		Typed("integrator", "av"),
		nil,
		Typed("sampler", "independent",
			Entry("integer", "sampleCount", "4"),
		),
		Entry("string", "filename", `a<b&"c"`),
	)

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	expDoc := `<?xml version="1.0" encoding="utf-8"?>
<scene>
	<integrator type="av"/>
	<sampler type="independent">
		<integer name="sampleCount" value="4"/>
	</sampler>
	<string name="filename" value="a&lt;b&amp;&#34;c&#34;"/>
</scene>
`
	assert.Equal(t, expDoc, buf.String())
}

func TestElementLookup(t *testing.T) {
	cam := Typed("camera", "perspective",
		Entry("float", "fov", "45"),
		Entry("float", "nearClip", "0.1"),
	)

	assert.Equal(t, "camera", cam.Name())
	typ, ok := cam.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "perspective", typ)
	_, ok = cam.Attr("name")
	assert.False(t, ok)

	require.NotNil(t, cam.Child("float", "nearClip"))
	assert.Equal(t, "fov", mustAttr(t, cam.Child("float", ""), "name"))
	assert.Nil(t, cam.Child("float", "farClip"))
	assert.Len(t, cam.ChildrenNamed("float"), 2)
	assert.Len(t, cam.Children(), 2)
}

func TestFormatFloat(t *testing.T) {
	specs := []struct {
		in  float32
		exp string
	}{
		{0.1, "0.1"},
		{100, "100"},
		{45, "45"},
		{-2.5, "-2.5"},
		{float32(math.Copysign(0, -1)), "0"},
		{0.75, "0.75"},
		{1.0 / 3.0, "0.33333334"},
	}

	for idx, s := range specs {
		if got := FormatFloat(s.in); got != s.exp {
			t.Fatalf("[spec %d] expected %s; got %s", idx, s.exp, got)
		}
	}

	assert.Equal(t, "0.75, 0.75, 0.75", FormatVec3(types.Vec3{0.75, 0.75, 0.75}))
	assert.Equal(t, "1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1", FormatMat4(types.Ident4()))
}

func mustAttr(t *testing.T, el *Element, name string) string {
	t.Helper()
	require.NotNil(t, el)
	v, ok := el.Attr(name)
	require.True(t, ok, "element %s has no attribute %s", el.Name(), name)
	return v
}
