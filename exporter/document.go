package exporter

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/achilleasa/nori-export/types"
)

const xmlHeader = `<?xml version="1.0" encoding="utf-8"?>`

// An element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of a scene document. Elements are never modified after
// construction; documents are assembled bottom-up and streamed out by Write.
type Element struct {
	name     string
	attrs    []Attr
	children []*Element
}

// Create a new element with the given attributes and children. Nil children
// are ignored so optional elements can be passed inline.
func NewElement(name string, attrs []Attr, children ...*Element) *Element {
	el := &Element{
		name:  name,
		attrs: append([]Attr(nil), attrs...),
	}
	for _, child := range children {
		if child != nil {
			el.children = append(el.children, child)
		}
	}
	return el
}

// Create an element with a single type attribute.
func Typed(name, typ string, children ...*Element) *Element {
	return NewElement(name, []Attr{{"type", typ}}, children...)
}

// Create a named property element such as <float name="fov" value="45"/>.
func Entry(tag, name, value string) *Element {
	return NewElement(tag, []Attr{{"name", name}, {"value", value}})
}

// Get the element tag name.
func (e *Element) Name() string {
	return e.name
}

// Lookup an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Get the element children.
func (e *Element) Children() []*Element {
	return e.children
}

// Get the direct children with a particular tag name.
func (e *Element) ChildrenNamed(name string) []*Element {
	out := make([]*Element, 0)
	for _, child := range e.children {
		if child.name == name {
			out = append(out, child)
		}
	}
	return out
}

// Get the first direct child whose tag and name attribute match. An empty
// attrName matches any child with the given tag.
func (e *Element) Child(tag, attrName string) *Element {
	for _, child := range e.children {
		if child.name != tag {
			continue
		}
		if attrName == "" {
			return child
		}
		if v, _ := child.Attr("name"); v == attrName {
			return child
		}
	}
	return nil
}

// Write the element tree as an XML document. Elements are emitted
// depth-first, one per line, indented with tabs; elements without children
// are self-closing.
func (e *Element) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xmlHeader)
	bw.WriteByte('\n')
	if err := e.write(bw, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func (e *Element) write(w *bufio.Writer, depth int) error {
	indent := strings.Repeat("\t", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.name)
	for _, attr := range e.attrs {
		w.WriteByte(' ')
		w.WriteString(attr.Name)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(attr.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}

	if len(e.children) == 0 {
		_, err := w.WriteString("/>\n")
		return err
	}

	w.WriteString(">\n")
	for _, child := range e.children {
		if err := child.write(w, depth+1); err != nil {
			return err
		}
	}
	w.WriteString(indent)
	w.WriteString("</")
	w.WriteString(e.name)
	_, err := w.WriteString(">\n")
	return err
}

// Format a float using the shortest representation that round-trips to the
// same float32. Negative zero is written as 0.
func FormatFloat(v float32) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// Format a vector as a comma separated list.
func FormatVec3(v types.Vec3) string {
	return formatList(v[:])
}

// Format a matrix as 16 comma separated values in row-major order.
func FormatMat4(m types.Mat4) string {
	return formatList(m[:])
}

func formatList(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, ", ")
}
