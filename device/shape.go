package device

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/YishiMichael/morphing-sub001/mobject"
)

// ShapeResource is the prepared form of a shape: packed vertices plus a style uniform
type ShapeResource struct {
	Vertices *Buffer
	Style    *Buffer
	Closed   bool
}

// ByteSize returns total device bytes held
func (r *ShapeResource) ByteSize() int {
	return r.Vertices.Size() + r.Style.Size()
}

// VertexCount returns the number of packed points
func (r *ShapeResource) VertexCount() int {
	return r.Vertices.Size() / 8
}

// Points decodes the vertex buffer
func (r *ShapeResource) Points() []mobject.Vec2 {
	return decodePoints(r.Vertices.Bytes())
}

// Color decodes the style uniform
func (r *ShapeResource) Color() mobject.Color {
	b := r.Style.Bytes()
	return mobject.Color{
		R: getFloat(b, 0),
		G: getFloat(b, 1),
		B: getFloat(b, 2),
		A: getFloat(b, 3),
	}
}

// PrepareShape allocates fresh buffers for s
func PrepareShape(dev Device, s *mobject.Shape) (*ShapeResource, error) {
	verts, err := dev.CreateBuffer("shape.vertices", UsageVertex, encodePoints(s.Points))
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	style, err := dev.CreateBuffer("shape.style", UsageUniform, encodeColor(s.Color))
	if err != nil {
		return nil, fmt.Errorf("create style buffer: %w", err)
	}
	return &ShapeResource{Vertices: verts, Style: style, Closed: s.Closed}, nil
}

// UpdateShape rewrites res in place
// A changed vertex count surfaces the device's ReuseFailure unchanged
func UpdateShape(dev Device, s *mobject.Shape, res *ShapeResource) error {
	if err := dev.WriteBuffer(res.Vertices, encodePoints(s.Points)); err != nil {
		return err
	}
	if err := dev.WriteBuffer(res.Style, encodeColor(s.Color)); err != nil {
		return err
	}
	res.Closed = s.Closed
	return nil
}

func encodePoints(pts []mobject.Vec2) []byte {
	b := make([]byte, len(pts)*8)
	for i, p := range pts {
		binary.LittleEndian.PutUint32(b[i*8:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(b[i*8+4:], math.Float32bits(p.Y))
	}
	return b
}

func decodePoints(b []byte) []mobject.Vec2 {
	pts := make([]mobject.Vec2, len(b)/8)
	for i := range pts {
		pts[i] = mobject.Vec2{X: getFloat(b, 2*i), Y: getFloat(b, 2*i+1)}
	}
	return pts
}

func encodeColor(c mobject.Color) []byte {
	b := make([]byte, 16)
	for i, v := range []float32{c.R, c.G, c.B, c.A} {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func getFloat(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}
