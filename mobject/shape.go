package mobject

import (
	"fmt"

	"github.com/chewxy/math32"
)

const KindShape = "shape"

// Vec2 is a point in scene units
type Vec2 struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
}

// Color is linear RGBA in [0, 1]
type Color struct {
	R float32 `json:"r" msgpack:"r"`
	G float32 `json:"g" msgpack:"g"`
	B float32 `json:"b" msgpack:"b"`
	A float32 `json:"a" msgpack:"a"`
}

// Shape is a polyline or polygon with a flat color
type Shape struct {
	Points []Vec2 `json:"points" msgpack:"points"`
	Color  Color  `json:"color" msgpack:"color"`
	Closed bool   `json:"closed" msgpack:"closed"`
}

func (*Shape) Kind() string { return KindShape }

// Rect creates a closed axis-aligned rectangle centered at (cx, cy)
func Rect(cx, cy, w, h float32, c Color) *Shape {
	hw, hh := w/2, h/2
	return &Shape{
		Points: []Vec2{
			{cx - hw, cy - hh},
			{cx + hw, cy - hh},
			{cx + hw, cy + hh},
			{cx - hw, cy + hh},
		},
		Color:  c,
		Closed: true,
	}
}

// RegularPolygon creates a closed n-gon of circumradius r
func RegularPolygon(cx, cy, r float32, n int, c Color) *Shape {
	if n < 3 {
		n = 3
	}
	pts := make([]Vec2, n)
	step := 2 * math32.Pi / float32(n)
	for i := range pts {
		a := step * float32(i)
		pts[i] = Vec2{cx + r*math32.Cos(a), cy + r*math32.Sin(a)}
	}
	return &Shape{Points: pts, Color: c, Closed: true}
}

// Circle approximates a circle with the given segment count
func Circle(cx, cy, r float32, segments int, c Color) *Shape {
	return RegularPolygon(cx, cy, r, segments, c)
}

// Clone returns a deep copy
func (s *Shape) Clone() *Shape {
	pts := make([]Vec2, len(s.Points))
	copy(pts, s.Points)
	return &Shape{Points: pts, Color: s.Color, Closed: s.Closed}
}

// Centroid returns the vertex average
func (s *Shape) Centroid() Vec2 {
	if len(s.Points) == 0 {
		return Vec2{}
	}
	var c Vec2
	for _, p := range s.Points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float32(len(s.Points))
	return Vec2{c.X / n, c.Y / n}
}

// Translated returns a copy shifted by (dx, dy)
func (s *Shape) Translated(dx, dy float32) *Shape {
	out := s.Clone()
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// Rotated returns a copy rotated by theta radians around the centroid
func (s *Shape) Rotated(theta float32) *Shape {
	out := s.Clone()
	c := s.Centroid()
	sin, cos := math32.Sincos(theta)
	for i, p := range out.Points {
		x, y := p.X-c.X, p.Y-c.Y
		out.Points[i] = Vec2{c.X + x*cos - y*sin, c.Y + x*sin + y*cos}
	}
	return out
}

// Scaled returns a copy scaled by f around the centroid
func (s *Shape) Scaled(f float32) *Shape {
	out := s.Clone()
	c := s.Centroid()
	for i, p := range out.Points {
		out.Points[i] = Vec2{c.X + (p.X-c.X)*f, c.Y + (p.Y-c.Y)*f}
	}
	return out
}

// Interpolate blends points and color; point counts must match
func (s *Shape) Interpolate(target Mobject, t float64) (Mobject, error) {
	o, ok := target.(*Shape)
	if !ok {
		return nil, fmt.Errorf("%w: shape -> %s", ErrIncompatible, target.Kind())
	}
	if len(o.Points) != len(s.Points) {
		return nil, fmt.Errorf("%w: shape point count %d -> %d", ErrIncompatible, len(s.Points), len(o.Points))
	}
	out := &Shape{
		Points: make([]Vec2, len(s.Points)),
		Closed: s.Closed,
		Color: Color{
			R: lerp32(s.Color.R, o.Color.R, t),
			G: lerp32(s.Color.G, o.Color.G, t),
			B: lerp32(s.Color.B, o.Color.B, t),
			A: lerp32(s.Color.A, o.Color.A, t),
		},
	}
	for i := range s.Points {
		out.Points[i] = Vec2{
			X: lerp32(s.Points[i].X, o.Points[i].X, t),
			Y: lerp32(s.Points[i].Y, o.Points[i].Y, t),
		}
	}
	return out, nil
}
