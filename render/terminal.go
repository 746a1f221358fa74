// Package render draws prepared frames to a terminal
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/present"
)

// cellAspect is the height/width ratio of a terminal cell
const cellAspect = 2.0

// Terminal rasterizes frames onto a tcell screen
// World origin maps to the canvas center; +Y points up
type Terminal struct {
	screen       tcell.Screen
	canvas       *Canvas
	unitsPerCell float32
	background   tcell.Style
	hud          tcell.Style
}

// NewTerminal creates a renderer sized to screen
func NewTerminal(screen tcell.Screen, unitsPerCell float32) *Terminal {
	w, h := screen.Size()
	if unitsPerCell <= 0 {
		unitsPerCell = 1
	}
	return &Terminal{
		screen:       screen,
		canvas:       NewCanvas(w, h),
		unitsPerCell: unitsPerCell,
		background:   tcell.StyleDefault,
		hud:          tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 255, 255)),
	}
}

// Canvas exposes the off-screen grid
func (r *Terminal) Canvas() *Canvas { return r.canvas }

// Resize follows a terminal resize event
func (r *Terminal) Resize() {
	w, h := r.screen.Size()
	r.canvas.Resize(w, h)
	r.screen.Clear()
}

// Draw rasterizes f, overlays status on the last row and shows the screen
func (r *Terminal) Draw(f *present.Frame, status string) {
	r.Rasterize(f, status)
	r.canvas.Flush(r.screen)
	r.screen.Show()
}

// Rasterize renders f into the canvas without touching the screen
func (r *Terminal) Rasterize(f *present.Frame, status string) {
	r.canvas.Clear()

	for i, it := range f.Items {
		owner := i + 1
		switch res := it.Resource.(type) {
		case *device.ShapeResource:
			r.drawShape(res, owner)
		case *present.GroupResource:
			for _, m := range res.Members {
				if s, ok := m.(*device.ShapeResource); ok {
					r.drawShape(s, owner)
				}
			}
		}
	}

	r.drawMeters(f)
	if status != "" && r.canvas.Height() > 0 {
		r.canvas.Text(0, r.canvas.Height()-1, status, r.hud)
	}
}

// Cell maps a world point to a cell coordinate
func (r *Terminal) Cell(p mobject.Vec2) (int, int) {
	cx := float64(r.canvas.Width()) / 2
	cy := float64(r.canvas.Height()) / 2
	x := cx + float64(p.X/r.unitsPerCell)
	y := cy - float64(p.Y/r.unitsPerCell)/cellAspect
	return int(math.Floor(x)), int(math.Floor(y))
}

func (r *Terminal) drawShape(s *device.ShapeResource, owner int) {
	pts := s.Points()
	if len(pts) == 0 {
		return
	}
	c := s.Color()
	style := r.background.Foreground(rgb(c))
	cell := Cell{Rune: glyph(c.A), Style: style, Owner: owner}

	if len(pts) == 1 {
		x, y := r.Cell(pts[0])
		r.canvas.Set(x, y, cell)
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		r.line(pts[i], pts[i+1], cell)
	}
	if s.Closed {
		r.line(pts[len(pts)-1], pts[0], cell)
	}
}

// line draws a Bresenham segment between world points
func (r *Terminal) line(a, b mobject.Vec2, cell Cell) {
	x0, y0 := r.Cell(a)
	x1, y1 := r.Cell(b)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		r.canvas.Set(x0, y0, cell)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// drawMeters shows one level bar per audible tone in the top-right corner
func (r *Terminal) drawMeters(f *present.Frame) {
	const width = 10
	x0 := r.canvas.Width() - width - 2
	if x0 < 0 {
		return
	}
	for i, tn := range f.Tones() {
		level := int(math.Round(tn.Peak() * width))
		bar := make([]rune, width)
		for j := range bar {
			bar[j] = '·'
			if j < level {
				bar[j] = '█'
			}
		}
		r.canvas.Text(x0, i, fmt.Sprintf("♪%s", string(bar)), r.hud)
	}
}

func rgb(c mobject.Color) tcell.Color {
	to8 := func(v float32) int32 {
		return int32(math.Round(float64(max(0, min(1, v)) * 255)))
	}
	return tcell.NewRGBColor(to8(c.R), to8(c.G), to8(c.B))
}

// glyph picks a shade block for an alpha level
func glyph(alpha float32) rune {
	switch {
	case alpha >= 0.75:
		return '█'
	case alpha >= 0.5:
		return '▓'
	case alpha >= 0.25:
		return '▒'
	default:
		return '░'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
