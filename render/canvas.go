package render

import "github.com/gdamore/tcell/v2"

// Point is a cell coordinate
type Point struct {
	X, Y int
}

// Cell is one character cell; Owner is 1 + the frame item index, 0 if empty
type Cell struct {
	Rune  rune
	Style tcell.Style
	Owner int
}

var blank = Cell{Rune: ' ', Style: tcell.StyleDefault}

// Canvas is an off-screen cell grid with dirty tracking
// Frames rasterize here; Flush copies changed cells to a tcell screen
type Canvas struct {
	width  int
	height int
	lines  [][]Cell
	dirty  map[Point]bool
}

// NewCanvas creates a blank canvas
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{dirty: make(map[Point]bool)}
	c.Resize(width, height)
	return c
}

// Width returns the canvas width
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height
func (c *Canvas) Height() int { return c.height }

// Resize reallocates the grid, keeping content where it still fits
func (c *Canvas) Resize(width, height int) {
	lines := make([][]Cell, height)
	for y := range lines {
		lines[y] = make([]Cell, width)
		for x := range lines[y] {
			if y < c.height && x < c.width {
				lines[y][x] = c.lines[y][x]
			} else {
				lines[y][x] = blank
			}
			c.dirty[Point{X: x, Y: y}] = true
		}
	}
	c.width, c.height, c.lines = width, height, lines
	for p := range c.dirty {
		if p.X >= width || p.Y >= height {
			delete(c.dirty, p)
		}
	}
}

// Cell returns the cell at (x, y)
func (c *Canvas) Cell(x, y int) (Cell, bool) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Cell{}, false
	}
	return c.lines[y][x], true
}

// Set writes a cell; out-of-range writes are dropped
func (c *Canvas) Set(x, y int, cell Cell) bool {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return false
	}
	if c.lines[y][x] != cell {
		c.lines[y][x] = cell
		c.dirty[Point{X: x, Y: y}] = true
	}
	return true
}

// Text writes s starting at (x, y)
func (c *Canvas) Text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		c.Set(x+i, y, Cell{Rune: r, Style: style})
	}
}

// Clear blanks every cell
func (c *Canvas) Clear() {
	for y := range c.lines {
		for x := range c.lines[y] {
			c.Set(x, y, blank)
		}
	}
}

// OwnerAt returns the owner of (x, y), 0 if none
func (c *Canvas) OwnerAt(x, y int) int {
	cell, _ := c.Cell(x, y)
	return cell.Owner
}

// Line returns a copy of row y as text
func (c *Canvas) Line(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	rs := make([]rune, c.width)
	for x, cell := range c.lines[y] {
		rs[x] = cell.Rune
	}
	return string(rs)
}

// Dirty returns the number of cells changed since the last flush
func (c *Canvas) Dirty() int { return len(c.dirty) }

// Flush copies dirty cells to screen and clears the dirty set
func (c *Canvas) Flush(screen tcell.Screen) {
	for p := range c.dirty {
		cell := c.lines[p.Y][p.X]
		screen.SetContent(p.X, p.Y, cell.Rune, nil, cell.Style)
	}
	clear(c.dirty)
}
