package preview

import (
	"math"
	"strings"

	"github.com/sarchlab/roboeyes/display"
)

// Cell kinds of a rendered screen.
const (
	CellOutside = ' '
	CellWhite   = '.'
	CellIris    = '@'
	CellLid     = '='
)

// Grid is a rendered screen, one rune per terminal cell.
type Grid [][]rune

func (g Grid) String() string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = string(row)
	}

	return strings.Join(lines, "\n")
}

const irisRadius = 0.4

// Render draws a screen into a width x height grid. The eyeball is drawn as
// an iris moved by the eyeball translation; a playing eyelid closes from the
// top down and opens again over one cycle.
func Render(st display.ScreenState, width, height int) Grid {
	grid := make(Grid, height)

	offX, offY := 0.0, 0.0
	closure := 0.0
	radius := float64(st.Diameter) / 2

	for _, l := range st.Layers {
		switch {
		case strings.HasSuffix(l.Name, ".eyeball") && radius > 0:
			offX = float64(l.X) / radius
			offY = float64(l.Y) / radius
		case strings.HasSuffix(l.Name, ".eyelid"):
			closure = lidClosure(l)
		}
	}

	cx := float64(width-1) / 2
	cy := float64(height-1) / 2

	for row := 0; row < height; row++ {
		grid[row] = make([]rune, width)

		ny := (float64(row) - cy) / (float64(height) / 2)
		for col := 0; col < width; col++ {
			nx := (float64(col) - cx) / (float64(width) / 2)

			switch {
			case nx*nx+ny*ny > 1:
				grid[row][col] = CellOutside
			case ny < -1+2*closure:
				grid[row][col] = CellLid
			case math.Hypot(nx-offX, ny-offY) <= irisRadius:
				grid[row][col] = CellIris
			default:
				grid[row][col] = CellWhite
			}
		}
	}

	return grid
}

// lidClosure is 0 for an open eye and 1 for a closed one. The lid closes
// during the first half of its frames and opens during the second.
func lidClosure(l display.LayerState) float64 {
	if !l.Playing || l.Frames < 2 {
		return 0
	}

	progress := float64(l.Frame) / float64(l.Frames-1)

	return 1 - math.Abs(2*progress-1)
}
