package gridworld

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/gosuri/uilive"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

// Cell is the kind of thing drawn in a single gridworld cell
type Cell int

const (
	Empty Cell = iota
	Start
	Goal
	CliffCell
	Agent
	Hunter
	Prey
)

func (c Cell) symbol() string {
	switch c {
	case Start:
		return "S"
	case Goal:
		return "T"
	case CliffCell:
		return "C"
	case Agent:
		return "x"
	case Hunter:
		return "H"
	case Prey:
		return "P"
	default:
		return "o"
	}
}

func (c Cell) colour(au aurora.Aurora) aurora.Value {
	switch c {
	case Goal:
		return au.Green(c.symbol())
	case CliffCell:
		return au.Red(c.symbol())
	case Agent:
		return au.Bold(au.Cyan(c.symbol()))
	case Hunter:
		return au.Bold(au.Yellow(c.symbol()))
	case Prey:
		return au.Bold(au.Magenta(c.symbol()))
	default:
		return au.Gray(12, c.symbol())
	}
}

func (c Cell) fill() color.Color {
	switch c {
	case Start:
		return color.RGBA{0xd0, 0xd0, 0xff, 0xff}
	case Goal:
		return color.RGBA{0x4c, 0xaf, 0x50, 0xff}
	case CliffCell:
		return color.RGBA{0x40, 0x40, 0x40, 0xff}
	case Agent:
		return color.RGBA{0x21, 0x96, 0xf3, 0xff}
	case Hunter:
		return color.RGBA{0xff, 0x98, 0x00, 0xff}
	case Prey:
		return color.RGBA{0xe9, 0x1e, 0x63, 0xff}
	default:
		return color.White
	}
}

// Board is a single rendered frame of a gridworld. Each cell has a
// terrain and an optional occupant drawn on top of it.
type Board struct {
	rows, cols int
	terrain    []Cell
	occupant   []Cell
}

// NewBoard returns an empty board of the given dimensions
func NewBoard(rows, cols int) *Board {
	return &Board{
		rows:     rows,
		cols:     cols,
		terrain:  make([]Cell, rows*cols),
		occupant: make([]Cell, rows*cols),
	}
}

// Dims returns the rows and columns of the board
func (b *Board) Dims() (int, int) {
	return b.rows, b.cols
}

// SetTerrain sets the terrain of cell (row, col)
func (b *Board) SetTerrain(row, col int, c Cell) {
	b.terrain[row*b.cols+col] = c
}

// Place puts an occupant in cell (row, col). A later Place in the
// same cell replaces the earlier one.
func (b *Board) Place(row, col int, c Cell) {
	b.occupant[row*b.cols+col] = c
}

// At returns the visible cell at (row, col)
func (b *Board) At(row, col int) Cell {
	i := row*b.cols + col
	if b.occupant[i] != Empty {
		return b.occupant[i]
	}
	return b.terrain[i]
}

// Text returns the board as rows of coloured symbols
func (b *Board) Text(au aurora.Aurora) string {
	var sb strings.Builder
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.At(row, col).colour(au).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Draw draws the board with square cells of cellSize pixels
func (b *Board) Draw(cellSize int) *gg.Context {
	size := float64(cellSize)
	dc := gg.NewContext(b.cols*cellSize, b.rows*cellSize)
	dc.SetColor(color.White)
	dc.Clear()

	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			x, y := float64(col)*size, float64(row)*size
			dc.DrawRectangle(x, y, size, size)
			dc.SetColor(b.terrain[row*b.cols+col].fill())
			dc.Fill()

			if occ := b.occupant[row*b.cols+col]; occ != Empty {
				dc.DrawCircle(x+size/2, y+size/2, size/3)
				dc.SetColor(occ.fill())
				dc.Fill()
			}
		}
	}

	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	for row := 0; row <= b.rows; row++ {
		dc.DrawLine(0, float64(row)*size, float64(b.cols)*size, float64(row)*size)
	}
	for col := 0; col <= b.cols; col++ {
		dc.DrawLine(float64(col)*size, 0, float64(col)*size, float64(b.rows)*size)
	}
	dc.Stroke()

	return dc
}

// SavePNG saves the board as a PNG image
func (b *Board) SavePNG(path string, cellSize int) error {
	if err := b.Draw(cellSize).SavePNG(path); err != nil {
		return errors.Wrapf(err, "savePNG: could not save %v", path)
	}
	return nil
}

// Renderer writes boards to a terminal. Animated frames overwrite the
// previous frame in place.
type Renderer struct {
	out  io.Writer
	live *uilive.Writer
	au   aurora.Aurora
}

// NewRenderer returns a Renderer writing to out, or to stdout if out
// is nil. If colour is false, no escape codes for colours are written.
func NewRenderer(out io.Writer, colour bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	live := uilive.New()
	live.Out = out

	return &Renderer{out: out, live: live, au: aurora.NewAurora(colour)}
}

// Render writes b. If animation is true, the frame replaces the last
// animated frame.
func (r *Renderer) Render(b *Board, animation bool) error {
	text := b.Text(r.au)
	if !animation {
		_, err := fmt.Fprintln(r.out, text)
		return errors.Wrap(err, "render")
	}

	if _, err := fmt.Fprint(r.live, text); err != nil {
		return errors.Wrap(err, "render")
	}
	return errors.Wrap(r.live.Flush(), "render")
}
