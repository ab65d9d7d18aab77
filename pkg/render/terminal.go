package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors used across the simulator.
var (
	ColorBlack  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	ColorWhite  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorRed    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	ColorGreen  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	ColorBlue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	ColorYellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	ColorCyan   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	ColorGray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Draw paints the framebuffer into area of scr. Each terminal row shows two
// framebuffer rows as an upper half block: foreground is the top pixel,
// background the bottom one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Display is a screen that can push its cells to the terminal;
// *uv.Terminal satisfies it.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalRenderer maps a framebuffer onto a terminal of cols x rows cells.
type TerminalRenderer struct {
	scr        Display
	cols, rows int
}

// NewTerminalRenderer creates a renderer for a cols x rows terminal.
func NewTerminalRenderer(scr Display, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, cols: cols, rows: rows}
}

// FramebufferSize returns the pixel size matching the terminal: one column
// per cell and two rows per cell.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render draws fb over the whole terminal.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.cols, t.rows))
}

// Flush pushes the pending cells to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}
