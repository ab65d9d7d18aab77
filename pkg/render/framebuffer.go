// Package render rasterises CAVE walls and the overview scene in software.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// ColorMask selects which channels SetPixel and Clear may write, the way
// glColorMask does. Anaglyph stereo renders each eye through a different
// mask into the same framebuffer.
type ColorMask struct {
	R, G, B bool
}

// Common masks.
var (
	MaskAll  = ColorMask{R: true, G: true, B: true}
	MaskRed  = ColorMask{R: true}
	MaskCyan = ColorMask{G: true, B: true}
)

// Framebuffer is a 2D array of pixels that can be rendered to the terminal.
// Terminal output uses half-block characters, so one cell holds two rows.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major, y=0 at the top
	Mask   ColorMask
}

// NewFramebuffer creates a framebuffer writing all channels.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
		Mask:   MaskAll,
	}
}

// Clear fills the masked channels of every pixel with c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if fb.Mask == MaskAll {
		for i := range fb.Pixels {
			fb.Pixels[i] = c
		}
		return
	}
	for i := range fb.Pixels {
		fb.Pixels[i] = fb.masked(fb.Pixels[i], c)
	}
}

// SetPixel writes the masked channels of c at (x, y). Out of bounds writes
// are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	i := y*fb.Width + x
	if fb.Mask == MaskAll {
		fb.Pixels[i] = c
		return
	}
	fb.Pixels[i] = fb.masked(fb.Pixels[i], c)
}

func (fb *Framebuffer) masked(dst, src color.RGBA) color.RGBA {
	if fb.Mask.R {
		dst.R = src.R
	}
	if fb.Mask.G {
		dst.G = src.G
	}
	if fb.Mask.B {
		dst.B = src.B
	}
	dst.A = 255
	return dst
}

// GetPixel returns the color at (x, y), or transparent black out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Blit copies src into fb with its top-left corner at (x, y), scaling by
// nearest neighbour to w x h pixels. Used for wall thumbnails.
func (fb *Framebuffer) Blit(src *Framebuffer, x, y, w, h int) {
	if src == nil || w <= 0 || h <= 0 || src.Width == 0 || src.Height == 0 {
		return
	}
	for py := range h {
		sy := py * src.Height / h
		for px := range w {
			sx := px * src.Width / w
			fb.SetPixel(x+px, y+py, src.Pixels[sy*src.Width+sx])
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
