package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestColorMask(t *testing.T) {
	tests := []struct {
		name string
		mask ColorMask
		want Color
	}{
		{"all channels", MaskAll, RGB(200, 150, 100)},
		{"red only", MaskRed, RGB(200, 10, 10)},
		{"cyan only", MaskCyan, RGB(10, 150, 100)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(2, 2)
			fb.Clear(RGB(10, 10, 10))
			fb.Mask = tc.mask
			fb.SetPixel(1, 1, RGB(200, 150, 100))

			if got := fb.GetPixel(1, 1); got != tc.want {
				t.Errorf("pixel = %v, want %v", got, tc.want)
			}
			if got := fb.GetPixel(0, 0); got != RGB(10, 10, 10) {
				t.Errorf("untouched pixel = %v, want %v", got, RGB(10, 10, 10))
			}
		})
	}
}

// Two masked passes compose an anaglyph: red from the first, green and
// blue from the second.
func TestColorMaskAnaglyph(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Clear(ColorBlack)

	fb.Mask = MaskRed
	fb.SetPixel(0, 0, RGB(180, 90, 90))
	fb.Mask = MaskCyan
	fb.SetPixel(0, 0, RGB(30, 60, 120))

	if got := fb.GetPixel(0, 0); got != RGB(180, 60, 120) {
		t.Errorf("anaglyph pixel = %v, want %v", got, RGB(180, 60, 120))
	}
}

func TestClearRespectsMask(t *testing.T) {
	fb := NewFramebuffer(3, 1)
	fb.Clear(RGB(50, 50, 50))
	fb.Mask = MaskCyan
	fb.Clear(RGB(0, 200, 0))

	for x := range 3 {
		if got := fb.GetPixel(x, 0); got != RGB(50, 200, 0) {
			t.Errorf("pixel %d = %v, want %v", x, got, RGB(50, 200, 0))
		}
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(4, 4, ColorRed)

	if got := fb.GetPixel(-1, 0); got != (Color{}) {
		t.Errorf("out of bounds read = %v, want zero", got)
	}
	for _, c := range fb.Pixels {
		if c == ColorRed {
			t.Fatal("out of bounds write landed in the buffer")
		}
	}
}

func TestDrawLine(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	fb.DrawLine(0, 0, 4, 4, ColorWhite)

	for i := range 5 {
		if fb.GetPixel(i, i) != ColorWhite {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
	if fb.GetPixel(4, 0) == ColorWhite {
		t.Error("off-diagonal pixel set")
	}
}

func TestBlit(t *testing.T) {
	src := NewFramebuffer(2, 2)
	src.SetPixel(0, 0, ColorRed)
	src.SetPixel(1, 0, ColorGreen)
	src.SetPixel(0, 1, ColorBlue)
	src.SetPixel(1, 1, ColorWhite)

	dst := NewFramebuffer(6, 6)
	dst.Blit(src, 1, 1, 4, 4)

	tests := []struct {
		x, y int
		want Color
	}{
		{1, 1, ColorRed},
		{4, 1, ColorGreen},
		{2, 4, ColorBlue},
		{4, 4, ColorWhite},
		{0, 0, Color{}},
		{5, 5, Color{}},
	}
	for _, tc := range tests {
		if got := dst.GetPixel(tc.x, tc.y); got != tc.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlue)
	fb.SetPixel(2, 1, ColorYellow)

	path := filepath.Join(t.TempDir(), "wall.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("image size = %v, want 3x2", b)
	}
	r, g, b, _ := img.At(2, 1).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("pixel (2,1) = %d,%d,%d, want yellow", r>>8, g>>8, b>>8)
	}
}

func TestSavePNGBadPath(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	if err := fb.SavePNG(filepath.Join(t.TempDir(), "missing", "x.png")); err == nil {
		t.Error("expected error for a missing directory")
	}
}
