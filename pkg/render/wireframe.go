package render

import (
	"github.com/taigrr/cave/pkg/math3d"
)

// Wireframe draws lines and outlines without depth testing, on top of
// whatever the rasterizer produced.
type Wireframe struct {
	view ViewProjector
	fb   *Framebuffer
}

// NewWireframe creates a wireframe renderer.
func NewWireframe(view ViewProjector, fb *Framebuffer) *Wireframe {
	return &Wireframe{view: view, fb: fb}
}

// SetView switches the view-projection used by later draw calls.
func (w *Wireframe) SetView(view ViewProjector) {
	w.view = view
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	drawLine(w.fb, w.view.ViewProjectionMatrix(), p1, p2, color)
}

// DrawPolygon draws a closed outline through pts.
func (w *Wireframe) DrawPolygon(pts []math3d.Vec3, color Color) {
	vp := w.view.ViewProjectionMatrix()
	for i := range pts {
		drawLine(w.fb, vp, pts[i], pts[(i+1)%len(pts)], color)
	}
}

// DrawAxes draws the X, Y and Z axes from origin in red, green and blue.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	vp := w.view.ViewProjectionMatrix()
	drawLine(w.fb, vp, origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	drawLine(w.fb, vp, origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	drawLine(w.fb, vp, origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}

// DrawPoint draws a point as a small 3D cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	w.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), color)
	w.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), color)
	w.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), color)
}

// drawLine projects a segment through vp, clips it at the near plane and
// draws it with Bresenham. Segments entirely behind the near plane are
// dropped.
func drawLine(fb *Framebuffer, vp math3d.Mat4, a, b math3d.Vec3, color Color) {
	ca := vp.MulVec4(math3d.V4FromV3(a, 1))
	cb := vp.MulVec4(math3d.V4FromV3(b, 1))

	da := ca.Z + ca.W
	db := cb.Z + cb.W
	switch {
	case da < 0 && db < 0:
		return
	case da < 0:
		ca = lerp4(ca, cb, da/(da-db))
	case db < 0:
		cb = lerp4(cb, ca, db/(db-da))
	}
	if ca.W <= 0 || cb.W <= 0 {
		return
	}

	x0, y0 := ndcToScreen(ca.X/ca.W, ca.Y/ca.W, fb.Width, fb.Height)
	x1, y1 := ndcToScreen(cb.X/cb.W, cb.Y/cb.W, fb.Width, fb.Height)

	if !clipRect(&x0, &y0, &x1, &y1, float64(fb.Width-1), float64(fb.Height-1)) {
		return
	}
	fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// clipRect clips a screen segment to [0,maxX]x[0,maxY] (Liang-Barsky) so
// far-off endpoints do not cost Bresenham steps. It reports false when
// nothing is left.
func clipRect(x0, y0, x1, y1 *float64, maxX, maxY float64) bool {
	dx, dy := *x1-*x0, *y1-*y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, *x0},
		{dx, maxX - *x0},
		{-dy, *y0},
		{dy, maxY - *y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return false
		}
	}
	*x1, *y1 = *x0+t1*dx, *y0+t1*dy
	*x0, *y0 = *x0+t0*dx, *y0+t0*dy
	return true
}

func lerp4(a, b math3d.Vec4, t float64) math3d.Vec4 {
	return math3d.V4(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, a.Z+(b.Z-a.Z)*t, a.W+(b.W-a.W)*t)
}
