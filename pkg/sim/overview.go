package sim

import (
	"math"

	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
	"github.com/taigrr/cave/pkg/render"
)

// Overview is the outside view of the CAVE: an orbiting camera and the
// target it renders into.
type Overview struct {
	Camera *render.Camera
	// ShowScene also draws the scene model in the room, not only on the
	// walls.
	ShowScene bool
	// ShowAxes draws the world axes at the room center.
	ShowAxes bool
	// Background fills the target before each frame.
	Background render.Color

	fb     *render.Framebuffer
	raster *render.Rasterizer
	wire   *render.Wireframe
}

// NewOverview creates an overview rendering into a width x height target.
func NewOverview(width, height int) *Overview {
	o := &Overview{Camera: render.NewCamera(), Background: OverviewBackground}
	o.Resize(width, height)
	return o
}

// Resize replaces the render target and matches the camera aspect to it.
func (o *Overview) Resize(width, height int) {
	o.fb = render.NewFramebuffer(width, height)
	o.raster = render.NewRasterizer(o.Camera, o.fb)
	o.wire = render.NewWireframe(o.Camera, o.fb)
	if height > 0 {
		o.Camera.SetAspectRatio(float64(width) / float64(height))
	}
}

// Framebuffer returns the render target.
func (o *Overview) Framebuffer() *render.Framebuffer { return o.fb }

// Stats returns the rasterizer counters of the last frame.
func (o *Overview) Stats() render.RenderStats { return o.raster.Stats }

// EyeCamera places the camera at eye, looking at the scene target. It is
// how the overview shows what one eye sees of the walls.
func (o *Overview) EyeCamera(eye, target math3d.Vec3) {
	o.Camera.SetPosition(eye)
	o.Camera.LookAt(target)
}

// RenderOverview draws the room from o's camera: walls textured with their
// last wall render, their outlines, the head and eyes, and each eye's gaze
// line to where it meets the walls.
func (s *Simulator) RenderOverview(o *Overview, h head.Head) {
	o.fb.Mask = render.MaskAll
	o.fb.Clear(o.Background)
	o.raster.ClearDepth()
	o.raster.ResetStats()

	for _, w := range s.walls {
		o.raster.DrawQuadTextured(w.Surface.Corners(), w.Texture)
	}
	for _, w := range s.walls {
		c := w.Surface.Corners()
		o.wire.DrawPolygon(c[:], OutlineColor)
	}

	if o.ShowScene {
		s.drawScene(o.raster)
	}
	if o.ShowAxes {
		o.wire.DrawAxes(s.room.Center(), s.axisLength())
	}

	// Markers wholly outside the view are skipped.
	visible := render.FrustumOf(o.Camera)
	if visible.IntersectsSphere(h.Center, headRadius) {
		o.raster.DrawMesh(s.headMesh, math3d.Translate(h.Center), HeadColor, LightDir)
	}
	gaze := s.Gaze(h)
	for _, e := range head.Eyes {
		eye := h.Eye(e)
		if visible.IntersectsSphere(eye, eyeRadius) {
			o.raster.DrawMesh(s.eyeMesh, math3d.Translate(eye), EyeColors[e], LightDir)
		}
		o.wire.DrawLine3D(eye, gaze[e], EyeColors[e])
	}
	o.wire.DrawPoint(s.target, math.Max(4, s.targetSize/4), render.ColorYellow)
}

// axisLength is a quarter of the room's largest wall edge.
func (s *Simulator) axisLength() float64 {
	var edge float64
	for _, w := range s.walls {
		edge = math.Max(edge, math.Max(w.Surface.Width(), w.Surface.Height()))
	}
	return edge / 4
}
