package render

import (
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

// ViewProjector supplies the combined projection * view matrix a draw call
// transforms through. Camera implements it for the overview, cave.EyeView
// for the per-wall off-axis renders.
type ViewProjector interface {
	ViewProjectionMatrix() math3d.Mat4
}

// Camera is a symmetric perspective camera oriented by yaw and pitch. It
// drives the overview of the CAVE.
type Camera struct {
	Position math3d.Vec3
	Pitch    float64 // radians, positive looks up
	Yaw      float64 // radians, 0 looks down -Z

	FOV         float64 // vertical, radians
	AspectRatio float64
	Near        float64
	Far         float64

	viewProj math3d.Mat4
	dirty    bool
}

// NewCamera creates a camera with a 60 degree field of view.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        1,
		Far:         5000,
		dirty:       true,
	}
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.dirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.dirty = true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// LookAt turns the camera toward target. Roll is always zero.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.dirty = true
}

// Orbit places the camera distance away from target, looking at it from the
// direction given by yaw and pitch.
func (c *Camera) Orbit(target math3d.Vec3, distance, yaw, pitch float64) {
	const maxPitch = math.Pi/2 - 0.01
	c.Yaw = yaw
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	c.Position = target.Sub(c.Forward().Scale(distance))
	c.dirty = true
}

// ViewMatrix returns the world to camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	rot := math3d.RotateX(-c.Pitch).Mul(math3d.RotateY(-c.Yaw))
	return rot.Mul(math3d.Translate(c.Position.Negate()))
}

// ProjectionMatrix returns the symmetric perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection * view, cached until the camera
// changes through one of its setters.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.dirty {
		c.viewProj = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.dirty = false
	}
	return c.viewProj
}

// WorldToScreen projects a world point through vp into a width x height
// framebuffer. visible is false behind the camera or outside the frustum.
func WorldToScreen(vp ViewProjector, p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := vp.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x, y = ndcToScreen(ndc.X, ndc.Y, width, height)
	return x, y, ndc.Z, true
}

// ndcToScreen maps NDC to pixel coordinates with y pointing down.
func ndcToScreen(nx, ny float64, width, height int) (float64, float64) {
	return (nx + 1) * 0.5 * float64(width), (1 - ny) * 0.5 * float64(height)
}
