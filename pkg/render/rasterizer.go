package render

import (
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Vertex color
}

// Triangle represents a triangle to be rasterized. Front faces wind
// counter-clockwise as seen by the viewer.
type Triangle struct {
	V [3]Vertex
}

// Rasterizer draws triangles into a framebuffer through a ViewProjector,
// with a depth buffer and near-plane clipping.
type Rasterizer struct {
	view    ViewProjector
	fb      *Framebuffer
	zbuffer []float64

	Stats                  RenderStats
	DisableBackfaceCulling bool
}

// RenderStats counts work done since the last ResetStats.
type RenderStats struct {
	MeshesTested int // meshes tested against the frustum
	MeshesCulled int // meshes skipped entirely
	MeshesDrawn  int
	Triangles    int // triangles that reached the pixel loop
}

// MeshRenderer is the geometry a Rasterizer can draw; models.Mesh
// implements it.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer adds a local bounding box used for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// ColoredMeshRenderer reports a per-face base color (RGBA in 0-1), usually
// from a material. ok is false for faces without one.
type ColoredMeshRenderer interface {
	MeshRenderer
	FaceColor(i int) (rgba [4]float64, ok bool)
}

// NewRasterizer creates a rasterizer drawing through view into fb.
func NewRasterizer(view ViewProjector, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{view: view, fb: fb}
	r.Resize()
	return r
}

// SetView switches the view-projection used by later draw calls. The wall
// renderer calls it once per surface and eye.
func (r *Rasterizer) SetView(view ViewProjector) {
	r.view = view
}

// Framebuffer returns the render target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the depth buffer to the far value.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetStats zeroes the counters, usually once per frame.
func (r *Rasterizer) ResetStats() {
	r.Stats = RenderStats{}
}

// Frustum returns the clip planes of the current view.
func (r *Rasterizer) Frustum() Frustum {
	return FrustumOf(r.view)
}

// IsVisible tests a world-space box against the current view.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.Frustum().IntersectAABB(worldBounds)
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// clipVertex is a vertex in homogeneous clip space with the attributes
// interpolated across the triangle.
type clipVertex struct {
	pos   math3d.Vec4
	uv    math3d.Vec2
	color Color
	light float64
}

// screenVertex is a clipVertex after the perspective divide.
type screenVertex struct {
	X, Y, Z float64
	InvW    float64
	clipVertex
}

func lerpClip(a, b clipVertex, t float64) clipVertex {
	l := func(x, y float64) float64 { return x + (y-x)*t }
	return clipVertex{
		pos:   math3d.V4(l(a.pos.X, b.pos.X), l(a.pos.Y, b.pos.Y), l(a.pos.Z, b.pos.Z), l(a.pos.W, b.pos.W)),
		uv:    math3d.V2(l(a.uv.X, b.uv.X), l(a.uv.Y, b.uv.Y)),
		color: lerpColor(a.color, b.color, t),
		light: l(a.light, b.light),
	}
}

// clipNear clips a triangle against the near plane (z >= -w), returning up
// to four vertices of the kept polygon.
func clipNear(in [3]clipVertex) (out [4]clipVertex, n int) {
	for i := range 3 {
		a, b := in[i], in[(i+1)%3]
		da := a.pos.Z + a.pos.W
		db := b.pos.Z + b.pos.W
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = lerpClip(a, b, da/(da-db))
			n++
		}
	}
	return out, n
}

// drawClip clips, projects and fills one clip-space triangle. tex may be nil
// for vertex colors. twoSided skips backface culling for this call.
func (r *Rasterizer) drawClip(in [3]clipVertex, tex *Texture, twoSided bool) {
	poly, n := clipNear(in)
	if n < 3 {
		return
	}
	var sv [4]screenVertex
	for i := range n {
		p := poly[i]
		inv := 1 / p.pos.W
		x, y := ndcToScreen(p.pos.X*inv, p.pos.Y*inv, r.Width(), r.Height())
		sv[i] = screenVertex{X: x, Y: y, Z: p.pos.Z * inv, InvW: inv, clipVertex: p}
	}
	cull := !twoSided && !r.DisableBackfaceCulling
	r.fill(sv[0], sv[1], sv[2], tex, cull)
	if n == 4 {
		r.fill(sv[0], sv[2], sv[3], tex, cull)
	}
}

// fill rasterizes a screen-space triangle with perspective-correct
// attributes.
func (r *Rasterizer) fill(a, b, c screenVertex, tex *Texture, cull bool) {
	// y points down, so counter-clockwise front faces have negative area here
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if area == 0 || (cull && area > 0) {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(a.X, b.X, c.X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(a.X, b.X, c.X))))
	minY := int(math.Max(0, math.Floor(min3(a.Y, b.Y, c.Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(a.Y, b.Y, c.Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.Triangles++

	// constant attributes skip interpolation so they stay exact
	flatLight := a.light == b.light && b.light == c.light
	flatColor := tex == nil && a.color == b.color && b.color == c.color

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(a.X, a.Y, b.X, b.Y, c.X, c.Y, float64(x)+0.5, float64(y)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*a.Z + bc.Y*b.Z + bc.Z*c.Z
			if z >= r.getDepth(x, y) {
				continue
			}

			w0, w1, w2 := bc.X*a.InvW, bc.Y*b.InvW, bc.Z*c.InvW
			sum := w0 + w1 + w2
			if sum == 0 {
				continue
			}
			w0, w1, w2 = w0/sum, w1/sum, w2/sum

			light := a.light
			if !flatLight {
				light = w0*a.light + w1*b.light + w2*c.light
			}
			var color Color
			switch {
			case tex != nil:
				u := w0*a.uv.X + w1*b.uv.X + w2*c.uv.X
				v := w0*a.uv.Y + w1*b.uv.Y + w2*c.uv.Y
				color = tex.Sample(u, v)
			case flatColor:
				color = a.color
			default:
				color = interpolateColor3(a.color, b.color, c.color, math3d.V3(w0, w1, w2))
			}
			if light != 1 {
				color = MultiplyColor(color, light)
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, color)
		}
	}
}

// toClip transforms a triangle's vertices, assigning each the given light.
func toClip(vp math3d.Mat4, tri Triangle, light [3]float64) [3]clipVertex {
	var cv [3]clipVertex
	for i, v := range tri.V {
		cv[i] = clipVertex{
			pos:   vp.MulVec4(math3d.V4FromV3(v.Position, 1)),
			uv:    v.UV,
			color: v.Color,
			light: light[i],
		}
	}
	return cv
}

// lambert is the ambient plus diffuse term used by every lit draw call.
func lambert(normal, lightDir math3d.Vec3) float64 {
	return 0.3 + 0.7*math.Max(0, normal.Dot(lightDir))
}

func vertexLight(tri Triangle, lightDir math3d.Vec3) [3]float64 {
	l := lightDir.Normalize()
	return [3]float64{lambert(tri.V[0].Normal, l), lambert(tri.V[1].Normal, l), lambert(tri.V[2].Normal, l)}
}

var unlit = [3]float64{1, 1, 1}

// DrawTriangle rasterizes a triangle with interpolated vertex colors and no
// lighting.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	r.drawClip(toClip(r.view.ViewProjectionMatrix(), tri, unlit), nil, false)
}

// DrawTriangleGouraud rasterizes a triangle with per-vertex lighting
// interpolated across it.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, lightDir math3d.Vec3) {
	r.drawClip(toClip(r.view.ViewProjectionMatrix(), tri, vertexLight(tri, lightDir)), nil, false)
}

// DrawQuadTextured draws an unlit, two-sided quad with tex stretched over
// it. corners run lower-left, lower-right, upper-right, upper-left, which is
// the order cave.Surface.Corners returns.
func (r *Rasterizer) DrawQuadTextured(corners [4]math3d.Vec3, tex *Texture) {
	uvs := [4]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}
	white := RGB(255, 255, 255)
	vp := r.view.ViewProjectionMatrix()
	for _, idx := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
		var tri Triangle
		for i, k := range idx {
			tri.V[i] = Vertex{Position: corners[k], UV: uvs[k], Color: white}
		}
		r.drawClip(toClip(vp, tri, unlit), tex, true)
	}
}

// cull reports whether mesh lies entirely outside the view. Meshes without
// bounds are never culled.
func (r *Rasterizer) cull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	r.Stats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisible(AABB{Min: lo, Max: hi}.Transform(transform)) {
		r.Stats.MeshesCulled++
		return true
	}
	r.Stats.MeshesDrawn++
	return false
}

// meshTriangle assembles face i of mesh in world space.
func meshTriangle(mesh MeshRenderer, transform math3d.Mat4, i int, color Color) Triangle {
	face := mesh.GetFace(i)
	var tri Triangle
	for k, vi := range face {
		p, n, uv := mesh.GetVertex(vi)
		tri.V[k] = Vertex{
			Position: transform.MulVec3(p),
			Normal:   transform.MulVec3Dir(n).Normalize(),
			UV:       uv,
			Color:    color,
		}
	}
	return tri
}

// DrawMesh renders a mesh with Gouraud shading. Faces with a material color
// use it instead of color. The mesh is skipped if its bounds are off screen.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	if r.cull(mesh, transform) {
		return
	}
	colored, hasColors := mesh.(ColoredMeshRenderer)
	vp := r.view.ViewProjectionMatrix()
	for i := range mesh.TriangleCount() {
		c := color
		if hasColors {
			if rgba, ok := colored.FaceColor(i); ok {
				c = RGB(unit8(rgba[0]), unit8(rgba[1]), unit8(rgba[2]))
			}
		}
		tri := meshTriangle(mesh, transform, i, c)
		r.drawClip(toClip(vp, tri, vertexLight(tri, lightDir)), nil, false)
	}
}

// DrawMeshTextured renders a textured mesh with Gouraud shading.
func (r *Rasterizer) DrawMeshTextured(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3) {
	if r.cull(mesh, transform) {
		return
	}
	vp := r.view.ViewProjectionMatrix()
	for i := range mesh.TriangleCount() {
		tri := meshTriangle(mesh, transform, i, RGB(255, 255, 255))
		r.drawClip(toClip(vp, tri, vertexLight(tri, lightDir)), tex, false)
	}
}

// DrawLine3D draws a world-space line segment, clipped at the near plane.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	drawLine(r.fb, r.view.ViewProjectionMatrix(), a, b, color)
}

func unit8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
