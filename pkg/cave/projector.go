package cave

import (
	"fmt"
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

// planeTolerance is the smallest eye-to-plane distance still treated as
// off the plane.
const planeTolerance = 1e-9

// Frustum holds the near-plane extents of an off-axis perspective
// projection, in the eye's surface-aligned frame.
type Frustum struct {
	Left, Right float64
	Bottom, Top float64
	Near, Far   float64
}

// Matrix returns the off-centre perspective matrix for f.
func (f Frustum) Matrix() math3d.Mat4 {
	return math3d.Frustum(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}

// Symmetric reports whether left = -right and bottom = -top within tol.
func (f Frustum) Symmetric(tol float64) bool {
	return math.Abs(f.Left+f.Right) <= tol && math.Abs(f.Bottom+f.Top) <= tol
}

// PlaneDistance returns the signed perpendicular distance from eye to the
// surface plane. It is positive on the side the normal points to.
func PlaneDistance(s Surface, eye math3d.Vec3) float64 {
	return eye.Sub(s.origin).Dot(s.normal)
}

// ViewMatrix returns the view transform that puts eye at the origin and
// aligns the axes with the surface: X along u_hat, Y along v_hat and Z along
// the normal. The camera looks down -Z, through the surface.
//
// A point on the surface plane ends up at local Z = -PlaneDistance(s, eye).
func ViewMatrix(s Surface, eye math3d.Vec3) math3d.Mat4 {
	rot := math3d.Basis(s.uHat, s.vHat, s.normal)
	return rot.Mul(math3d.Translate(eye.Negate()))
}

// FrustumBounds computes the asymmetric frustum through which eye sees the
// surface rectangle, scaled to the near plane.
func FrustumBounds(s Surface, eye math3d.Vec3, near, far float64) (Frustum, error) {
	if err := ValidateClipRange(near, far); err != nil {
		return Frustum{}, err
	}
	if !eye.IsFinite() {
		return Frustum{}, fmt.Errorf("surface %q: non-finite eye %v: %w", s.name, eye, ErrEyeOnPlane)
	}

	d := PlaneDistance(s, eye)
	switch {
	case math.Abs(d) <= planeTolerance:
		return Frustum{}, fmt.Errorf("surface %q: %w", s.name, ErrEyeOnPlane)
	case d < 0:
		return Frustum{}, fmt.Errorf("surface %q: distance %g: %w", s.name, d, ErrEyeBehindSurface)
	}

	// Eye projected onto the plane, in surface coordinates
	local := s.Local(eye)
	scale := near / d

	return Frustum{
		Left:   -local.X * scale,
		Right:  (s.width - local.X) * scale,
		Bottom: -local.Y * scale,
		Top:    (s.height - local.Y) * scale,
		Near:   near,
		Far:    far,
	}, nil
}

// ProjectionMatrix returns the off-axis projection for eye looking through
// the surface. Combined with ViewMatrix for the same eye, the surface corners
// land exactly on the NDC corners (±1, ±1).
func ProjectionMatrix(s Surface, eye math3d.Vec3, near, far float64) (math3d.Mat4, error) {
	f, err := FrustumBounds(s, eye, near, far)
	if err != nil {
		return math3d.Mat4{}, err
	}
	return f.Matrix(), nil
}

// ValidateClipRange reports ErrInvalidClipRange unless 0 < near < far and
// both are finite.
func ValidateClipRange(near, far float64) error {
	if math.IsNaN(near) || math.IsNaN(far) || math.IsInf(near, 0) || math.IsInf(far, 0) {
		return fmt.Errorf("near %g, far %g: %w", near, far, ErrInvalidClipRange)
	}
	if near <= 0 {
		return fmt.Errorf("near %g must be positive: %w", near, ErrInvalidClipRange)
	}
	if near >= far {
		return fmt.Errorf("near %g must be less than far %g: %w", near, far, ErrInvalidClipRange)
	}
	return nil
}

// EyeView is the view and projection pair for one eye and one surface.
type EyeView struct {
	Surface    string
	Eye        math3d.Vec3
	View       math3d.Mat4
	Projection math3d.Mat4
	Frustum    Frustum
}

// NewEyeView computes both transforms for eye looking through s.
func NewEyeView(s Surface, eye math3d.Vec3, near, far float64) (EyeView, error) {
	f, err := FrustumBounds(s, eye, near, far)
	if err != nil {
		return EyeView{}, err
	}
	return EyeView{
		Surface:    s.name,
		Eye:        eye,
		View:       ViewMatrix(s, eye),
		Projection: f.Matrix(),
		Frustum:    f,
	}, nil
}

// ViewProjectionMatrix returns Projection * View.
func (v EyeView) ViewProjectionMatrix() math3d.Mat4 {
	return v.Projection.Mul(v.View)
}
