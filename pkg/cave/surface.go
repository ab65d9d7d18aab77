// Package cave implements the geometry of a CAVE: planar display surfaces,
// the off-axis projection that turns each surface into a window onto the
// virtual scene, and the gaze ray test against the bounded surfaces.
//
// Every function here is pure. Surfaces are immutable values, so a room can
// be shared freely between the render loop and anything else reading it.
package cave

import (
	"fmt"
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

// Tolerances used when validating surface edges.
const (
	parallelTolerance      = 1e-9
	perpendicularTolerance = 1e-6
)

// Surface is one planar rectangular display region in world space.
//
// The rectangle spans origin + a*u + b*v for a, b in [0, 1]. The normal is
// normalize(u × v), so the order of u and v picks the side the surface
// faces; in a CAVE it must face the interior of the room.
type Surface struct {
	name   string
	origin math3d.Vec3
	u, v   math3d.Vec3

	uHat, vHat math3d.Vec3
	normal     math3d.Vec3
	width      float64
	height     float64
}

// NewSurface creates a surface from a corner and its two edge vectors.
// It returns ErrDegenerateSurface if u or v is zero, if they are parallel,
// or if they are not perpendicular.
func NewSurface(name string, origin, u, v math3d.Vec3) (Surface, error) {
	width, height := u.Len(), v.Len()
	if width == 0 || height == 0 || !u.IsFinite() || !v.IsFinite() || !origin.IsFinite() {
		return Surface{}, fmt.Errorf("surface %q: %w: zero or non-finite edge", name, ErrDegenerateSurface)
	}

	cross := u.Cross(v)
	if cross.Len() <= parallelTolerance*width*height {
		return Surface{}, fmt.Errorf("surface %q: %w: parallel edges", name, ErrDegenerateSurface)
	}

	uHat := u.Scale(1 / width)
	vHat := v.Scale(1 / height)
	if math.Abs(uHat.Dot(vHat)) > perpendicularTolerance {
		return Surface{}, fmt.Errorf("surface %q: %w: edges are not perpendicular", name, ErrDegenerateSurface)
	}

	return Surface{
		name:   name,
		origin: origin,
		u:      u,
		v:      v,
		uHat:   uHat,
		vHat:   vHat,
		normal: cross.Normalize(),
		width:  width,
		height: height,
	}, nil
}

// MustSurface is like NewSurface but panics on error. It is meant for
// literal calibration tables.
func MustSurface(name string, origin, u, v math3d.Vec3) Surface {
	s, err := NewSurface(name, origin, u, v)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the surface identifier.
func (s Surface) Name() string { return s.name }

// Origin returns the bottom-left corner.
func (s Surface) Origin() math3d.Vec3 { return s.origin }

// U returns the width edge vector.
func (s Surface) U() math3d.Vec3 { return s.u }

// V returns the height edge vector.
func (s Surface) V() math3d.Vec3 { return s.v }

// UHat returns the unit right axis.
func (s Surface) UHat() math3d.Vec3 { return s.uHat }

// VHat returns the unit up axis.
func (s Surface) VHat() math3d.Vec3 { return s.vHat }

// Normal returns the unit plane normal.
func (s Surface) Normal() math3d.Vec3 { return s.normal }

// Width returns |u|.
func (s Surface) Width() float64 { return s.width }

// Height returns |v|.
func (s Surface) Height() float64 { return s.height }

// Center returns the centre of the rectangle.
func (s Surface) Center() math3d.Vec3 {
	return s.origin.Add(s.u.Scale(0.5)).Add(s.v.Scale(0.5))
}

// Corners returns the corners counter-clockwise when seen from the front:
// bottom-left, bottom-right, top-right, top-left.
func (s Surface) Corners() [4]math3d.Vec3 {
	return [4]math3d.Vec3{
		s.origin,
		s.origin.Add(s.u),
		s.origin.Add(s.u).Add(s.v),
		s.origin.Add(s.v),
	}
}

// Local returns p in surface-local coordinates: distance along u_hat and
// v_hat from the origin, and signed distance along the normal.
func (s Surface) Local(p math3d.Vec3) math3d.Vec3 {
	rel := p.Sub(s.origin)
	return math3d.V3(rel.Dot(s.uHat), rel.Dot(s.vHat), rel.Dot(s.normal))
}

// ContainsLocal reports whether in-plane coordinates (a, b) fall inside the
// physical rectangle. Edges are inclusive.
func (s Surface) ContainsLocal(a, b float64) bool {
	return a >= 0 && b >= 0 && a <= s.width && b <= s.height
}

// String implements fmt.Stringer.
func (s Surface) String() string {
	return fmt.Sprintf("%s{origin=%v u=%v v=%v}", s.name, s.origin, s.u, s.v)
}
