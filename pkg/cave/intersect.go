package cave

import (
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

const (
	// HitOvershoot is how far past the wall a gaze end point is pushed, so a
	// drawn gaze line visibly pierces the surface.
	HitOvershoot = 200.0

	// MissDistance is how far along the ray the end point lies when no
	// surface is hit.
	MissDistance = 10000.0
)

// Hit describes where a ray meets a bounded surface.
type Hit struct {
	Surface Surface
	T       float64
	Point   math3d.Vec3
	// U and V are the in-plane coordinates of Point relative to the origin.
	U, V float64
}

// FarthestHit intersects ray with every surface and returns the accepted hit
// with the largest t. A hit is accepted when t is finite and positive and the
// point lies inside the surface rectangle.
//
// Surfaces enclose the viewer, so an outward ray normally passes exactly one
// rectangle; when several are valid the farthest one wins, not the nearest.
func FarthestHit(ray math3d.Ray, surfaces []Surface) (Hit, bool) {
	var best Hit
	found := false

	for _, s := range surfaces {
		t := ray.PlaneT(s.normal, s.origin)
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			continue
		}

		p := ray.At(t)
		local := s.Local(p)
		if !s.ContainsLocal(local.X, local.Y) {
			continue
		}

		if !found || t > best.T {
			best = Hit{Surface: s, T: t, Point: p, U: local.X, V: local.Y}
			found = true
		}
	}

	return best, found
}

// ClosestForwardHit returns the end point of a gaze ray: HitOvershoot past
// the selected FarthestHit, or MissDistance along the ray when nothing is
// hit. It never fails for a finite ray.
func ClosestForwardHit(ray math3d.Ray, surfaces []Surface) math3d.Vec3 {
	if hit, ok := FarthestHit(ray, surfaces); ok {
		return ray.At(hit.T + HitOvershoot)
	}
	return ray.At(MissDistance)
}
