package math3d

import "math"

// Ray is a half-line with a unit-length direction.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay creates a ray from origin along dir. dir is normalized.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// RayTowards creates a ray from origin through target.
func RayTowards(origin, target Vec3) Ray {
	return NewRay(origin, target.Sub(origin))
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// PlaneT returns the ray parameter at which the ray meets the plane through
// point with the given normal. A ray parallel to the plane yields +Inf, or
// NaN when it also lies in the plane; callers must reject non-finite values.
func (r Ray) PlaneT(normal, point Vec3) float64 {
	denom := normal.Dot(r.Dir)
	num := normal.Dot(point.Sub(r.Origin))
	if denom == 0 {
		if num == 0 {
			return math.NaN()
		}
		return math.Inf(1)
	}
	return num / denom
}
