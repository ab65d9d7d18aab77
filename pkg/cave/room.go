package cave

import (
	"fmt"
	"slices"

	"github.com/taigrr/cave/pkg/math3d"
)

// Names of the reference CAVE surfaces.
const (
	Front = "Front"
	Left  = "Left"
	Right = "Right"
	Floor = "Floor"
)

// ReferenceSize is the edge length of the reference CAVE.
const ReferenceSize = 300.0

// Room is an ordered, immutable set of surfaces with a name index.
type Room struct {
	center   math3d.Vec3
	surfaces []Surface
	byName   map[string]int
}

// NewRoom builds a room around center. Surface names must be unique and
// every normal must point from its surface toward center.
func NewRoom(center math3d.Vec3, surfaces ...Surface) (*Room, error) {
	r := &Room{
		center:   center,
		surfaces: slices.Clone(surfaces),
		byName:   make(map[string]int, len(surfaces)),
	}

	for i, s := range r.surfaces {
		if _, dup := r.byName[s.name]; dup {
			return nil, fmt.Errorf("surface %q: %w", s.name, ErrDuplicateSurface)
		}
		r.byName[s.name] = i

		if !FacesPoint(s, center) {
			return nil, fmt.Errorf("surface %q normal %v: %w", s.name, s.normal, ErrNormalOrientation)
		}
	}

	return r, nil
}

// FacesPoint reports whether the normal of s points from the surface toward p.
func FacesPoint(s Surface, p math3d.Vec3) bool {
	return p.Sub(s.Center()).Dot(s.normal) > 0
}

// Center returns the point every surface faces.
func (r *Room) Center() math3d.Vec3 { return r.center }

// Len returns the number of surfaces.
func (r *Room) Len() int { return len(r.surfaces) }

// Surfaces returns the surfaces in calibration order.
func (r *Room) Surfaces() []Surface {
	return slices.Clone(r.surfaces)
}

// Surface looks up a surface by name.
func (r *Room) Surface(name string) (Surface, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Surface{}, false
	}
	return r.surfaces[i], true
}

// Gaze returns the gaze line end point for ray against the room's surfaces.
func (r *Room) Gaze(ray math3d.Ray) math3d.Vec3 {
	return ClosestForwardHit(ray, r.surfaces)
}

// StandardSurfaces returns the Front, Left, Right and Floor walls of a cubic
// CAVE of the given edge length centred on the origin.
func StandardSurfaces(size float64) ([]Surface, error) {
	h := size / 2
	specs := []struct {
		name   string
		origin math3d.Vec3
		u, v   math3d.Vec3
	}{
		{Front, math3d.V3(-h, -h, -h), math3d.V3(size, 0, 0), math3d.V3(0, size, 0)},
		{Left, math3d.V3(-h, -h, h), math3d.V3(0, 0, -size), math3d.V3(0, size, 0)},
		{Right, math3d.V3(h, -h, -h), math3d.V3(0, 0, size), math3d.V3(0, size, 0)},
		{Floor, math3d.V3(-h, -h, h), math3d.V3(size, 0, 0), math3d.V3(0, 0, -size)},
	}

	surfaces := make([]Surface, 0, len(specs))
	for _, sp := range specs {
		s, err := NewSurface(sp.name, sp.origin, sp.u, sp.v)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

// StandardRoom returns the reference CAVE of the given size.
func StandardRoom(size float64) (*Room, error) {
	surfaces, err := StandardSurfaces(size)
	if err != nil {
		return nil, err
	}
	return NewRoom(math3d.Zero3(), surfaces...)
}
