package models

import (
	"math"

	"github.com/taigrr/cave/pkg/math3d"
)

// NewUVSphere builds a sphere of the given radius centered on the origin,
// split into segments around the Y axis and rings from pole to pole.
func NewUVSphere(name string, radius float64, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	mesh := NewMesh(name)
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			n := math3d.V3(math.Sin(phi)*math.Sin(theta), math.Cos(phi), math.Sin(phi)*math.Cos(theta))
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       math3d.V2(float64(j)/float64(segments), 1-float64(i)/float64(rings)),
			})
		}
	}

	stride := segments + 1
	for i := range rings {
		for j := range segments {
			a := i*stride + j // upper left seen from outside
			b := a + stride   // lower left
			c := b + 1        // lower right
			d := a + 1        // upper right
			if i != rings-1 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, b, c}, Material: -1})
			}
			if i != 0 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, c, d}, Material: -1})
			}
		}
	}

	mesh.CalculateBounds()
	return mesh
}

// NewCube builds an axis-aligned cube with edge length size, centered on
// the origin. Each face has its own four vertices so normals stay flat.
func NewCube(name string, size float64) *Mesh {
	h := size / 2
	sides := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	}
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	mesh := NewMesh(name)
	for _, s := range sides {
		base := len(mesh.Vertices)
		center := s.n.Scale(h)
		for _, c := range corners {
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: center.Add(s.u.Scale(c[0] * h)).Add(s.v.Scale(c[1] * h)),
				Normal:   s.n,
				UV:       math3d.V2((c[0]+1)/2, (c[1]+1)/2),
			})
		}
		mesh.Faces = append(mesh.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
		)
	}

	mesh.CalculateBounds()
	return mesh
}
