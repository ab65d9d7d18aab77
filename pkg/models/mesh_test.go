package models

import (
	"math"
	"testing"

	"github.com/taigrr/cave/pkg/math3d"
)

// triangleMesh is one CCW triangle in the z=0 plane facing +Z.
func triangleMesh() *Mesh {
	mesh := NewMesh("tri")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(4, 0, 0)},
		{Position: math3d.V3(0, 2, 0)},
	}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: -1}}
	mesh.CalculateBounds()
	return mesh
}

func TestFaceColor(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1},
		{V: [3]int{9, 10, 11}, Material: 7},
	}

	tests := []struct {
		face   int
		want   [4]float64
		wantOK bool
	}{
		{0, [4]float64{1, 0, 0, 1}, true},
		{1, [4]float64{0, 1, 0, 1}, true},
		{2, [4]float64{}, false},
		{3, [4]float64{}, false},
	}
	for _, tc := range tests {
		got, ok := mesh.FaceColor(tc.face)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("FaceColor(%d) = %v, %v; want %v, %v", tc.face, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestGetMaterialBounds(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{{Name: "only"}}

	if m := mesh.GetMaterial(0); m == nil || m.Name != "only" {
		t.Errorf("GetMaterial(0) = %v, want the only material", m)
	}
	if mesh.GetMaterial(-1) != nil || mesh.GetMaterial(1) != nil {
		t.Error("out of range materials should be nil")
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	mesh := triangleMesh()
	mesh.CalculateSmoothNormals()

	for i, v := range mesh.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestFitTo(t *testing.T) {
	mesh := triangleMesh()
	mesh.FitTo(40)

	if c := mesh.Center(); !c.ApproxEqual(math3d.Zero3(), 1e-9) {
		t.Errorf("center = %v, want origin", c)
	}
	size := mesh.Size()
	if math.Abs(size.X-40) > 1e-9 || math.Abs(size.Y-20) > 1e-9 {
		t.Errorf("size = %v, want 40 x 20 (uniform scale)", size)
	}

	empty := NewMesh("empty")
	empty.FitTo(10)
	if empty.Size() != math3d.Zero3() {
		t.Error("empty mesh should be left alone")
	}
}

func TestTransformUpdatesBounds(t *testing.T) {
	mesh := triangleMesh()
	mesh.Transform(math3d.Translate(math3d.V3(0, 0, -70)))

	if mesh.BoundsMin.Z != -70 || mesh.BoundsMax.Z != -70 {
		t.Errorf("bounds z = %v..%v, want -70", mesh.BoundsMin.Z, mesh.BoundsMax.Z)
	}
	lo, hi := mesh.GetBounds()
	if lo != mesh.BoundsMin || hi != mesh.BoundsMax {
		t.Error("GetBounds disagrees with the bounds fields")
	}
}

func TestMeshCloneIsIndependent(t *testing.T) {
	mesh := triangleMesh()
	mesh.Materials = []Material{{Name: "mat", BaseColor: [4]float64{1, 0, 0, 1}}}
	mesh.Faces[0].Material = 0

	clone := mesh.Clone()
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	clone.Materials[0].Name = "modified"

	if mesh.Vertices[0].Position == clone.Vertices[0].Position {
		t.Error("vertices are shared with the clone")
	}
	if mesh.Materials[0].Name == "modified" {
		t.Error("materials are shared with the clone")
	}
	if clone.TriangleCount() != 1 || clone.VertexCount() != 3 {
		t.Errorf("clone has %d faces, %d vertices", clone.TriangleCount(), clone.VertexCount())
	}
}
