package models

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/cave/pkg/math3d"
)

// writeQuadGLB saves a unit quad in the z=0 plane with a red textured
// material and returns its path. The texture sits next to the file.
func writeQuadGLB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	tex := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			tex.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "quad.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, tex); err != nil {
		t.Fatal(err)
	}
	f.Close()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	uvs := modeler.WriteTextureCoord(doc, [][2]float32{{0, 1}, {1, 1}, {0, 0}, {1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 1, 3})

	doc.Images = []*gltf.Image{{URI: "quad.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{1, 0, 0, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uvs},
			Material:   gltf.Index(0),
		}},
	}}

	path := filepath.Join(dir, "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadGLB(t *testing.T) {
	mesh, err := LoadGLB(writeQuadGLB(t))
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}

	if mesh.Name != "quad.glb" {
		t.Errorf("Name = %q, want quad.glb", mesh.Name)
	}
	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d faces; want 4, 2", mesh.VertexCount(), mesh.TriangleCount())
	}

	// winding is kept as stored
	if got := mesh.GetFace(0); got != [3]int{0, 1, 2} {
		t.Errorf("face 0 = %v, want [0 1 2]", got)
	}

	// no normals in the file, so they are computed from the CCW faces
	for i, v := range mesh.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-6) {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}

	// glTF V runs down the image, mesh UVs run up
	if uv := mesh.Vertices[0].UV; uv != math3d.V2(0, 0) {
		t.Errorf("vertex 0 uv = %v, want (0, 0)", uv)
	}
	if uv := mesh.Vertices[3].UV; uv != math3d.V2(1, 1) {
		t.Errorf("vertex 3 uv = %v, want (1, 1)", uv)
	}

	if c, ok := mesh.FaceColor(1); !ok || c != [4]float64{1, 0, 0, 1} {
		t.Errorf("FaceColor(1) = %v, %v; want red", c, ok)
	}
	img := mesh.BaseMap()
	if img == nil {
		t.Fatal("expected the base color texture to load")
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("texture size = %v, want 2x2", b)
	}

	if mesh.BoundsMin != math3d.V3(0, 0, 0) || mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
}

func TestLoadGLBInvalidPath(t *testing.T) {
	if _, err := LoadGLB("/nonexistent/path.glb"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	_, err := NewGLTFLoader().Decode(gltf.NewDocument(), "empty", "")
	if !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Decode(empty) error = %v, want ErrNoGeometry", err)
	}
}

func TestGLTFLoaderDefaults(t *testing.T) {
	if !NewGLTFLoader().CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}
