package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
	"github.com/taigrr/cave/pkg/render"
)

func TestRenderOverview(t *testing.T) {
	s, _ := newTestSimulator(t)
	h := head.Default()
	require.NoError(t, s.RenderWalls(h))

	o := NewOverview(64, 48)
	o.Camera.Orbit(math3d.Zero3(), 700, 0, -0.4)
	s.RenderOverview(o, h)

	fb := o.Framebuffer()
	drawn := 0
	for _, p := range fb.Pixels {
		if p != OverviewBackground {
			drawn++
		}
	}
	assert.Greater(t, drawn, len(fb.Pixels)/10, "the room should cover part of the view")

	// head and both eyes; the scene model is only on the walls
	assert.Equal(t, 3, o.Stats().MeshesDrawn)
	assert.Equal(t, 3, o.Stats().MeshesTested)

	o.ShowScene = true
	s.RenderOverview(o, h)
	assert.Equal(t, 4, o.Stats().MeshesDrawn)
}

func TestOverviewResize(t *testing.T) {
	o := NewOverview(64, 48)
	o.Resize(120, 40)

	assert.Equal(t, 120, o.Framebuffer().Width)
	assert.Equal(t, 40, o.Framebuffer().Height)
	assert.InDelta(t, 3.0, o.Camera.AspectRatio, 1e-12)
}

func TestEyeCamera(t *testing.T) {
	s, _ := newTestSimulator(t)
	o := NewOverview(64, 48)

	eye := head.Default().LeftEye()
	o.EyeCamera(eye, s.Target())

	assert.Equal(t, eye, o.Camera.Position)
	want := s.Target().Sub(eye).Normalize()
	assert.True(t, o.Camera.Forward().ApproxEqual(want, 1e-9))
}

func TestRenderOverviewFacingAway(t *testing.T) {
	s, _ := newTestSimulator(t)
	h := head.Default()

	o := NewOverview(64, 48)
	o.Background = render.RGB(1, 2, 3)
	o.Camera.SetPosition(math3d.V3(0, 0, -400))
	o.Camera.LookAt(math3d.V3(0, 0, -1000))
	s.RenderOverview(o, h)

	assert.Zero(t, o.Stats().MeshesTested, "head and eyes are culled by their bounding spheres")
	for _, p := range o.Framebuffer().Pixels {
		require.Equal(t, o.Background, p)
	}
}

func TestRenderOverviewAxes(t *testing.T) {
	s, _ := newTestSimulator(t)
	h := head.Default()

	o := NewOverview(160, 120)
	o.Camera.Orbit(math3d.Zero3(), 600, 0.6, -0.3)

	greens := func() int {
		n := 0
		for _, p := range o.Framebuffer().Pixels {
			if p == render.ColorGreen {
				n++
			}
		}
		return n
	}

	s.RenderOverview(o, h)
	assert.Zero(t, greens())

	o.ShowAxes = true
	s.RenderOverview(o, h)
	assert.Positive(t, greens(), "the Y axis is drawn in green")
}
