package cave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/cave/pkg/math3d"
)

const tol = 1e-6

func standardSurfaces(t *testing.T) []Surface {
	t.Helper()
	surfaces, err := StandardSurfaces(ReferenceSize)
	require.NoError(t, err)
	return surfaces
}

func TestSurfaceFramesAreOrthonormal(t *testing.T) {
	for _, s := range standardSurfaces(t) {
		t.Run(s.Name(), func(t *testing.T) {
			assert.InDelta(t, 1, s.UHat().Len(), tol)
			assert.InDelta(t, 1, s.VHat().Len(), tol)
			assert.InDelta(t, 1, s.Normal().Len(), tol)

			assert.InDelta(t, 0, s.UHat().Dot(s.VHat()), tol)
			assert.InDelta(t, 0, s.UHat().Dot(s.Normal()), tol)
			assert.InDelta(t, 0, s.VHat().Dot(s.Normal()), tol)

			// Right-handed: u_hat × v_hat = normal
			assert.True(t, s.UHat().Cross(s.VHat()).ApproxEqual(s.Normal(), tol))
		})
	}
}

func TestStandardSurfaceNormals(t *testing.T) {
	want := map[string]math3d.Vec3{
		Front: math3d.V3(0, 0, 1),
		Left:  math3d.V3(1, 0, 0),
		Right: math3d.V3(-1, 0, 0),
		Floor: math3d.V3(0, 1, 0),
	}
	for _, s := range standardSurfaces(t) {
		assert.True(t, s.Normal().ApproxEqual(want[s.Name()], tol), "%s normal = %v", s.Name(), s.Normal())
		assert.InDelta(t, ReferenceSize, s.Width(), tol)
		assert.InDelta(t, ReferenceSize, s.Height(), tol)
	}
}

func TestNewSurfaceRejectsDegenerateEdges(t *testing.T) {
	origin := math3d.V3(-150, -150, -150)
	tests := []struct {
		name string
		u, v math3d.Vec3
	}{
		{"parallel", math3d.V3(300, 0, 0), math3d.V3(150, 0, 0)},
		{"anti-parallel", math3d.V3(300, 0, 0), math3d.V3(-300, 0, 0)},
		{"zero u", math3d.Zero3(), math3d.V3(0, 300, 0)},
		{"zero v", math3d.V3(300, 0, 0), math3d.Zero3()},
		{"skewed", math3d.V3(300, 0, 0), math3d.V3(100, 300, 0)},
		{"non-finite", math3d.V3(math.Inf(1), 0, 0), math3d.V3(0, 300, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSurface("Bad", origin, tc.u, tc.v)
			assert.ErrorIs(t, err, ErrDegenerateSurface)
		})
	}
}

func TestMustSurfacePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustSurface("Bad", math3d.Zero3(), math3d.V3(1, 0, 0), math3d.V3(2, 0, 0))
	})
}

func TestSurfaceLocalAndBounds(t *testing.T) {
	s := MustSurface(Front, math3d.V3(-150, -150, -150), math3d.V3(300, 0, 0), math3d.V3(0, 300, 0))

	local := s.Local(math3d.V3(50, 20, 100))
	assert.InDelta(t, 200, local.X, tol)
	assert.InDelta(t, 170, local.Y, tol)
	assert.InDelta(t, 250, local.Z, tol)

	assert.True(t, s.ContainsLocal(0, 0))
	assert.True(t, s.ContainsLocal(300, 300))
	assert.True(t, s.ContainsLocal(150, 10))
	assert.False(t, s.ContainsLocal(-0.001, 10))
	assert.False(t, s.ContainsLocal(10, 300.001))

	assert.True(t, s.Center().ApproxEqual(math3d.V3(0, 0, -150), tol))

	corners := s.Corners()
	assert.Equal(t, math3d.V3(-150, -150, -150), corners[0])
	assert.Equal(t, math3d.V3(150, -150, -150), corners[1])
	assert.Equal(t, math3d.V3(150, 150, -150), corners[2])
	assert.Equal(t, math3d.V3(-150, 150, -150), corners[3])
}
