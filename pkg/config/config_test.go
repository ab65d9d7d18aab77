package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/cave/pkg/cave"
	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
)

func TestDefaultMatchesStandardRoom(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	room, err := cfg.BuildRoom()
	require.NoError(t, err)

	want, err := cave.StandardSurfaces(cave.ReferenceSize)
	require.NoError(t, err)
	assert.Equal(t, want, room.Surfaces())

	assert.Equal(t, head.Default(), cfg.HeadPose())
	assert.Equal(t, math3d.V3(0, 0, -70), cfg.TargetPosition())
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
[clip]
near = 0.5
far = 500.0

[head]
ipd = 6.0

[room]
center = [0.0, 100.0, 0.0]

[[room.surface]]
name = "Front"
origin = [-100.0, 0.0, -100.0]
u = [200.0, 0.0, 0.0]
v = [0.0, 200.0, 0.0]

[[room.surface]]
name = "Floor"
origin = [-100.0, 0.0, 100.0]
u = [200.0, 0.0, 0.0]
v = [0.0, 0.0, -200.0]
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Clip.Near)
	assert.Equal(t, 500.0, cfg.Clip.Far)
	assert.Equal(t, 6.0, cfg.Head.IPD)
	// Untouched sections keep their defaults
	assert.Equal(t, head.DefaultCenter.Array(), cfg.Head.Center)
	assert.Equal(t, 128, cfg.Render.TextureSize)

	room, err := cfg.BuildRoom()
	require.NoError(t, err)
	assert.Equal(t, 2, room.Len())
	floor, ok := room.Surface(cave.Floor)
	require.True(t, ok)
	assert.InDelta(t, 200, floor.Width(), 1e-9)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"inverted clip", "[clip]\nnear = 10.0\nfar = 1.0\n"},
		{"zero near", "[clip]\nnear = 0.0\n"},
		{"negative ipd", "[head]\nipd = -1.0\n"},
		{"zero texture", "[render]\ntexture_size = 0\n"},
		{"unknown field", "[render]\nresolution = 10\n"},
		{"parallel edges", "[[room.surface]]\nname = \"Bad\"\norigin = [0.0, 0.0, 0.0]\nu = [1.0, 0.0, 0.0]\nv = [2.0, 0.0, 0.0]\n"},
		{"facing outward", "[[room.surface]]\nname = \"Front\"\norigin = [-150.0, -150.0, -150.0]\nu = [0.0, 300.0, 0.0]\nv = [300.0, 0.0, 0.0]\n"},
		{"infinite far", "[clip]\nnear = 1.0\nfar = inf\n"},
		{"nan near", "[clip]\nnear = nan\nfar = 100.0\n"},
		{"nan ipd", "[head]\nipd = nan\n"},
		{"nan target size", "[render]\ntarget_size = nan\n"},
		{"infinite head", "[head]\ncenter = [0.0, inf, 0.0]\n"},
		{"not toml", "this is = = not toml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestParseErrorKinds(t *testing.T) {
	_, err := Parse([]byte("[clip]\nnear = 10.0\nfar = 1.0\n"))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, cave.ErrInvalidClipRange)

	_, err = Parse([]byte("[clip]\nnear = 1.0\nfar = inf\n"))
	assert.ErrorIs(t, err, cave.ErrInvalidClipRange)

	_, err = Parse([]byte("[[room.surface]]\nname = \"Bad\"\norigin = [0.0, 0.0, 0.0]\nu = [1.0, 0.0, 0.0]\nv = [2.0, 0.0, 0.0]\n"))
	assert.ErrorIs(t, err, cave.ErrDegenerateSurface)
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))

	cfg, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cave.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\ntexture_size = 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Render.TextureSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
