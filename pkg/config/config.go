// Package config holds the CAVE calibration and simulator settings, loaded
// from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/cave/pkg/cave"
	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full simulator configuration.
type Config struct {
	Clip   Clip   `toml:"clip"`
	Head   Head   `toml:"head"`
	Room   Room   `toml:"room"`
	Render Render `toml:"render"`
}

// Clip is the near/far range used for every wall projection.
type Clip struct {
	Near float64 `toml:"near"`
	Far  float64 `toml:"far"`
}

// Head is the initial tracked head pose.
type Head struct {
	Center    [3]float64 `toml:"center"`
	IPD       float64    `toml:"ipd"`
	EyeOffset [3]float64 `toml:"eye_offset"`
}

// Room is the CAVE calibration: the interior point every wall faces and the
// walls themselves.
type Room struct {
	Center   [3]float64 `toml:"center"`
	Surfaces []Surface  `toml:"surface"`
}

// Surface is one wall: bottom-left corner and edge vectors.
type Surface struct {
	Name   string     `toml:"name"`
	Origin [3]float64 `toml:"origin"`
	U      [3]float64 `toml:"u"`
	V      [3]float64 `toml:"v"`
}

// Render holds simulator output settings.
type Render struct {
	// TextureSize is the edge length in pixels of each wall target.
	TextureSize int `toml:"texture_size"`
	// Target is where the scene model sits; gaze rays point at it.
	Target [3]float64 `toml:"target"`
	// TargetSize is the edge length the scene model is scaled to.
	TargetSize float64 `toml:"target_size"`
}

// Default returns the reference CAVE configuration.
func Default() *Config {
	h := cave.ReferenceSize / 2
	s := cave.ReferenceSize
	return &Config{
		Clip: Clip{Near: 1, Far: 10000},
		Head: Head{
			Center:    head.DefaultCenter.Array(),
			IPD:       head.DefaultIPD,
			EyeOffset: head.DefaultEyeOffset.Array(),
		},
		Room: Room{
			Surfaces: []Surface{
				{Name: cave.Front, Origin: [3]float64{-h, -h, -h}, U: [3]float64{s, 0, 0}, V: [3]float64{0, s, 0}},
				{Name: cave.Left, Origin: [3]float64{-h, -h, h}, U: [3]float64{0, 0, -s}, V: [3]float64{0, s, 0}},
				{Name: cave.Right, Origin: [3]float64{h, -h, -h}, U: [3]float64{0, 0, s}, V: [3]float64{0, s, 0}},
				{Name: cave.Floor, Origin: [3]float64{-h, -h, h}, U: [3]float64{s, 0, 0}, V: [3]float64{0, 0, -s}},
			},
		},
		Render: Render{
			TextureSize: 128,
			Target:      [3]float64{0, 0, -70},
			TargetSize:  60,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Surfaces in the file replace the default walls entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	defaults := cfg.Room.Surfaces
	cfg.Room.Surfaces = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Room.Surfaces) == 0 {
		cfg.Room.Surfaces = defaults
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks ranges and that the walls form a valid room.
func (c *Config) Validate() error {
	if err := cave.ValidateClipRange(c.Clip.Near, c.Clip.Far); err != nil {
		return fmt.Errorf("%w: clip: %w", ErrInvalid, err)
	}
	if !(c.Head.IPD >= 0) || math.IsInf(c.Head.IPD, 0) {
		return fmt.Errorf("%w: ipd %g", ErrInvalid, c.Head.IPD)
	}
	for _, p := range []struct {
		name string
		v    [3]float64
	}{
		{"head center", c.Head.Center},
		{"eye offset", c.Head.EyeOffset},
		{"room center", c.Room.Center},
		{"render target", c.Render.Target},
	} {
		if !math3d.FromArray(p.v).IsFinite() {
			return fmt.Errorf("%w: %s %v is not finite", ErrInvalid, p.name, p.v)
		}
	}
	if c.Render.TextureSize <= 0 {
		return fmt.Errorf("%w: texture size %d", ErrInvalid, c.Render.TextureSize)
	}
	if !(c.Render.TargetSize > 0) || math.IsInf(c.Render.TargetSize, 0) {
		return fmt.Errorf("%w: target size %g", ErrInvalid, c.Render.TargetSize)
	}
	if _, err := c.BuildRoom(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// BuildRoom creates the calibrated room.
func (c *Config) BuildRoom() (*cave.Room, error) {
	if len(c.Room.Surfaces) == 0 {
		return nil, errors.New("room has no surfaces")
	}
	surfaces := make([]cave.Surface, 0, len(c.Room.Surfaces))
	for _, sc := range c.Room.Surfaces {
		s, err := cave.NewSurface(sc.Name, math3d.FromArray(sc.Origin), math3d.FromArray(sc.U), math3d.FromArray(sc.V))
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}
	return cave.NewRoom(math3d.FromArray(c.Room.Center), surfaces...)
}

// HeadPose returns the configured initial head.
func (c *Config) HeadPose() head.Head {
	return head.Head{
		Center:    math3d.FromArray(c.Head.Center),
		IPD:       c.Head.IPD,
		EyeOffset: math3d.FromArray(c.Head.EyeOffset),
	}
}

// TargetPosition returns the scene target position.
func (c *Config) TargetPosition() math3d.Vec3 {
	return math3d.FromArray(c.Render.Target)
}
