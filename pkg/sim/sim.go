// Package sim renders one frame of the CAVE: every wall as the tracked
// viewer's eyes see it, and an overview of the room with those walls
// textured onto it.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/taigrr/cave/pkg/cave"
	"github.com/taigrr/cave/pkg/config"
	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
	"github.com/taigrr/cave/pkg/models"
	"github.com/taigrr/cave/pkg/render"
)

// Colors of the simulated room.
var (
	WallBackground     = render.RGB(20, 22, 30)
	OverviewBackground = render.RGB(8, 8, 12)
	SceneColor         = render.RGB(230, 160, 60)
	HeadColor          = render.RGB(200, 200, 200)
	OutlineColor       = render.RGB(90, 90, 110)
)

// EyeColors tints each eye's marker and gaze line like its anaglyph filter.
var EyeColors = [2]render.Color{render.ColorRed, render.ColorCyan}

// EyeMasks routes each eye into its anaglyph channels.
var EyeMasks = [2]render.ColorMask{render.MaskRed, render.MaskCyan}

// Marker sphere radii in room units.
const (
	headRadius = 8
	eyeRadius  = 2
)

// LightDir points toward the scene light.
var LightDir = math3d.V3(0.4, 1, 0.6).Normalize()

// Wall is one projection surface and the image rendered for it.
type Wall struct {
	Surface cave.Surface
	// Target holds the anaglyph image as it would be projected.
	Target *render.Framebuffer
	// Texture mirrors Target after each RenderWalls for the overview.
	Texture *render.Texture

	raster *render.Rasterizer
}

// Simulator owns the calibrated room, the wall targets and the scene.
type Simulator struct {
	room      *cave.Room
	walls     []*Wall
	near, far float64

	source     *models.Mesh
	scene      *models.Mesh
	sceneTex   *render.Texture
	target     math3d.Vec3
	targetSize float64

	headMesh *models.Mesh
	eyeMesh  *models.Mesh

	logger *slog.Logger
}

// New builds a simulator from cfg. scene is the target model; nil selects a
// sphere. The model is copied and scaled to the configured target size.
func New(cfg *config.Config, scene *models.Mesh, logger *slog.Logger) (*Simulator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if scene == nil {
		scene = models.NewUVSphere("target", 0.5, 24, 12)
	}
	s := &Simulator{
		source:   scene,
		headMesh: models.NewUVSphere("head", headRadius, 12, 6),
		eyeMesh:  models.NewUVSphere("eye", eyeRadius, 8, 4),
		logger:   logger,
	}
	if img := scene.BaseMap(); img != nil {
		s.sceneTex = render.TextureFromImage(img)
	}
	if err := s.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reconfigure applies a new calibration. On error the simulator is left
// unchanged.
func (s *Simulator) Reconfigure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	room, err := cfg.BuildRoom()
	if err != nil {
		return fmt.Errorf("build room: %w", err)
	}

	size := cfg.Render.TextureSize
	walls := make([]*Wall, 0, room.Len())
	for _, surface := range room.Surfaces() {
		fb := render.NewFramebuffer(size, size)
		fb.Clear(WallBackground)
		walls = append(walls, &Wall{
			Surface: surface,
			Target:  fb,
			Texture: render.TextureFromFramebuffer(fb),
			raster:  render.NewRasterizer(nil, fb),
		})
	}

	if s.scene == nil || cfg.Render.TargetSize != s.targetSize {
		scene := s.source.Clone()
		scene.FitTo(cfg.Render.TargetSize)
		s.scene = scene
		s.targetSize = cfg.Render.TargetSize
	}

	s.room = room
	s.walls = walls
	s.near, s.far = cfg.Clip.Near, cfg.Clip.Far
	s.target = cfg.TargetPosition()
	s.logger.Debug("simulator configured", "surfaces", room.Len(), "texture_size", size)
	return nil
}

// Room returns the calibrated room.
func (s *Simulator) Room() *cave.Room { return s.room }

// Walls returns the walls in calibration order.
func (s *Simulator) Walls() []*Wall { return s.walls }

// Target returns where the scene model sits.
func (s *Simulator) Target() math3d.Vec3 { return s.target }

// Scene returns the fitted scene model, centered on the origin.
func (s *Simulator) Scene() *models.Mesh { return s.scene }

func (s *Simulator) sceneTransform() math3d.Mat4 {
	return math3d.Translate(s.target)
}

func (s *Simulator) drawScene(r *render.Rasterizer) {
	if s.sceneTex != nil {
		r.DrawMeshTextured(s.scene, s.sceneTransform(), s.sceneTex, LightDir)
		return
	}
	r.DrawMesh(s.scene, s.sceneTransform(), SceneColor, LightDir)
}

// RenderWalls draws the scene onto every wall, once per eye through the
// off-axis projection for that eye. The left eye writes the red channel and
// the right eye green and blue. A wall an eye cannot see is logged and left
// at the background for that eye; the returned error joins every failure.
func (s *Simulator) RenderWalls(h head.Head) error {
	var errs []error
	for _, w := range s.walls {
		fb := w.Target
		fb.Mask = render.MaskAll
		fb.Clear(WallBackground)

		for _, e := range head.Eyes {
			eye := h.Eye(e)
			view, err := cave.NewEyeView(w.Surface, eye, s.near, s.far)
			if err != nil {
				s.logger.Warn("wall projection failed",
					"surface", w.Surface.Name(), "eye", e.String(), "pos", eye, "err", err)
				errs = append(errs, fmt.Errorf("%s %s eye: %w", w.Surface.Name(), e, err))
				continue
			}

			fb.Mask = EyeMasks[e]
			w.raster.SetView(view)
			w.raster.ClearDepth()
			s.drawScene(w.raster)
		}

		fb.Mask = render.MaskAll
		w.Texture.CopyFrom(fb)
	}
	return errors.Join(errs...)
}

// WallSheet tiles the wall targets left to right in calibration order, each
// scaled to a cell x cell square.
func (s *Simulator) WallSheet(cell int) *render.Framebuffer {
	sheet := render.NewFramebuffer(cell*len(s.walls), cell)
	sheet.Clear(OverviewBackground)
	for i, w := range s.walls {
		sheet.Blit(w.Target, i*cell, 0, cell, cell)
	}
	return sheet
}

// Gaze returns where each eye's line of sight toward the scene target ends
// on the walls.
func (s *Simulator) Gaze(h head.Head) [2]math3d.Vec3 {
	var ends [2]math3d.Vec3
	for _, e := range head.Eyes {
		eye := h.Eye(e)
		ends[e] = s.room.Gaze(math3d.RayTowards(eye, s.target))
	}
	return ends
}
