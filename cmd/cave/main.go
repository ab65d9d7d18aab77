// cave - Terminal CAVE simulator
// Renders each wall of a calibrated CAVE through the off-axis projection of
// a tracked viewer's eyes, as red/cyan anaglyphs, and shows the room from an
// orbiting overview camera.
//
// Controls:
//
//	Arrows/WASD - Move the head (x/z)
//	PgUp/PgDn   - Move the head up/down
//	Space       - Return the head to its calibrated position
//	Mouse drag  - Orbit the overview camera
//	Scroll      - Zoom in/out
//	L/R         - View through the left/right eye (press again to orbit)
//	S           - Toggle the scene model in the overview
//	X           - Toggle the world axes in the overview
//	T           - Log the Front view matrix for the test eye
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/cave/pkg/cave"
	"github.com/taigrr/cave/pkg/config"
	"github.com/taigrr/cave/pkg/head"
	"github.com/taigrr/cave/pkg/math3d"
	"github.com/taigrr/cave/pkg/models"
	"github.com/taigrr/cave/pkg/render"
	"github.com/taigrr/cave/pkg/sim"
)

var (
	configPath  = flag.String("config", "", "Path to a TOML calibration file")
	modelPath   = flag.String("model", "", "Scene model (.glb/.gltf), a sphere when empty")
	targetFPS   = flag.Int("fps", 30, "Target FPS")
	watchConfig = flag.Bool("watch", false, "Reload the calibration when the config file changes")
	logPath     = flag.String("log", "", "Write logs to this file")
	dumpConfig  = flag.Bool("dump-config", false, "Print the effective config as TOML and exit")
	snapshotDir = flag.String("snapshot", "", "Render one frame, save the wall targets and overview as PNG files in this directory and exit")
	bgColor     = flag.String("bg", "8,8,12", "Overview background color (R,G,B)")
)

// testEye is the eye position the T key reports the Front view matrix for.
var testEye = math3d.V3(50, 20, 100)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cave - Terminal CAVE simulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cave [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Arrows/WASD - Move the head\n")
		fmt.Fprintf(os.Stderr, "  PgUp/PgDn   - Raise/lower the head\n")
		fmt.Fprintf(os.Stderr, "  Space       - Reset the head\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit the overview\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  L/R         - Look through the left/right eye\n")
		fmt.Fprintf(os.Stderr, "  S           - Toggle the scene in the overview\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle the world axes\n")
		fmt.Fprintf(os.Stderr, "  T           - Log the Front view matrix\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to path when set, otherwise to fallback.
func newLogger(path string, fallback io.Writer) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(fallback, nil)), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), f.Close, nil
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

func loadScene() (*models.Mesh, error) {
	if *modelPath == "" {
		return nil, nil
	}
	switch ext := strings.ToLower(filepath.Ext(*modelPath)); ext {
	case ".glb", ".gltf":
		return models.LoadGLB(*modelPath)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}
}

// parseRGB parses an "R,G,B" triple of 0-255 components.
func parseRGB(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("color %q: want R,G,B", s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		c[i] = uint8(v)
	}
	return render.RGB(c[0], c[1], c[2]), nil
}

// roomBounds is the box spanned by the walls, shrunk by margin. The tracker
// keeps both eyes inside it.
func roomBounds(room *cave.Room, margin float64) (math3d.Vec3, math3d.Vec3) {
	surfaces := room.Surfaces()
	lo := surfaces[0].Origin()
	hi := lo
	for _, s := range surfaces {
		for _, c := range s.Corners() {
			lo, hi = lo.Min(c), hi.Max(c)
		}
	}
	m := math3d.V3(margin, margin, margin)
	return lo.Add(m), hi.Sub(m)
}

func run() error {
	bg, err := parseRGB(*bgColor)
	if err != nil {
		return fmt.Errorf("-bg: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *dumpConfig {
		return cfg.Write(os.Stdout)
	}

	// The alternate screen owns stdout, so logs are dropped unless -log is set.
	fallback := io.Discard
	if *snapshotDir != "" {
		fallback = os.Stderr
	}
	logger, closeLog, err := newLogger(*logPath, fallback)
	if err != nil {
		return err
	}
	defer closeLog()

	scene, err := loadScene()
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if scene != nil {
		logger.Info("model loaded", "path", *modelPath, "vertices", scene.VertexCount(), "triangles", scene.TriangleCount())
	}

	simulator, err := sim.New(cfg, scene, logger)
	if err != nil {
		return err
	}

	tracker := head.NewTracker(cfg.HeadPose(), *targetFPS)
	tracker.SetEyeBounds(roomBounds(simulator.Room(), 5))

	if *snapshotDir != "" {
		return snapshot(simulator, tracker.Head(), bg, *snapshotDir, logger)
	}
	return interactive(cfg, simulator, tracker, bg, logger)
}

// snapshot renders one frame and writes each wall target and an overview.
func snapshot(simulator *sim.Simulator, h head.Head, bg render.Color, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := simulator.RenderWalls(h); err != nil {
		logger.Warn("some walls were not rendered", "err", err)
	}
	for _, w := range simulator.Walls() {
		path := filepath.Join(dir, strings.ToLower(w.Surface.Name())+".png")
		if err := w.Target.SavePNG(path); err != nil {
			return err
		}
		logger.Info("wall saved", "surface", w.Surface.Name(), "path", path)
	}
	sheet := filepath.Join(dir, "walls.png")
	if err := simulator.WallSheet(256).SavePNG(sheet); err != nil {
		return err
	}

	overview := sim.NewOverview(640, 480)
	overview.Background = bg
	overview.Camera.Orbit(simulator.Room().Center(), 800, 0.5, -0.35)
	simulator.RenderOverview(overview, h)
	path := filepath.Join(dir, "overview.png")
	if err := overview.Framebuffer().SavePNG(path); err != nil {
		return err
	}
	logger.Info("overview saved", "path", path)
	return nil
}

// viewMode selects what drives the overview camera.
type viewMode int

const (
	viewOrbit viewMode = iota
	viewLeftEye
	viewRightEye
)

func (m viewMode) String() string {
	switch m {
	case viewLeftEye:
		return "left eye"
	case viewRightEye:
		return "right eye"
	}
	return "orbit"
}

// orbit is the overview camera placement. Zoom eases toward its target
// distance with a spring.
type orbit struct {
	yaw, pitch    float64
	dist, distVel float64
	targetDist    float64
	spring        harmonica.Spring
	mouseDown     bool
	lastX, lastY  int
}

func newOrbit(fps int) *orbit {
	return &orbit{
		yaw:        0.5,
		pitch:      -0.35,
		dist:       800,
		targetDist: 800,
		// Frequency 5 = quick, damping 1 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 1.0),
	}
}

func (o *orbit) zoom(delta float64) {
	o.targetDist = math.Max(150, math.Min(3000, o.targetDist+delta))
}

func (o *orbit) update() {
	o.dist, o.distVel = o.spring.Update(o.dist, o.distVel, o.targetDist)
}

func interactive(cfg *config.Config, simulator *sim.Simulator, tracker *head.Tracker, bg render.Color, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	overview := sim.NewOverview(termRenderer.FramebufferSize())
	overview.Background = bg

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	reloads := make(chan *config.Config, 1)
	if *watchConfig && *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, logger, func(c *config.Config) {
				select {
				case reloads <- c:
				default:
					// a reload is already pending; the next edit triggers another
				}
			})
			if err != nil {
				logger.Error("config watch stopped", "err", err)
			}
		}()
	}

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	cam := newOrbit(*targetFPS)
	mode := viewOrbit
	hud := NewHUD()
	const step = 5.0

	handle := func(ev any) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			overview.Resize(termRenderer.FramebufferSize())

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
			case ev.MatchString("w", "up"):
				tracker.Move(math3d.V3(0, 0, -step))
			case ev.MatchString("s", "down"):
				tracker.Move(math3d.V3(0, 0, step))
			case ev.MatchString("a", "left"):
				tracker.Move(math3d.V3(-step, 0, 0))
			case ev.MatchString("d", "right"):
				tracker.Move(math3d.V3(step, 0, 0))
			case ev.MatchString("pgup"):
				tracker.Move(math3d.V3(0, step, 0))
			case ev.MatchString("pgdown"):
				tracker.Move(math3d.V3(0, -step, 0))
			case ev.MatchString("space"):
				tracker.SetTarget(cfg.HeadPose().Center)
			case ev.MatchString("shift+l", "L"):
				mode = toggleView(mode, viewLeftEye)
			case ev.MatchString("shift+r", "R"):
				mode = toggleView(mode, viewRightEye)
			case ev.MatchString("shift+s", "S"):
				overview.ShowScene = !overview.ShowScene
			case ev.MatchString("shift+x", "X"):
				overview.ShowAxes = !overview.ShowAxes
			case ev.MatchString("shift+t", "T"):
				logFrontView(simulator.Room(), logger)
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				hud.Visible = !hud.Visible
			}

		case uv.MouseClickEvent:
			cam.mouseDown = true
			cam.lastX, cam.lastY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			cam.mouseDown = false

		case uv.MouseMotionEvent:
			if cam.mouseDown {
				mode = viewOrbit
				cam.yaw -= float64(ev.X-cam.lastX) * 0.03
				cam.pitch = math.Max(-1.4, math.Min(1.4, cam.pitch-float64(ev.Y-cam.lastY)*0.03))
				cam.lastX, cam.lastY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				cam.zoom(-50)
			case uv.MouseWheelDown:
				cam.zoom(50)
			}
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(max(*targetFPS, 1)))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			handle(ev)

		case c := <-reloads:
			if err := simulator.Reconfigure(c); err != nil {
				logger.Warn("calibration rejected", "err", err)
				continue
			}
			cfg = c
			tracker.SetEyeBounds(roomBounds(simulator.Room(), 5))

		case <-ticker.C:
			h := tracker.Update()
			cam.update()

			switch mode {
			case viewLeftEye:
				overview.EyeCamera(h.LeftEye(), simulator.Target())
			case viewRightEye:
				overview.EyeCamera(h.RightEye(), simulator.Target())
			default:
				overview.Camera.Orbit(simulator.Room().Center(), cam.dist, cam.yaw, cam.pitch)
			}

			wallErr := simulator.RenderWalls(h)
			simulator.RenderOverview(overview, h)

			termRenderer.Render(overview.Framebuffer())
			if err := termRenderer.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}

			hud.UpdateFPS()
			hud.Render(width, height, HUDState{Head: h.Center, Mode: mode, WallError: wallErr != nil})
		}
	}
}

// toggleView switches to want, or back to orbiting when already there.
func toggleView(cur, want viewMode) viewMode {
	if cur == want {
		return viewOrbit
	}
	return want
}

func logFrontView(room *cave.Room, logger *slog.Logger) {
	front, ok := room.Surface(cave.Front)
	if !ok {
		logger.Warn("no Front surface in the calibration")
		return
	}
	m := cave.ViewMatrix(front, testEye)
	logger.Info("front view matrix", "eye", testEye, "matrix", m)
}
