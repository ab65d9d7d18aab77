package main

import (
	"fmt"
	"time"

	"github.com/taigrr/cave/pkg/math3d"
)

// HUDState is what the overlay reports each frame.
type HUDState struct {
	Head      math3d.Vec3
	Mode      viewMode
	WallError bool
}

// HUD renders an overlay with the frame rate, head position and view mode.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD rows directly to the terminal.
func (h *HUD) Render(width, height int, st HUDState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgRed     = "\x1b[91m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !h.Visible {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := "CAVE - " + st.Mode.String()
	fmt.Print(moveTo(1, max((width-len(title)-2)/2, 1)) + fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, title, reset))

	pos := fmt.Sprintf("head %.0f, %.0f, %.0f", st.Head.X, st.Head.Y, st.Head.Z)
	fmt.Print(moveTo(height, 1) + fmt.Sprintf("%s%s %s %s", bgBlack, fgCyan, pos, reset))

	if st.WallError {
		msg := "eye outside a wall"
		fmt.Print(moveTo(height, max(width-len(msg)-2, 1)) + fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgRed, msg, reset))
	}
}
