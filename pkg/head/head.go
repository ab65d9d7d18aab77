// Package head models the tracked viewer: a head position and the two eye
// positions derived from it, moved smoothly with critically damped springs.
package head

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/cave/pkg/math3d"
)

// Eye selects the left or right eye.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

// Eyes lists both eyes in render order.
var Eyes = [2]Eye{LeftEye, RightEye}

func (e Eye) String() string {
	if e == LeftEye {
		return "left"
	}
	return "right"
}

// Defaults for the reference viewer.
const (
	DefaultIPD = 6.8
)

var (
	DefaultCenter    = math3d.V3(50, 20, 50)
	DefaultEyeOffset = math3d.V3(0, 10, -6)
)

// Head is a head pose. Eyes sit at EyeOffset from Center, spread apart along
// X by the interpupillary distance.
type Head struct {
	Center    math3d.Vec3
	IPD       float64
	EyeOffset math3d.Vec3
}

// Default returns the reference head.
func Default() Head {
	return Head{
		Center:    DefaultCenter,
		IPD:       DefaultIPD,
		EyeOffset: DefaultEyeOffset,
	}
}

// Eye returns the world position of the given eye.
func (h Head) Eye(e Eye) math3d.Vec3 {
	x := h.IPD / 2
	if e == LeftEye {
		x = -x
	}
	return h.Center.Add(math3d.V3(x+h.EyeOffset.X, h.EyeOffset.Y, h.EyeOffset.Z))
}

// LeftEye returns the left eye position.
func (h Head) LeftEye() math3d.Vec3 { return h.Eye(LeftEye) }

// RightEye returns the right eye position.
func (h Head) RightEye() math3d.Vec3 { return h.Eye(RightEye) }

// axis is one spring-driven coordinate.
type axis struct {
	pos, vel float64
}

// Tracker moves a head toward a target position, one frame at a time.
type Tracker struct {
	head   Head
	target math3d.Vec3
	axes   [3]axis
	spring harmonica.Spring

	bounded  bool
	min, max math3d.Vec3
}

// NewTracker creates a tracker at h's position, stepping at fps frames per
// second.
func NewTracker(h Head, fps int) *Tracker {
	t := &Tracker{
		head:   h,
		target: h.Center,
		// Frequency 6 = brisk, damping 1 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
	t.axes[0].pos = h.Center.X
	t.axes[1].pos = h.Center.Y
	t.axes[2].pos = h.Center.Z
	return t
}

// SetBounds keeps the target inside the box [min, max].
func (t *Tracker) SetBounds(min, max math3d.Vec3) {
	t.bounded = true
	t.min, t.max = min, max
	t.target = t.clamp(t.target)
}

// SetEyeBounds keeps both eyes inside the box [min, max] by bounding the
// head center accordingly. An axis too short for the eyes is pinned to its
// middle.
func (t *Tracker) SetEyeBounds(min, max math3d.Vec3) {
	l := t.head.LeftEye().Sub(t.head.Center)
	r := t.head.RightEye().Sub(t.head.Center)
	lo := min.Sub(l.Min(r))
	hi := max.Sub(l.Max(r))

	a, b := lo.Array(), hi.Array()
	for i := range a {
		if a[i] > b[i] {
			mid := (a[i] + b[i]) / 2
			a[i], b[i] = mid, mid
		}
	}
	t.SetBounds(math3d.FromArray(a), math3d.FromArray(b))
}

// SetTarget sets where the head is heading.
func (t *Tracker) SetTarget(p math3d.Vec3) {
	t.target = t.clamp(p)
}

// Move offsets the target by delta.
func (t *Tracker) Move(delta math3d.Vec3) {
	t.SetTarget(t.target.Add(delta))
}

// Target returns the current target.
func (t *Tracker) Target() math3d.Vec3 { return t.target }

// Jump moves the head and target to p with no animation.
func (t *Tracker) Jump(p math3d.Vec3) {
	p = t.clamp(p)
	t.target = p
	t.head.Center = p
	t.axes = [3]axis{{pos: p.X}, {pos: p.Y}, {pos: p.Z}}
}

// Update advances the springs one frame and returns the new head.
func (t *Tracker) Update() Head {
	goal := t.target.Array()
	for i := range t.axes {
		a := &t.axes[i]
		a.pos, a.vel = t.spring.Update(a.pos, a.vel, goal[i])
	}
	t.head.Center = math3d.V3(t.axes[0].pos, t.axes[1].pos, t.axes[2].pos)
	return t.head
}

// Head returns the current head pose.
func (t *Tracker) Head() Head { return t.head }

// Settled reports whether the head is within tol of its target.
func (t *Tracker) Settled(tol float64) bool {
	return t.head.Center.Distance(t.target) <= tol
}

func (t *Tracker) clamp(p math3d.Vec3) math3d.Vec3 {
	if !t.bounded {
		return p
	}
	return p.Max(t.min).Min(t.max)
}
