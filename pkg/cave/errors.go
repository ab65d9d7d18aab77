package cave

import "errors"

var (
	// ErrDegenerateSurface is returned when a surface's edges do not span
	// a rectangle: zero-length, parallel or skewed u and v.
	ErrDegenerateSurface = errors.New("degenerate surface")

	// ErrEyeOnPlane is returned when the eye lies on the surface plane, where
	// the perpendicular distance is zero and the frustum is undefined.
	ErrEyeOnPlane = errors.New("eye on surface plane")

	// ErrEyeBehindSurface is returned when the eye is on the back side of the
	// surface; the frustum would be mirrored.
	ErrEyeBehindSurface = errors.New("eye behind surface")

	// ErrInvalidClipRange is returned for a non-positive or non-finite near
	// plane, or a far plane not beyond the near plane.
	ErrInvalidClipRange = errors.New("invalid clip range")

	// ErrDuplicateSurface is returned when two surfaces of a room share a name.
	ErrDuplicateSurface = errors.New("duplicate surface name")

	// ErrNormalOrientation is returned when a surface normal does not face
	// the interior of the room.
	ErrNormalOrientation = errors.New("surface normal does not face room interior")
)
