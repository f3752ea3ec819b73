package physics

// Speed is the per-axis velocity magnitude in sub-pixels per frame.
const Speed int32 = 0x600

// Start position anchors. The sub-pixel offsets under search are OR'd into the
// low byte; the vertical anchor moves up a pixel for offsets at or above
// YOffsetCutoff.
const (
	AnchorX       Fixed24 = 0x14AC00
	AnchorYLow    Fixed24 = 0x0A9D00
	AnchorYHigh   Fixed24 = 0x0A9C00
	YOffsetCutoff uint8   = 0x80
)

// Bounds holds the arena thresholds. Left and Top fire on x < Left and
// y < Top; Right and Bottom fire on x >= Right and y >= Bottom and clamp to
// their reset values instead of the threshold.
type Bounds struct {
	Left        Fixed24
	Top         Fixed24
	Right       Fixed24
	RightReset  Fixed24
	Bottom      Fixed24
	BottomReset Fixed24
}

// DefaultBounds returns the arena the search replays.
func DefaultBounds() Bounds {
	return Bounds{
		Left:        0x144C80,
		Top:         0x0A6140,
		Right:       0x14CAC0,
		RightReset:  0x14C900,
		Bottom:      0x0AAF60,
		BottomReset: 0x0AAE00,
	}
}

// Actor is the bouncing object's position and velocity.
type Actor struct {
	X, Y   Fixed24
	VX, VY int32
}

// CollisionSide indicates which boundary fired on a frame.
type CollisionSide int

const (
	CollisionNone CollisionSide = iota
	CollisionLeft
	CollisionTop
	CollisionRight
	CollisionBottom
)

func (s CollisionSide) String() string {
	switch s {
	case CollisionNone:
		return "none"
	case CollisionLeft:
		return "left"
	case CollisionTop:
		return "top"
	case CollisionRight:
		return "right"
	case CollisionBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// StartPosition returns the actor's starting coordinates for a pair of
// sub-pixel offsets.
func StartPosition(xOffset, yOffset uint8) (Fixed24, Fixed24) {
	x := AnchorX | Fixed24(xOffset)
	y := AnchorYLow
	if yOffset >= YOffsetCutoff {
		y = AnchorYHigh
	}
	return x, y | Fixed24(yOffset)
}

// checkBounds applies at most one boundary per frame, in priority order left,
// top, right, bottom. It reports the side that fired and whether it was the
// run's first bounce.
func (a *Actor) checkBounds(b *Bounds) (side CollisionSide, initial, endCheck bool) {
	switch {
	case a.X < b.Left:
		a.X = a.X.WithPixel(b.Left)
		a.VX = Speed
		if a.VY == 0 {
			a.VY = -Speed
			return CollisionLeft, true, true
		}
		return CollisionLeft, false, false
	case a.Y < b.Top:
		a.Y = a.Y.WithPixel(b.Top)
		a.VY = Speed
		return CollisionTop, false, false
	case a.X >= b.Right:
		a.X = a.X.WithPixel(b.RightReset)
		a.VX = -Speed
		return CollisionRight, false, false
	case a.Y >= b.Bottom:
		a.Y = a.Y.WithPixel(b.BottomReset)
		a.VY = -Speed
		return CollisionBottom, false, true
	}
	return CollisionNone, false, false
}
