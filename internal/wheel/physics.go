package wheel

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMinVelocity is the lower bound of the initial spin velocity, in degrees per tick
	DefaultMinVelocity = 20.0
	// DefaultMaxVelocity is the upper bound of the initial spin velocity, in degrees per tick
	DefaultMaxVelocity = 35.0
	// DefaultFriction is the per-tick multiplicative velocity decay
	DefaultFriction = 0.97
	// DefaultStopThreshold is the velocity at or below which the wheel stops
	DefaultStopThreshold = 0.1
	// DefaultPointerAngle is where the pointer graphic sits: the top of the wheel in a
	// y-down frame where angles grow clockwise from the positive x axis.
	DefaultPointerAngle = 270.0
)

// ErrInvalidPhysics is returned when a Physics value cannot produce a bounded spin
var ErrInvalidPhysics = errors.New("invalid wheel physics")

// Physics holds the tuning constants of a spin
type Physics struct {
	MinVelocity   float64 `json:"min_velocity"`
	MaxVelocity   float64 `json:"max_velocity"`
	Friction      float64 `json:"friction"`
	StopThreshold float64 `json:"stop_threshold"`
	PointerAngle  float64 `json:"pointer_angle"`
}

// DefaultPhysics returns the reference tuning
func DefaultPhysics() Physics {
	return Physics{
		MinVelocity:   DefaultMinVelocity,
		MaxVelocity:   DefaultMaxVelocity,
		Friction:      DefaultFriction,
		StopThreshold: DefaultStopThreshold,
		PointerAngle:  DefaultPointerAngle,
	}
}

// Validate checks that every spin drawn from p decays to a stop in a bounded number of ticks
func (p Physics) Validate() error {
	switch {
	case p.StopThreshold <= 0:
		return fmt.Errorf("%w: stop threshold must be positive, got %v", ErrInvalidPhysics, p.StopThreshold)
	case p.MinVelocity <= p.StopThreshold:
		return fmt.Errorf("%w: min velocity %v must exceed stop threshold %v", ErrInvalidPhysics, p.MinVelocity, p.StopThreshold)
	case p.MaxVelocity < p.MinVelocity:
		return fmt.Errorf("%w: max velocity %v is below min velocity %v", ErrInvalidPhysics, p.MaxVelocity, p.MinVelocity)
	case p.Friction <= 0 || p.Friction >= 1:
		return fmt.Errorf("%w: friction must be in (0, 1), got %v", ErrInvalidPhysics, p.Friction)
	case math.IsNaN(p.PointerAngle) || math.IsInf(p.PointerAngle, 0):
		return fmt.Errorf("%w: pointer angle must be finite", ErrInvalidPhysics)
	}
	return nil
}

// TicksToStop returns how many advancing ticks a spin starting at v0 takes before its
// velocity falls to the stop threshold. The terminal tick is not counted.
func TicksToStop(v0 float64, p Physics) int {
	if v0 <= p.StopThreshold {
		return 0
	}
	return int(math.Ceil(math.Log(p.StopThreshold/v0) / math.Log(p.Friction)))
}

// normalizeAngle maps any finite angle into [0, 360)
func normalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// SelectIndex resolves which of n slices sits under the pointer when the wheel rests at
// angle. The half-slice shift rounds to the nearest slice centre; see Frame.Rotation for
// the drawing convention that keeps this consistent with what is rendered.
func SelectIndex(angle float64, n int, pointerAngle float64) int {
	if n <= 0 {
		return -1
	}
	sliceWidth := 360 / float64(n)
	current := normalizeAngle(angle)

	angleToPointer := math.Mod(normalizeAngle(pointerAngle)-current+360, 360)
	angleToPointer = math.Mod(angleToPointer+sliceWidth/2, 360)

	index := int(math.Floor(angleToPointer / sliceWidth))
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}
	return index
}
