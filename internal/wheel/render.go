package wheel

import (
	"math"
)

const (
	// DefaultRadius matches the reference 600x600 canvas with a 10 pixel margin
	DefaultRadius = 290.0
	// LabelRadiusFactor places labels at this fraction of the radius from the centre
	LabelRadiusFactor = 0.6
)

// Palette is cycled through by slice index
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEEAD", "#D4A5A5", "#9ED2C6", "#FFB6B9",
}

// Renderer observes the wheel. Render is called outside the wheel's lock.
type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Frame)

// Render calls f(frame)
func (f RendererFunc) Render(frame Frame) { f(frame) }

// Slice is one labelled sector in the wheel's own frame, before rotation
type Slice struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Color       string  `json:"color"`
	StartAngle  float64 `json:"start_angle"`
	EndAngle    float64 `json:"end_angle"`
	LabelAngle  float64 `json:"label_angle"`
	LabelRadius float64 `json:"label_radius"`
	LabelX      float64 `json:"label_x"`
	LabelY      float64 `json:"label_y"`
}

// Frame is everything needed to draw the wheel at one instant. Angles are degrees in a
// y-down frame, growing clockwise from the positive x axis.
//
// Slices are laid out from zero in the wheel frame. Drawing rotates them by Rotation,
// which trails the current angle by half a slice so that the slice resolved by
// SelectIndex is the one geometrically under the pointer.
type Frame struct {
	Angle        float64 `json:"angle"`
	Rotation     float64 `json:"rotation"`
	PointerAngle float64 `json:"pointer_angle"`
	SliceWidth   float64 `json:"slice_width"`
	Radius       float64 `json:"radius"`
	Slices       []Slice `json:"slices"`
}

// Layout computes unrotated slice geometry for labels on a wheel of the given radius
func Layout(labels []string, radius float64) []Slice {
	n := len(labels)
	if n == 0 {
		return nil
	}
	width := 360 / float64(n)
	labelRadius := radius * LabelRadiusFactor

	slices := make([]Slice, n)
	for i, label := range labels {
		start := float64(i) * width
		mid := start + width/2
		rad := mid * math.Pi / 180
		slices[i] = Slice{
			Index:       i,
			Label:       label,
			Color:       Palette[i%len(Palette)],
			StartAngle:  start,
			EndAngle:    start + width,
			LabelAngle:  mid,
			LabelRadius: labelRadius,
			LabelX:      labelRadius * math.Cos(rad),
			LabelY:      labelRadius * math.Sin(rad),
		}
	}
	return slices
}

// NewFrame builds the frame for labels resting at angle
func NewFrame(labels []string, angle, pointerAngle, radius float64) Frame {
	f := Frame{
		Angle:        normalizeAngle(angle),
		PointerAngle: normalizeAngle(pointerAngle),
		Radius:       radius,
		Slices:       Layout(labels, radius),
	}
	if n := len(labels); n > 0 {
		f.SliceWidth = 360 / float64(n)
	}
	f.Rotation = normalizeAngle(f.Angle - f.SliceWidth/2)
	return f
}

// SliceAt returns the index of the slice drawn at screenAngle, or -1 for an empty wheel
func (f Frame) SliceAt(screenAngle float64) int {
	n := len(f.Slices)
	if n == 0 {
		return -1
	}
	local := normalizeAngle(screenAngle - f.Rotation)
	index := int(math.Floor(local / f.SliceWidth))
	if index > n-1 {
		index = n - 1
	}
	return index
}

// Frame returns the wheel's current frame
func (w *Wheel) Frame() Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frameLocked()
}

func (w *Wheel) frameLocked() Frame {
	labels := w.labels
	if w.spinning {
		labels = w.spinLabels
	}
	return NewFrame(labels, w.angle, w.physics.PointerAngle, w.radius)
}
