package wheel

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultFrameInterval approximates one animation frame at 60 Hz
const DefaultFrameInterval = 16 * time.Millisecond

var (
	// ErrNoOptions is returned when spinning a wheel with no labels
	ErrNoOptions = errors.New("wheel has no options")
	// ErrNotStopped is returned by Simulate when a spin fails to stop within its tick bound
	ErrNotStopped = errors.New("wheel did not stop")
)

// RandomSource supplies uniformly distributed values in [0, 1)
type RandomSource interface {
	Float64() float64
}

// State is a read-only view of the spin state
type State struct {
	CurrentAngle    float64 `json:"current_angle"`
	AngularVelocity float64 `json:"angular_velocity"`
	Spinning        bool    `json:"is_spinning"`
	SelectedIndex   *int    `json:"selected_index,omitempty"`
	Selected        string  `json:"selected,omitempty"`
}

// Result describes a finished spin
type Result struct {
	Index           int     `json:"index"`
	Label           string  `json:"selection"`
	FinalAngle      float64 `json:"final_angle"`
	InitialVelocity float64 `json:"initial_velocity"`
	Ticks           int     `json:"ticks"`
}

// Option configures a Wheel
type Option func(*Wheel)

// WithPhysics overrides the default tuning
func WithPhysics(p Physics) Option {
	return func(w *Wheel) { w.physics = p }
}

// WithRand sets the source used to draw the initial velocity
func WithRand(src RandomSource) Option {
	return func(w *Wheel) { w.rng = src }
}

// WithOnSelect registers the result callback. It runs once per completed spin.
func WithOnSelect(fn func(index int, label string)) Option {
	return func(w *Wheel) { w.onSelect = fn }
}

// WithRenderer registers an observer that is handed a new Frame on every angle change
func WithRenderer(r Renderer) Option {
	return func(w *Wheel) { w.renderer = r }
}

// WithRadius sets the radius used for label placement in rendered frames
func WithRadius(radius float64) Option {
	return func(w *Wheel) { w.radius = radius }
}

// Wheel is a randomized selector that decelerates to rest on one of its labels.
//
// Tick is meant to be driven by a single animation loop. The mutex only protects readers
// such as State and Frame that may run on other goroutines.
type Wheel struct {
	mu sync.Mutex

	physics  Physics
	rng      RandomSource
	onSelect func(int, string)
	renderer Renderer
	radius   float64

	labels     []string
	spinLabels []string
	pending    []string
	hasPending bool

	angle           float64
	velocity        float64
	initialVelocity float64
	spinning        bool
	ticks           int
	selected        int
	selectedLabel   string
}

// New creates a wheel over a copy of labels
func New(labels []string, opts ...Option) (*Wheel, error) {
	w := &Wheel{
		physics:  DefaultPhysics(),
		radius:   DefaultRadius,
		labels:   cloneLabels(labels),
		selected: -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.physics.Validate(); err != nil {
		return nil, err
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return w, nil
}

// Spin starts a spin with a random initial velocity. It is a no-op while a spin is in
// progress and fails with ErrNoOptions when there is nothing to select.
func (w *Wheel) Spin() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.spinning {
		return nil
	}
	if len(w.labels) == 0 {
		return ErrNoOptions
	}

	p := w.physics
	w.spinLabels = cloneLabels(w.labels)
	w.velocity = p.MinVelocity + w.rng.Float64()*(p.MaxVelocity-p.MinVelocity)
	w.initialVelocity = w.velocity
	w.ticks = 0
	w.spinning = true
	return nil
}

// Tick advances the spin by one animation step and reports whether this step was the
// terminal one. It does nothing when the wheel is idle.
func (w *Wheel) Tick() bool {
	_, done := w.step()
	return done
}

// step is Tick that also returns the finished spin, captured under the same lock that
// ends it so a Spin racing the callbacks cannot change it.
func (w *Wheel) step() (Result, bool) {
	w.mu.Lock()
	if !w.spinning {
		w.mu.Unlock()
		return Result{}, false
	}

	if w.velocity > w.physics.StopThreshold {
		w.angle = normalizeAngle(w.angle + w.velocity)
		w.velocity *= w.physics.Friction
		w.ticks++
		frame := w.frameLocked()
		renderer := w.renderer
		w.mu.Unlock()

		if renderer != nil {
			renderer.Render(frame)
		}
		return Result{}, false
	}

	w.velocity = 0
	w.spinning = false
	index := SelectIndex(w.angle, len(w.spinLabels), w.physics.PointerAngle)
	label := w.spinLabels[index]
	w.selected = index
	w.selectedLabel = label
	result := Result{
		Index:           index,
		Label:           label,
		FinalAngle:      w.angle,
		InitialVelocity: w.initialVelocity,
		Ticks:           w.ticks,
	}

	var frame *Frame
	if w.hasPending {
		w.labels = w.pending
		w.pending = nil
		w.hasPending = false
		f := w.frameLocked()
		frame = &f
	}
	onSelect := w.onSelect
	renderer := w.renderer
	w.mu.Unlock()

	if frame != nil && renderer != nil {
		renderer.Render(*frame)
	}
	if onSelect != nil {
		onSelect(index, label)
	}
	return result, true
}

// Run spins the wheel and drives it with one Tick per interval until it stops or ctx is
// cancelled. Cancelling abandons the spin without a selection.
func (w *Wheel) Run(ctx context.Context, interval time.Duration) (Result, error) {
	if err := w.Spin(); err != nil {
		return Result{}, err
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.abort()
			return Result{}, ctx.Err()
		case <-ticker.C:
			if result, done := w.step(); done {
				return result, nil
			}
		}
	}
}

// Simulate spins the wheel and ticks it to completion without waiting between frames
func (w *Wheel) Simulate() (Result, error) {
	if err := w.Spin(); err != nil {
		return Result{}, err
	}

	w.mu.Lock()
	limit := TicksToStop(w.velocity, w.physics) + 2
	w.mu.Unlock()

	for i := 0; i <= limit; i++ {
		if result, done := w.step(); done {
			return result, nil
		}
	}
	w.abort()
	return Result{}, ErrNotStopped
}

// SetLabels replaces the option set. While a spin is in flight the change is held back
// until the spin stops, so the reported selection always matches the labels it spun with.
func (w *Wheel) SetLabels(labels []string) {
	w.mu.Lock()
	if w.spinning {
		w.pending = cloneLabels(labels)
		w.hasPending = true
		w.mu.Unlock()
		return
	}
	w.labels = cloneLabels(labels)
	frame := w.frameLocked()
	renderer := w.renderer
	w.mu.Unlock()

	if renderer != nil {
		renderer.Render(frame)
	}
}

// Reset moves an idle wheel to angle. It returns false when a spin is in progress.
func (w *Wheel) Reset(angle float64) bool {
	w.mu.Lock()
	if w.spinning {
		w.mu.Unlock()
		return false
	}
	w.angle = normalizeAngle(angle)
	frame := w.frameLocked()
	renderer := w.renderer
	w.mu.Unlock()

	if renderer != nil {
		renderer.Render(frame)
	}
	return true
}

// State returns a snapshot of the spin state. No selection is reported mid-spin.
func (w *Wheel) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := State{
		CurrentAngle:    w.angle,
		AngularVelocity: w.velocity,
		Spinning:        w.spinning,
	}
	if !w.spinning && w.selected >= 0 {
		index := w.selected
		s.SelectedIndex = &index
		s.Selected = w.selectedLabel
	}
	return s
}

// Labels returns a copy of the labels currently drawn on the wheel
func (w *Wheel) Labels() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.spinning {
		return cloneLabels(w.spinLabels)
	}
	return cloneLabels(w.labels)
}

// Physics returns the wheel's tuning
func (w *Wheel) Physics() Physics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.physics
}

func (w *Wheel) abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = 0
	w.spinning = false
	w.selected = -1
	w.selectedLabel = ""
	if w.hasPending {
		w.labels = w.pending
		w.pending = nil
		w.hasPending = false
	}
}

func cloneLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}
