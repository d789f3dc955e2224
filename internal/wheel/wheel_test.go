package wheel

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestSelectIndex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		angle   float64
		n       int
		pointer float64
		want    int
	}{
		{"rounds to slice centred at zero", 245, 4, 245, 0},
		{"just before half slice", 245 - 44, 4, 245, 0},
		{"just past half slice", 245 - 46, 4, 245, 1},
		{"wraps back to last slice", 245 + 46, 4, 245, 3},
		{"single slice", 123.4, 1, 270, 0},
		{"negative angle", -90, 4, 270, 0},
		{"pointer at top", 0, 4, 270, 3},
		{"empty", 0, 0, 270, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SelectIndex(tt.angle, tt.n, tt.pointer)
			if got != tt.want {
				t.Errorf("SelectIndex(%v, %d, %v) = %d, want %d", tt.angle, tt.n, tt.pointer, got, tt.want)
			}
		})
	}
}

func TestSelectIndex_InRange(t *testing.T) {
	t.Parallel()
	for n := 2; n <= 16; n++ {
		for a := -720.0; a < 720; a += 0.731 {
			got := SelectIndex(a, n, DefaultPointerAngle)
			if got < 0 || got > n-1 {
				t.Fatalf("SelectIndex(%v, %d) = %d, out of range", a, n, got)
			}
		}
	}
}

func TestTicksToStop(t *testing.T) {
	t.Parallel()
	p := DefaultPhysics()
	if got := TicksToStop(p.StopThreshold, p); got != 0 {
		t.Errorf("TicksToStop(threshold) = %d, want 0", got)
	}
	for _, v0 := range []float64{20, 27.5, 35} {
		want := 0
		for v := v0; v > p.StopThreshold; v *= p.Friction {
			want++
		}
		got := TicksToStop(v0, p)
		if math.Abs(float64(got-want)) > 1 {
			t.Errorf("TicksToStop(%v) = %d, want about %d", v0, got, want)
		}
	}
}

func TestPhysics_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Physics)
		wantErr bool
	}{
		{"defaults", func(*Physics) {}, false},
		{"zero threshold", func(p *Physics) { p.StopThreshold = 0 }, true},
		{"friction one", func(p *Physics) { p.Friction = 1 }, true},
		{"friction zero", func(p *Physics) { p.Friction = 0 }, true},
		{"max below min", func(p *Physics) { p.MaxVelocity = 10 }, true},
		{"min below threshold", func(p *Physics) { p.MinVelocity = 0.05; p.MaxVelocity = 1 }, true},
		{"nan pointer", func(p *Physics) { p.PointerAngle = math.NaN() }, true},
		{"fixed velocity", func(p *Physics) { p.MaxVelocity = p.MinVelocity }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultPhysics()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPhysics) {
				t.Errorf("Validate() error = %v, want ErrInvalidPhysics", err)
			}
		})
	}
}

func TestNew_InvalidPhysics(t *testing.T) {
	t.Parallel()
	p := DefaultPhysics()
	p.Friction = 1.5
	if _, err := New([]string{"A"}, WithPhysics(p)); !errors.Is(err, ErrInvalidPhysics) {
		t.Errorf("New() error = %v, want ErrInvalidPhysics", err)
	}
}

func TestWheel_SpinNoOptions(t *testing.T) {
	t.Parallel()
	w, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Spin(); !errors.Is(err, ErrNoOptions) {
		t.Errorf("Spin() error = %v, want ErrNoOptions", err)
	}
	if _, err := w.Simulate(); !errors.Is(err, ErrNoOptions) {
		t.Errorf("Simulate() error = %v, want ErrNoOptions", err)
	}
	if w.State().Spinning {
		t.Error("State().Spinning = true after rejected spin")
	}
}

func TestWheel_SingleOption(t *testing.T) {
	t.Parallel()
	for _, r := range []float64{0, 0.25, 0.5, 0.99} {
		w, err := New([]string{"Only"}, WithRand(fixedSource(r)))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		res, err := w.Simulate()
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
		if res.Index != 0 || res.Label != "Only" {
			t.Errorf("Simulate() = %+v, want index 0 label Only", res)
		}
	}
}

func TestWheel_SimulateEndToEnd(t *testing.T) {
	t.Parallel()
	options := []string{"A", "B", "C", "D"}
	for i := 0; i < 50; i++ {
		var calls int
		var got string
		w, err := New(options, WithOnSelect(func(_ int, label string) {
			calls++
			got = label
		}))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		res, err := w.Simulate()
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}

		st := w.State()
		if st.Spinning {
			t.Fatal("State().Spinning = true after Simulate")
		}
		if st.AngularVelocity != 0 {
			t.Errorf("State().AngularVelocity = %v, want 0", st.AngularVelocity)
		}
		if st.SelectedIndex == nil || *st.SelectedIndex != res.Index {
			t.Fatalf("State().SelectedIndex = %v, want %d", st.SelectedIndex, res.Index)
		}
		if !slices.Contains(options, res.Label) {
			t.Errorf("Simulate() label = %q, not one of %v", res.Label, options)
		}
		if calls != 1 || got != res.Label {
			t.Errorf("onSelect called %d times with %q, want once with %q", calls, got, res.Label)
		}
		if res.InitialVelocity < DefaultMinVelocity || res.InitialVelocity > DefaultMaxVelocity {
			t.Errorf("InitialVelocity = %v, outside [%v, %v]", res.InitialVelocity, DefaultMinVelocity, DefaultMaxVelocity)
		}
		if want := TicksToStop(res.InitialVelocity, DefaultPhysics()); math.Abs(float64(res.Ticks-want)) > 1 {
			t.Errorf("Ticks = %d, want about %d", res.Ticks, want)
		}
	}
}

func TestWheel_SpinWhileSpinningIsNoop(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A", "B"}, WithRand(fixedSource(0)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Spin(); err != nil {
		t.Fatalf("Spin() error = %v", err)
	}
	w.Tick()
	before := w.State()

	w.rng = fixedSource(0.9)
	if err := w.Spin(); err != nil {
		t.Fatalf("second Spin() error = %v", err)
	}
	after := w.State()
	if after.AngularVelocity != before.AngularVelocity || after.CurrentAngle != before.CurrentAngle {
		t.Errorf("second Spin() changed state from %+v to %+v", before, after)
	}
}

func TestWheel_NoSelectionWhileSpinning(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := w.Simulate(); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if w.State().SelectedIndex == nil {
		t.Fatal("State().SelectedIndex = nil after first spin")
	}

	if err := w.Spin(); err != nil {
		t.Fatalf("Spin() error = %v", err)
	}
	w.Tick()
	st := w.State()
	if !st.Spinning {
		t.Fatal("State().Spinning = false mid-spin")
	}
	if st.SelectedIndex != nil || st.Selected != "" {
		t.Errorf("State() reports selection %v %q mid-spin", st.SelectedIndex, st.Selected)
	}
}

func TestWheel_SetLabelsDeferredDuringSpin(t *testing.T) {
	t.Parallel()
	original := []string{"A", "B", "C", "D"}
	var selected string
	w, err := New(original, WithOnSelect(func(_ int, label string) { selected = label }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Spin(); err != nil {
		t.Fatalf("Spin() error = %v", err)
	}
	w.Tick()
	w.SetLabels([]string{"X"})

	if got := w.Labels(); !slices.Equal(got, original) {
		t.Errorf("Labels() mid-spin = %v, want %v", got, original)
	}
	for !w.Tick() {
	}
	if !slices.Contains(original, selected) {
		t.Errorf("selected %q, want one of %v", selected, original)
	}
	if got := w.Labels(); !slices.Equal(got, []string{"X"}) {
		t.Errorf("Labels() after spin = %v, want [X]", got)
	}
}

func TestWheel_TickIdle(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.Tick() {
		t.Error("Tick() on idle wheel = true, want false")
	}
}

func TestWheel_RendererCalledPerAngleChange(t *testing.T) {
	t.Parallel()
	var frames []Frame
	w, err := New([]string{"A", "B", "C"}, WithRenderer(RendererFunc(func(f Frame) {
		frames = append(frames, f)
	})))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !w.Reset(90) {
		t.Fatal("Reset() on idle wheel = false")
	}
	if len(frames) != 1 || frames[0].Angle != 90 {
		t.Fatalf("after Reset frames = %d, want 1 at angle 90", len(frames))
	}

	res, err := w.Simulate()
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if got := len(frames) - 1; got != res.Ticks {
		t.Errorf("frames rendered during spin = %d, want %d", got, res.Ticks)
	}
	last := frames[len(frames)-1]
	if last.Angle != res.FinalAngle {
		t.Errorf("last frame angle = %v, want %v", last.Angle, res.FinalAngle)
	}
}

func TestWheel_ResetWhileSpinning(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A", "B"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Spin(); err != nil {
		t.Fatalf("Spin() error = %v", err)
	}
	if w.Reset(0) {
		t.Error("Reset() while spinning = true, want false")
	}
}

func TestWheel_RunCompletes(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := w.Run(ctx, time.Microsecond)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Index < 0 || res.Index > 3 {
		t.Errorf("Run() index = %d, out of range", res.Index)
	}
}

func TestWheel_RunCancelled(t *testing.T) {
	t.Parallel()
	w, err := New([]string{"A", "B"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.Run(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	st := w.State()
	if st.Spinning || st.SelectedIndex != nil {
		t.Errorf("State() after cancel = %+v, want idle with no selection", st)
	}
}

func TestWheel_ResultSurvivesRespinInCallback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		drive func(w *Wheel) (Result, error)
	}{
		{"simulate", func(w *Wheel) (Result, error) { return w.Simulate() }},
		{"run", func(w *Wheel) (Result, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return w.Run(ctx, time.Microsecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var w *Wheel
			respun := false
			w, err := New([]string{"A", "B", "C"},
				WithRand(fixedSource(0.5)),
				WithOnSelect(func(int, string) {
					respun = w.Spin() == nil
				}),
			)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			res, err := tt.drive(w)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !respun || !w.State().Spinning {
				t.Fatal("callback did not start a new spin")
			}
			want := TicksToStop(res.InitialVelocity, w.Physics())
			if res.Ticks == 0 || math.Abs(float64(res.Ticks-want)) > 1 {
				t.Errorf("Result.Ticks = %d, want about %d from the finished spin", res.Ticks, want)
			}
			if res.Label != []string{"A", "B", "C"}[res.Index] {
				t.Errorf("Result = %+v, label does not match index", res)
			}
		})
	}
}
