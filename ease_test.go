package ember

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestEaseAdapterForms(t *testing.T) {
	double := func(u float64) float64 { return u * 2 }

	tests := []struct {
		name string
		in   any
		at   float64
		want float64
	}{
		{"EaseFunc", EaseFunc(double), 0.25, 0.5},
		{"func(float64)", double, 0.25, 0.5},
		{"ease.TweenFunc", ease.Linear, 0.3, 0.3},
		{"func(t,b,c,d)", func(t, b, c, d float32) float32 { return b + c*(t/d) }, 0.4, 0.4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := EaseAdapter(tc.in)
			if fn == nil {
				t.Fatal("EaseAdapter returned nil")
			}
			assertNearTol(t, "fn(at)", fn(tc.at), tc.want, 1e-6)
		})
	}
}

func TestEaseAdapterRejectsOtherTypes(t *testing.T) {
	if EaseAdapter(nil) != nil {
		t.Error("EaseAdapter(nil) != nil")
	}
	if EaseAdapter("outQuad") != nil {
		t.Error("EaseAdapter(string) != nil")
	}
	if EaseAdapter(42) != nil {
		t.Error("EaseAdapter(int) != nil")
	}
}

func TestEaseByName(t *testing.T) {
	for _, name := range []string{"linear", "Linear", "outQuad", "InOutSine", " outBounce "} {
		fn, ok := EaseByName(name)
		if !ok || fn == nil {
			t.Errorf("EaseByName(%q) not found", name)
			continue
		}
		// Endpoints hold for every named ease.
		assertNearTol(t, name+"(0)", fn(0), 0, 1e-6)
		assertNearTol(t, name+"(1)", fn(1), 1, 1e-6)
	}
}

func TestEaseByNameUnknown(t *testing.T) {
	if _, ok := EaseByName("wobble"); ok {
		t.Error("EaseByName(wobble) ok = true, want false")
	}
	if _, ok := EaseByName(""); ok {
		t.Error("EaseByName(\"\") ok = true, want false")
	}
}

func TestEaseOutQuadShape(t *testing.T) {
	fn, ok := EaseByName("outQuad")
	if !ok {
		t.Fatal("outQuad missing")
	}
	// outQuad(t) = t*(2-t); decelerating, above linear mid-curve.
	assertNearTol(t, "outQuad(0.5)", fn(0.5), 0.75, 1e-6)
}

func TestSegmentEase(t *testing.T) {
	// Single segment with centered control point degenerates to linear.
	fn := SegmentEase([]EaseSegment{{Start: 0, CP: 0.5, End: 1}})
	assertNear(t, "linear(0)", fn(0), 0)
	assertNear(t, "linear(0.5)", fn(0.5), 0.5)
	assertNearTol(t, "linear(0.99)", fn(0.99), 0.99, 1e-9)

	// Control point pulled up bends the curve above linear.
	bent := SegmentEase([]EaseSegment{{Start: 0, CP: 0.9, End: 1}})
	if got := bent(0.5); got <= 0.5 {
		t.Errorf("bent(0.5) = %v, want > 0.5", got)
	}
	assertNear(t, "bent(0)", bent(0), 0)
}

func TestSegmentEaseMultiSegment(t *testing.T) {
	fn := SegmentEase([]EaseSegment{
		{Start: 0, CP: 0.25, End: 0.5},
		{Start: 0.5, CP: 0.75, End: 1},
	})
	assertNear(t, "boundary", fn(0.5), 0.5)
	assertNear(t, "start", fn(0), 0)
	// Input beyond the last segment clamps to the final span.
	if got := fn(1); got < 0.99 || got > 1.01 {
		t.Errorf("fn(1) = %v, want ~1", got)
	}
}

func TestSegmentEaseEmpty(t *testing.T) {
	if SegmentEase(nil) != nil {
		t.Error("SegmentEase(nil) != nil")
	}
}
