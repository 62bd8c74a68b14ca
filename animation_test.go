package ember

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenAlpha(t *testing.T) {
	n := NewContainer("n")
	g := TweenAlpha(n, 0.5, 1.0, ease.Linear)

	g.Update(0.5)
	assertNearTol(t, "halfway", n.Alpha, 0.75, 1e-6)
	if g.Done {
		t.Fatal("done before duration elapsed")
	}

	g.Update(0.5)
	assertNearTol(t, "final", n.Alpha, 0.5, 1e-6)
	if !g.Done {
		t.Error("not done after full duration")
	}

	// Further updates are no-ops.
	g.Update(1.0)
	assertNearTol(t, "after done", n.Alpha, 0.5, 1e-6)
}

func TestTweenPosition(t *testing.T) {
	n := NewContainer("n")
	n.X, n.Y = 10, 20
	g := TweenPosition(n, 110, -80, 2.0, ease.Linear)

	g.Update(1.0)
	assertNearTol(t, "mid X", n.X, 60, 1e-4)
	assertNearTol(t, "mid Y", n.Y, -30, 1e-4)

	g.Update(1.0)
	assertNearTol(t, "end X", n.X, 110, 1e-4)
	assertNearTol(t, "end Y", n.Y, -80, 1e-4)
}

func TestTweenScale(t *testing.T) {
	n := NewContainer("n")
	g := TweenScale(n, 3, 0.5, 1.0, ease.Linear)
	g.Update(1.0)
	assertNearTol(t, "ScaleX", n.ScaleX, 3, 1e-6)
	assertNearTol(t, "ScaleY", n.ScaleY, 0.5, 1e-6)
}

func TestTweenColor(t *testing.T) {
	n := NewContainer("n")
	g := TweenColor(n, Color{R: 0, G: 0.5, B: 1, A: 0}, 1.0, ease.Linear)
	g.Update(0.5)
	assertNearTol(t, "R", n.Color.R, 0.5, 1e-6)
	assertNearTol(t, "G", n.Color.G, 0.75, 1e-6)
	assertNearTol(t, "B", n.Color.B, 1, 1e-6)
	assertNearTol(t, "A", n.Color.A, 0.5, 1e-6)
}

func TestTweenRotation(t *testing.T) {
	n := NewContainer("n")
	g := TweenRotation(n, 1.5, 1.0, ease.Linear)
	g.Update(1.0)
	assertNearTol(t, "rotation", n.Rotation, 1.5, 1e-6)
}

func TestTweenMarksNodeDirty(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, identityTransform, 1.0, false)
	if n.transformDirty {
		t.Fatal("node dirty after transform update")
	}
	TweenAlpha(n, 0, 1.0, ease.Linear).Update(0.1)
	if !n.transformDirty {
		t.Error("tween update did not mark node dirty")
	}
}

func TestTweenOnComplete(t *testing.T) {
	n := NewContainer("n")
	calls := 0
	g := TweenAlpha(n, 0, 1.0, ease.Linear).OnComplete(func() { calls++ })

	g.Update(0.5)
	if calls != 0 {
		t.Fatal("completion fired early")
	}
	g.Update(0.5)
	if calls != 1 {
		t.Fatalf("completion calls = %d, want 1", calls)
	}
	g.Update(0.5)
	if calls != 1 {
		t.Error("completion fired again after done")
	}
}

func TestTweenPlayRegistersOnTicker(t *testing.T) {
	n := NewContainer("n")
	before := SharedTicker.Len()
	g := TweenAlpha(n, 0, 0.1, ease.Linear).Play()
	if SharedTicker.Len() != before+1 {
		t.Fatal("Play did not register on shared ticker")
	}
	// Play is idempotent while running.
	g.Play()
	if SharedTicker.Len() != before+1 {
		t.Error("double Play registered twice")
	}

	SharedTicker.Tick(1.0)
	if !g.Done {
		t.Error("tween not done after ticker drove it past duration")
	}
	if SharedTicker.Len() != before {
		t.Error("finished tween still registered on ticker")
	}
}

func TestTweenStopAndResume(t *testing.T) {
	n := NewContainer("n")
	g := TweenAlpha(n, 0, 1.0, ease.Linear).Play()
	before := SharedTicker.Len()

	g.Stop()
	if SharedTicker.Len() != before-1 {
		t.Fatal("Stop did not unregister")
	}
	if g.Done {
		t.Error("Stop marked the group done")
	}

	// Manual updates still work after Stop.
	g.Update(1.0)
	if !g.Done {
		t.Error("manual update after Stop did not finish the tween")
	}
	// Play after done is a no-op.
	g.Play()
	if SharedTicker.Len() != before-1 {
		t.Error("Play on a done group registered it")
	}
}

func TestTweenDisposedTargetAborts(t *testing.T) {
	n := NewContainer("n")
	n.Alpha = 1
	g := TweenAlpha(n, 0, 1.0, ease.Linear).Play()
	before := SharedTicker.Len()

	n.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("group not done after target disposed")
	}
	assertNear(t, "alpha untouched", n.Alpha, 1)
	if SharedTicker.Len() != before-1 {
		t.Error("aborted group still registered on ticker")
	}
}
