package ember

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRectangleShapeBounds(t *testing.T) {
	s := Rectangle{X: -10, Y: 5, Width: 20, Height: 40}
	for i := 0; i < 200; i++ {
		pos, rot := s.RandPos()
		if pos.X < -10 || pos.X > 10 {
			t.Fatalf("X = %v out of [-10, 10]", pos.X)
		}
		if pos.Y < 5 || pos.Y > 45 {
			t.Fatalf("Y = %v out of [5, 45]", pos.Y)
		}
		if rot != 0 {
			t.Fatalf("rot = %v, want 0", rot)
		}
	}
}

func TestTorusShapeRing(t *testing.T) {
	// Equal inner and outer radius places every spawn exactly on the circle.
	s := Torus{X: 3, Y: -2, Radius: 50, InnerRadius: 50}
	for i := 0; i < 200; i++ {
		pos, _ := s.RandPos()
		d := math.Hypot(pos.X-3, pos.Y+2)
		assertNearTol(t, "ring distance", d, 50, 1e-9)
	}
}

func TestTorusShapeAnnulus(t *testing.T) {
	s := Torus{Radius: 100, InnerRadius: 40}
	for i := 0; i < 200; i++ {
		pos, rot := s.RandPos()
		d := math.Hypot(pos.X, pos.Y)
		if d < 40-1e-9 || d > 100+1e-9 {
			t.Fatalf("distance = %v out of [40, 100]", d)
		}
		if rot != 0 {
			t.Fatalf("rot = %v, want 0 without affectRotation", rot)
		}
	}
}

func TestTorusShapeAffectRotation(t *testing.T) {
	s := Torus{Radius: 10, InnerRadius: 10, AffectRotation: true}
	for i := 0; i < 50; i++ {
		pos, rot := s.RandPos()
		// Returned rotation must be the spawn angle.
		assertNearTol(t, "cos", math.Cos(rot)*10, pos.X, 1e-9)
		assertNearTol(t, "sin", math.Sin(rot)*10, pos.Y, 1e-9)
	}
}

func TestPolygonalChainOnSegments(t *testing.T) {
	// Single horizontal segment: every spawn lies on y=0, x in [0, 100].
	c := NewPolygonalChain([][]Vec2{{{X: 0, Y: 0}, {X: 100, Y: 0}}})
	for i := 0; i < 100; i++ {
		pos, _ := c.RandPos()
		if pos.Y != 0 {
			t.Fatalf("Y = %v, want 0", pos.Y)
		}
		if pos.X < 0 || pos.X > 100 {
			t.Fatalf("X = %v out of [0, 100]", pos.X)
		}
	}
}

func TestPolygonalChainMultiple(t *testing.T) {
	// Two disjoint vertical segments; spawns land on one of them.
	c := NewPolygonalChain([][]Vec2{
		{{X: 0, Y: 0}, {X: 0, Y: 10}},
		{{X: 5, Y: 0}, {X: 5, Y: 10}},
	})
	for i := 0; i < 100; i++ {
		pos, _ := c.RandPos()
		if pos.X != 0 && pos.X != 5 {
			t.Fatalf("X = %v, want 0 or 5", pos.X)
		}
		if pos.Y < 0 || pos.Y > 10 {
			t.Fatalf("Y = %v out of [0, 10]", pos.Y)
		}
	}
}

func TestPolygonalChainDegenerate(t *testing.T) {
	c := NewPolygonalChain(nil)
	pos, rot := c.RandPos()
	if pos != (Vec2{}) || rot != 0 {
		t.Errorf("degenerate chain RandPos() = %v, %v; want origin, 0", pos, rot)
	}
}

func TestNewShapeByName(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"rect", `{"x": 0, "y": 0, "w": 10, "h": 10}`},
		{"torus", `{"radius": 5, "innerRadius": 2}`},
		{"polygonalChain", `[{"x": 0, "y": 0}, {"x": 10, "y": 0}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewShape(tc.name, json.RawMessage(tc.data))
			if err != nil {
				t.Fatal(err)
			}
			if s == nil {
				t.Fatal("shape is nil")
			}
		})
	}
}

func TestNewShapeUnknown(t *testing.T) {
	if _, err := NewShape("blob", json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestNewShapeBadConfig(t *testing.T) {
	if _, err := NewShape("rect", json.RawMessage(`"not an object"`)); err == nil {
		t.Error("expected error for malformed rect config")
	}
}

func TestDecodeChainsFlatAndNested(t *testing.T) {
	flat, err := decodeChains(json.RawMessage(`[{"x": 1, "y": 2}, {"x": 3, "y": 4}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 1 || len(flat[0]) != 2 {
		t.Fatalf("flat decode = %v, want one chain of two points", flat)
	}
	if flat[0][1] != (Vec2{X: 3, Y: 4}) {
		t.Errorf("flat[0][1] = %v", flat[0][1])
	}

	nested, err := decodeChains(json.RawMessage(`[[{"x": 0, "y": 0}], [{"x": 5, "y": 5}, {"x": 6, "y": 6}]]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(nested) != 2 || len(nested[1]) != 2 {
		t.Fatalf("nested decode = %v, want two chains", nested)
	}
}

func TestRegisterShapeDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterShape("rect", func(json.RawMessage) (Shape, error) { return nil, nil })
}
