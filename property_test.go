package ember

import "testing"

func TestFloatListTwoNodeLerp(t *testing.T) {
	list, err := NewFloatList([]PropertyNode[float64]{
		{Value: 0, Time: 0},
		{Value: 10, Time: 1},
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "u=0", list.Interpolate(0), 0)
	assertNear(t, "u=0.5", list.Interpolate(0.5), 5)
	assertNear(t, "u=1", list.Interpolate(1), 10)
}

func TestFloatListSingleNode(t *testing.T) {
	list, err := NewFloatList([]PropertyNode[float64]{{Value: 7, Time: 0}}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "u=0", list.Interpolate(0), 7)
	assertNear(t, "u=0.9", list.Interpolate(0.9), 7)
	assertNear(t, "First", list.First(), 7)
}

func TestFloatListMultiNode(t *testing.T) {
	list, err := NewFloatList([]PropertyNode[float64]{
		{Value: 0, Time: 0},
		{Value: 10, Time: 0.5},
		{Value: 0, Time: 1},
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		u    float64
		want float64
	}{
		{0, 0},
		{0.25, 5},
		{0.5, 10},
		{0.75, 5},
		{1, 0},
		{-0.5, 0}, // clamps below
		{1.5, 0},  // clamps above
	}
	for _, tc := range tests {
		assertNear(t, "interpolate", list.Interpolate(tc.u), tc.want)
	}
}

func TestFloatListStepped(t *testing.T) {
	list, err := NewFloatList([]PropertyNode[float64]{
		{Value: 1, Time: 0},
		{Value: 2, Time: 0.5},
		{Value: 3, Time: 1},
	}, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !list.IsStepped() {
		t.Fatal("IsStepped() = false, want true")
	}
	tests := []struct {
		u    float64
		want float64
	}{
		{0, 1},
		{0.49, 1},
		{0.5, 2},
		{0.99, 2},
		{1, 3},
	}
	for _, tc := range tests {
		assertNear(t, "stepped", list.Interpolate(tc.u), tc.want)
	}
}

func TestFloatListEase(t *testing.T) {
	// Quadratic ease: value at u=0.5 reflects eased time 0.25.
	square := func(u float64) float64 { return u * u }
	list, err := NewFloatList([]PropertyNode[float64]{
		{Value: 0, Time: 0},
		{Value: 100, Time: 1},
	}, square, false)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "eased midpoint", list.Interpolate(0.5), 25)
}

func TestColorListInterpolate(t *testing.T) {
	list, err := NewColorList([]PropertyNode[Color]{
		{Value: Color{R: 1, G: 0, B: 0, A: 1}, Time: 0},
		{Value: Color{R: 0, G: 0, B: 1, A: 0}, Time: 1},
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	got := list.Interpolate(0.5)
	assertNear(t, "R", got.R, 0.5)
	assertNear(t, "G", got.G, 0)
	assertNear(t, "B", got.B, 0.5)
	assertNear(t, "A", got.A, 0.5)
}

func TestColorListStepped(t *testing.T) {
	red := Color{R: 1, A: 1}
	blue := Color{B: 1, A: 1}
	list, err := NewColorList([]PropertyNode[Color]{
		{Value: red, Time: 0},
		{Value: blue, Time: 1},
	}, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := list.Interpolate(0.7); got != red {
		t.Errorf("Interpolate(0.7) = %v, want %v", got, red)
	}
	if got := list.Interpolate(1); got != blue {
		t.Errorf("Interpolate(1) = %v, want %v", got, blue)
	}
}

func TestPropertyListValidation(t *testing.T) {
	tests := []struct {
		name  string
		nodes []PropertyNode[float64]
	}{
		{"empty", nil},
		{"first not zero", []PropertyNode[float64]{{Value: 1, Time: 0.2}, {Value: 2, Time: 1}}},
		{"not increasing", []PropertyNode[float64]{{Value: 1, Time: 0}, {Value: 2, Time: 0.5}, {Value: 3, Time: 0.5}}},
		{"last not one", []PropertyNode[float64]{{Value: 1, Time: 0}, {Value: 2, Time: 0.8}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFloatList(tc.nodes, nil, false); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPropertyListCopiesNodes(t *testing.T) {
	nodes := []PropertyNode[float64]{
		{Value: 0, Time: 0},
		{Value: 10, Time: 1},
	}
	list, err := NewFloatList(nodes, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	nodes[1].Value = 999
	assertNear(t, "after caller mutation", list.Interpolate(1), 10)
}
