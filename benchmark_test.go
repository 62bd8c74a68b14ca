package ember

import "testing"

func benchEmitterConfig(maxParticles int) *EmitterConfig {
	cfg := testEmitterConfig()
	cfg.Frequency = 0.002
	cfg.MaxParticles = maxParticles
	cfg.Lifetime = Range{Min: 1, Max: 2}
	cfg.Behaviors = []BehaviorEntry{
		{Type: "alpha", Config: []byte(`{"alpha": {"list": [{"value": 1, "time": 0}, {"value": 0, "time": 1}]}}`)},
		{Type: "moveSpeedStatic", Config: []byte(`{"min": 50, "max": 150}`)},
		{Type: "rotationStatic", Config: []byte(`{"min": 0, "max": 360}`)},
	}
	return cfg
}

func BenchmarkEmitterUpdate_1000(b *testing.B) {
	e, err := NewEmitter(benchEmitterConfig(1000), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer e.Destroy()
	for i := 0; i < 200; i++ {
		e.Update(1.0 / 60.0)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		e.Update(1.0 / 60.0)
	}
}

func BenchmarkEmitterUpdate_10000(b *testing.B) {
	cfg := benchEmitterConfig(10000)
	cfg.Frequency = 0.0002
	e, err := NewEmitter(cfg, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer e.Destroy()
	for i := 0; i < 200; i++ {
		e.Update(1.0 / 60.0)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		e.Update(1.0 / 60.0)
	}
}

func BenchmarkPropertyInterpolate(b *testing.B) {
	list, err := NewFloatList([]PropertyNode[float64]{
		{Value: 0, Time: 0},
		{Value: 1, Time: 0.3},
		{Value: 0.5, Time: 0.7},
		{Value: 0, Time: 1},
	}, nil, false)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = list.Interpolate(0.42)
	}
}

func BenchmarkPathEval(b *testing.B) {
	fn, err := ParsePath("sin(x / 10) * 20 + x / 2")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = fn(37.5)
	}
}

func BenchmarkLocalTransform(b *testing.B) {
	n := NewContainer("n")
	n.X, n.Y = 100, 50
	n.Rotation = 0.7
	n.ScaleX, n.ScaleY = 2, 0.5
	n.PivotX, n.PivotY = 16, 16

	b.ReportAllocs()
	for b.Loop() {
		_ = computeLocalTransform(n)
	}
}

func BenchmarkCommandSort(b *testing.B) {
	s := NewScene()
	base := make([]RenderCommand, 512)
	for i := range base {
		base[i] = RenderCommand{
			RenderLayer: uint8(i * 7 % 4),
			GlobalOrder: i * 13 % 5,
			treeOrder:   i,
		}
	}
	s.commands = make([]RenderCommand, len(base))

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		copy(s.commands, base)
		s.mergeSort()
	}
}

func BenchmarkLegacyUpgrade(b *testing.B) {
	legacy := []byte(`{
		"alpha": {"start": 1, "end": 0},
		"scale": {"start": 0.5, "end": 0.1},
		"color": {"start": "#ffcc00", "end": "#ff0000"},
		"speed": {"start": 200, "end": 50},
		"startRotation": {"min": 0, "max": 360},
		"lifetime": {"min": 0.5, "max": 1.5},
		"frequency": 0.01,
		"spawnType": "circle",
		"spawnCircle": {"x": 0, "y": 0, "r": 10}
	}`)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := UpgradeConfig(legacy); err != nil {
			b.Fatal(err)
		}
	}
}
