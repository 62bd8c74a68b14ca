package ember

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
)

const degToRad = math.Pi / 180

// BehaviorOrder determines when a behavior's init hook runs relative to the
// spawn placement step. Spawn behaviors place particles in shape-local space,
// then the emitter applies its own rotation and position, then Normal and Late
// behaviors run. Late is for behaviors that read state set by earlier ones,
// such as movement reading the final spawn rotation.
type BehaviorOrder int

const (
	OrderSpawn  BehaviorOrder = 0
	OrderNormal BehaviorOrder = 2
	OrderLate   BehaviorOrder = 5

	// orderSpawnOffset is the reserved slot where the emitter itself offsets a
	// new wave by its rotation and position.
	orderSpawnOffset BehaviorOrder = 1
)

// Behavior hooks into an emitter's particle lifecycle. Implementations opt
// into capabilities by also implementing InitBehavior, UpdateBehavior or
// RecycleBehavior.
type Behavior interface {
	Order() BehaviorOrder
}

// InitBehavior runs once over each freshly spawned wave, in behavior order.
type InitBehavior interface {
	Behavior
	InitParticles(wave []*Particle)
}

// UpdateBehavior advances one particle by dt seconds. Returning true kills the
// particle immediately; later behaviors do not run on it that frame.
type UpdateBehavior interface {
	Behavior
	UpdateParticle(p *Particle, dt float64) bool
}

// RecycleBehavior observes particle death. natural is false when the particle
// is being discarded by a bulk cleanup rather than aging out, letting
// behaviors skip cosmetic side effects.
type RecycleBehavior interface {
	Behavior
	RecycleParticle(p *Particle, natural bool)
}

// BehaviorConstructor builds a behavior from its raw config data. textures
// resolves texture names for behaviors that assign them; it may be nil for
// behaviors that never touch textures.
type BehaviorConstructor func(data json.RawMessage, textures TextureSource) (Behavior, error)

var behaviorRegistry = map[string]BehaviorConstructor{}

// RegisterBehavior makes a behavior available under the given config type
// name. Registering a name twice panics; behaviors are expected to be
// registered from init functions.
func RegisterBehavior(name string, fn BehaviorConstructor) {
	if _, exists := behaviorRegistry[name]; exists {
		panic("ember: behavior already registered: " + name)
	}
	behaviorRegistry[name] = fn
}

// NewBehavior builds a registered behavior by config type name.
func NewBehavior(name string, data json.RawMessage, textures TextureSource) (Behavior, error) {
	fn, ok := behaviorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("ember: unknown behavior %q", name)
	}
	return fn(data, textures)
}

func init() {
	RegisterBehavior("alpha", newAlphaBehavior)
	RegisterBehavior("alphaStatic", newStaticAlphaBehavior)
	RegisterBehavior("color", newColorBehavior)
	RegisterBehavior("colorStatic", newStaticColorBehavior)
	RegisterBehavior("scale", newScaleBehavior)
	RegisterBehavior("scaleStatic", newStaticScaleBehavior)
	RegisterBehavior("rotation", newRotationBehavior)
	RegisterBehavior("rotationStatic", newStaticRotationBehavior)
	RegisterBehavior("noRotation", newNoRotationBehavior)
	RegisterBehavior("blendMode", newBlendModeBehavior)
	RegisterBehavior("spawnShape", newShapeSpawnBehavior)
	RegisterBehavior("spawnBurst", newBurstSpawnBehavior)
	RegisterBehavior("spawnPoint", newPointSpawnBehavior)
}

// randMult draws the per-particle variety multiplier in [minMult, 1].
func randMult(minMult float64) float64 {
	return minMult + rand.Float64()*(1-minMult)
}

// --- alpha ---

// AlphaBehavior interpolates particle opacity over its lifetime.
type AlphaBehavior struct {
	list *PropertyList[float64]
}

func newAlphaBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Alpha FloatListConfig `json:"alpha"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: alpha config: %w", err)
	}
	list, err := cfg.Alpha.Build()
	if err != nil {
		return nil, err
	}
	return &AlphaBehavior{list: list}, nil
}

func (b *AlphaBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *AlphaBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Alpha = b.list.First()
	}
}

func (b *AlphaBehavior) UpdateParticle(p *Particle, dt float64) bool {
	p.Alpha = b.list.Interpolate(p.AgePercent)
	return false
}

// StaticAlphaBehavior assigns a fixed opacity at spawn.
type StaticAlphaBehavior struct {
	alpha float64
}

func newStaticAlphaBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Alpha float64 `json:"alpha"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: alphaStatic config: %w", err)
	}
	return &StaticAlphaBehavior{alpha: cfg.Alpha}, nil
}

func (b *StaticAlphaBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *StaticAlphaBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Alpha = b.alpha
	}
}

// --- color ---

// ColorBehavior interpolates particle tint over its lifetime, each channel
// independently.
type ColorBehavior struct {
	list *PropertyList[Color]
}

func newColorBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Color ColorListConfig `json:"color"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: color config: %w", err)
	}
	list, err := cfg.Color.Build()
	if err != nil {
		return nil, err
	}
	return &ColorBehavior{list: list}, nil
}

func (b *ColorBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *ColorBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Color = b.list.First()
	}
}

func (b *ColorBehavior) UpdateParticle(p *Particle, dt float64) bool {
	p.Color = b.list.Interpolate(p.AgePercent)
	return false
}

// StaticColorBehavior assigns a fixed tint at spawn.
type StaticColorBehavior struct {
	color Color
}

func newStaticColorBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Color string `json:"color"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: colorStatic config: %w", err)
	}
	c, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	return &StaticColorBehavior{color: c}, nil
}

func (b *StaticColorBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *StaticColorBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Color = b.color
	}
}

// --- scale ---

// ScaleBehavior interpolates uniform particle scale over its lifetime,
// multiplied by a per-particle random factor drawn at spawn.
type ScaleBehavior struct {
	list    *PropertyList[float64]
	minMult float64
}

func newScaleBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Scale   FloatListConfig `json:"scale"`
		MinMult float64         `json:"minMult"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: scale config: %w", err)
	}
	list, err := cfg.Scale.Build()
	if err != nil {
		return nil, err
	}
	if cfg.MinMult <= 0 || cfg.MinMult > 1 {
		cfg.MinMult = 1
	}
	return &ScaleBehavior{list: list, minMult: cfg.MinMult}, nil
}

func (b *ScaleBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *ScaleBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Scratch.ScaleMult = randMult(b.minMult)
		s := b.list.First() * p.Scratch.ScaleMult
		p.ScaleX, p.ScaleY = s, s
	}
}

func (b *ScaleBehavior) UpdateParticle(p *Particle, dt float64) bool {
	s := b.list.Interpolate(p.AgePercent) * p.Scratch.ScaleMult
	p.ScaleX, p.ScaleY = s, s
	return false
}

// StaticScaleBehavior assigns a fixed uniform scale at spawn, drawn from a
// range.
type StaticScaleBehavior struct {
	min, max float64
}

func newStaticScaleBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: scaleStatic config: %w", err)
	}
	return &StaticScaleBehavior{min: cfg.Min, max: cfg.Max}, nil
}

func (b *StaticScaleBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *StaticScaleBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		s := Range{Min: b.min, Max: b.max}.Random()
		p.ScaleX, p.ScaleY = s, s
	}
}

// --- rotation ---

// RotationBehavior gives particles a starting rotation offset and a constant
// or accelerating spin. Config values are in degrees; everything is radians
// internally.
type RotationBehavior struct {
	minStart, maxStart float64
	minSpeed, maxSpeed float64
	accel              float64
}

func newRotationBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		MinStart float64 `json:"minStart"`
		MaxStart float64 `json:"maxStart"`
		MinSpeed float64 `json:"minSpeed"`
		MaxSpeed float64 `json:"maxSpeed"`
		Accel    float64 `json:"accel"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: rotation config: %w", err)
	}
	return &RotationBehavior{
		minStart: cfg.MinStart * degToRad,
		maxStart: cfg.MaxStart * degToRad,
		minSpeed: cfg.MinSpeed * degToRad,
		maxSpeed: cfg.MaxSpeed * degToRad,
		accel:    cfg.Accel * degToRad,
	}, nil
}

func (b *RotationBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *RotationBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Rotation += Range{Min: b.minStart, Max: b.maxStart}.Random()
		p.Scratch.RotSpeed = Range{Min: b.minSpeed, Max: b.maxSpeed}.Random()
	}
}

func (b *RotationBehavior) UpdateParticle(p *Particle, dt float64) bool {
	if b.accel != 0 {
		oldSpeed := p.Scratch.RotSpeed
		p.Scratch.RotSpeed += b.accel * dt
		p.Rotation += (p.Scratch.RotSpeed + oldSpeed) / 2 * dt
	} else {
		p.Rotation += p.Scratch.RotSpeed * dt
	}
	return false
}

// StaticRotationBehavior offsets particle rotation once at spawn, drawn from a
// range in degrees.
type StaticRotationBehavior struct {
	min, max float64
}

func newStaticRotationBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: rotationStatic config: %w", err)
	}
	return &StaticRotationBehavior{min: cfg.Min * degToRad, max: cfg.Max * degToRad}, nil
}

func (b *StaticRotationBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *StaticRotationBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Rotation += Range{Min: b.min, Max: b.max}.Random()
	}
}

// NoRotationBehavior forces particles upright regardless of spawn placement or
// emitter rotation. It runs after every other init behavior.
type NoRotationBehavior struct{}

func newNoRotationBehavior(json.RawMessage, TextureSource) (Behavior, error) {
	return NoRotationBehavior{}, nil
}

func (NoRotationBehavior) Order() BehaviorOrder { return OrderLate + 1 }

func (NoRotationBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Rotation = 0
	}
}

// --- blend mode ---

// BlendModeBehavior sets the compositing mode used when drawing particles.
type BlendModeBehavior struct {
	mode BlendMode
}

func newBlendModeBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		BlendMode string `json:"blendMode"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: blendMode config: %w", err)
	}
	mode, ok := ParseBlendMode(cfg.BlendMode)
	if !ok {
		log.Printf("ember: unknown blend mode %q, using normal", cfg.BlendMode)
	}
	return &BlendModeBehavior{mode: mode}, nil
}

func (b *BlendModeBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *BlendModeBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Blend = b.mode
	}
}

// --- spawn placement ---

// ShapeSpawnBehavior places new particles on a spawn shape. Placement happens
// in shape-local space, before the emitter applies its own rotation and
// position.
type ShapeSpawnBehavior struct {
	shape Shape
}

func newShapeSpawnBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: spawnShape config: %w", err)
	}
	shape, err := NewShape(cfg.Type, cfg.Data)
	if err != nil {
		return nil, err
	}
	return &ShapeSpawnBehavior{shape: shape}, nil
}

func (b *ShapeSpawnBehavior) Order() BehaviorOrder { return OrderSpawn }

func (b *ShapeSpawnBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		pos, rot := b.shape.RandPos()
		p.X, p.Y = pos.X, pos.Y
		p.Rotation += rot
	}
}

// BurstSpawnBehavior fans a wave out radially: each particle faces an evenly
// spaced angle (or a random one when spacing is zero), optionally pushed
// outward by a fixed distance. Config angles are in degrees.
type BurstSpawnBehavior struct {
	start    float64
	spacing  float64
	distance float64
}

func newBurstSpawnBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Start    float64 `json:"start"`
		Spacing  float64 `json:"spacing"`
		Distance float64 `json:"distance"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: spawnBurst config: %w", err)
	}
	return &BurstSpawnBehavior{
		start:    cfg.Start * degToRad,
		spacing:  cfg.Spacing * degToRad,
		distance: cfg.Distance,
	}, nil
}

func (b *BurstSpawnBehavior) Order() BehaviorOrder { return OrderSpawn }

func (b *BurstSpawnBehavior) InitParticles(wave []*Particle) {
	for i, p := range wave {
		var angle float64
		if b.spacing != 0 {
			angle = b.start + b.spacing*float64(i)
		} else {
			angle = rand.Float64() * 2 * math.Pi
		}
		p.Rotation = angle
		if b.distance != 0 {
			p.X = b.distance * math.Cos(angle)
			p.Y = b.distance * math.Sin(angle)
		}
	}
}

// PointSpawnBehavior spawns particles at the emitter position itself. It
// exists so configs can state the spawn placement explicitly.
type PointSpawnBehavior struct{}

func newPointSpawnBehavior(json.RawMessage, TextureSource) (Behavior, error) {
	return PointSpawnBehavior{}, nil
}

func (PointSpawnBehavior) Order() BehaviorOrder { return OrderSpawn }
