package ember

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
)

func init() {
	RegisterBehavior("moveSpeed", newSpeedBehavior)
	RegisterBehavior("moveSpeedStatic", newStaticSpeedBehavior)
	RegisterBehavior("moveAcceleration", newAccelerationBehavior)
	RegisterBehavior("movePath", newPathBehavior)
}

// rotateVec rotates (x, y) around the origin by angle radians.
func rotateVec(angle, x, y float64) (float64, float64) {
	if angle == 0 {
		return x, y
	}
	s, c := math.Sincos(angle)
	return x*c - y*s, x*s + y*c
}

// --- moveSpeed ---

// SpeedBehavior moves particles along their spawn rotation at a speed
// interpolated over their lifetime, scaled by a per-particle random
// multiplier.
type SpeedBehavior struct {
	list    *PropertyList[float64]
	minMult float64
}

func newSpeedBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Speed   FloatListConfig `json:"speed"`
		MinMult float64         `json:"minMult"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: moveSpeed config: %w", err)
	}
	list, err := cfg.Speed.Build()
	if err != nil {
		return nil, err
	}
	if cfg.MinMult <= 0 || cfg.MinMult > 1 {
		cfg.MinMult = 1
	}
	return &SpeedBehavior{list: list, minMult: cfg.MinMult}, nil
}

func (b *SpeedBehavior) Order() BehaviorOrder { return OrderLate }

func (b *SpeedBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Scratch.SpeedMult = randMult(b.minMult)
		p.Scratch.VelX, p.Scratch.VelY = rotateVec(p.Rotation, b.list.First()*p.Scratch.SpeedMult, 0)
	}
}

func (b *SpeedBehavior) UpdateParticle(p *Particle, dt float64) bool {
	speed := b.list.Interpolate(p.AgePercent) * p.Scratch.SpeedMult
	l := math.Hypot(p.Scratch.VelX, p.Scratch.VelY)
	if l > 0 {
		p.Scratch.VelX = p.Scratch.VelX / l * speed
		p.Scratch.VelY = p.Scratch.VelY / l * speed
	}
	p.X += p.Scratch.VelX * dt
	p.Y += p.Scratch.VelY * dt
	return false
}

// StaticSpeedBehavior moves particles along their spawn rotation at a constant
// speed drawn once from a range.
type StaticSpeedBehavior struct {
	min, max float64
}

func newStaticSpeedBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: moveSpeedStatic config: %w", err)
	}
	return &StaticSpeedBehavior{min: cfg.Min, max: cfg.Max}, nil
}

func (b *StaticSpeedBehavior) Order() BehaviorOrder { return OrderLate }

func (b *StaticSpeedBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		speed := Range{Min: b.min, Max: b.max}.Random()
		p.Scratch.VelX, p.Scratch.VelY = rotateVec(p.Rotation, speed, 0)
	}
}

func (b *StaticSpeedBehavior) UpdateParticle(p *Particle, dt float64) bool {
	p.X += p.Scratch.VelX * dt
	p.Y += p.Scratch.VelY * dt
	return false
}

// --- moveAcceleration ---

// AccelerationBehavior gives particles an initial velocity along their spawn
// rotation and applies a constant acceleration each frame. Position advances
// by the average of the old and new velocity over the step, which stays
// accurate at large timesteps. A nonzero maxSpeed clamps velocity magnitude by
// rescaling.
type AccelerationBehavior struct {
	accelX, accelY     float64
	minStart, maxStart float64
	maxSpeed           float64
	rotate             bool
}

func newAccelerationBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Accel struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"accel"`
		MinStart float64 `json:"minStart"`
		MaxStart float64 `json:"maxStart"`
		MaxSpeed float64 `json:"maxSpeed"`
		Rotate   bool    `json:"rotate"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: moveAcceleration config: %w", err)
	}
	return &AccelerationBehavior{
		accelX:   cfg.Accel.X,
		accelY:   cfg.Accel.Y,
		minStart: cfg.MinStart,
		maxStart: cfg.MaxStart,
		maxSpeed: cfg.MaxSpeed,
		rotate:   cfg.Rotate,
	}, nil
}

func (b *AccelerationBehavior) Order() BehaviorOrder { return OrderLate }

func (b *AccelerationBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		speed := Range{Min: b.minStart, Max: b.maxStart}.Random()
		p.Scratch.VelX, p.Scratch.VelY = rotateVec(p.Rotation, speed, 0)
	}
}

func (b *AccelerationBehavior) UpdateParticle(p *Particle, dt float64) bool {
	oldVX, oldVY := p.Scratch.VelX, p.Scratch.VelY
	vx := oldVX + b.accelX*dt
	vy := oldVY + b.accelY*dt
	if b.maxSpeed != 0 {
		if l := math.Hypot(vx, vy); l > b.maxSpeed {
			scale := b.maxSpeed / l
			vx *= scale
			vy *= scale
		}
	}
	p.Scratch.VelX, p.Scratch.VelY = vx, vy
	p.X += (oldVX + vx) / 2 * dt
	p.Y += (oldVY + vy) / 2 * dt
	if b.rotate {
		p.Rotation = math.Atan2(vy, vx)
	}
	return false
}

// --- movePath ---

// PathBehavior moves particles along a curve: forward distance accumulates by
// an interpolated speed, and a path function of that distance supplies a
// perpendicular offset. Both are rotated into the particle's spawn rotation
// and anchored at its spawn position.
type PathBehavior struct {
	path    PathFunc
	list    *PropertyList[float64]
	minMult float64
}

func newPathBehavior(data json.RawMessage, _ TextureSource) (Behavior, error) {
	var cfg struct {
		Path    string          `json:"path"`
		Speed   FloatListConfig `json:"speed"`
		MinMult float64         `json:"minMult"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: movePath config: %w", err)
	}
	list, err := cfg.Speed.Build()
	if err != nil {
		return nil, err
	}
	if cfg.MinMult <= 0 || cfg.MinMult > 1 {
		cfg.MinMult = 1
	}
	path, err := ParsePath(cfg.Path)
	if err != nil {
		// A malformed path must not take the emitter down; the particles
		// simply travel in a straight line.
		log.Printf("ember: movePath: %v", err)
		path = func(float64) float64 { return 0 }
	}
	return &PathBehavior{path: path, list: list, minMult: cfg.MinMult}, nil
}

func (b *PathBehavior) Order() BehaviorOrder { return OrderLate }

func (b *PathBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Scratch.PathStartX = p.X
		p.Scratch.PathStartY = p.Y
		p.Scratch.PathRot = p.Rotation
		p.Scratch.PathDistance = 0
		p.Scratch.SpeedMult = randMult(b.minMult)
	}
}

func (b *PathBehavior) UpdateParticle(p *Particle, dt float64) bool {
	speed := b.list.Interpolate(p.AgePercent) * p.Scratch.SpeedMult
	p.Scratch.PathDistance += speed * dt
	t := p.Scratch.PathDistance
	y := b.path(t)
	s, c := math.Sincos(p.Scratch.PathRot)
	p.X = p.Scratch.PathStartX + c*t - s*y
	p.Y = p.Scratch.PathStartY + s*t + c*y
	return false
}
