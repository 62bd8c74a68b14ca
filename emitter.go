package ember

import (
	"log"
	"math/rand/v2"
	"sort"
)

const (
	defaultMaxParticles = 1000
	defaultFrequency    = 1.0
)

// positionMarker reserves the slot in the init-behavior order where the
// emitter applies its own rotation and position offset to a new wave.
type positionMarker struct{}

func (positionMarker) Order() BehaviorOrder { return orderSpawnOffset }

// ParticleEmitter simulates a pool of particles driven by behaviors. Emission
// runs on a spawn timer: every frequency seconds a wave of particles is
// spawned, placed by spawn behaviors, offset by the emitter's own position and
// rotation, then advanced by update behaviors each frame until their lifetime
// runs out and they return to the pool.
//
// An emitter is not safe for concurrent use; drive it from the frame tick.
type ParticleEmitter struct {
	arena *particleArena
	wave  []*Particle

	initBehaviors    []Behavior
	updateBehaviors  []UpdateBehavior
	recycleBehaviors []RecycleBehavior

	minLifetime      float64
	maxLifetime      float64
	frequency        float64
	spawnChance      float64
	particlesPerWave int
	emitterLifetime  float64
	maxParticles     int
	addAtBack        bool
	customEase       EaseFunc

	spawnPos Vec2
	ownerPos Vec2
	rotation float64 // radians

	prevPos      Vec2
	prevPosValid bool
	posChanged   bool

	spawnTimer  float64
	emitterLife float64
	emit        bool

	autoUpdate          bool
	ticker              *Ticker
	destroyWhenComplete bool
	onComplete          func()

	owner     *Node
	destroyed bool

	// Debug tallies, drained by Scene debug logging.
	statSpawned  int
	statRecycled int
}

// NewEmitter builds an emitter from a config. textures resolves texture names
// for texture behaviors and may be nil for configs that have none. Unknown
// behavior types are logged and skipped; a known behavior with a bad config
// (including an unknown spawn shape) fails construction.
func NewEmitter(cfg *EmitterConfig, textures TextureSource) (*ParticleEmitter, error) {
	e := &ParticleEmitter{
		minLifetime:      cfg.Lifetime.Min,
		maxLifetime:      cfg.Lifetime.Max,
		frequency:        cfg.Frequency,
		spawnChance:      cfg.SpawnChance,
		particlesPerWave: cfg.ParticlesPerWave,
		emitterLifetime:  cfg.EmitterLifetime,
		maxParticles:     cfg.MaxParticles,
		addAtBack:        cfg.AddAtBack,
		spawnPos:         cfg.Pos,
		autoUpdate:       cfg.AutoUpdate,
	}
	if e.frequency <= 0 {
		e.frequency = defaultFrequency
	}
	if e.particlesPerWave < 1 {
		e.particlesPerWave = 1
	}
	if e.maxParticles < 1 {
		e.maxParticles = defaultMaxParticles
	}
	if e.emitterLifetime == 0 {
		e.emitterLifetime = -1
	}
	if !cfg.Ease.IsZero() {
		fn, err := cfg.Ease.Func()
		if err != nil {
			return nil, err
		}
		e.customEase = fn
	}

	behaviors := make([]Behavior, 0, len(cfg.Behaviors)+1)
	for _, entry := range cfg.Behaviors {
		ctor, ok := behaviorRegistry[entry.Type]
		if !ok {
			log.Printf("ember: unknown behavior %q, skipping", entry.Type)
			continue
		}
		b, err := ctor(entry.Config, textures)
		if err != nil {
			return nil, err
		}
		behaviors = append(behaviors, b)
	}
	behaviors = append(behaviors, positionMarker{})
	sort.SliceStable(behaviors, func(i, j int) bool {
		return behaviors[i].Order() < behaviors[j].Order()
	})
	e.initBehaviors = behaviors
	for _, b := range behaviors {
		if ub, ok := b.(UpdateBehavior); ok {
			e.updateBehaviors = append(e.updateBehaviors, ub)
		}
		if rb, ok := b.(RecycleBehavior); ok {
			e.recycleBehaviors = append(e.recycleBehaviors, rb)
		}
	}

	e.arena = newParticleArena(e.maxParticles)
	e.SetEmit(cfg.Emit)
	if e.autoUpdate {
		e.ticker = SharedTicker
		SharedTicker.Add(e)
	}
	return e, nil
}

// Update advances the simulation by dt seconds: ages and updates live
// particles, then spawns new waves owed by the spawn timer. New particles
// spawned partway through the frame are back-dated and caught up so their
// first rendered state matches their true age.
func (e *ParticleEmitter) Update(dt float64) {
	if e.destroyed {
		return
	}

	// Age existing particles before any spawning so new arrivals don't see
	// this frame's delta twice.
	for i := e.arena.activeFirst; i != noIndex; {
		p := e.arena.at(i)
		next := p.next
		p.Age += dt
		if p.Age > p.MaxLife || p.Age < 0 {
			e.recycle(i, true)
		} else {
			frac := p.Age * p.oneOverLife
			if e.customEase != nil {
				frac = e.customEase(frac)
			}
			p.AgePercent = frac
			for _, b := range e.updateBehaviors {
				if b.UpdateParticle(p, dt) {
					e.recycle(i, true)
					break
				}
			}
		}
		i = next
	}

	var prevX, prevY float64
	if e.prevPosValid {
		prevX, prevY = e.prevPos.X, e.prevPos.Y
	}
	curX := e.ownerPos.X + e.spawnPos.X
	curY := e.ownerPos.Y + e.spawnPos.Y

	if e.emit {
		if dt > 0 {
			e.spawnTimer -= dt
		}
		for e.spawnTimer <= 0 {
			if e.emitterLife >= 0 {
				e.emitterLife -= e.frequency
				if e.emitterLife <= 0 {
					e.spawnTimer = 0
					e.emitterLife = 0
					e.emit = false
					break
				}
			}
			if e.arena.activeCount >= e.maxParticles {
				e.spawnTimer += e.frequency
				continue
			}
			// Fast-moving emitters spread this frame's spawns along the path
			// from the previous position instead of popping them all at the
			// current one.
			emitX, emitY := curX, curY
			if e.prevPosValid && e.posChanged {
				frac := 1 + e.spawnTimer/dt
				emitX = (curX-prevX)*frac + prevX
				emitY = (curY-prevY)*frac + prevY
			}
			e.spawnWave(emitX, emitY, -e.spawnTimer)
			e.spawnTimer += e.frequency
		}
	}

	if e.posChanged {
		e.prevPos = Vec2{X: curX, Y: curY}
		e.prevPosValid = true
		e.posChanged = false
	}

	if !e.emit && e.arena.activeFirst == noIndex {
		if e.onComplete != nil {
			cb := e.onComplete
			e.onComplete = nil
			cb()
		}
		if e.destroyWhenComplete {
			e.Destroy()
		}
	}
}

// spawnWave spawns up to one wave at the given emit position. owed is how far
// into their lifetime the new particles already are; when positive they are
// back-dated and advanced by one catch-up pass.
func (e *ParticleEmitter) spawnWave(emitX, emitY, owed float64) {
	e.wave = e.wave[:0]
	count := e.particlesPerWave
	if room := e.maxParticles - e.arena.activeCount; count > room {
		count = room
	}
	for i := 0; i < count; i++ {
		if e.spawnChance < 1 && rand.Float64() >= e.spawnChance {
			continue
		}
		lifetime := Range{Min: e.minLifetime, Max: e.maxLifetime}.Random()
		if lifetime <= 0 {
			lifetime = 1
		}
		if owed >= lifetime {
			// Would be dead before its first frame.
			continue
		}
		slot := e.arena.takeFromPool()
		if slot == noIndex {
			break
		}
		p := e.arena.at(slot)
		p.reset(lifetime)
		e.arena.linkActive(slot, e.addAtBack)
		e.statSpawned++
		e.wave = append(e.wave, p)
	}
	if len(e.wave) == 0 {
		return
	}

	for _, b := range e.initBehaviors {
		if _, isMarker := b.(positionMarker); isMarker {
			for _, p := range e.wave {
				if e.rotation != 0 {
					p.X, p.Y = rotateVec(e.rotation, p.X, p.Y)
					p.Rotation += e.rotation
				}
				p.X += emitX
				p.Y += emitY
				if owed > 0 {
					p.Age = owed
					frac := p.Age * p.oneOverLife
					if e.customEase != nil {
						frac = e.customEase(frac)
					}
					p.AgePercent = frac
				}
			}
			continue
		}
		if ib, ok := b.(InitBehavior); ok {
			ib.InitParticles(e.wave)
		}
	}

	if owed > 0 {
		for _, p := range e.wave {
			for _, b := range e.updateBehaviors {
				if b.UpdateParticle(p, owed) {
					e.recycle(p.index, true)
					break
				}
			}
		}
	}
}

// EmitNow spawns a single wave immediately, regardless of the spawn timer or
// emission state. spawnChance and the particle cap still apply; no catch-up
// pass runs.
func (e *ParticleEmitter) EmitNow() {
	if e.destroyed {
		return
	}
	e.spawnWave(e.ownerPos.X+e.spawnPos.X, e.ownerPos.Y+e.spawnPos.Y, 0)
}

// recycle returns slot i to the pool. natural is false for bulk cleanup.
func (e *ParticleEmitter) recycle(i int32, natural bool) {
	p := e.arena.at(i)
	if !p.active {
		return
	}
	for _, b := range e.recycleBehaviors {
		b.RecycleParticle(p, natural)
	}
	e.arena.release(i)
	e.statRecycled++
}

// SetEmit turns emission on or off and resets the remaining emitter lifetime.
// Turning emission off lets existing particles age out naturally.
func (e *ParticleEmitter) SetEmit(emit bool) {
	e.emit = emit
	e.emitterLife = e.emitterLifetime
}

// Start begins emitting particles.
func (e *ParticleEmitter) Start() {
	e.SetEmit(true)
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.SetEmit(false)
}

// Emitting reports whether the emitter is currently spawning new particles.
func (e *ParticleEmitter) Emitting() bool {
	return e.emit
}

// AliveCount returns the number of active particles.
func (e *ParticleEmitter) AliveCount() int {
	if e.destroyed {
		return 0
	}
	return e.arena.activeCount
}

// PlayOnce starts emitting and invokes callback once after emission stops and
// the last particle dies. callback may be nil.
func (e *ParticleEmitter) PlayOnce(callback func()) {
	e.onComplete = callback
	e.SetEmit(true)
}

// PlayOnceAndDestroy is PlayOnce followed by automatic Destroy on completion.
func (e *ParticleEmitter) PlayOnceAndDestroy(callback func()) {
	e.destroyWhenComplete = true
	e.PlayOnce(callback)
}

// Cleanup recycles every active particle without touching emission state. The
// pool is kept for reuse.
func (e *ParticleEmitter) Cleanup() {
	if e.destroyed {
		return
	}
	for i := e.arena.activeFirst; i != noIndex; {
		next := e.arena.at(i).next
		e.recycle(i, false)
		i = next
	}
}

// Destroy stops emission, discards all particles and releases the pool and
// behavior lists. The emitter must not be used afterward.
func (e *ParticleEmitter) Destroy() {
	if e.destroyed {
		return
	}
	e.Cleanup()
	if e.ticker != nil {
		e.ticker.Remove(e)
		e.ticker = nil
	}
	e.emit = false
	e.autoUpdate = false
	e.onComplete = nil
	e.initBehaviors = nil
	e.updateBehaviors = nil
	e.recycleBehaviors = nil
	e.arena = nil
	e.wave = nil
	e.destroyed = true
	if e.owner != nil {
		e.owner.Emitter = nil
		e.owner = nil
	}
}

// UpdateSpawnPos moves the spawn offset, tracking the change so the next
// update can interpolate spawn positions.
func (e *ParticleEmitter) UpdateSpawnPos(x, y float64) {
	e.posChanged = true
	e.spawnPos = Vec2{X: x, Y: y}
}

// UpdateOwnerPos moves the owner position, tracking the change so the next
// update can interpolate spawn positions.
func (e *ParticleEmitter) UpdateOwnerPos(x, y float64) {
	e.posChanged = true
	e.ownerPos = Vec2{X: x, Y: y}
}

// ResetPositionTracking clears interpolation history so the next spawns use
// the new position directly, for teleporting the emitter without a smear of
// particles along the jump.
func (e *ParticleEmitter) ResetPositionTracking() {
	e.prevPosValid = false
}

// SpawnPos returns the current spawn offset.
func (e *ParticleEmitter) SpawnPos() Vec2 {
	return e.spawnPos
}

// OwnerPos returns the current owner position.
func (e *ParticleEmitter) OwnerPos() Vec2 {
	return e.ownerPos
}

// Rotation returns the emitter rotation in radians.
func (e *ParticleEmitter) Rotation() float64 {
	return e.rotation
}

// Rotate sets the emitter rotation in degrees, rotating the spawn offset
// along with it.
func (e *ParticleEmitter) Rotate(degrees float64) {
	rad := degrees * degToRad
	if rad == e.rotation {
		return
	}
	diff := rad - e.rotation
	e.rotation = rad
	e.spawnPos.X, e.spawnPos.Y = rotateVec(diff, e.spawnPos.X, e.spawnPos.Y)
	e.posChanged = true
}

// SetEase sets the emitter-wide ease applied to every particle's life
// fraction. fn may be an EaseFunc, a func(float64) float64, an ease.TweenFunc
// or a func(t, b, c, d float32) float32; nil clears it.
func (e *ParticleEmitter) SetEase(fn any) {
	e.customEase = EaseAdapter(fn)
}

// takeFrameStats returns and clears the spawn/recycle tallies.
func (e *ParticleEmitter) takeFrameStats() (spawned, recycled int) {
	spawned, recycled = e.statSpawned, e.statRecycled
	e.statSpawned, e.statRecycled = 0, 0
	return
}

// AutoUpdate reports whether the emitter advances with [SharedTicker].
func (e *ParticleEmitter) AutoUpdate() bool {
	return e.autoUpdate && !e.destroyed
}

// SetAutoUpdate registers or unregisters the emitter on [SharedTicker].
// Emitters with autoUpdate off are driven by calling Update directly.
func (e *ParticleEmitter) SetAutoUpdate(auto bool) {
	if auto == e.autoUpdate || e.destroyed {
		return
	}
	e.autoUpdate = auto
	if auto {
		e.ticker = SharedTicker
		SharedTicker.Add(e)
	} else if e.ticker != nil {
		e.ticker.Remove(e)
		e.ticker = nil
	}
}
