package ember

// noIndex marks an empty link in a particle index chain.
const noIndex int32 = -1

// Scratch holds per-particle state owned by individual behaviors. Each
// behavior reads and writes only its own fields; the emitter clears the whole
// struct on spawn and never interprets it.
type Scratch struct {
	// Movement behaviors: current velocity in pixels per second.
	VelX, VelY float64
	// Random per-particle multiplier applied to interpolated speed.
	SpeedMult float64
	// Random per-particle multiplier applied to interpolated scale.
	ScaleMult float64
	// Angular velocity in radians per second.
	RotSpeed float64
	// Path movement: spawn position and rotation, captured after spawn
	// placement, plus distance traveled along the facing axis.
	PathStartX   float64
	PathStartY   float64
	PathRot      float64
	PathDistance float64
	// Animated textures: cursor state and the frame set chosen at spawn.
	AnimElapsed   float64
	AnimDuration  float64
	AnimFramerate float64
	Anim          *ParticleAnim
}

// Particle is one simulated particle. Particles live in a fixed arena owned by
// their emitter, linked into an active chain while live and a free chain while
// pooled; slots are reset and reused, never released.
type Particle struct {
	X, Y     float64
	Rotation float64 // radians
	ScaleX   float64
	ScaleY   float64
	Alpha    float64
	Color    Color
	Blend    BlendMode
	Region   TextureRegion

	Age        float64 // seconds since spawn (may start negative mid-frame)
	MaxLife    float64 // lifetime in seconds
	AgePercent float64 // age/MaxLife, after the emitter ease if configured

	Scratch Scratch

	oneOverLife float64
	index       int32
	next, prev  int32
	active      bool
}

// Index returns the particle's arena slot. Slots are stable for the lifetime
// of the emitter, so the index identifies a particle across recycling.
func (p *Particle) Index() int32 {
	return p.index
}

// reset prepares a pooled particle for a new life.
func (p *Particle) reset(maxLife float64) {
	p.X, p.Y = 0, 0
	p.Rotation = 0
	p.ScaleX, p.ScaleY = 1, 1
	p.Alpha = 1
	p.Color = ColorWhite
	p.Blend = BlendNormal
	p.Region = TextureRegion{}
	p.Age = 0
	p.AgePercent = 0
	p.MaxLife = maxLife
	p.oneOverLife = 1 / maxLife
	p.Scratch = Scratch{}
}

// particleArena is the fixed backing store for an emitter's particles. The
// active chain is doubly linked and ordered by render stacking (head drawn
// first); the free chain is singly linked through next.
type particleArena struct {
	slots       []Particle
	activeFirst int32
	activeLast  int32
	poolFirst   int32
	activeCount int
}

func newParticleArena(capacity int) *particleArena {
	a := &particleArena{
		slots:       make([]Particle, capacity),
		activeFirst: noIndex,
		activeLast:  noIndex,
		poolFirst:   noIndex,
	}
	// Chain every slot into the pool, keeping low indices at the head.
	for i := capacity - 1; i >= 0; i-- {
		p := &a.slots[i]
		p.index = int32(i)
		p.prev = noIndex
		p.next = a.poolFirst
		a.poolFirst = int32(i)
	}
	return a
}

// at returns the particle in slot i. Pointers stay valid for the arena's
// lifetime; the backing array never grows.
func (a *particleArena) at(i int32) *Particle {
	return &a.slots[i]
}

// takeFromPool pops the free chain head, or returns noIndex when exhausted.
func (a *particleArena) takeFromPool() int32 {
	i := a.poolFirst
	if i == noIndex {
		return noIndex
	}
	a.poolFirst = a.slots[i].next
	a.slots[i].next = noIndex
	return i
}

// linkActive splices slot i into the active chain, at the head when atBack is
// true (drawn behind existing particles) or at the tail otherwise.
func (a *particleArena) linkActive(i int32, atBack bool) {
	p := &a.slots[i]
	p.active = true
	if atBack {
		p.prev = noIndex
		p.next = a.activeFirst
		if a.activeFirst != noIndex {
			a.slots[a.activeFirst].prev = i
		} else {
			a.activeLast = i
		}
		a.activeFirst = i
	} else {
		p.next = noIndex
		p.prev = a.activeLast
		if a.activeLast != noIndex {
			a.slots[a.activeLast].next = i
		} else {
			a.activeFirst = i
		}
		a.activeLast = i
	}
	a.activeCount++
}

// release unsplices slot i from the active chain and pushes it onto the free
// chain.
func (a *particleArena) release(i int32) {
	p := &a.slots[i]
	if !p.active {
		return
	}
	if p.prev != noIndex {
		a.slots[p.prev].next = p.next
	} else {
		a.activeFirst = p.next
	}
	if p.next != noIndex {
		a.slots[p.next].prev = p.prev
	} else {
		a.activeLast = p.prev
	}
	p.active = false
	p.prev = noIndex
	p.next = a.poolFirst
	a.poolFirst = i
	a.activeCount--
}
