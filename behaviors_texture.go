package ember

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
)

// TextureSource resolves texture names from emitter configs into atlas
// regions. *Atlas satisfies it.
type TextureSource interface {
	Region(name string) TextureRegion
}

func init() {
	RegisterBehavior("textureSingle", newSingleTextureBehavior)
	RegisterBehavior("textureRandom", newRandomTextureBehavior)
	RegisterBehavior("textureOrdered", newOrderedTextureBehavior)
	RegisterBehavior("animatedSingle", newSingleAnimatedBehavior)
	RegisterBehavior("animatedRandom", newRandomAnimatedBehavior)
}

func requireTextures(name string, textures TextureSource) error {
	if textures == nil {
		return fmt.Errorf("ember: %s behavior needs a texture source", name)
	}
	return nil
}

// --- static texture assignment ---

// SingleTextureBehavior gives every particle the same texture.
type SingleTextureBehavior struct {
	region TextureRegion
}

func newSingleTextureBehavior(data json.RawMessage, textures TextureSource) (Behavior, error) {
	if err := requireTextures("textureSingle", textures); err != nil {
		return nil, err
	}
	var cfg struct {
		Texture string `json:"texture"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: textureSingle config: %w", err)
	}
	return &SingleTextureBehavior{region: textures.Region(cfg.Texture)}, nil
}

func (b *SingleTextureBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *SingleTextureBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Region = b.region
	}
}

// RandomTextureBehavior picks each particle's texture at random from a list.
type RandomTextureBehavior struct {
	regions []TextureRegion
}

func newRandomTextureBehavior(data json.RawMessage, textures TextureSource) (Behavior, error) {
	if err := requireTextures("textureRandom", textures); err != nil {
		return nil, err
	}
	var cfg struct {
		Textures []string `json:"textures"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: textureRandom config: %w", err)
	}
	if len(cfg.Textures) == 0 {
		return nil, fmt.Errorf("ember: textureRandom needs at least one texture")
	}
	regions := make([]TextureRegion, len(cfg.Textures))
	for i, name := range cfg.Textures {
		regions[i] = textures.Region(name)
	}
	return &RandomTextureBehavior{regions: regions}, nil
}

func (b *RandomTextureBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *RandomTextureBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Region = b.regions[rand.IntN(len(b.regions))]
	}
}

// OrderedTextureBehavior hands out textures round-robin in spawn order,
// continuing across waves.
type OrderedTextureBehavior struct {
	regions []TextureRegion
	index   int
}

func newOrderedTextureBehavior(data json.RawMessage, textures TextureSource) (Behavior, error) {
	if err := requireTextures("textureOrdered", textures); err != nil {
		return nil, err
	}
	var cfg struct {
		Textures []string `json:"textures"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: textureOrdered config: %w", err)
	}
	if len(cfg.Textures) == 0 {
		return nil, fmt.Errorf("ember: textureOrdered needs at least one texture")
	}
	regions := make([]TextureRegion, len(cfg.Textures))
	for i, name := range cfg.Textures {
		regions[i] = textures.Region(name)
	}
	return &OrderedTextureBehavior{regions: regions}, nil
}

func (b *OrderedTextureBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *OrderedTextureBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		p.Region = b.regions[b.index]
		b.index++
		if b.index >= len(b.regions) {
			b.index = 0
		}
	}
}

// --- animated textures ---

// ParticleAnim is a parsed animation: an expanded frame list plus playback
// settings. A framerate of -1 stretches one playthrough across each particle's
// lifetime, computed per particle since lifetimes vary.
type ParticleAnim struct {
	Frames    []TextureRegion
	Framerate float64
	Duration  float64
	Loop      bool
}

type animConfig struct {
	Framerate float64           `json:"framerate"`
	Loop      bool              `json:"loop"`
	Textures  []json.RawMessage `json:"textures"`
}

func parseAnim(cfg animConfig, textures TextureSource) (*ParticleAnim, error) {
	anim := &ParticleAnim{}
	for _, entry := range cfg.Textures {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			anim.Frames = append(anim.Frames, textures.Region(name))
			continue
		}
		var counted struct {
			Texture string `json:"texture"`
			Count   int    `json:"count"`
		}
		if err := json.Unmarshal(entry, &counted); err != nil {
			return nil, fmt.Errorf("ember: anim texture entry: %w", err)
		}
		region := textures.Region(counted.Texture)
		for i := 0; i < counted.Count; i++ {
			anim.Frames = append(anim.Frames, region)
		}
	}
	if len(anim.Frames) == 0 {
		return nil, fmt.Errorf("ember: anim needs at least one frame")
	}
	if cfg.Framerate < 0 {
		anim.Framerate = -1
	} else {
		anim.Framerate = cfg.Framerate
	}
	if anim.Framerate > 0 {
		anim.Duration = float64(len(anim.Frames)) / anim.Framerate
		anim.Loop = cfg.Loop
	}
	return anim, nil
}

// initAnim points a particle at an animation and primes its cursor.
func initAnim(p *Particle, anim *ParticleAnim) {
	p.Region = anim.Frames[0]
	p.Scratch.Anim = anim
	p.Scratch.AnimElapsed = 0
	if anim.Framerate < 0 {
		p.Scratch.AnimDuration = p.MaxLife
		p.Scratch.AnimFramerate = float64(len(anim.Frames)) / p.MaxLife
	} else {
		p.Scratch.AnimDuration = anim.Duration
		p.Scratch.AnimFramerate = anim.Framerate
	}
}

// updateAnim advances a particle's animation cursor and assigns the current
// frame. Looping wraps; non-looping holds just short of the end so the final
// frame stays in range. The tiny bias before flooring counteracts float error
// at exact frame boundaries.
func updateAnim(p *Particle, dt float64) {
	anim := p.Scratch.Anim
	if anim == nil || p.Scratch.AnimDuration <= 0 {
		return
	}
	p.Scratch.AnimElapsed += dt
	if p.Scratch.AnimElapsed >= p.Scratch.AnimDuration {
		if anim.Loop {
			p.Scratch.AnimElapsed = math.Mod(p.Scratch.AnimElapsed, p.Scratch.AnimDuration)
		} else {
			p.Scratch.AnimElapsed = p.Scratch.AnimDuration - 0.000001
		}
	}
	frame := int(p.Scratch.AnimElapsed*p.Scratch.AnimFramerate + 0.0000001)
	if frame >= len(anim.Frames) {
		frame = len(anim.Frames) - 1
	} else if frame < 0 {
		frame = 0
	}
	p.Region = anim.Frames[frame]
}

// SingleAnimatedBehavior plays one animation on every particle.
type SingleAnimatedBehavior struct {
	anim *ParticleAnim
}

func newSingleAnimatedBehavior(data json.RawMessage, textures TextureSource) (Behavior, error) {
	if err := requireTextures("animatedSingle", textures); err != nil {
		return nil, err
	}
	var cfg struct {
		Anim animConfig `json:"anim"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: animatedSingle config: %w", err)
	}
	anim, err := parseAnim(cfg.Anim, textures)
	if err != nil {
		return nil, err
	}
	return &SingleAnimatedBehavior{anim: anim}, nil
}

func (b *SingleAnimatedBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *SingleAnimatedBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		initAnim(p, b.anim)
	}
}

func (b *SingleAnimatedBehavior) UpdateParticle(p *Particle, dt float64) bool {
	updateAnim(p, dt)
	return false
}

// RandomAnimatedBehavior picks one of several animations per particle at
// spawn.
type RandomAnimatedBehavior struct {
	anims []*ParticleAnim
}

func newRandomAnimatedBehavior(data json.RawMessage, textures TextureSource) (Behavior, error) {
	if err := requireTextures("animatedRandom", textures); err != nil {
		return nil, err
	}
	var cfg struct {
		Anims []animConfig `json:"anims"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: animatedRandom config: %w", err)
	}
	if len(cfg.Anims) == 0 {
		return nil, fmt.Errorf("ember: animatedRandom needs at least one anim")
	}
	anims := make([]*ParticleAnim, len(cfg.Anims))
	for i, ac := range cfg.Anims {
		anim, err := parseAnim(ac, textures)
		if err != nil {
			return nil, err
		}
		anims[i] = anim
	}
	return &RandomAnimatedBehavior{anims: anims}, nil
}

func (b *RandomAnimatedBehavior) Order() BehaviorOrder { return OrderNormal }

func (b *RandomAnimatedBehavior) InitParticles(wave []*Particle) {
	for _, p := range wave {
		initAnim(p, b.anims[rand.IntN(len(b.anims))])
	}
}

func (b *RandomAnimatedBehavior) UpdateParticle(p *Particle, dt float64) bool {
	updateAnim(p, dt)
	return false
}
