package ember

import (
	"encoding/json"
	"testing"
)

// fakeTextures is a TextureSource backed by a plain map.
type fakeTextures map[string]TextureRegion

func (f fakeTextures) Region(name string) TextureRegion {
	if r, ok := f[name]; ok {
		return r
	}
	return magentaRegion()
}

func testTextureSet() fakeTextures {
	return fakeTextures{
		"spark": {Page: 0, X: 0, Y: 0, Width: 8, Height: 8, OriginalW: 8, OriginalH: 8},
		"puff":  {Page: 0, X: 8, Y: 0, Width: 8, Height: 8, OriginalW: 8, OriginalH: 8},
		"dot":   {Page: 1, X: 0, Y: 0, Width: 4, Height: 4, OriginalW: 4, OriginalH: 4},
	}
}

func mustTextureBehavior(t *testing.T, name, cfg string) Behavior {
	t.Helper()
	b, err := NewBehavior(name, json.RawMessage(cfg), testTextureSet())
	if err != nil {
		t.Fatalf("NewBehavior(%s): %v", name, err)
	}
	return b
}

func TestSingleTextureBehavior(t *testing.T) {
	b := mustTextureBehavior(t, "textureSingle", `{"texture": "spark"}`)
	wave := makeWave(2, 1)
	b.(InitBehavior).InitParticles(wave)
	want := testTextureSet()["spark"]
	for _, p := range wave {
		if p.Region != want {
			t.Errorf("region = %v, want %v", p.Region, want)
		}
	}
}

func TestRandomTextureBehavior(t *testing.T) {
	b := mustTextureBehavior(t, "textureRandom", `{"textures": ["spark", "puff"]}`)
	set := testTextureSet()
	wave := makeWave(30, 1)
	b.(InitBehavior).InitParticles(wave)
	for _, p := range wave {
		if p.Region != set["spark"] && p.Region != set["puff"] {
			t.Fatalf("region %v is neither spark nor puff", p.Region)
		}
	}
}

func TestOrderedTextureBehavior(t *testing.T) {
	b := mustTextureBehavior(t, "textureOrdered", `{"textures": ["spark", "puff", "dot"]}`)
	set := testTextureSet()
	want := []TextureRegion{set["spark"], set["puff"], set["dot"], set["spark"], set["puff"]}

	// Cursor continues across waves.
	first := makeWave(3, 1)
	b.(InitBehavior).InitParticles(first)
	second := makeWave(2, 1)
	b.(InitBehavior).InitParticles(second)

	got := append(first, second...)
	for i, p := range got {
		if p.Region != want[i] {
			t.Errorf("particle %d region = %v, want %v", i, p.Region, want[i])
		}
	}
}

func TestTextureBehaviorsRequireSource(t *testing.T) {
	names := []string{"textureSingle", "textureRandom", "textureOrdered", "animatedSingle", "animatedRandom"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if _, err := NewBehavior(name, json.RawMessage(`{}`), nil); err == nil {
				t.Error("expected error without a texture source")
			}
		})
	}
}

func TestTextureRandomEmptyList(t *testing.T) {
	if _, err := NewBehavior("textureRandom", json.RawMessage(`{"textures": []}`), testTextureSet()); err == nil {
		t.Error("expected error for empty texture list")
	}
}

func TestAnimatedSingleBehaviorStepsFrames(t *testing.T) {
	// Four frames at 2 fps: 0.5s per frame, 2s total.
	b := mustTextureBehavior(t, "animatedSingle", `{"anim": {
		"framerate": 2, "loop": false,
		"textures": ["spark", "puff", "dot", "spark"]
	}}`)
	set := testTextureSet()
	wave := makeWave(1, 10)
	b.(InitBehavior).InitParticles(wave)
	p := wave[0]
	if p.Region != set["spark"] {
		t.Fatalf("initial frame = %v, want spark", p.Region)
	}
	assertNear(t, "duration", p.Scratch.AnimDuration, 2)

	ub := b.(UpdateBehavior)
	ub.UpdateParticle(p, 0.5)
	if p.Region != set["puff"] {
		t.Errorf("frame at 0.5s = %v, want puff", p.Region)
	}
	ub.UpdateParticle(p, 0.5)
	if p.Region != set["dot"] {
		t.Errorf("frame at 1.0s = %v, want dot", p.Region)
	}
	// Past the end a non-looping anim holds the last frame.
	ub.UpdateParticle(p, 5)
	if p.Region != set["spark"] {
		t.Errorf("frame past end = %v, want last frame", p.Region)
	}
}

func TestAnimatedSingleBehaviorLoops(t *testing.T) {
	b := mustTextureBehavior(t, "animatedSingle", `{"anim": {
		"framerate": 2, "loop": true,
		"textures": ["spark", "puff"]
	}}`)
	set := testTextureSet()
	wave := makeWave(1, 10)
	b.(InitBehavior).InitParticles(wave)
	p := wave[0]
	ub := b.(UpdateBehavior)

	ub.UpdateParticle(p, 0.5)
	if p.Region != set["puff"] {
		t.Fatalf("frame at 0.5s = %v, want puff", p.Region)
	}
	// 1.0s wraps back to the first frame.
	ub.UpdateParticle(p, 0.5)
	if p.Region != set["spark"] {
		t.Errorf("frame after wrap = %v, want spark", p.Region)
	}
}

func TestAnimatedBehaviorLifetimeFramerate(t *testing.T) {
	// framerate -1 stretches one playthrough across each particle's life.
	b := mustTextureBehavior(t, "animatedSingle", `{"anim": {
		"framerate": -1,
		"textures": ["spark", "puff", "dot", "spark"]
	}}`)
	wave := makeWave(1, 2)
	b.(InitBehavior).InitParticles(wave)
	p := wave[0]
	assertNear(t, "duration", p.Scratch.AnimDuration, 2)
	assertNear(t, "framerate", p.Scratch.AnimFramerate, 2)

	long := makeWave(1, 8)
	b.(InitBehavior).InitParticles(long)
	assertNear(t, "long duration", long[0].Scratch.AnimDuration, 8)
	assertNear(t, "long framerate", long[0].Scratch.AnimFramerate, 0.5)
}

func TestAnimCountedFrames(t *testing.T) {
	b := mustTextureBehavior(t, "animatedSingle", `{"anim": {
		"framerate": 1,
		"textures": [{"texture": "spark", "count": 3}, "puff"]
	}}`)
	anim := b.(*SingleAnimatedBehavior).anim
	if len(anim.Frames) != 4 {
		t.Fatalf("frames = %d, want 4", len(anim.Frames))
	}
	set := testTextureSet()
	for i := 0; i < 3; i++ {
		if anim.Frames[i] != set["spark"] {
			t.Errorf("frame %d = %v, want spark", i, anim.Frames[i])
		}
	}
	if anim.Frames[3] != set["puff"] {
		t.Errorf("frame 3 = %v, want puff", anim.Frames[3])
	}
}

func TestAnimNeedsFrames(t *testing.T) {
	if _, err := NewBehavior("animatedSingle", json.RawMessage(`{"anim": {"framerate": 1, "textures": []}}`), testTextureSet()); err == nil {
		t.Error("expected error for empty frame list")
	}
}

func TestRandomAnimatedBehavior(t *testing.T) {
	b := mustTextureBehavior(t, "animatedRandom", `{"anims": [
		{"framerate": 1, "textures": ["spark"]},
		{"framerate": 1, "textures": ["puff"]}
	]}`)
	set := testTextureSet()
	wave := makeWave(20, 5)
	b.(InitBehavior).InitParticles(wave)
	for _, p := range wave {
		if p.Region != set["spark"] && p.Region != set["puff"] {
			t.Fatalf("region %v from neither anim", p.Region)
		}
		if p.Scratch.Anim == nil {
			t.Fatal("anim not assigned")
		}
	}
}
