// Package ember is a retained-mode 2D particle and scene engine for
// [Ebitengine].
//
// Ember provides the scene graph, transform hierarchy, sprite batching,
// camera viewports, tilemap rendering, and a data-driven CPU particle
// system built around behavior lists loaded from JSON or YAML.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := ember.NewScene()
//	// ... add nodes ...
//	ember.Run(scene, ember.RunConfig{
//		Title: "My Game", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly:
//
//	type Game struct{ scene *ember.Scene }
//
//	func (g *Game) Update() error         { return g.scene.Update() }
//	func (g *Game) Draw(s *ebiten.Image)  { g.scene.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Scene.Root]. Children inherit their parent's transform and alpha.
//
// Create nodes with typed constructors: [NewContainer], [NewSprite], and
// [NewParticleEmitter].
//
//	container := ember.NewContainer("world")
//	scene.Root().AddChild(container)
//
//	sprite := ember.NewSprite("hero", atlas.Region("hero_idle"))
//	sprite.X, sprite.Y = 100, 50
//	container.AddChild(sprite)
//
// For solid-color rectangles, use [NewSprite] with a zero-value
// [TextureRegion] and set [Node.Color] and [Node.ScaleX]/[Node.ScaleY]:
//
//	box := ember.NewSprite("box", ember.TextureRegion{})
//	box.ScaleX, box.ScaleY = 80, 40
//	box.Color = ember.Color{R: 0.3, G: 0.7, B: 1, A: 1}
//
// # Particles
//
// Emitters are described by an [EmitterConfig]: lifetime range, spawn
// frequency, particle cap, and an ordered list of behaviors (alpha ramps,
// speed, acceleration, color ramps, spawn shapes, texture selection).
// Configs load from JSON or YAML via [LoadEmitterConfig], and configs in the
// older flat format upgrade in place via [UpgradeConfig]:
//
//	cfg, err := ember.LoadEmitterConfig("flame.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	flame, err := ember.NewParticleEmitter("flame", cfg, atlas)
//	if err != nil {
//		log.Fatal(err)
//	}
//	scene.Root().AddChild(flame)
//
// Emitters with AutoUpdate advance on [SharedTicker], which [Scene.Update]
// ticks once per frame. Set AutoUpdate to false to step an emitter manually
// with [ParticleEmitter.Update].
//
// # Key features
//
// Ember includes cameras with follow/scroll-to/zoom, a windowed tilemap
// renderer with tile animations and flip flags, CPU-simulated particles with
// legacy config upgrading, blend modes, tweens (via [gween]), and ECS
// integration (via [Donburi] adapter in ember/ecs).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package ember
