package ember

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window for [Run].
type RunConfig struct {
	Title   string
	Width   int  // logical screen width in pixels
	Height  int  // logical screen height in pixels
	ShowFPS bool // attach an FPS overlay to the scene root
}

// Run opens a window and drives the scene with ebiten's game loop until the
// window is closed or the scene's update callback returns an error. It is a
// convenience wrapper; a Scene embeds cleanly into an existing [ebiten.Game]
// by calling [Scene.Update] and [Scene.Draw] directly.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)

	if cfg.ShowFPS {
		scene.Root().AddChild(NewFPSWidget())
	}

	return ebiten.RunGame(&sceneGame{scene: scene, w: cfg.Width, h: cfg.Height})
}

// sceneGame adapts a Scene to the ebiten.Game interface.
type sceneGame struct {
	scene *Scene
	w, h  int
}

func (g *sceneGame) Update() error {
	return g.scene.Update()
}

func (g *sceneGame) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *sceneGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}
