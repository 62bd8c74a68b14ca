package ember

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultCommandCap = 1024

// Scene is the top-level object that owns the node tree, cameras, and render
// buffers.
type Scene struct {
	root  *Node
	debug bool

	// ClearColor fills the screen at the start of Draw when its alpha is
	// nonzero. Zero value leaves the screen untouched.
	ClearColor Color

	updateFunc   func() error
	postDrawFunc func(screen *ebiten.Image)

	// Cameras
	cameras []*Camera

	// Render state
	commands      []RenderCommand
	sortBuf       []RenderCommand
	pages         []*ebiten.Image
	nextPage      int        // next available page index for LoadAtlas
	cullBounds    Rect       // current camera cull bounds (world space, set per-camera during Draw)
	cullActive    bool       // whether culling is active for the current camera
	viewTransform [6]float64 // current camera view matrix

	// Vertex buffers shared by sprite, particle, and tilemap submission.
	batchVerts []ebiten.Vertex
	batchInds  []uint32
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	return &Scene{
		root:     NewContainer("root"),
		commands: make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:  make([]RenderCommand, 0, defaultCommandCap),
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update runs the user update callback, advances cameras, ticks [SharedTicker]
// (which drives auto-updating emitters), and runs per-node OnUpdate hooks.
// The frame delta is fixed at 1/TPS seconds. An error from the user callback
// aborts the frame and is returned.
func (s *Scene) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}

	// Refresh world transforms so camera follow targets and per-node hooks
	// see positions from this frame's game logic.
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	for _, cam := range s.cameras {
		cam.update(float32(dt))
	}

	SharedTicker.Tick(dt)
	runNodeHooks(s.root, dt)

	if s.debug {
		s.debugLogUpdate(time.Since(t0))
	}
	return nil
}

// SetUpdateFunc registers a callback invoked at the start of every Update,
// before engine bookkeeping. Returning an error stops the game loop.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetPostDrawFunc registers a callback invoked at the end of every Draw with
// the full screen image, after all cameras have rendered. Useful for debug
// overlays that should not be affected by camera transforms.
func (s *Scene) SetPostDrawFunc(fn func(screen *ebiten.Image)) {
	s.postDrawFunc = fn
}

// runNodeHooks invokes OnUpdate down the subtree. Hooks run whether or not
// the node is visible, so animations keep their phase off-screen.
func runNodeHooks(n *Node, dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	for _, child := range n.children {
		runNodeHooks(child, dt)
	}
}

// Draw traverses the scene tree, emits render commands, sorts them, and submits
// batches to the given screen image.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}

	if len(s.cameras) == 0 {
		// No explicit cameras: use implicit identity camera, full screen.
		s.drawWithCamera(screen, nil)
	} else {
		for _, cam := range s.cameras {
			vp := cam.Viewport
			viewportImg := screen.SubImage(image.Rect(
				int(vp.X), int(vp.Y),
				int(vp.X+vp.Width), int(vp.Y+vp.Height),
			)).(*ebiten.Image)
			s.drawWithCamera(viewportImg, cam)
		}
	}

	if s.postDrawFunc != nil {
		s.postDrawFunc(screen)
	}
}

// drawWithCamera renders the scene from a camera's perspective.
// If cam is nil, uses identity view (no camera).
func (s *Scene) drawWithCamera(target *ebiten.Image, cam *Camera) {
	s.commands = s.commands[:0]

	if cam != nil {
		s.viewTransform = cam.computeViewMatrix()
		s.cullActive = cam.CullEnabled
		if cam.CullEnabled {
			s.cullBounds = cam.VisibleBounds()
		}
	} else {
		s.viewTransform = identityTransform
		s.cullActive = false
	}

	var stats debugStats
	var t0 time.Time

	if s.debug {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	s.submitBatches(target)

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.batchCount = countBatches(s.commands)
		stats.drawCallCount = countDrawCalls(s.commands)
		s.debugLog(stats)
	}
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and per-frame
// timing stats are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// RegisterPage stores an atlas page image at the given index.
// Sprite and particle batches resolve their page indices through these.
func (s *Scene) RegisterPage(index int, img *ebiten.Image) {
	for len(s.pages) <= index {
		s.pages = append(s.pages, nil)
	}
	s.pages[index] = img
}

// LoadAtlas parses TexturePacker JSON, registers atlas pages with the scene,
// and returns the Atlas for region lookups. Pages are registered starting at
// the next available page index.
func (s *Scene) LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	atlas, err := LoadAtlas(jsonData, pages)
	if err != nil {
		return nil, err
	}
	s.AdoptAtlas(atlas)
	return atlas, nil
}

// AdoptAtlas registers an already-built atlas's pages with the scene,
// remapping the atlas's region page indices to the scene's page table.
func (s *Scene) AdoptAtlas(atlas *Atlas) {
	startIndex := s.nextPage
	for i, page := range atlas.Pages {
		s.RegisterPage(startIndex+i, page)
	}
	s.nextPage = startIndex + len(atlas.Pages)
	// Remap region page indices to account for startIndex offset.
	if startIndex > 0 {
		for name, r := range atlas.regions {
			if r.Page != magentaPlaceholderPage {
				r.Page += uint16(startIndex)
				atlas.regions[name] = r
			}
		}
	}
}
