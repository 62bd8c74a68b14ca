package ember

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestSceneRoot(t *testing.T) {
	s := NewScene()
	if s.Root() == nil || s.Root().Type != NodeTypeContainer {
		t.Fatal("scene root is not a container")
	}
	if s.Root().Name != "root" {
		t.Errorf("root name = %q, want root", s.Root().Name)
	}
}

func TestSceneUpdateFuncError(t *testing.T) {
	s := NewScene()
	boom := errors.New("boom")
	s.SetUpdateFunc(func() error { return boom })
	if err := s.Update(); !errors.Is(err, boom) {
		t.Errorf("Update() = %v, want %v", err, boom)
	}
}

func TestSceneUpdateRunsNodeHooks(t *testing.T) {
	s := NewScene()
	visibleCalls := 0
	hiddenCalls := 0

	shown := NewContainer("shown")
	shown.OnUpdate = func(dt float64) {
		visibleCalls++
		if dt <= 0 {
			t.Errorf("dt = %v, want > 0", dt)
		}
	}
	hidden := NewContainer("hidden")
	hidden.Visible = false
	hidden.OnUpdate = func(dt float64) { hiddenCalls++ }
	s.Root().AddChild(shown)
	s.Root().AddChild(hidden)

	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if visibleCalls != 1 {
		t.Errorf("visible hook calls = %d, want 1", visibleCalls)
	}
	// Hooks run for hidden nodes so animations keep their phase.
	if hiddenCalls != 1 {
		t.Errorf("hidden hook calls = %d, want 1", hiddenCalls)
	}
}

func TestSceneUpdateRefreshesWorldTransforms(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	s.Root().AddChild(parent)

	parent.X = 40
	child.X = 2
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	wx, _ := child.LocalToWorld(0, 0)
	assertNear(t, "child world X", wx, 42)
}

func TestSceneCameras(t *testing.T) {
	s := NewScene()
	a := s.NewCamera(Rect{Width: 320, Height: 240})
	b := s.NewCamera(Rect{X: 320, Width: 320, Height: 240})
	if len(s.Cameras()) != 2 {
		t.Fatalf("cameras = %d, want 2", len(s.Cameras()))
	}
	if a.Zoom != 1 || !a.CullEnabled {
		t.Error("camera defaults wrong")
	}

	s.RemoveCamera(a)
	if len(s.Cameras()) != 1 || s.Cameras()[0] != b {
		t.Error("RemoveCamera left wrong list")
	}
	// Removing an unknown camera is a no-op.
	s.RemoveCamera(a)
	if len(s.Cameras()) != 1 {
		t.Error("second remove changed the list")
	}
}

func TestSceneRegisterPageGrows(t *testing.T) {
	s := NewScene()
	s.RegisterPage(3, nil)
	if len(s.pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(s.pages))
	}
	if s.pageImage(2) != nil {
		t.Error("unset page slot not nil")
	}
	if s.pageImage(9) != nil {
		t.Error("out-of-range page not nil")
	}
}

func TestSceneAdoptAtlasRemapsPages(t *testing.T) {
	s := NewScene()

	first := NewAtlas(make([]*ebiten.Image, 2))
	first.AddRegion("early", TextureRegion{Page: 1, Width: 4, Height: 4})
	s.AdoptAtlas(first)
	// First atlas starts at page 0: no remap.
	if got := first.Region("early").Page; got != 1 {
		t.Errorf("early page = %d, want 1", got)
	}

	second := NewAtlas(make([]*ebiten.Image, 1))
	second.AddRegion("late", TextureRegion{Page: 0, Width: 4, Height: 4})
	second.AddRegion("missing", magentaRegion())
	s.AdoptAtlas(second)
	if got := second.Region("late").Page; got != 2 {
		t.Errorf("late page = %d, want 2", got)
	}
	// Magenta placeholders keep their sentinel page.
	if got := second.Region("missing").Page; got != magentaPlaceholderPage {
		t.Errorf("placeholder page = %d, want sentinel", got)
	}
	if len(s.pages) != 3 {
		t.Errorf("scene pages = %d, want 3", len(s.pages))
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !globalDebug {
		t.Error("globalDebug not set")
	}
	s.SetDebugMode(false)
	if globalDebug {
		t.Error("globalDebug not cleared")
	}
}
