package ember

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

const testMapJSON = `{
	"width": 4,
	"height": 3,
	"tilewidth": 16,
	"tileheight": 16,
	"layers": [
		{
			"type": "tilelayer",
			"name": "ground",
			"width": 4,
			"height": 3,
			"data": [1, 1, 2, 0, 1, 2, 2, 0, 0, 0, 3, 9]
		},
		{
			"type": "objectgroup",
			"name": "spawns"
		},
		{
			"type": "tilelayer",
			"name": "overlay",
			"visible": false,
			"data": [0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0]
		}
	],
	"tilesets": [
		{
			"firstgid": 1,
			"name": "terrain",
			"tiles": [
				{
					"id": 1,
					"animation": [
						{"tileid": 1, "duration": 100},
						{"tileid": 2, "duration": 100}
					]
				}
			]
		},
		{
			"firstgid": 9,
			"name": "props"
		}
	]
}`

func TestLoadTileMap(t *testing.T) {
	m, err := LoadTileMap([]byte(testMapJSON))
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 4 || m.Height != 3 || m.TileWidth != 16 || m.TileHeight != 16 {
		t.Errorf("map dims = %+v", m)
	}
	// Object layers are skipped.
	if len(m.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(m.Layers))
	}
	if m.Layers[0].Name != "ground" || !m.Layers[0].Visible {
		t.Errorf("ground layer = %+v", m.Layers[0])
	}
	if m.Layers[1].Name != "overlay" || m.Layers[1].Visible {
		t.Errorf("overlay layer = %+v", m.Layers[1])
	}
	if m.Layers[0].Data[2] != 2 {
		t.Error("layer data not decoded")
	}

	if len(m.Tilesets) != 2 {
		t.Fatalf("tilesets = %d, want 2", len(m.Tilesets))
	}
	frames := m.Tilesets[0].Animations[1]
	if len(frames) != 2 {
		t.Fatalf("animation frames = %d, want 2", len(frames))
	}
	// Frame tile IDs resolve to absolute GIDs via firstgid.
	if frames[0].GID != 2 || frames[1].GID != 3 {
		t.Errorf("frame GIDs = %d, %d, want 2, 3", frames[0].GID, frames[1].GID)
	}
	if frames[0].Duration != 100 {
		t.Errorf("frame duration = %d, want 100", frames[0].Duration)
	}
}

func TestLoadTileMapErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{not json`},
		{"zero tile size", `{"width": 2, "height": 2, "tilewidth": 0, "tileheight": 16}`},
		{"short layer data", `{
			"width": 2, "height": 2, "tilewidth": 16, "tileheight": 16,
			"layers": [{"type": "tilelayer", "name": "x", "data": [1, 2, 3]}]
		}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadTileMap([]byte(tc.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTilesetFor(t *testing.T) {
	m, err := LoadTileMap([]byte(testMapJSON))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		gid  uint32
		want string
	}{
		{1, "terrain"},
		{8, "terrain"},
		{9, "props"},
		{200, "props"},
	}
	for _, tc := range tests {
		ts := m.tilesetFor(tc.gid)
		if ts == nil || ts.Name != tc.want {
			t.Errorf("tilesetFor(%d) = %v, want %s", tc.gid, ts, tc.want)
		}
	}
	if m.tilesetFor(0) != nil {
		t.Error("tilesetFor(0) should be nil")
	}
}

func TestSetTileUVsFlips(t *testing.T) {
	region := TextureRegion{X: 32, Y: 64, Width: 16, Height: 16}

	check := func(t *testing.T, flags uint32, wantX, wantY [4]float32) {
		t.Helper()
		vs := make([]ebiten.Vertex, 4)
		setTileUVs(vs, region, flags)
		for i := 0; i < 4; i++ {
			if vs[i].SrcX != wantX[i] || vs[i].SrcY != wantY[i] {
				t.Errorf("vertex %d UV = (%v, %v), want (%v, %v)", i, vs[i].SrcX, vs[i].SrcY, wantX[i], wantY[i])
			}
		}
	}

	// Corners: TL(32,64) TR(48,64) BL(32,80) BR(48,80).
	check(t, 0,
		[4]float32{32, 48, 32, 48},
		[4]float32{64, 64, 80, 80})
	check(t, tileFlipH,
		[4]float32{48, 32, 48, 32},
		[4]float32{64, 64, 80, 80})
	check(t, tileFlipV,
		[4]float32{32, 48, 32, 48},
		[4]float32{80, 80, 64, 64})
	check(t, tileFlipH|tileFlipV,
		[4]float32{48, 32, 48, 32},
		[4]float32{80, 80, 64, 64})
}

func TestTileLayerSetTile(t *testing.T) {
	v := NewTileMapViewport("map", 16, 16)
	data := make([]uint32, 16)
	layer := v.AddTileLayer("ground", 4, 4, data, nil, nil)

	// Simulate a buffer covering the top-left 2x2 tiles.
	layer.bufDirty = false
	layer.bufStartCol = 0
	layer.bufStartRow = 0
	layer.bufCols = 2
	layer.bufRows = 2

	layer.SetTile(1, 1, 5)
	if layer.data[1*4+1] != 5 {
		t.Error("tile data not written")
	}
	if !layer.bufDirty {
		t.Error("in-buffer tile change did not dirty the buffer")
	}

	layer.bufDirty = false
	layer.SetTile(3, 3, 7)
	if layer.bufDirty {
		t.Error("out-of-buffer tile change dirtied the buffer")
	}

	// Out-of-bounds writes are ignored.
	layer.SetTile(-1, 0, 9)
	layer.SetTile(4, 0, 9)
	for _, gid := range layer.data {
		if gid == 9 {
			t.Fatal("out-of-bounds write landed")
		}
	}
}

func TestTileLayerInvalidateBuffer(t *testing.T) {
	v := NewTileMapViewport("map", 16, 16)
	layer := v.AddTileLayer("ground", 2, 2, make([]uint32, 4), nil, nil)
	layer.bufDirty = false
	layer.bufStartCol = 0
	layer.bufStartRow = 0

	layer.InvalidateBuffer()
	if !layer.bufDirty || layer.bufStartCol != -1 || layer.bufStartRow != -1 {
		t.Error("InvalidateBuffer did not reset buffer tracking")
	}
}

func TestTileLayerRebuildBuffer(t *testing.T) {
	v := NewTileMapViewport("map", 16, 16)
	regions := []TextureRegion{
		{},                             // GID 0 unused
		{Width: 16, Height: 16},        // GID 1
		{X: 16, Width: 16, Height: 16}, // GID 2
	}
	data := []uint32{
		1, 0, 2, 0,
		0, 1, 0, 0,
		0, 0, 0, 5, // GID 5 has no region: skipped
	}
	layer := v.AddTileLayer("ground", 4, 3, data, regions, nil)

	layer.ensureBuffer(4, 3)
	layer.rebuildBuffer(0, 0, 4, 3)

	if layer.tileCount != 3 {
		t.Fatalf("tileCount = %d, want 3", layer.tileCount)
	}
	// Tiles fill the buffer in row-major order of the non-empty cells.
	wantX := []float32{0, 32, 16}
	wantY := []float32{0, 0, 16}
	for i := 0; i < 3; i++ {
		if layer.worldX[i] != wantX[i] || layer.worldY[i] != wantY[i] {
			t.Errorf("tile %d world = (%v, %v), want (%v, %v)", i, layer.worldX[i], layer.worldY[i], wantX[i], wantY[i])
		}
	}
	// Index buffer topology: 6 indices per tile referencing its 4 vertices.
	if layer.indices[0] != 0 || layer.indices[5] != 2 {
		t.Error("index topology wrong for first tile")
	}
	if layer.indices[6] != 4 {
		t.Error("second tile indices do not start at vertex 4")
	}
}

func TestTileAnimationAdvance(t *testing.T) {
	v := NewTileMapViewport("map", 16, 16)
	regions := []TextureRegion{
		{},
		{X: 0, Width: 16, Height: 16},
		{X: 16, Width: 16, Height: 16},
	}
	data := []uint32{1}
	layer := v.AddTileLayer("water", 1, 1, data, regions, nil)
	layer.SetAnimations(map[uint32][]AnimFrame{
		1: {
			{GID: 1, Duration: 100},
			{GID: 2, Duration: 100},
		},
	})

	layer.ensureBuffer(1, 1)
	layer.rebuildBuffer(0, 0, 1, 1)
	if layer.vertices[0].SrcX != 0 {
		t.Fatal("initial frame UV wrong")
	}

	v.animElapsed = 150
	v.updateAnimations()
	if layer.vertices[0].SrcX != 16 {
		t.Errorf("frame 2 UV = %v, want 16", layer.vertices[0].SrcX)
	}

	// Wraps around the total duration.
	v.animElapsed = 250
	v.updateAnimations()
	if layer.vertices[0].SrcX != 0 {
		t.Errorf("wrapped UV = %v, want 0", layer.vertices[0].SrcX)
	}
}

func TestBuildTileMap(t *testing.T) {
	m, err := LoadTileMap([]byte(testMapJSON))
	if err != nil {
		t.Fatal(err)
	}

	atlas := NewAtlas(nil)
	atlas.AddRegion("terrain_0", TextureRegion{X: 0, Width: 16, Height: 16})
	atlas.AddRegion("terrain_1", TextureRegion{X: 16, Width: 16, Height: 16})
	atlas.AddRegion("terrain_2", TextureRegion{X: 32, Width: 16, Height: 16})
	atlas.AddRegion("props_0", TextureRegion{X: 48, Width: 16, Height: 16})

	s := NewScene()
	v := BuildTileMap(s, m, atlas, "world")
	if len(v.layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(v.layers))
	}
	if v.TileWidth != 16 || v.TileHeight != 16 {
		t.Error("tile size not carried over")
	}
	if v.layers[1].node.Visible {
		t.Error("hidden layer visibility lost")
	}

	ground := v.layers[0]
	// GID 1 -> terrain_0, GID 9 -> props_0.
	if ground.regions[1].X != 0 || ground.regions[2].X != 16 || ground.regions[3].X != 32 {
		t.Error("terrain GIDs not resolved")
	}
	if ground.regions[9].X != 48 {
		t.Error("props GID not resolved")
	}
	if ground.anims == nil {
		t.Fatal("animations not attached")
	}
	// Tileset-local animation key 1 becomes absolute GID 2.
	if frames := ground.anims[2]; len(frames) != 2 || frames[0].GID != 2 {
		t.Errorf("animation table = %+v", ground.anims)
	}
}
