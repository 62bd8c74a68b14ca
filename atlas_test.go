package ember

import "testing"

const hashAtlasJSON = `{
	"frames": {
		"spark": {
			"frame": {"x": 0, "y": 0, "w": 16, "h": 16},
			"rotated": false,
			"trimmed": false,
			"spriteSourceSize": {"x": 0, "y": 0, "w": 16, "h": 16},
			"sourceSize": {"w": 16, "h": 16}
		},
		"puff_trimmed": {
			"frame": {"x": 16, "y": 0, "w": 12, "h": 10},
			"rotated": true,
			"trimmed": true,
			"spriteSourceSize": {"x": 2, "y": 3, "w": 12, "h": 10},
			"sourceSize": {"w": 16, "h": 16}
		}
	},
	"meta": {"image": "atlas.png"}
}`

const arrayAtlasJSON = `{
	"textures": [
		{
			"image": "page0.png",
			"frames": {
				"a": {
					"frame": {"x": 0, "y": 0, "w": 8, "h": 8},
					"sourceSize": {"w": 8, "h": 8},
					"spriteSourceSize": {"x": 0, "y": 0, "w": 8, "h": 8}
				}
			}
		},
		{
			"image": "page1.png",
			"frames": {
				"b": {
					"frame": {"x": 4, "y": 4, "w": 8, "h": 8},
					"sourceSize": {"w": 8, "h": 8},
					"spriteSourceSize": {"x": 0, "y": 0, "w": 8, "h": 8}
				}
			}
		}
	]
}`

func TestLoadAtlasHashFormat(t *testing.T) {
	a, err := LoadAtlas([]byte(hashAtlasJSON), nil)
	if err != nil {
		t.Fatal(err)
	}

	spark := a.Region("spark")
	if spark.X != 0 || spark.Y != 0 || spark.Width != 16 || spark.Height != 16 {
		t.Errorf("spark frame = %+v", spark)
	}
	if spark.Page != 0 || spark.Rotated {
		t.Errorf("spark page/rotation = %+v", spark)
	}

	puff := a.Region("puff_trimmed")
	if puff.Width != 12 || puff.Height != 10 {
		t.Errorf("trimmed frame size = %dx%d, want 12x10", puff.Width, puff.Height)
	}
	if puff.OriginalW != 16 || puff.OriginalH != 16 {
		t.Errorf("source size = %dx%d, want 16x16", puff.OriginalW, puff.OriginalH)
	}
	if puff.OffsetX != 2 || puff.OffsetY != 3 {
		t.Errorf("trim offset = (%d, %d), want (2, 3)", puff.OffsetX, puff.OffsetY)
	}
	if !puff.Rotated {
		t.Error("rotated flag lost")
	}
}

func TestLoadAtlasArrayFormat(t *testing.T) {
	a, err := LoadAtlas([]byte(arrayAtlasJSON), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Region("a").Page; got != 0 {
		t.Errorf("region a page = %d, want 0", got)
	}
	if got := a.Region("b").Page; got != 1 {
		t.Errorf("region b page = %d, want 1", got)
	}
	if a.Region("b").X != 4 {
		t.Error("region b frame not decoded")
	}
}

func TestLoadAtlasErrors(t *testing.T) {
	if _, err := LoadAtlas([]byte(`{not json`), nil); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := LoadAtlas([]byte(`{"meta": {}}`), nil); err == nil {
		t.Error("expected error when frames and textures are both absent")
	}
}

func TestAtlasMissingRegionPlaceholder(t *testing.T) {
	a, err := LoadAtlas([]byte(hashAtlasJSON), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.HasRegion("ghost") {
		t.Fatal("HasRegion true for missing name")
	}
	got := a.Region("ghost")
	if got.Page != magentaPlaceholderPage || got.Width != 1 || got.Height != 1 {
		t.Errorf("missing region = %+v, want 1x1 magenta placeholder", got)
	}
	if !a.HasRegion("spark") {
		t.Error("HasRegion false for existing name")
	}
}

func TestAtlasRegionNames(t *testing.T) {
	a := NewAtlas(nil)
	a.AddRegion("run_2", TextureRegion{})
	a.AddRegion("run_0", TextureRegion{})
	a.AddRegion("run_1", TextureRegion{})
	a.AddRegion("idle_0", TextureRegion{})

	got := a.RegionNames("run_")
	want := []string{"run_0", "run_1", "run_2"}
	if len(got) != len(want) {
		t.Fatalf("RegionNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RegionNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if names := a.RegionNames("swim_"); names != nil {
		t.Errorf("RegionNames with no matches = %v, want nil", names)
	}
}

func TestAtlasAddRegionReplaces(t *testing.T) {
	a := NewAtlas(nil)
	a.AddRegion("x", TextureRegion{Width: 4, Height: 4})
	a.AddRegion("x", TextureRegion{Width: 8, Height: 8})
	if a.Region("x").Width != 8 {
		t.Error("AddRegion did not replace existing entry")
	}
}
