package ember

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpgradeConfig translates an emitter config in the older flat schema
// (separate alpha/speed/scale/color/rotation/spawnType fields) into the
// behaviors schema. A config that already has a behaviors key is returned
// unchanged. textures optionally supplies the art list that old configs kept
// outside the config body; without it no texture behavior is generated.
//
// The translation collapses degenerate inputs the same way the old runtime
// interpreted them: a two-point ramp with equal start and end becomes a
// static behavior, and a value equal to its default (alpha 1, speed 0,
// scale 1, color white) is dropped entirely.
func UpgradeConfig(data []byte, textures ...string) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ember: upgrade config: %w", err)
	}
	if _, ok := raw["behaviors"]; ok {
		return data, nil
	}

	var lc legacyConfig
	if err := json.Unmarshal(data, &lc); err != nil {
		return nil, fmt.Errorf("ember: upgrade config: %w", err)
	}

	var w behaviorWriter
	lc.writeAlpha(&w)
	lc.writeMovement(&w)
	lc.writeScale(&w)
	lc.writeColor(&w)
	lc.writeRotation(&w)
	lc.writeBlendMode(&w)
	writeTextures(&w, textures, lc.OrderedArt)
	lc.writeSpawn(&w)
	if w.err != nil {
		return nil, fmt.Errorf("ember: upgrade config: %w", w.err)
	}

	out := make(map[string]json.RawMessage, len(raw))
	for _, key := range []string{
		"lifetime", "frequency", "spawnChance", "particlesPerWave",
		"emitterLifetime", "maxParticles", "addAtBack", "pos",
		"emit", "autoUpdate", "ease",
	} {
		if v, ok := raw[key]; ok {
			out[key] = v
		}
	}
	behaviors, err := json.Marshal(w.entries)
	if err != nil {
		return nil, fmt.Errorf("ember: upgrade config: %w", err)
	}
	out["behaviors"] = behaviors
	return json.Marshal(out)
}

// legacyConfig covers the flat-schema fields that turn into behaviors. The
// passthrough fields (lifetime, frequency, ...) are copied raw and never
// decoded here.
type legacyConfig struct {
	Alpha                *legacyValue  `json:"alpha"`
	Speed                *legacyValue  `json:"speed"`
	Scale                *legacyValue  `json:"scale"`
	Color                *legacyColor  `json:"color"`
	Acceleration         *Vec2         `json:"acceleration"`
	MaxSpeed             float64       `json:"maxSpeed"`
	NoRotation           bool          `json:"noRotation"`
	StartRotation        *Range        `json:"startRotation"`
	RotationSpeed        *Range        `json:"rotationSpeed"`
	RotationAcceleration float64       `json:"rotationAcceleration"`
	BlendMode            string        `json:"blendMode"`
	OrderedArt           bool          `json:"orderedArt"`
	SpawnType            string        `json:"spawnType"`
	SpawnRect            *Rectangle    `json:"spawnRect"`
	SpawnCircle          *legacyCircle `json:"spawnCircle"`
	SpawnPolygon         json.RawMessage `json:"spawnPolygon"`
	ParticleSpacing      float64       `json:"particleSpacing"`
	AngleStart           float64       `json:"angleStart"`
	ExtraData            *struct {
		Path string `json:"path"`
	} `json:"extraData"`
}

type legacyCircle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	R    float64 `json:"r"`
	MinR float64 `json:"minR"`
}

// legacyValue is either a {start, end} ramp or a {list: [...]} keyframe list.
// The raw form is kept so multi-node lists pass through untouched.
type legacyValue struct {
	raw       json.RawMessage
	Start     *float64
	End       float64
	List      []ValueStep[float64]
	speedMult *float64
	scaleMult *float64
}

func (v *legacyValue) UnmarshalJSON(data []byte) error {
	v.raw = append([]byte(nil), data...)
	var fields struct {
		Start                  *float64             `json:"start"`
		End                    float64              `json:"end"`
		List                   []ValueStep[float64] `json:"list"`
		MinimumSpeedMultiplier *float64             `json:"minimumSpeedMultiplier"`
		MinimumScaleMultiplier *float64             `json:"minimumScaleMultiplier"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	v.Start, v.End, v.List = fields.Start, fields.End, fields.List
	v.speedMult = fields.MinimumSpeedMultiplier
	v.scaleMult = fields.MinimumScaleMultiplier
	return nil
}

func (v *legacyValue) mult() float64 {
	if v.speedMult != nil {
		return *v.speedMult
	}
	if v.scaleMult != nil {
		return *v.scaleMult
	}
	return 1
}

type legacyColor struct {
	raw   json.RawMessage
	Start *string
	End   string
	List  []ValueStep[string]
}

func (v *legacyColor) UnmarshalJSON(data []byte) error {
	v.raw = append([]byte(nil), data...)
	var fields struct {
		Start *string             `json:"start"`
		End   string              `json:"end"`
		List  []ValueStep[string] `json:"list"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	v.Start, v.End, v.List = fields.Start, fields.End, fields.List
	return nil
}

// behaviorWriter accumulates behavior entries, holding the first marshal
// error instead of threading it through every call.
type behaviorWriter struct {
	entries []BehaviorEntry
	err     error
}

func (w *behaviorWriter) add(typ string, cfg any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		w.err = err
		return
	}
	w.entries = append(w.entries, BehaviorEntry{Type: typ, Config: data})
}

func rampList(start, end float64) FloatListConfig {
	return FloatListConfig{List: []ValueStep[float64]{
		{Value: start, Time: 0},
		{Value: end, Time: 1},
	}}
}

func (lc *legacyConfig) writeAlpha(w *behaviorWriter) {
	a := lc.Alpha
	if a == nil {
		return
	}
	switch {
	case a.Start != nil:
		if *a.Start == a.End {
			if *a.Start != 1 {
				w.add("alphaStatic", map[string]float64{"alpha": *a.Start})
			}
		} else {
			w.add("alpha", map[string]any{"alpha": rampList(*a.Start, a.End)})
		}
	case len(a.List) == 1:
		if a.List[0].Value != 1 {
			w.add("alphaStatic", map[string]float64{"alpha": a.List[0].Value})
		}
	case len(a.List) > 1:
		w.add("alpha", map[string]json.RawMessage{"alpha": a.raw})
	}
}

func (lc *legacyConfig) writeMovement(w *behaviorWriter) {
	switch {
	case lc.Acceleration != nil && (lc.Acceleration.X != 0 || lc.Acceleration.Y != 0):
		var minStart, maxStart float64
		if s := lc.Speed; s != nil {
			if s.Start != nil {
				maxStart = *s.Start
			} else if len(s.List) > 0 {
				maxStart = s.List[0].Value
			}
			minStart = maxStart * s.mult()
		}
		w.add("moveAcceleration", map[string]any{
			"accel":    lc.Acceleration,
			"minStart": minStart,
			"maxStart": maxStart,
			"maxSpeed": lc.MaxSpeed,
			"rotate":   !lc.NoRotation,
		})

	case lc.ExtraData != nil && lc.ExtraData.Path != "":
		cfg := map[string]any{"path": lc.ExtraData.Path, "minMult": 1.0}
		cfg["speed"] = FloatListConfig{List: []ValueStep[float64]{{Value: 0, Time: 0}}}
		if s := lc.Speed; s != nil {
			cfg["minMult"] = s.mult()
			if s.Start != nil {
				if *s.Start == s.End {
					cfg["speed"] = FloatListConfig{List: []ValueStep[float64]{{Value: *s.Start, Time: 0}}}
				} else {
					cfg["speed"] = rampList(*s.Start, s.End)
				}
			} else {
				cfg["speed"] = s.raw
			}
		}
		w.add("movePath", cfg)

	case lc.Speed != nil:
		s := lc.Speed
		if s.Start != nil {
			if *s.Start == s.End {
				if *s.Start != 0 {
					w.add("moveSpeedStatic", map[string]float64{
						"min": *s.Start * s.mult(),
						"max": *s.Start,
					})
				}
			} else {
				w.add("moveSpeed", map[string]any{
					"speed":   rampList(*s.Start, s.End),
					"minMult": s.mult(),
				})
			}
		} else if len(s.List) == 1 {
			if s.List[0].Value != 0 {
				w.add("moveSpeedStatic", map[string]float64{
					"min": s.List[0].Value * s.mult(),
					"max": s.List[0].Value,
				})
			}
		} else if len(s.List) > 1 {
			w.add("moveSpeed", map[string]any{"speed": s.raw, "minMult": s.mult()})
		}
	}
}

func (lc *legacyConfig) writeScale(w *behaviorWriter) {
	s := lc.Scale
	if s == nil {
		return
	}
	mult := s.mult()
	switch {
	case s.Start != nil:
		if *s.Start == s.End {
			if *s.Start != 1 {
				w.add("scaleStatic", map[string]float64{"min": *s.Start * mult, "max": *s.Start})
			}
		} else {
			w.add("scale", map[string]any{"scale": rampList(*s.Start, s.End), "minMult": mult})
		}
	case len(s.List) == 1:
		if mult != 1 || s.List[0].Value != 1 {
			w.add("scaleStatic", map[string]float64{"min": s.List[0].Value * mult, "max": s.List[0].Value})
		}
	case len(s.List) > 1:
		w.add("scale", map[string]any{"scale": s.raw, "minMult": mult})
	}
}

func isWhite(hex string) bool {
	hex = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(hex), "#"), "0x")
	return hex == "ffffff"
}

func (lc *legacyConfig) writeColor(w *behaviorWriter) {
	c := lc.Color
	if c == nil {
		return
	}
	switch {
	case c.Start != nil:
		if *c.Start == c.End {
			if !isWhite(*c.Start) {
				w.add("colorStatic", map[string]string{"color": *c.Start})
			}
		} else {
			w.add("color", map[string]any{"color": ColorListConfig{List: []ValueStep[string]{
				{Value: *c.Start, Time: 0},
				{Value: c.End, Time: 1},
			}}})
		}
	case len(c.List) == 1:
		if !isWhite(c.List[0].Value) {
			w.add("colorStatic", map[string]string{"color": c.List[0].Value})
		}
	case len(c.List) > 1:
		w.add("color", map[string]json.RawMessage{"color": c.raw})
	}
}

func (lc *legacyConfig) writeRotation(w *behaviorWriter) {
	var speed, start Range
	if lc.RotationSpeed != nil {
		speed = *lc.RotationSpeed
	}
	if lc.StartRotation != nil {
		start = *lc.StartRotation
	}
	if lc.RotationAcceleration != 0 || speed.Min != 0 || speed.Max != 0 {
		w.add("rotation", map[string]float64{
			"minStart": start.Min,
			"maxStart": start.Max,
			"minSpeed": speed.Min,
			"maxSpeed": speed.Max,
			"accel":    lc.RotationAcceleration,
		})
	} else if start.Min != 0 || start.Max != 0 {
		w.add("rotationStatic", map[string]float64{"min": start.Min, "max": start.Max})
	}
	if lc.NoRotation {
		w.add("noRotation", struct{}{})
	}
}

func (lc *legacyConfig) writeBlendMode(w *behaviorWriter) {
	if lc.BlendMode != "" && lc.BlendMode != "normal" {
		w.add("blendMode", map[string]string{"blendMode": lc.BlendMode})
	}
}

func writeTextures(w *behaviorWriter, textures []string, ordered bool) {
	switch {
	case len(textures) == 1:
		w.add("textureSingle", map[string]string{"texture": textures[0]})
	case len(textures) > 1:
		typ := "textureRandom"
		if ordered {
			typ = "textureOrdered"
		}
		w.add(typ, map[string][]string{"textures": textures})
	}
}

func (lc *legacyConfig) writeSpawn(w *behaviorWriter) {
	var circle legacyCircle
	if lc.SpawnCircle != nil {
		circle = *lc.SpawnCircle
	}
	switch lc.SpawnType {
	case "point":
		w.add("spawnPoint", struct{}{})
	case "rect":
		var rect Rectangle
		if lc.SpawnRect != nil {
			rect = *lc.SpawnRect
		}
		w.add("spawnShape", map[string]any{"type": "rect", "data": rect})
	case "circle":
		w.add("spawnShape", map[string]any{"type": "torus", "data": Torus{
			X: circle.X, Y: circle.Y, Radius: circle.R,
		}})
	case "ring":
		w.add("spawnShape", map[string]any{"type": "torus", "data": Torus{
			X: circle.X, Y: circle.Y, Radius: circle.R,
			InnerRadius: circle.MinR, AffectRotation: true,
		}})
	case "burst":
		w.add("spawnBurst", map[string]float64{
			"start":    lc.AngleStart,
			"spacing":  lc.ParticleSpacing,
			"distance": 0,
		})
	case "polygonalChain":
		if len(lc.SpawnPolygon) > 0 {
			w.add("spawnShape", map[string]any{"type": "polygonalChain", "data": lc.SpawnPolygon})
		}
	}
}
