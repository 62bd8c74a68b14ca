package ember

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
)

// Shape produces spawn offsets for new particles. Implementations must be safe
// to call repeatedly; offsets are relative to the emitter's spawn position.
type Shape interface {
	// RandPos returns a random offset on the shape and a rotation in radians
	// to add to the particle's starting rotation. Most shapes return 0
	// rotation.
	RandPos() (pos Vec2, rot float64)
}

// ShapeConstructor builds a Shape from its raw config data.
type ShapeConstructor func(data json.RawMessage) (Shape, error)

var shapeRegistry = map[string]ShapeConstructor{}

// RegisterShape makes a spawn shape available under the given config name.
// Registering a name twice panics; shapes are expected to be registered from
// init functions.
func RegisterShape(name string, fn ShapeConstructor) {
	if _, exists := shapeRegistry[name]; exists {
		panic("ember: shape already registered: " + name)
	}
	shapeRegistry[name] = fn
}

// NewShape builds a registered shape by name.
func NewShape(name string, data json.RawMessage) (Shape, error) {
	fn, ok := shapeRegistry[name]
	if !ok {
		return nil, fmt.Errorf("ember: unknown spawn shape %q", name)
	}
	return fn(data)
}

func init() {
	RegisterShape("rect", func(data json.RawMessage) (Shape, error) {
		var s Rectangle
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("ember: rect shape config: %w", err)
		}
		return s, nil
	})
	RegisterShape("torus", func(data json.RawMessage) (Shape, error) {
		var s Torus
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("ember: torus shape config: %w", err)
		}
		return s, nil
	})
	RegisterShape("polygonalChain", func(data json.RawMessage) (Shape, error) {
		chains, err := decodeChains(data)
		if err != nil {
			return nil, fmt.Errorf("ember: polygonalChain shape config: %w", err)
		}
		return NewPolygonalChain(chains), nil
	})
}

// Rectangle spawns particles uniformly inside an axis-aligned rectangle whose
// top-left corner is (X, Y).
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// RandPos implements Shape.
func (s Rectangle) RandPos() (Vec2, float64) {
	return Vec2{
		X: s.X + rand.Float64()*s.Width,
		Y: s.Y + rand.Float64()*s.Height,
	}, 0
}

// Torus spawns particles on a ring or annulus centered at (X, Y). The radial
// distance is uniform in [InnerRadius, Radius]; equal radii produce an exact
// ring. With AffectRotation set, the spawn angle is also added to the
// particle's rotation so particles face away from the center.
type Torus struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Radius         float64 `json:"radius"`
	InnerRadius    float64 `json:"innerRadius"`
	AffectRotation bool    `json:"affectRotation"`
}

// RandPos implements Shape.
func (s Torus) RandPos() (Vec2, float64) {
	r := s.Radius
	if s.InnerRadius != s.Radius {
		r = s.InnerRadius + rand.Float64()*(s.Radius-s.InnerRadius)
	}
	angle := rand.Float64() * math.Pi * 2
	pos := Vec2{
		X: s.X + math.Cos(angle)*r,
		Y: s.Y + math.Sin(angle)*r,
	}
	if s.AffectRotation {
		return pos, angle
	}
	return pos, 0
}

type chainSegment struct {
	p1, p2 Vec2
	length float64
}

// PolygonalChain spawns particles uniformly along one or more polylines,
// weighted by segment length.
type PolygonalChain struct {
	segments        []chainSegment
	countingLengths []float64
	totalLength     float64
}

// NewPolygonalChain builds a chain shape from one or more point lists. Each
// list contributes segments between consecutive points. An empty input yields
// a degenerate chain that spawns at the origin.
func NewPolygonalChain(chains [][]Vec2) *PolygonalChain {
	c := &PolygonalChain{}
	for _, chain := range chains {
		for i := 0; i+1 < len(chain); i++ {
			c.segments = append(c.segments, chainSegment{p1: chain[i], p2: chain[i+1]})
		}
	}
	if len(c.segments) == 0 {
		c.segments = append(c.segments, chainSegment{})
	}
	for i := range c.segments {
		seg := &c.segments[i]
		dx := seg.p2.X - seg.p1.X
		dy := seg.p2.Y - seg.p1.Y
		seg.length = math.Sqrt(dx*dx + dy*dy)
		c.totalLength += seg.length
		c.countingLengths = append(c.countingLengths, c.totalLength)
	}
	return c
}

// RandPos implements Shape.
func (c *PolygonalChain) RandPos() (Vec2, float64) {
	if c.totalLength == 0 {
		return c.segments[0].p1, 0
	}
	pos := rand.Float64() * c.totalLength
	index := 0
	for pos > c.countingLengths[index] {
		index++
	}
	seg := c.segments[index]
	if seg.length == 0 {
		return seg.p1, 0
	}
	start := 0.0
	if index > 0 {
		start = c.countingLengths[index-1]
	}
	t := (pos - start) / seg.length
	return Vec2{
		X: seg.p1.X + t*(seg.p2.X-seg.p1.X),
		Y: seg.p1.Y + t*(seg.p2.Y-seg.p1.Y),
	}, 0
}

// decodeChains accepts either a flat point list or a list of point lists.
func decodeChains(data json.RawMessage) ([][]Vec2, error) {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	var multi [][]point
	if err := json.Unmarshal(data, &multi); err == nil {
		out := make([][]Vec2, len(multi))
		for i, chain := range multi {
			pts := make([]Vec2, len(chain))
			for j, p := range chain {
				pts[j] = Vec2{X: p.X, Y: p.Y}
			}
			out[i] = pts
		}
		return out, nil
	}
	var single []point
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	pts := make([]Vec2, len(single))
	for i, p := range single {
		pts[i] = Vec2{X: p.X, Y: p.Y}
	}
	return [][]Vec2{pts}, nil
}
