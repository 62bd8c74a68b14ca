package ember

import "fmt"

// PropertyNode is one keyframe of a PropertyList: a value reached at a
// normalized time in [0, 1].
type PropertyNode[T any] struct {
	Value T
	Time  float64
}

// PropertyList interpolates a value over the normalized lifetime of a
// particle. Nodes divide [0, 1] into spans; lookup walks the span containing
// the query time and blends linearly within it, unless the list is stepped, in
// which case values snap. An optional ease reshapes time before lookup.
//
// Lists with exactly two nodes at times 0 and 1 take a direct lerp path,
// skipping the span walk.
type PropertyList[T any] struct {
	nodes   []PropertyNode[T]
	lerp    func(a, b T, t float64) T
	ease    EaseFunc
	stepped bool
	simple  bool
}

func newPropertyList[T any](nodes []PropertyNode[T], lerpFn func(a, b T, t float64) T, easeFn EaseFunc, stepped bool) (*PropertyList[T], error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("ember: property list needs at least one node")
	}
	if nodes[0].Time != 0 {
		return nil, fmt.Errorf("ember: property list must start at time 0, got %v", nodes[0].Time)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Time <= nodes[i-1].Time {
			return nil, fmt.Errorf("ember: property list times must increase, got %v after %v", nodes[i].Time, nodes[i-1].Time)
		}
	}
	if last := nodes[len(nodes)-1].Time; len(nodes) > 1 && last != 1 {
		return nil, fmt.Errorf("ember: property list must end at time 1, got %v", last)
	}
	own := make([]PropertyNode[T], len(nodes))
	copy(own, nodes)
	return &PropertyList[T]{
		nodes:   own,
		lerp:    lerpFn,
		ease:    easeFn,
		stepped: stepped,
		simple:  len(own) == 2 && !stepped,
	}, nil
}

// NewFloatList builds a scalar PropertyList. Nodes must be sorted by time,
// starting at 0 and (for more than one node) ending at 1.
func NewFloatList(nodes []PropertyNode[float64], easeFn EaseFunc, stepped bool) (*PropertyList[float64], error) {
	return newPropertyList(nodes, lerpFloat, easeFn, stepped)
}

// NewColorList builds a color PropertyList. Channels interpolate
// independently. Node ordering rules match NewFloatList.
func NewColorList(nodes []PropertyNode[Color], easeFn EaseFunc, stepped bool) (*PropertyList[Color], error) {
	return newPropertyList(nodes, lerpColor, easeFn, stepped)
}

func lerpFloat(a, b float64, t float64) float64 { return a + (b-a)*t }

func lerpColor(a, b Color, t float64) Color { return a.Lerp(b, t) }

// First returns the value at time 0.
func (p *PropertyList[T]) First() T {
	return p.nodes[0].Value
}

// IsStepped reports whether lookup snaps to node values instead of blending.
func (p *PropertyList[T]) IsStepped() bool {
	return p.stepped
}

// Interpolate evaluates the list at normalized time u. The ease, if any, is
// applied to u first. Times outside the node span clamp to the boundary
// values.
func (p *PropertyList[T]) Interpolate(u float64) T {
	if p.ease != nil {
		u = p.ease(u)
	}
	if len(p.nodes) == 1 {
		return p.nodes[0].Value
	}
	if p.simple {
		return p.lerp(p.nodes[0].Value, p.nodes[1].Value, u)
	}
	if p.stepped {
		i := 0
		for i+1 < len(p.nodes) && u > p.nodes[i+1].Time {
			i++
		}
		return p.nodes[i].Value
	}
	if u <= 0 {
		return p.nodes[0].Value
	}
	i := 0
	for i+1 < len(p.nodes) && u > p.nodes[i+1].Time {
		i++
	}
	if i+1 >= len(p.nodes) {
		return p.nodes[len(p.nodes)-1].Value
	}
	cur, next := p.nodes[i], p.nodes[i+1]
	t := (u - cur.Time) / (next.Time - cur.Time)
	return p.lerp(cur.Value, next.Value, t)
}
