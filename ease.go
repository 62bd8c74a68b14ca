package ember

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// EaseFunc maps normalized time in [0, 1] to normalized progress. Progress may
// leave [0, 1] for overshooting eases (back, elastic). All interpolation inside
// the particle system goes through this single form; use EaseAdapter to bring
// tween-style functions into it.
type EaseFunc func(t float64) float64

// EaseAdapter converts a supported ease representation into an EaseFunc.
// Accepted forms:
//
//   - EaseFunc or func(float64) float64: used as is
//   - ease.TweenFunc or func(t, b, c, d float32) float32: evaluated with
//     begin 0, change 1, duration 1
//
// Any other value (including nil) yields nil, meaning linear.
func EaseAdapter(fn any) EaseFunc {
	switch f := fn.(type) {
	case EaseFunc:
		return f
	case func(float64) float64:
		return f
	case ease.TweenFunc:
		return func(t float64) float64 {
			return float64(f(float32(t), 0, 1, 1))
		}
	case func(t, b, c, d float32) float32:
		return func(t float64) float64 {
			return float64(f(float32(t), 0, 1, 1))
		}
	default:
		return nil
	}
}

// namedEases maps config ease names to tween functions. Lookup is
// case-insensitive.
var namedEases = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"outinquad":    ease.OutInQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"outincubic":   ease.OutInCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"outinquart":   ease.OutInQuart,
	"inquint":      ease.InQuint,
	"outquint":     ease.OutQuint,
	"inoutquint":   ease.InOutQuint,
	"outinquint":   ease.OutInQuint,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"outinsine":    ease.OutInSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"outinexpo":    ease.OutInExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"outincirc":    ease.OutInCirc,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"outinback":    ease.OutInBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
	"outinbounce":  ease.OutInBounce,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"outinelastic": ease.OutInElastic,
}

// EaseByName resolves an ease name ("outQuad", "inOutSine", ...) to an
// EaseFunc. ok is false for unknown names.
func EaseByName(name string) (fn EaseFunc, ok bool) {
	tf, ok := namedEases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return EaseAdapter(tf), true
}

// EaseSegment is one span of a piecewise-quadratic ease curve. Start and End
// are the progress values at the span boundaries and CP the control value
// pulled toward mid-span. Segments divide [0, 1] evenly.
type EaseSegment struct {
	Start float64 `json:"s" yaml:"s"`
	CP    float64 `json:"cp" yaml:"cp"`
	End   float64 `json:"e" yaml:"e"`
}

// SegmentEase builds an EaseFunc from evenly spaced quadratic segments.
// Returns nil if segments is empty.
func SegmentEase(segments []EaseSegment) EaseFunc {
	if len(segments) == 0 {
		return nil
	}
	segs := make([]EaseSegment, len(segments))
	copy(segs, segments)
	qty := float64(len(segs))
	return func(time float64) float64 {
		i := int(qty * time)
		if i < 0 {
			i = 0
		}
		if i >= len(segs) {
			i = len(segs) - 1
		}
		t := (time - float64(i)/qty) * qty
		s := segs[i]
		return s.Start + t*(2*(1-t)*(s.CP-s.Start)+t*(s.End-s.Start))
	}
}
