package ember

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmitterConfig describes an emitter. Configs are usually loaded from JSON or
// YAML via LoadEmitterConfig, which fills in the defaults noted below; a
// config built in code must set every field it relies on.
type EmitterConfig struct {
	// Lifetime is the min/max particle lifetime in seconds. A rolled
	// lifetime of zero or less is coerced to 1.
	Lifetime Range
	// Frequency is the time between spawn waves in seconds (default 1 when
	// zero or negative).
	Frequency float64
	// SpawnChance is the per-particle probability of actually spawning, in
	// (0, 1]. Decoding defaults a missing value to 1; an explicit 0 means
	// never spawn.
	SpawnChance float64
	// ParticlesPerWave is how many particles each wave attempts (minimum 1).
	ParticlesPerWave int
	// EmitterLifetime stops emission after this many seconds of spawn-timer
	// budget. Zero or -1 means emit forever.
	EmitterLifetime float64
	// MaxParticles is the particle pool size (default 1000).
	MaxParticles int
	// AddAtBack renders new particles behind existing ones instead of on top.
	AddAtBack bool
	// Pos is the spawn offset relative to the owner position.
	Pos Vec2
	// Emit starts the emitter running. Decoding defaults a missing value to
	// true.
	Emit bool
	// AutoUpdate lets the scene drive the emitter every tick. Decoding
	// defaults a missing value to true.
	AutoUpdate bool
	// Ease reshapes every particle's life fraction before behaviors see it.
	Ease EaseValue
	// Behaviors lists the behaviors to attach, in declaration order.
	Behaviors []BehaviorEntry
}

// rawEmitterConfig is the wire form. Pointer fields separate "absent" from an
// explicit zero so decoding can fill defaults.
type rawEmitterConfig struct {
	Lifetime         Range           `json:"lifetime" yaml:"lifetime"`
	Frequency        float64         `json:"frequency" yaml:"frequency"`
	SpawnChance      *float64        `json:"spawnChance" yaml:"spawnChance"`
	ParticlesPerWave int             `json:"particlesPerWave" yaml:"particlesPerWave"`
	EmitterLifetime  *float64        `json:"emitterLifetime" yaml:"emitterLifetime"`
	MaxParticles     int             `json:"maxParticles" yaml:"maxParticles"`
	AddAtBack        bool            `json:"addAtBack" yaml:"addAtBack"`
	Pos              Vec2            `json:"pos" yaml:"pos"`
	Emit             *bool           `json:"emit" yaml:"emit"`
	AutoUpdate       *bool           `json:"autoUpdate" yaml:"autoUpdate"`
	Ease             EaseValue       `json:"ease" yaml:"ease"`
	Behaviors        []BehaviorEntry `json:"behaviors" yaml:"behaviors"`
}

func (raw *rawEmitterConfig) apply(c *EmitterConfig) {
	c.Lifetime = raw.Lifetime
	c.Frequency = raw.Frequency
	c.SpawnChance = 1
	if raw.SpawnChance != nil {
		c.SpawnChance = *raw.SpawnChance
	}
	c.ParticlesPerWave = raw.ParticlesPerWave
	c.EmitterLifetime = -1
	if raw.EmitterLifetime != nil {
		c.EmitterLifetime = *raw.EmitterLifetime
	}
	c.MaxParticles = raw.MaxParticles
	c.AddAtBack = raw.AddAtBack
	c.Pos = raw.Pos
	c.Emit = true
	if raw.Emit != nil {
		c.Emit = *raw.Emit
	}
	c.AutoUpdate = true
	if raw.AutoUpdate != nil {
		c.AutoUpdate = *raw.AutoUpdate
	}
	c.Ease = raw.Ease
	c.Behaviors = raw.Behaviors
}

func (c *EmitterConfig) UnmarshalJSON(data []byte) error {
	var raw rawEmitterConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw.apply(c)
	return nil
}

func (c *EmitterConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw rawEmitterConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw.apply(c)
	return nil
}

// BehaviorEntry is one behavior in an emitter config: a registered type name
// plus that type's config payload, kept raw until construction.
type BehaviorEntry struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config"`
}

// UnmarshalYAML re-encodes the YAML payload as JSON so behavior constructors
// only ever deal with one wire format.
func (b *BehaviorEntry) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type   string    `yaml:"type"`
		Config yaml.Node `yaml:"config"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	b.Type = raw.Type
	b.Config = nil
	if raw.Config.Kind == 0 {
		return nil
	}
	var payload any
	if err := raw.Config.Decode(&payload); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ember: behavior %q config: %w", b.Type, err)
	}
	b.Config = data
	return nil
}

// EaseValue selects an easing curve in a config: either the name of a known
// easing function ("outquad", "inoutcubic", ...) or a list of quadratic
// segments approximating a custom curve.
type EaseValue struct {
	Name     string
	Segments []EaseSegment
}

// IsZero reports whether no ease was configured.
func (v EaseValue) IsZero() bool {
	return v.Name == "" && len(v.Segments) == 0
}

// Func resolves the configured ease, or nil when none is set.
func (v EaseValue) Func() (EaseFunc, error) {
	if v.Name != "" {
		fn, ok := EaseByName(v.Name)
		if !ok {
			return nil, fmt.Errorf("ember: unknown ease %q", v.Name)
		}
		return fn, nil
	}
	if len(v.Segments) > 0 {
		return SegmentEase(v.Segments), nil
	}
	return nil, nil
}

func (v EaseValue) MarshalJSON() ([]byte, error) {
	if v.Name != "" {
		return json.Marshal(v.Name)
	}
	if len(v.Segments) > 0 {
		return json.Marshal(v.Segments)
	}
	return []byte("null"), nil
}

func (v *EaseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = EaseValue{}
		return nil
	}
	if data[0] == '"' {
		v.Segments = nil
		return json.Unmarshal(data, &v.Name)
	}
	v.Name = ""
	return json.Unmarshal(data, &v.Segments)
}

func (v *EaseValue) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v.Segments = nil
		return value.Decode(&v.Name)
	case yaml.SequenceNode:
		v.Name = ""
		return value.Decode(&v.Segments)
	}
	return fmt.Errorf("ember: ease must be a name or a segment list")
}

// ValueStep is one keyframe in a value list: a value at a normalized time.
type ValueStep[T any] struct {
	Value T       `json:"value" yaml:"value"`
	Time  float64 `json:"time" yaml:"time"`
}

// FloatListConfig is the wire form of a scalar keyframe list.
type FloatListConfig struct {
	List      []ValueStep[float64] `json:"list" yaml:"list"`
	IsStepped bool                 `json:"isStepped" yaml:"isStepped"`
	Ease      EaseValue            `json:"ease" yaml:"ease"`
}

// Build compiles the list into a PropertyList.
func (c FloatListConfig) Build() (*PropertyList[float64], error) {
	easeFn, err := c.Ease.Func()
	if err != nil {
		return nil, err
	}
	nodes := make([]PropertyNode[float64], len(c.List))
	for i, s := range c.List {
		nodes[i] = PropertyNode[float64]{Value: s.Value, Time: s.Time}
	}
	return NewFloatList(nodes, easeFn, c.IsStepped)
}

// ColorListConfig is the wire form of a color keyframe list. Values are hex
// strings as accepted by ParseColor.
type ColorListConfig struct {
	List      []ValueStep[string] `json:"list" yaml:"list"`
	IsStepped bool                `json:"isStepped" yaml:"isStepped"`
	Ease      EaseValue           `json:"ease" yaml:"ease"`
}

// Build compiles the list into a PropertyList.
func (c ColorListConfig) Build() (*PropertyList[Color], error) {
	easeFn, err := c.Ease.Func()
	if err != nil {
		return nil, err
	}
	nodes := make([]PropertyNode[Color], len(c.List))
	for i, s := range c.List {
		col, err := ParseColor(s.Value)
		if err != nil {
			return nil, err
		}
		nodes[i] = PropertyNode[Color]{Value: col, Time: s.Time}
	}
	return NewColorList(nodes, easeFn, c.IsStepped)
}

// LoadEmitterConfig reads an emitter config from a .json, .yaml or .yml file,
// chosen by extension. JSON configs in the older flat schema are upgraded to
// the behaviors schema first.
func LoadEmitterConfig(path string) (*EmitterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ember: load emitter config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseEmitterConfigYAML(data)
	default:
		return ParseEmitterConfigJSON(data)
	}
}

// ParseEmitterConfigJSON decodes an emitter config from JSON, upgrading the
// older flat schema when necessary. Upgrading without a texture list leaves
// texture behaviors out; use UpgradeConfig directly to supply one.
func ParseEmitterConfigJSON(data []byte) (*EmitterConfig, error) {
	upgraded, err := UpgradeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("ember: parse emitter config: %w", err)
	}
	cfg := new(EmitterConfig)
	if err := json.Unmarshal(upgraded, cfg); err != nil {
		return nil, fmt.Errorf("ember: parse emitter config: %w", err)
	}
	return cfg, nil
}

// ParseEmitterConfigYAML decodes an emitter config from YAML.
func ParseEmitterConfigYAML(data []byte) (*EmitterConfig, error) {
	cfg := new(EmitterConfig)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ember: parse emitter config: %w", err)
	}
	return cfg, nil
}
