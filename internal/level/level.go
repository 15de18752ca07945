// Package level turns level descriptions into simulation worlds. Descriptions
// are plain data, loaded from JSON or YAML, and can be deep-copied so another
// goroutine can build its own private world from the same level.
package level

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat          = errors.New("unknown level format")
	ErrUnknownBodyType        = errors.New("unknown body type")
	ErrUnknownShape           = errors.New("unknown shape type")
	ErrUnknownMotion          = errors.New("unknown motion kind")
	ErrBadDimensions          = errors.New("shape dimensions must be positive")
	ErrRangeWithoutConstraint = errors.New("range requires a constraint")
	ErrZeroAxis               = errors.New("constraint axis is zero")
)

// --- Description types ---

type Description struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Bodies      []BodyInfo   `json:"bodies" yaml:"bodies"`
	Player      *PlayerInfo  `json:"player,omitempty" yaml:"player,omitempty"`
	ChainPoints []ChainPoint `json:"chainPoints,omitempty" yaml:"chain_points,omitempty"`
}

type BodyInfo struct {
	Name string `json:"name" yaml:"name"`
	// Type is static, kinematic or dynamic. Empty means kinematic when a
	// motion is given, dynamic when tagged isDynamic, static otherwise.
	Type     string      `json:"type,omitempty" yaml:"type,omitempty"`
	Position [3]float32  `json:"position" yaml:"position"`
	Rotation [3]float32  `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Color    string      `json:"color,omitempty" yaml:"color,omitempty"`
	Motion   *MotionInfo `json:"motion,omitempty" yaml:"motion,omitempty"`
	Tags     TagInfo     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Shapes   []ShapeInfo `json:"shapes" yaml:"shapes"`
}

// TagInfo is the tag bag as written in level files. Build turns it into
// validated physics.Modifiers.
type TagInfo struct {
	Weight     *float32    `json:"weight,omitempty" yaml:"weight,omitempty"`
	Mass       *float32    `json:"mass,omitempty" yaml:"mass,omitempty"`
	Constraint *[3]float32 `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Range      *[2]float32 `json:"range,omitempty" yaml:"range,omitempty"`
	Force      *[3]float32 `json:"force,omitempty" yaml:"force,omitempty"`
	IsSwitch   bool        `json:"isSwitch,omitempty" yaml:"is_switch,omitempty"`
	IsDynamic  bool        `json:"isDynamic,omitempty" yaml:"is_dynamic,omitempty"`
	Blocking   bool        `json:"blocking,omitempty" yaml:"blocking,omitempty"`
	Empty      bool        `json:"empty,omitempty" yaml:"empty,omitempty"`
	Bounciness *float32    `json:"bounciness,omitempty" yaml:"bounciness,omitempty"`
	Damping    *float32    `json:"damping,omitempty" yaml:"damping,omitempty"`
}

type ShapeInfo struct {
	Type     string     `json:"type" yaml:"type"`
	Position [3]float32 `json:"pos,omitempty" yaml:"pos,omitempty"`
	Rotation [3]float32 `json:"rot,omitempty" yaml:"rot,omitempty"`
	Size     [3]float32 `json:"size,omitempty" yaml:"size,omitempty"` // box width, height, depth
	Radius   float32    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Height   float32    `json:"height,omitempty" yaml:"height,omitempty"`
}

// MotionInfo selects one of the built-in kinematic motions. Times are seconds.
type MotionInfo struct {
	Kind string `json:"kind" yaml:"kind"` // keyframes, oscillation, spin

	Keyframes []KeyframeInfo `json:"keyframes,omitempty" yaml:"keyframes,omitempty"`
	Loop      bool           `json:"loop,omitempty" yaml:"loop,omitempty"`

	Axis             [3]float32 `json:"axis,omitempty" yaml:"axis,omitempty"`
	Amplitude        float32    `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
	Period           float64    `json:"period,omitempty" yaml:"period,omitempty"`
	Phase            float32    `json:"phase,omitempty" yaml:"phase,omitempty"`
	DegreesPerSecond float32    `json:"degreesPerSecond,omitempty" yaml:"degrees_per_second,omitempty"`
}

type KeyframeInfo struct {
	At       float64    `json:"at" yaml:"at"`
	Position [3]float32 `json:"position" yaml:"position"`
	Rotation [3]float32 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

type PlayerInfo struct {
	Position [3]float32 `json:"position" yaml:"position"`
	Size     [3]float32 `json:"size,omitempty" yaml:"size,omitempty"`
}

// ChainPoint is an anchor the player can hang a chain from. Chains are not
// simulated by the core; the points are carried for the game layer.
type ChainPoint struct {
	Position [3]float32 `json:"position" yaml:"position"`
	Length   float32    `json:"length" yaml:"length"`
	Radius   float32    `json:"radius" yaml:"radius"`
	Body     string     `json:"bodyName,omitempty" yaml:"body,omitempty"`
	Init     bool       `json:"init,omitempty" yaml:"init,omitempty"`
}

// --- Loading ---

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
}

func Load(path string) (*Description, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read level")
	}
	desc, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "level %s", path)
	}
	return desc, nil
}

func Parse(data []byte, format Format) (*Description, error) {
	var desc Description
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, errors.Wrap(err, "parse level")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return nil, errors.Wrap(err, "parse level")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return &desc, nil
}

// Clone deep-copies a description, including every pointer tag, so the copy
// shares no memory with the original.
func Clone(desc *Description) (*Description, error) {
	var out Description
	if err := copier.CopyWithOption(&out, desc, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.Wrap(err, "clone level")
	}
	return &out, nil
}

// TrackedCount is the number of bodies a world built from desc holds.
func (d *Description) TrackedCount() int {
	n := len(d.Bodies)
	if d.Player != nil {
		n++
	}
	return n
}
