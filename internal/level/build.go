package level

import (
	"log"
	"physcore/internal/config"
	"physcore/internal/physics"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// PlayerName is the name given to the body built from Description.Player.
const PlayerName = "player"

var defaultPlayerSize = [3]float32{0.8, 1.8, 0.8}

// Build validates desc and constructs its world. World bodies follow
// desc.Bodies order, with the player last.
func Build(desc *Description, cfg config.Physics) (*physics.World, error) {
	bodies := make([]*physics.Body, 0, len(desc.Bodies))
	for i := range desc.Bodies {
		b, err := buildBody(&desc.Bodies[i], cfg)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}

	var player *physics.Body
	if desc.Player != nil {
		var err error
		if player, err = buildPlayer(desc.Player, cfg); err != nil {
			return nil, err
		}
	}

	for _, cp := range desc.ChainPoints {
		if cp.Body != "" && !hasBody(desc, cp.Body) {
			log.Printf("Level: chain point refers to unknown body %q", cp.Body)
		}
	}

	w, err := physics.NewWorld(cfg, bodies, player)
	if err != nil {
		return nil, errors.Wrapf(err, "level %q", desc.Name)
	}
	return w, nil
}

// Validate runs the same checks as Build without creating anything that
// outlives the call.
func Validate(desc *Description, cfg config.Physics) error {
	for i := range desc.Bodies {
		if _, err := buildBody(&desc.Bodies[i], cfg); err != nil {
			return err
		}
	}
	return nil
}

func hasBody(desc *Description, name string) bool {
	for _, b := range desc.Bodies {
		if b.Name == name {
			return true
		}
	}
	return false
}

func bodyType(info *BodyInfo) (physics.BodyType, error) {
	switch info.Type {
	case "static":
		return physics.Static, nil
	case "kinematic":
		return physics.Kinematic, nil
	case "dynamic":
		return physics.Dynamic, nil
	case "":
		switch {
		case info.Motion != nil:
			return physics.Kinematic, nil
		case info.Tags.IsDynamic:
			return physics.Dynamic, nil
		}
		return physics.Static, nil
	}
	return physics.Static, errors.Wrapf(ErrUnknownBodyType, "%q", info.Type)
}

func buildBody(info *BodyInfo, cfg config.Physics) (*physics.Body, error) {
	kind, err := bodyType(info)
	if err != nil {
		return nil, errors.Wrapf(err, "body %q", info.Name)
	}

	mods, err := buildModifiers(info.Tags)
	if err != nil {
		if errors.Is(err, ErrRangeWithoutConstraint) {
			log.Printf("Level: body %q has a range but no constraint, rejected", info.Name)
		}
		return nil, errors.Wrapf(err, "body %q", info.Name)
	}

	opts := physics.BodyOptions{
		Name: info.Name,
		Transform: physics.Transform{
			Position: physics.Vec(info.Position),
			Rotation: physics.Vec(info.Rotation),
		},
		Mass:       mass(info.Tags),
		Bounciness: valueOr(info.Tags.Bounciness, cfg.DefaultBounciness),
		Damping:    valueOr(info.Tags.Damping, cfg.DefaultDamping),
		Modifiers:  mods,
	}
	if info.Motion != nil {
		if opts.Motion, err = buildMotion(info.Motion, opts.Transform); err != nil {
			return nil, errors.Wrapf(err, "body %q", info.Name)
		}
	}

	b, err := physics.NewBody(kind, opts)
	if err != nil {
		return nil, err
	}
	for i := range info.Shapes {
		s, err := buildShape(&info.Shapes[i])
		if err != nil {
			return nil, errors.Wrapf(err, "body %q shape %d", info.Name, i)
		}
		if err := b.AddShape(s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildPlayer(info *PlayerInfo, cfg config.Physics) (*physics.Body, error) {
	size := info.Size
	if size == [3]float32{} {
		size = defaultPlayerSize
	}
	b, err := physics.NewBody(physics.Dynamic, physics.BodyOptions{
		Name:      PlayerName,
		Transform: physics.Transform{Position: physics.Vec(info.Position)},
		Damping:   cfg.DefaultDamping,
	})
	if err != nil {
		return nil, err
	}
	shape, err := buildShape(&ShapeInfo{Type: "box", Size: size})
	if err != nil {
		return nil, errors.Wrap(err, "player")
	}
	return b, b.AddShape(shape)
}

// mass prefers an explicit mass, then weight, then 1.
func mass(tags TagInfo) float32 {
	switch {
	case tags.Mass != nil && *tags.Mass > 0:
		return *tags.Mass
	case tags.Weight != nil && *tags.Weight > 0:
		return *tags.Weight
	}
	return 1
}

func valueOr(v *float32, fallback float32) float32 {
	if v == nil {
		return fallback
	}
	return *v
}

func buildModifiers(tags TagInfo) (physics.Modifiers, error) {
	mods := physics.Modifiers{Blocking: tags.Blocking, Empty: tags.Empty}

	if tags.Range != nil && tags.Constraint == nil {
		return mods, ErrRangeWithoutConstraint
	}
	if tags.Constraint != nil {
		axis := physics.Vec(*tags.Constraint)
		if rl.Vector3Length(axis) == 0 {
			return mods, ErrZeroAxis
		}
		c := physics.NewConstraint(axis)
		if tags.Range != nil {
			c = c.WithRange(tags.Range[0], tags.Range[1])
		}
		mods.Constraint = &c
	}
	if tags.Force != nil {
		force := physics.Vec(*tags.Force)
		mods.Force = &force
	}
	if tags.IsSwitch {
		if mods.Constraint == nil || mods.Force == nil {
			return mods, physics.ErrSwitchIncomplete
		}
		sw, err := physics.NewSwitch(*mods.Constraint, *mods.Force)
		if err != nil {
			return mods, err
		}
		mods.Switch = sw
	}
	return mods, nil
}

func buildShape(info *ShapeInfo) (*physics.Shape, error) {
	var s *physics.Shape
	switch info.Type {
	case "box", "":
		if info.Size[0] <= 0 || info.Size[1] <= 0 || info.Size[2] <= 0 {
			return nil, errors.Wrapf(ErrBadDimensions, "box %v", info.Size)
		}
		s = physics.NewBox(physics.Vec(info.Size))
	case "sphere":
		if info.Radius <= 0 {
			return nil, errors.Wrapf(ErrBadDimensions, "sphere radius %v", info.Radius)
		}
		s = physics.NewSphere(info.Radius)
	case "cylinder":
		if info.Radius <= 0 || info.Height <= 0 {
			return nil, errors.Wrapf(ErrBadDimensions, "cylinder %vx%v", info.Radius, info.Height)
		}
		s = physics.NewCylinder(info.Radius, info.Height)
	default:
		return nil, errors.Wrapf(ErrUnknownShape, "%q", info.Type)
	}
	s.Offset = physics.Transform{
		Position: physics.Vec(info.Position),
		Rotation: physics.Vec(info.Rotation),
	}
	return s, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// buildMotion maps a motion description onto a closed motion type. origin is
// the body's placement in the file, which oscillations and spins move around.
func buildMotion(info *MotionInfo, origin physics.Transform) (physics.Motion, error) {
	switch info.Kind {
	case "keyframes":
		frames := make([]physics.Keyframe, len(info.Keyframes))
		for i, kf := range info.Keyframes {
			frames[i] = physics.Keyframe{
				At: seconds(kf.At),
				Pose: physics.Transform{
					Position: physics.Vec(kf.Position),
					Rotation: physics.Vec(kf.Rotation),
				},
			}
		}
		k, err := physics.NewKeyframes(frames, info.Loop)
		if err != nil {
			return nil, err
		}
		return k, nil
	case "oscillation":
		return physics.Oscillation{
			Origin:    origin,
			Axis:      physics.Vec(info.Axis),
			Amplitude: info.Amplitude,
			Period:    seconds(info.Period),
			Phase:     info.Phase,
		}, nil
	case "spin":
		return physics.Spin{
			Origin:           origin,
			Axis:             physics.Vec(info.Axis),
			DegreesPerSecond: info.DegreesPerSecond,
		}, nil
	}
	return nil, errors.Wrapf(ErrUnknownMotion, "%q", info.Kind)
}
