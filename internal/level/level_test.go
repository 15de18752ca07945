package level

import (
	"os"
	"path/filepath"
	"physcore/internal/config"
	"physcore/internal/physics"
	"testing"

	"github.com/pkg/errors"
)

const levelsDir = "../../assets/levels"

func mustParseYAML(t *testing.T, src string) *Description {
	t.Helper()
	desc, err := Parse([]byte(src), FormatYAML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return desc
}

func TestLoadDemoYAML(t *testing.T) {
	desc, err := Load(filepath.Join(levelsDir, "demo.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	w, err := Build(desc, config.Default().Physics)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(w.Bodies()) != len(desc.Bodies)+1 {
		t.Errorf("Expected %d bodies with the player, got %d", len(desc.Bodies)+1, len(w.Bodies()))
	}
	if w.Player() == nil || w.Player().Name != PlayerName {
		t.Error("Expected player body")
	}

	want := map[string]physics.BodyType{
		"floor":   physics.Static,
		"crate":   physics.Dynamic,
		"lift":    physics.Kinematic,
		"spinner": physics.Kinematic,
	}
	for name, kind := range want {
		b := w.Find(name)
		if b == nil {
			t.Errorf("Missing body %q", name)
			continue
		}
		if b.Type() != kind {
			t.Errorf("Expected %q to be %s, got %s", name, kind, b.Type())
		}
	}

	if _, ok := w.Find("button").SwitchState(); !ok {
		t.Error("Expected button to be a switch")
	}
	if !w.Find("checkpoint").Modifiers().Empty {
		t.Error("Expected checkpoint to be a sensor")
	}
	if len(desc.ChainPoints) != 1 {
		t.Errorf("Expected 1 chain point, got %d", len(desc.ChainPoints))
	}
}

func TestLoadStackJSON(t *testing.T) {
	desc, err := Load(filepath.Join(levelsDir, "stack.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	w, err := Build(desc, config.Default().Physics)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := w.Find("box-a").Type(); got != physics.Dynamic {
		t.Errorf("Expected isDynamic body to be dynamic, got %s", got)
	}
	if got := w.Find("elevator").Type(); got != physics.Kinematic {
		t.Errorf("Expected body with motion to be kinematic, got %s", got)
	}
	if w.Index().Len() != 1 {
		t.Errorf("Expected only the ground indexed, got %d", w.Index().Len())
	}
	if _, err := w.Step(config.Default().Physics.FrameDuration); err != nil {
		t.Errorf("Step failed: %v", err)
	}
}

func TestRangeWithoutConstraintRejected(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: slider
    type: dynamic
    tags:
      range: [0, 2]
    shapes:
      - size: [1, 1, 1]
`)
	_, err := Build(desc, config.Default().Physics)
	if !errors.Is(err, ErrRangeWithoutConstraint) {
		t.Errorf("Expected ErrRangeWithoutConstraint, got %v", err)
	}
	if err := Validate(desc, config.Default().Physics); !errors.Is(err, ErrRangeWithoutConstraint) {
		t.Errorf("Expected Validate to reject too, got %v", err)
	}
}

func TestSwitchNeedsRangeAndForce(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: lever
    type: dynamic
    tags:
      constraint: [1, 0, 0]
      range: [0, 1]
      is_switch: true
    shapes:
      - size: [1, 1, 1]
`)
	if _, err := Build(desc, config.Default().Physics); !errors.Is(err, physics.ErrSwitchIncomplete) {
		t.Errorf("Expected ErrSwitchIncomplete, got %v", err)
	}
}

func TestZeroConstraintAxis(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: rail
    type: dynamic
    tags:
      constraint: [0, 0, 0]
    shapes:
      - size: [1, 1, 1]
`)
	if _, err := Build(desc, config.Default().Physics); !errors.Is(err, ErrZeroAxis) {
		t.Errorf("Expected ErrZeroAxis, got %v", err)
	}
}

func TestMassFallback(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: both
    type: dynamic
    tags: {mass: 3, weight: 7}
    shapes: [{size: [1, 1, 1]}]
  - name: weight
    type: dynamic
    tags: {weight: 7}
    shapes: [{size: [1, 1, 1]}]
  - name: none
    type: dynamic
    shapes: [{size: [1, 1, 1]}]
`)
	w, err := Build(desc, config.Default().Physics)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for name, want := range map[string]float32{"both": 3, "weight": 7, "none": 1} {
		if got := w.Find(name).Mass; got != want {
			t.Errorf("Expected %q mass %f, got %f", name, want, got)
		}
	}
}

func TestBouncinessDefaultsFromConfig(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: plain
    type: dynamic
    shapes: [{size: [1, 1, 1]}]
  - name: rubber
    type: dynamic
    tags: {bounciness: 0.9, damping: 0}
    shapes: [{size: [1, 1, 1]}]
`)
	cfg := config.Default().Physics
	w, err := Build(desc, cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := w.Find("plain").Bounciness; got != cfg.DefaultBounciness {
		t.Errorf("Expected default bounciness %f, got %f", cfg.DefaultBounciness, got)
	}
	if got := w.Find("rubber").Bounciness; got != 0.9 {
		t.Errorf("Expected bounciness 0.9, got %f", got)
	}
	if got := w.Find("rubber").Damping; got != 0 {
		t.Errorf("Expected explicit zero damping kept, got %f", got)
	}
}

func TestUnknownValuesRejected(t *testing.T) {
	cases := map[string]struct {
		src  string
		want error
	}{
		"body type": {`
bodies:
  - name: x
    type: floating
    shapes: [{size: [1, 1, 1]}]
`, ErrUnknownBodyType},
		"shape": {`
bodies:
  - name: x
    shapes: [{type: cone, radius: 1}]
`, ErrUnknownShape},
		"dimensions": {`
bodies:
  - name: x
    shapes: [{type: box, size: [1, 0, 1]}]
`, ErrBadDimensions},
		"motion": {`
bodies:
  - name: x
    motion: {kind: teleport}
    shapes: [{size: [1, 1, 1]}]
`, ErrUnknownMotion},
	}
	for name, c := range cases {
		desc := mustParseYAML(t, c.src)
		if _, err := Build(desc, config.Default().Physics); !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", name, c.want, err)
		}
	}
}

func TestMotionOnStaticRejected(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: x
    type: static
    motion: {kind: spin, axis: [0, 1, 0], degrees_per_second: 10}
    shapes: [{size: [1, 1, 1]}]
`)
	if _, err := Build(desc, config.Default().Physics); !errors.Is(err, physics.ErrMotionNotAllowed) {
		t.Errorf("Expected ErrMotionNotAllowed, got %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	if f, _ := FormatOf("a/b.YML"); f != FormatYAML {
		t.Errorf("Expected yaml, got %q", f)
	}
	if f, _ := FormatOf("level.json"); f != FormatJSON {
		t.Errorf("Expected json, got %q", f)
	}
	if _, err := FormatOf("level.toml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{bodies: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestCloneIsDeep(t *testing.T) {
	desc := mustParseYAML(t, `
name: original
bodies:
  - name: crate
    type: dynamic
    tags: {mass: 2, force: [0, 1, 0]}
    shapes: [{size: [1, 1, 1]}]
player:
  position: [1, 2, 3]
`)
	clone, err := Clone(desc)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	*clone.Bodies[0].Tags.Mass = 9
	clone.Bodies[0].Tags.Force[1] = -1
	clone.Bodies[0].Shapes[0].Size[0] = 5
	clone.Player.Position[0] = 42
	clone.Name = "copy"

	if *desc.Bodies[0].Tags.Mass != 2 {
		t.Errorf("Original mass changed to %f", *desc.Bodies[0].Tags.Mass)
	}
	if desc.Bodies[0].Tags.Force[1] != 1 {
		t.Errorf("Original force changed to %v", *desc.Bodies[0].Tags.Force)
	}
	if desc.Bodies[0].Shapes[0].Size[0] != 1 {
		t.Errorf("Original shape changed to %v", desc.Bodies[0].Shapes[0].Size)
	}
	if desc.Player.Position[0] != 1 {
		t.Errorf("Original player moved to %v", desc.Player.Position)
	}
	if desc.Name != "original" {
		t.Errorf("Original name changed to %q", desc.Name)
	}
}

func TestTrackedCount(t *testing.T) {
	desc := mustParseYAML(t, `
bodies:
  - name: a
    shapes: [{size: [1, 1, 1]}]
  - name: b
    shapes: [{size: [1, 1, 1]}]
player:
  position: [0, 0, 0]
`)
	if got := desc.TrackedCount(); got != 3 {
		t.Errorf("Expected 3 tracked bodies, got %d", got)
	}
}
