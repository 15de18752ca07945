package view

import (
	"fmt"
	"log"
	"physcore/internal/config"
	"physcore/internal/level"
	"physcore/internal/physics"
	"physcore/internal/simchan"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const pickDistance = 200

// Viewer shows a level either stepped in-process or mirrored from a driver.
// With a driver its world is display-only: bodies are moved to the mirrored
// positions and never stepped.
type Viewer struct {
	desc   *level.Description
	cfg    config.Config
	driver *simchan.Driver

	world  *physics.World
	colors []rl.Color
	flags  []simchan.Flags
	camera rl.Camera3D
	hud    hud

	mu    sync.Mutex
	frame simchan.Frame
	step  time.Duration
}

func New(desc *level.Description, cfg config.Config, driver *simchan.Driver) (*Viewer, error) {
	v := &Viewer{
		desc:   desc,
		cfg:    cfg,
		driver: driver,
		camera: rl.Camera3D{
			Position:   rl.Vector3{X: 12, Y: 10, Z: 12},
			Target:     rl.Vector3{X: 0, Y: 1, Z: 0},
			Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
			Fovy:       45,
			Projection: rl.CameraPerspective,
		},
		hud: hud{timeScale: 1},
	}
	if err := v.reset(); err != nil {
		return nil, err
	}
	return v, nil
}

// Observe records the latest driver frame for the HUD. It runs on the
// driver goroutine.
func (v *Viewer) Observe(frame simchan.Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = frame
}

func (v *Viewer) lastFrame() simchan.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

func (v *Viewer) reset() error {
	w, err := level.Build(v.desc, v.cfg.Physics)
	if err != nil {
		return err
	}
	if v.world != nil {
		v.world.Dispose()
	}
	v.world = w

	bodies := w.Bodies()
	v.colors = make([]rl.Color, len(bodies))
	v.flags = make([]simchan.Flags, len(bodies))
	for i := range bodies {
		if i < len(v.desc.Bodies) {
			v.colors[i] = lookupColor(v.desc.Bodies[i].Color)
		} else {
			v.colors[i] = rl.Gold
		}
	}
	v.hud.selected = ""
	log.Printf("Level: showing %q with %d bodies", v.desc.Name, len(bodies))
	return nil
}

func (v *Viewer) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(1280, 720, "physcore - "+v.desc.Name)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	initStyle()
	defer v.world.Dispose()

	for !rl.WindowShouldClose() {
		v.update()
		v.draw()
	}
}

func (v *Viewer) update() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		rl.UpdateCamera(&v.camera, rl.CameraFree)
	}

	if v.driver != nil {
		entities, _ := v.driver.Mirror().Snapshot()
		SyncBodies(v.world, entities)
		for i := range v.flags {
			if i < len(entities) {
				v.flags[i] = entities[i].Flags
			}
		}
	} else if !v.hud.paused {
		delta := time.Duration(float64(rl.GetFrameTime()) * float64(v.hud.timeScale) * float64(time.Second))
		start := time.Now()
		stats, err := v.world.Step(delta)
		v.step = time.Since(start)
		if err != nil {
			log.Printf("Physics: step failed: %v", err)
			v.hud.paused = true
		}
		v.frame.Seq++
		v.frame.Stats = stats
		for i, b := range v.world.Bodies() {
			v.flags[i] = simchan.FlagsOf(b)
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !v.hud.contains(rl.GetMousePosition()) {
		ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), v.camera)
		if hit, ok := v.world.Raycast(ray.Position, ray.Direction, pickDistance); ok {
			v.hud.selected = fmt.Sprintf("%s (%s) at %.2f", hit.Body.Name, hit.Body.Type(), hit.Distance)
		} else {
			v.hud.selected = ""
		}
	}
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(colorBgDark)

	rl.BeginMode3D(v.camera)
	rl.DrawGrid(40, 1)
	for i, b := range v.world.Bodies() {
		wire := wireColor(v.colors[i], v.flags[i])
		for _, s := range b.Shapes() {
			drawShape(s, v.colors[i], wire, v.hud.showBounds)
		}
	}
	rl.EndMode3D()

	var frame simchan.Frame
	mode := "in-process"
	restarts := 0
	if v.driver == nil {
		frame = v.frame
	} else {
		frame = v.lastFrame()
		mode = v.driver.Mode()
		restarts = v.driver.Restarts()
	}
	if v.hud.draw(frame, mode, restarts, v.step, v.driver == nil) && v.driver == nil {
		if err := v.reset(); err != nil {
			log.Printf("Level: reset failed: %v", err)
		}
	}
}
