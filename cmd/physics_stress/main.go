// Stress test timing world steps and BVH queries against a linear scan
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"physcore/internal/config"
	"physcore/internal/physics"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	frames := flag.Int("frames", 120, "frames stepped per body count")
	flag.Parse()

	cfg := config.Default().Physics
	fmt.Printf("Sub-ticks: %d per frame, frame %v\n\n", cfg.TicksPerFrame, cfg.FrameDuration)

	testCounts := []int{10, 50, 100, 200, 500}
	for _, count := range testCounts {
		if err := testStep(cfg, count, *frames); err != nil {
			log.Fatalf("%d bodies: %v", count, err)
		}
	}
	fmt.Println()

	for _, count := range []int{100, 1000, 5000, 20000} {
		if err := testQuery(count); err != nil {
			log.Fatalf("%d statics: %v", count, err)
		}
	}
}

func box(kind physics.BodyType, pos, size rl.Vector3) (*physics.Body, error) {
	b, err := physics.NewBody(kind, physics.BodyOptions{Transform: physics.Transform{Position: pos}})
	if err != nil {
		return nil, err
	}
	return b, b.AddShape(physics.NewBox(size))
}

// testStep drops count dynamic boxes onto a floor and times whole frames.
func testStep(cfg config.Physics, count, frames int) error {
	rng := rand.New(rand.NewSource(42))
	spawnSize := float32(10) + float32(count)/20

	floor, err := box(physics.Static, rl.Vector3{Y: -0.5}, rl.Vector3{X: spawnSize * 2, Y: 1, Z: spawnSize * 2})
	if err != nil {
		return err
	}
	bodies := []*physics.Body{floor}
	for i := 0; i < count; i++ {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: 1 + rng.Float32()*spawnSize,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		b, err := box(physics.Dynamic, pos, rl.Vector3{X: 1, Y: 1, Z: 1})
		if err != nil {
			return err
		}
		bodies = append(bodies, b)
	}

	w, err := physics.NewWorld(cfg, bodies, nil)
	if err != nil {
		return err
	}
	defer w.Dispose()

	var contacts int
	start := time.Now()
	for i := 0; i < frames; i++ {
		stats, err := w.Step(cfg.FrameDuration)
		if err != nil {
			return err
		}
		contacts += stats.Contacts
	}
	perFrame := time.Since(start) / time.Duration(frames)
	budget := float64(perFrame) / float64(cfg.FrameDuration) * 100

	fmt.Printf("%5d bodies: %10v/frame (%5.1f%% of frame) | %6d contacts/frame\n",
		count, perFrame.Round(time.Microsecond), budget, contacts/frames)
	return nil
}

// testQuery compares BVH queries with a linear bounds scan over count statics.
func testQuery(count int) error {
	rng := rand.New(rand.NewSource(42))
	spawnSize := float32(50) + float32(count)/100

	ix := physics.NewSpatialIndex()
	shapes := make([]*physics.Shape, 0, count)
	for i := 0; i < count; i++ {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize - spawnSize/2,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		size := 0.5 + rng.Float32()
		b, err := box(physics.Static, pos, rl.Vector3{X: size, Y: size, Z: size})
		if err != nil {
			return err
		}
		s := b.Shapes()[0]
		if err := ix.Insert(s); err != nil {
			return err
		}
		shapes = append(shapes, s)
	}
	if err := ix.Build(); err != nil {
		return err
	}

	probe, err := box(physics.Dynamic, rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})
	if err != nil {
		return err
	}
	query := probe.Shapes()[0]

	const iterations = 1000
	positions := make([]rl.Vector3, iterations)
	for i := range positions {
		positions[i] = rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize - spawnSize/2,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
	}

	bvhStart := time.Now()
	var bvhHits int
	for _, p := range positions {
		probe.Transform.Position = p
		found, err := ix.Query(query)
		if err != nil {
			return err
		}
		bvhHits += len(found)
	}
	bvhTime := time.Since(bvhStart) / iterations

	scanStart := time.Now()
	var scanHits int
	for _, p := range positions {
		probe.Transform.Position = p
		bounds := query.Bounds()
		for _, s := range shapes {
			if bounds.Intersects(s.Bounds()) {
				scanHits++
			}
		}
	}
	scanTime := time.Since(scanStart) / iterations

	speedup := float64(scanTime) / float64(bvhTime)
	fmt.Printf("%5d statics: BVH %8v (%4d hits) | scan %10v (%4d hits) | %.1fx speedup\n",
		count, bvhTime.Round(time.Nanosecond), bvhHits, scanTime.Round(time.Nanosecond), scanHits, speedup)
	return nil
}
