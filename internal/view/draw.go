// Package view draws a physics world with raylib and overlays a raygui HUD.
package view

import (
	"physcore/internal/physics"
	"physcore/internal/simchan"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// boxCorners lists the eight corners of o, bottom face first.
func boxCorners(o physics.OBB) [8]rl.Vector3 {
	ax := rl.Vector3Scale(o.Axes[0], o.HalfSize.X)
	ay := rl.Vector3Scale(o.Axes[1], o.HalfSize.Y)
	az := rl.Vector3Scale(o.Axes[2], o.HalfSize.Z)
	corner := func(sx, sy, sz float32) rl.Vector3 {
		p := rl.Vector3Add(o.Center, rl.Vector3Scale(ax, sx))
		p = rl.Vector3Add(p, rl.Vector3Scale(ay, sy))
		return rl.Vector3Add(p, rl.Vector3Scale(az, sz))
	}
	return [8]rl.Vector3{
		corner(-1, -1, -1), corner(1, -1, -1), corner(1, -1, 1), corner(-1, -1, 1),
		corner(-1, 1, -1), corner(1, 1, -1), corner(1, 1, 1), corner(-1, 1, 1),
	}
}

func drawBoxWires(o physics.OBB, color rl.Color) {
	c := boxCorners(o)
	for i := 0; i < 4; i++ {
		rl.DrawLine3D(c[i], c[(i+1)%4], color)
		rl.DrawLine3D(c[4+i], c[4+(i+1)%4], color)
		rl.DrawLine3D(c[i], c[4+i], color)
	}
}

func drawShape(s *physics.Shape, fill, wire rl.Color, bounds bool) {
	o := s.WorldOBB()
	switch s.Type() {
	case physics.ShapeSphere:
		rl.DrawSphere(o.Center, s.Radius(), rl.Fade(fill, 0.8))
		rl.DrawSphereWires(o.Center, s.Radius(), 8, 8, wire)
	case physics.ShapeCylinder:
		base := rl.Vector3Subtract(o.Center, rl.Vector3Scale(o.Axes[1], s.Height()/2))
		top := rl.Vector3Add(o.Center, rl.Vector3Scale(o.Axes[1], s.Height()/2))
		rl.DrawCylinderEx(base, top, s.Radius(), s.Radius(), 16, rl.Fade(fill, 0.8))
		rl.DrawCylinderWiresEx(base, top, s.Radius(), s.Radius(), 16, wire)
	default:
		if o.Axes[0].X == 1 && o.Axes[1].Y == 1 {
			rl.DrawCubeV(o.Center, rl.Vector3Scale(o.HalfSize, 2), rl.Fade(fill, 0.8))
		}
		drawBoxWires(o, wire)
	}
	if bounds {
		b := s.Bounds()
		rl.DrawBoundingBox(rl.BoundingBox{Min: b.Min, Max: b.Max}, rl.Yellow)
	}
}

// SyncBodies moves every non-static body of a display world to the mirrored
// positions. Entities and bodies share world order. Static bodies are
// indexed and never move.
func SyncBodies(w *physics.World, entities []simchan.Entity) {
	for i, b := range w.Bodies() {
		if i >= len(entities) || b.Type() == physics.Static {
			continue
		}
		b.Transform.Position = entities[i].Position
	}
}
