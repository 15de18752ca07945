package simchan

import (
	"physcore/internal/level"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Entity is the render-side proxy of one tracked body.
type Entity struct {
	Name     string
	Color    string
	Position rl.Vector3
	Flags    Flags
}

// Mirror holds the last positions the driver applied. The driver writes it,
// render code reads it from another goroutine.
type Mirror struct {
	mu       sync.RWMutex
	entities []Entity
	seq      uint64
}

// NewMirror lists the bodies a world built from desc tracks, in world order.
func NewMirror(desc *level.Description) *Mirror {
	m := &Mirror{entities: make([]Entity, 0, desc.TrackedCount())}
	for _, b := range desc.Bodies {
		m.entities = append(m.entities, Entity{
			Name:     b.Name,
			Color:    b.Color,
			Position: rl.Vector3{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]},
		})
	}
	if p := desc.Player; p != nil {
		m.entities = append(m.entities, Entity{
			Name:     level.PlayerName,
			Position: rl.Vector3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
		})
	}
	return m
}

func (m *Mirror) Len() int {
	return len(m.entities)
}

func (m *Mirror) apply(seq uint64, positions []float32, flags []Flags) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entities {
		m.entities[i].Position = rl.Vector3{X: positions[3*i], Y: positions[3*i+1], Z: positions[3*i+2]}
		m.entities[i].Flags = flags[i]
	}
	m.seq = seq
}

// positions copies the mirrored positions into a fresh flat buffer.
func (m *Mirror) positions() []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float32, 3*len(m.entities))
	for i, e := range m.entities {
		out[3*i], out[3*i+1], out[3*i+2] = e.Position.X, e.Position.Y, e.Position.Z
	}
	return out
}

// Snapshot returns a copy of every entity and the sequence number of the
// round trip that produced it.
func (m *Mirror) Snapshot() ([]Entity, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entity, len(m.entities))
	copy(out, m.entities)
	return out, m.seq
}
