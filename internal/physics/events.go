package physics

// CollisionHandler receives enter/exit events for a body it is registered on.
// Events fire once per frame, after every sub-tick has run.
type CollisionHandler interface {
	OnCollisionEnter(other *Body)
	OnCollisionExit(other *Body)
}

// bodyPair is an unordered pair of bodies, lower ID first.
type bodyPair struct {
	a, b *Body
}

func makePair(a, b *Body) bodyPair {
	if a.ID > b.ID {
		return bodyPair{a: b, b: a}
	}
	return bodyPair{a: a, b: b}
}

// contacts tracks which pairs touched last frame and which touch this frame.
type contacts struct {
	active  map[bodyPair]bool
	current map[bodyPair]bool
}

func newContacts() *contacts {
	return &contacts{
		active:  make(map[bodyPair]bool),
		current: make(map[bodyPair]bool),
	}
}

func (w *World) recordCollision(a, b *Body) {
	w.contacts.current[makePair(a, b)] = true
}

// dispatchCollisionCallbacks sends OnCollisionEnter/Exit to both sides of each
// pair whose contact state changed since the last frame.
func (w *World) dispatchCollisionCallbacks() {
	c := w.contacts
	for pair := range c.current {
		if !c.active[pair] {
			notifyEnter(pair.a, pair.b)
			notifyEnter(pair.b, pair.a)
		}
	}
	for pair := range c.active {
		if !c.current[pair] {
			notifyExit(pair.a, pair.b)
			notifyExit(pair.b, pair.a)
		}
	}
	c.active = c.current
	c.current = make(map[bodyPair]bool, len(c.active))
}

func notifyEnter(b, other *Body) {
	for _, h := range b.handlers {
		h.OnCollisionEnter(other)
	}
}

func notifyExit(b, other *Body) {
	for _, h := range b.handlers {
		h.OnCollisionExit(other)
	}
}
