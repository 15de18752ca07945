// Package netsync mirrors driver frames to remote viewers over websocket.
// Every message is msgpack encoded and sent as one binary websocket message.
package netsync

import (
	"log"
	"net/http"
	"physcore/internal/config"
	"physcore/internal/simchan"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	MessageHello = "hello"
	MessageFrame = "frame"
)

// sendBuffer frames may queue per subscriber before new ones are dropped.
const sendBuffer = 8

// EntityState is one tracked body as a remote viewer sees it.
type EntityState struct {
	Name     string        `msgpack:"name"`
	Color    string        `msgpack:"color,omitempty"`
	Position [3]float32    `msgpack:"position"`
	Flags    simchan.Flags `msgpack:"flags"`
}

// Message is the envelope for everything on the wire. A hello carries the
// full entity list once per connection; frames then carry flat positions
// in the same order.
type Message struct {
	Type     string         `msgpack:"type"`
	Level    string         `msgpack:"level,omitempty"`
	Seq      uint64         `msgpack:"seq,omitempty"`
	Entities []EntityState  `msgpack:"entities,omitempty"`
	Frame    *simchan.Frame `msgpack:"frame,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Broadcaster is an http.Handler that upgrades viewers to websocket and a
// simchan.Observer that fans frames out to them.
type Broadcaster struct {
	cfg      config.Net
	level    string
	mirror   *simchan.Mirror
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewBroadcaster(cfg config.Net, levelName string, mirror *simchan.Mirror) *Broadcaster {
	return &Broadcaster{
		cfg:    cfg,
		level:  levelName,
		mirror: mirror,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Net: upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	hello, err := b.hello()
	if err != nil {
		log.Printf("Net: %v", err)
		conn.Close()
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	sub.send <- hello

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	log.Printf("Net: viewer %s connected, %d watching", r.RemoteAddr, n)

	go b.writePump(sub)
	go b.readPump(sub)
}

func (b *Broadcaster) hello() ([]byte, error) {
	entities, seq := b.mirror.Snapshot()
	msg := Message{Type: MessageHello, Level: b.level, Seq: seq, Entities: make([]EntityState, len(entities))}
	for i, e := range entities {
		msg.Entities[i] = EntityState{
			Name:     e.Name,
			Color:    e.Color,
			Position: [3]float32{e.Position.X, e.Position.Y, e.Position.Z},
			Flags:    e.Flags,
		}
	}
	data, err := msgpack.Marshal(&msg)
	return data, errors.Wrap(err, "encode hello")
}

// Observe queues frame for every viewer. A viewer whose queue is full misses
// the frame rather than stalling the driver.
func (b *Broadcaster) Observe(frame simchan.Frame) {
	data, err := msgpack.Marshal(&Message{Type: MessageFrame, Seq: frame.Seq, Frame: &frame})
	if err != nil {
		log.Printf("Net: encode frame %d: %v", frame.Seq, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.send <- data:
		default:
		}
	}
}

func (b *Broadcaster) writePump(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteWait))
		if err := sub.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.Printf("Net: dropping viewer %s: %v", sub.conn.RemoteAddr(), err)
			b.drop(sub)
			return
		}
	}
}

// readPump only exists to process control frames and notice a closed peer.
func (b *Broadcaster) readPump(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			b.drop(sub)
			return
		}
	}
}

func (b *Broadcaster) drop(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.send)
	log.Printf("Net: viewer %s left, %d watching", sub.conn.RemoteAddr(), len(b.subs))
}

// Close disconnects every viewer.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	for _, sub := range subs {
		b.drop(sub)
	}
}
