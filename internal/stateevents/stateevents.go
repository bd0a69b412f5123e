// Package stateevents pushes C4 register key-change notifications and
// assembled spectrum lines to GUI-class WebSocket clients (C11).
// Connection handling — a per-connection write goroutine draining a
// buffered channel, with a full channel dropping rather than blocking
// the publisher — is grounded on the teacher's websocket.go
// (wsConn.startSpectrumWriter/writeSpectrumBinary).
package stateevents

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/flate"

	"github.com/bturbeville/wfview-sub001/internal/rigstate"
	"github.com/bturbeville/wfview-sub001/internal/spectrum"
)

const writeQueueDepth = 30

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// KeyEvent is the JSON frame delivered for one register key change.
type KeyEvent struct {
	Type  string      `json:"type"`
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
	Valid bool        `json:"valid"`
	TS    int64       `json:"ts"`
}

// SpectrumEvent is the JSON envelope wrapping one assembled spectrum
// line; Pixels carries flate-compressed bytes, base64-encoded by the
// standard json.Marshal []byte handling.
type SpectrumEvent struct {
	Type       string `json:"type"`
	StartHz    uint64 `json:"start_hz"`
	EndHz      uint64 `json:"end_hz"`
	OutOfRange bool   `json:"out_of_range"`
	Pixels     []byte `json:"pixels"`
	TS         int64  `json:"ts"`
}

// Hub fans out register changes and spectrum lines to every connected
// client. It owns no rig-domain logic: it only subscribes, formats,
// and distributes.
type Hub struct {
	register *rigstate.Register

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	writeMu  sync.Mutex
	done     chan struct{}
	closeErr error
}

// New builds a Hub bound to the given register. Call Run in its own
// goroutine to start forwarding register changes.
func New(register *rigstate.Register) *Hub {
	return &Hub{register: register, clients: make(map[*client]struct{})}
}

// Run subscribes to the register and forwards every change until stop
// fires. It never returns the register's internal
// subscriber channel to the caller.
func (h *Hub) Run(stop <-chan struct{}) {
	ch := make(chan rigstate.Change, 64)
	h.register.Subscribe(ch)
	defer h.register.Unsubscribe(ch)

	for {
		select {
		case <-stop:
			return
		case change := <-ch:
			h.broadcast(encodeKeyEvent(change))
		}
	}
}

// PublishSpectrumLine flate-compresses a completed spectrum line's
// pixel bytes and broadcasts it under a {"type":"spectrum"} envelope.
func (h *Hub) PublishSpectrumLine(line *spectrum.Line) {
	compressed, err := compressPixels(line.Pixels)
	if err != nil {
		log.Printf("stateevents: compressing spectrum line: %v", err)
		return
	}
	evt := SpectrumEvent{
		Type:       "spectrum",
		StartHz:    line.StartHz,
		EndHz:      line.EndHz,
		OutOfRange: line.OutOfRange,
		Pixels:     compressed,
		TS:         nowUnix(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("stateevents: marshal spectrum event: %v", err)
		return
	}
	h.broadcast(data)
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// connection for broadcast until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stateevents: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, writeQueueDepth), done: make(chan struct{})}
	h.addClient(c)

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// readLoop exists only to notice the client going away (we never
// accept inbound commands on this socket); a read error tears the
// connection down.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		c.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// broadcast queues msg on every connected client's write channel,
// dropping it for clients whose queue is already full rather than
// blocking the publisher on a slow reader.
func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func encodeKeyEvent(change rigstate.Change) []byte {
	evt := KeyEvent{
		Type:  "state",
		Key:   change.Key.String(),
		Value: valueAsJSON(change.Entry.Value),
		Valid: change.Entry.Valid,
		TS:    nowUnix(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		// A Value only ever carries int64/float64/bool/string, all of
		// which marshal without error; this path is unreachable.
		return []byte(`{"type":"state","error":"encode failed"}`)
	}
	return data
}

func valueAsJSON(v rigstate.Value) interface{} {
	if i, ok := v.Int(); ok {
		return i
	}
	if f, ok := v.Float(); ok {
		return f
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	s, _ := v.String()
	return s
}

func compressPixels(pixels []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(pixels); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}
