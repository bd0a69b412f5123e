package stateevents

import (
	"bytes"
	"compress/flate"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bturbeville/wfview-sub001/internal/rigstate"
	"github.com/bturbeville/wfview-sub001/internal/spectrum"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(hub)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestKeyChangeBroadcastToClient(t *testing.T) {
	reg := rigstate.NewRegister()
	hub := New(reg)
	stop := make(chan struct{})
	defer close(stop)
	go hub.Run(stop)

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	// Give the hub time to register the connection before publishing.
	time.Sleep(20 * time.Millisecond)
	reg.Set(rigstate.VFOAFreq, rigstate.IntValue(14250000))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var evt KeyEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if evt.Type != "state" {
		t.Fatalf("Type = %q, want state", evt.Type)
	}
	if evt.Key != rigstate.VFOAFreq.String() {
		t.Fatalf("Key = %q, want %q", evt.Key, rigstate.VFOAFreq.String())
	}
	if v, ok := evt.Value.(float64); !ok || int64(v) != 14250000 {
		t.Fatalf("Value = %v, want 14250000", evt.Value)
	}
}

func TestSpectrumLineBroadcastIsFlateCompressed(t *testing.T) {
	reg := rigstate.NewRegister()
	hub := New(reg)

	conn, cleanup := dialHub(t, hub)
	defer cleanup()
	time.Sleep(20 * time.Millisecond)

	pixels := make([]byte, 475)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}
	hub.PublishSpectrumLine(&spectrum.Line{StartHz: 14_150_000, EndHz: 14_250_000, Pixels: pixels})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var evt SpectrumEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if evt.Type != "spectrum" {
		t.Fatalf("Type = %q, want spectrum", evt.Type)
	}
	if evt.StartHz != 14_150_000 || evt.EndHz != 14_250_000 {
		t.Fatalf("StartHz/EndHz = %d/%d, want 14150000/14250000", evt.StartHz, evt.EndHz)
	}

	r := flate.NewReader(bytes.NewReader(evt.Pixels))
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if out.Len() != len(pixels) {
		t.Fatalf("inflated length = %d, want %d", out.Len(), len(pixels))
	}
	for i, b := range out.Bytes() {
		if b != pixels[i] {
			t.Fatalf("pixel %d = %x, want %x", i, b, pixels[i])
		}
	}
}

func TestDisconnectedClientRemovedFromHub(t *testing.T) {
	reg := rigstate.NewRegister()
	hub := New(reg)

	conn, cleanup := dialHub(t, hub)
	time.Sleep(20 * time.Millisecond)

	hub.mu.Lock()
	n := len(hub.clients)
	hub.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 connected client, got %d", n)
	}

	conn.Close()
	cleanup()
	time.Sleep(50 * time.Millisecond)

	hub.mu.Lock()
	n = len(hub.clients)
	hub.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected client to be removed after disconnect, got %d remaining", n)
	}
}
