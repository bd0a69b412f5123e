package lantransport

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/ipv4"
)

// lowDelayTOS is the IP_TOS value (RFC 1349 "low delay") applied to the
// audio subchannel socket, so intermediate routers prioritize it the way
// VoIP traffic is prioritized.
const lowDelayTOS = 0x10

// Radio describes one radio exposed by a multi-radio LAN unit (spec.md
// §4.6's multi-radio capability).
type Radio struct {
	Index int
	Name  string
	Busy  bool
}

// Controller drives the control-channel state machine for one session.
// CI-V and audio subchannels are separate UDP sockets opened when
// SelectRadio promotes the session from RequestStream to Streaming.
type Controller struct {
	cfg Config

	// SessionID identifies this control-channel session for logging and
	// the audit trail (internal/audit); it has no meaning on the wire.
	SessionID string

	mu            sync.Mutex
	state         State
	controlConn   *net.UDPConn
	civConn       *net.UDPConn
	audioConn     *net.UDPConn
	seq           *SequenceTracker
	pendingFrames map[uint16][]byte
	lastSentSeq   uint16
	tokenDeadline time.Time
	reauthAt      time.Time
	missedPings   int
	token         uint32
	radios        []Radio
	selectedRadio int

	Status chan Status // buffered; never blocks a sender (spec.md §5)
}

// NewController constructs a Controller in Disconnected state.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:           cfg.WithDefaults(),
		SessionID:     uuid.New().String(),
		state:         Disconnected,
		seq:           NewSequenceTracker(),
		pendingFrames: make(map[uint16][]byte),
		Status:        make(chan Status, 16),
	}
}

func (c *Controller) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	select {
	case c.Status <- Status{State: s, Err: err}:
	default:
	}
}

// State returns the current state machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open dials the control socket and begins the AreYouThere handshake.
// The caller drives the handshake forward by calling HandleControlPacket
// on each received datagram and Tick on its ping interval.
func (c *Controller) Open() error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.ControlPort)
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return err
	}
	c.controlConn = conn
	c.setState(AreYouThere, nil)
	return c.sendAreYouThere()
}

func (c *Controller) sendAreYouThere() error {
	_, err := c.controlConn.Write([]byte{MagicAreYouThere})
	return err
}

// Tick drives keep-alive pings, token renewal, and retransmission. Call
// it on cfg.PingInterval; it returns an error if the channel has just
// gone dead or a control-channel write fails.
func (c *Controller) Tick() error {
	switch c.State() {
	case AreYouThere:
		c.missedPings++
		if c.missedPings >= MaxMissedPings {
			return c.linkDead()
		}
		return c.sendAreYouThere()
	case TokenRequest, TokenRenew:
		if time.Now().After(c.tokenDeadline) {
			return c.linkDead()
		}
	case Connected, Streaming:
		c.missedPings++
		if c.missedPings >= MaxMissedPings {
			return c.linkDead()
		}
		if c.State() == Connected && time.Now().After(c.reauthAt) {
			return c.sendTokenRenew()
		}
		if _, err := c.controlConn.Write([]byte{MagicAreYouThere}); err != nil {
			return err
		}
	}

	retry, dead := c.seq.DueForRetransmit()
	if len(dead) > 0 {
		return c.linkDead()
	}
	for _, seq := range retry {
		frame, ok := c.pendingFrames[seq]
		if !ok {
			continue
		}
		if _, err := c.controlConn.Write(frame); err != nil {
			return err
		}
	}
	return nil
}

// sendSequenced prepends the next outgoing sequence number to body and
// writes it to the control channel, retaining a copy so Tick can resend
// it verbatim if DueForRetransmit names it (spec.md §4.6).
func (c *Controller) sendSequenced(body []byte) (uint16, error) {
	seq := c.seq.Next()
	frame := make([]byte, 2+len(body))
	binary.LittleEndian.PutUint16(frame, seq)
	copy(frame[2:], body)

	c.mu.Lock()
	c.pendingFrames[seq] = frame
	c.lastSentSeq = seq
	c.mu.Unlock()

	_, err := c.controlConn.Write(frame)
	return seq, err
}

// sendTokenRenew re-sends the held token ahead of its reauth deadline
// (spec.md §4.6 Connected -> TokenRenew -> Connected).
func (c *Controller) sendTokenRenew() error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, token)
	if _, err := c.sendSequenced(body); err != nil {
		return err
	}
	c.tokenDeadline = time.Now().Add(TokenRequestDeadline)
	c.setState(TokenRenew, nil)
	return nil
}

func (c *Controller) linkDead() error {
	err := fmt.Errorf("lan transport: keep-alive quorum lost")
	c.teardown()
	c.setState(Disconnected, err)
	return err
}

// teardown closes every open socket and drops pending retransmit state
// (spec.md §5: "dropped without replay").
func (c *Controller) teardown() {
	if c.controlConn != nil {
		c.controlConn.Close()
		c.controlConn = nil
	}
	if c.civConn != nil {
		c.civConn.Close()
		c.civConn = nil
	}
	if c.audioConn != nil {
		c.audioConn.Close()
		c.audioConn = nil
	}
	c.seq = NewSequenceTracker()
	c.pendingFrames = make(map[uint16][]byte)
}

// Close tears down the session deliberately (explicit logout, spec.md §7).
func (c *Controller) Close() {
	c.teardown()
	c.setState(Disconnected, nil)
}

// HandleControlPacket advances the state machine on one received control
// datagram. Magic-byte framing follows spec.md §4.6; payload parsing
// beyond the magic byte (login success, token grants) is left to the
// caller's LAN wire codec, out of this package's scope.
func (c *Controller) HandleControlPacket(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	c.missedPings = 0
	switch c.State() {
	case AreYouThere:
		if data[0] == MagicIAmHere {
			c.setState(AreYouReady, nil)
			_, err := c.controlConn.Write([]byte{MagicAreYouReady})
			return err
		}
	case AreYouReady:
		if data[0] == MagicIAmReady {
			c.setState(Login, nil)
			return c.sendLogin()
		}
	}
	return nil
}

func (c *Controller) sendLogin() error {
	payload := append(encodeCredential(c.cfg.Username), encodeCredential(c.cfg.Password)...)
	if _, err := c.sendSequenced(payload); err != nil {
		return err
	}
	c.tokenDeadline = time.Now().Add(TokenRequestDeadline)
	c.setState(TokenRequest, nil)
	return nil
}

// GrantToken records a token handed back by the radio (login and token
// exchange are driven by the caller's wire codec; this just advances the
// state machine once a token arrives). It serves both the initial login
// grant (TokenRequest -> Connected) and a renewal grant
// (TokenRenew -> Connected), arming the next reauth deadline either way.
func (c *Controller) GrantToken(token uint32) {
	c.mu.Lock()
	c.token = token
	lastSeq := c.lastSentSeq
	c.mu.Unlock()

	c.seq.Ack(lastSeq)
	c.mu.Lock()
	delete(c.pendingFrames, lastSeq)
	c.mu.Unlock()

	c.reauthAt = time.Now().Add(c.cfg.ReauthInterval)
	c.setState(Connected, nil)
}

// RejectAuth tears the session down on a login or token refusal (spec.md
// §7 AuthRejected: "no retry without user action").
func (c *Controller) RejectAuth() {
	c.teardown()
	c.setState(Disconnected, fmt.Errorf("lan transport: authentication rejected"))
}

// OfferRadios presents a multi-radio unit's radio list and waits for the
// caller to call SelectRadio before promoting to Streaming.
func (c *Controller) OfferRadios(radios []Radio) {
	c.mu.Lock()
	c.radios = radios
	c.mu.Unlock()
	c.setState(RequestStream, nil)
}

// SelectRadio picks a radio by index and opens the CI-V and audio
// subchannels, promoting the session to Streaming. It fails with a Busy
// error (spec.md §7) if the radio is already in use.
func (c *Controller) SelectRadio(index int) error {
	c.mu.Lock()
	var chosen *Radio
	for i := range c.radios {
		if c.radios[i].Index == index {
			chosen = &c.radios[i]
			break
		}
	}
	if chosen == nil {
		c.mu.Unlock()
		return fmt.Errorf("lan transport: no radio at index %d", index)
	}
	if chosen.Busy {
		c.mu.Unlock()
		return fmt.Errorf("lan transport: radio %q is in use", chosen.Name)
	}
	c.selectedRadio = index
	c.mu.Unlock()

	if err := c.openCIVAndAudio(); err != nil {
		return err
	}
	c.setState(Streaming, nil)
	return nil
}

func (c *Controller) openCIVAndAudio() error {
	civAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.CIVPort))
	if err != nil {
		return err
	}
	civConn, err := net.DialUDP("udp", nil, civAddr)
	if err != nil {
		return err
	}
	c.civConn = civConn

	audioAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.AudioPort))
	if err != nil {
		return err
	}
	audioConn, err := net.DialUDP("udp", nil, audioAddr)
	if err != nil {
		return err
	}
	if pc := ipv4.NewConn(audioConn); pc != nil {
		_ = pc.SetTOS(lowDelayTOS)
	}
	c.audioConn = audioConn
	return nil
}

// SendCIV writes data to the CI-V subchannel as one datagram, unchanged.
// It adds no connection-ID/sequence header, and cmd/civd passes bare
// CI-V frames to it.
func (c *Controller) SendCIV(data []byte) (int, error) {
	if c.civConn == nil {
		return 0, fmt.Errorf("lan transport: CI-V subchannel not open")
	}
	return c.civConn.Write(data)
}

// ReadCIV reads one CI-V-subchannel datagram.
func (c *Controller) ReadCIV(buf []byte) (int, error) {
	if c.civConn == nil {
		return 0, fmt.Errorf("lan transport: CI-V subchannel not open")
	}
	c.civConn.SetReadDeadline(time.Now().Add(c.cfg.PingInterval * 10))
	return c.civConn.Read(buf)
}

// ReadControl reads one control-channel datagram: handshake bytes
// (IAmHere/IAmReady) while connecting, or login/token replies once
// past Login. The caller hands handshake bytes to HandleControlPacket;
// login and token payloads are its own wire codec, out of this
// package's scope (see HandleControlPacket's doc comment).
func (c *Controller) ReadControl(buf []byte) (int, error) {
	if c.controlConn == nil {
		return 0, fmt.Errorf("lan transport: control channel not open")
	}
	c.controlConn.SetReadDeadline(time.Now().Add(c.cfg.PingInterval * 10))
	return c.controlConn.Read(buf)
}
