package lantransport

import (
	"testing"
	"time"
)

func TestEncodeDecodeCredentialRoundTrip(t *testing.T) {
	field := encodeCredential("radiouser")
	if len(field) != credentialFieldLen {
		t.Fatalf("field length = %d, want %d", len(field), credentialFieldLen)
	}
	got := decodeCredential(field)
	if got != "radiouser" {
		t.Fatalf("decodeCredential() = %q, want %q", got, "radiouser")
	}
}

func TestObfuscateIsNotPlaintext(t *testing.T) {
	field := encodeCredential("hunter2")
	for _, b := range field[:7] {
		if b == 0 {
			continue
		}
	}
	// at minimum, the obfuscated bytes must differ from the plaintext ones.
	plain := []byte("hunter2")
	same := true
	for i, b := range plain {
		if field[i] != b {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("obfuscate() left credential bytes unchanged")
	}
}

func TestSequenceTrackerRetransmitUntilDead(t *testing.T) {
	s := NewSequenceTracker()
	seq := s.Next()

	for i := 0; i < MaxRetransmits; i++ {
		retry, dead := s.DueForRetransmit()
		if len(dead) != 0 {
			t.Fatalf("attempt %d: sequence declared dead early", i)
		}
		found := false
		for _, r := range retry {
			if r == seq {
				found = true
			}
		}
		if !found {
			t.Fatalf("attempt %d: sequence %d missing from retry set", i, seq)
		}
	}

	_, dead := s.DueForRetransmit()
	if len(dead) != 1 || dead[0] != seq {
		t.Fatalf("DueForRetransmit() dead = %v, want [%d] after %d attempts", dead, seq, MaxRetransmits)
	}
}

func TestSequenceTrackerAckStopsRetransmit(t *testing.T) {
	s := NewSequenceTracker()
	seq := s.Next()
	s.Ack(seq)

	retry, dead := s.DueForRetransmit()
	if len(retry) != 0 || len(dead) != 0 {
		t.Fatalf("acked sequence still pending: retry=%v dead=%v", retry, dead)
	}
}

func TestSequenceTrackerRejectsReplay(t *testing.T) {
	s := NewSequenceTracker()
	if !s.Accept(5) {
		t.Fatalf("first sighting of sequence 5 should be accepted")
	}
	if s.Accept(5) {
		t.Fatalf("replayed sequence 5 should be rejected")
	}
}

func TestSequenceTrackerReplayWindowSlides(t *testing.T) {
	s := NewSequenceTracker()
	for i := uint16(0); i < ReplayWindowSize; i++ {
		s.Accept(i)
	}
	// window is now full of 0..ReplayWindowSize-1; push one more to evict 0.
	s.Accept(ReplayWindowSize)
	if !s.Accept(0) {
		t.Fatalf("sequence 0 should have fallen out of the replay window and be accepted again")
	}
}

func TestLevelRingPeakAndRMS(t *testing.T) {
	r := &LevelRing{}
	r.Push([]int16{32767, -32768, 0, 0})
	if peak := r.Peak(); peak < 0.99 {
		t.Fatalf("Peak() = %v, want ~1.0", peak)
	}
	if rms := r.RMS(); rms <= 0 || rms >= 1 {
		t.Fatalf("RMS() = %v, want in (0,1)", rms)
	}
}

func TestLevelRingWindowDepthCaps(t *testing.T) {
	r := &LevelRing{}
	r.Push([]int16{100})
	r.Push([]int16{200})
	r.Push([]int16{300})
	r.Push([]int16{400})
	r.Push([]int16{32767}) // 5th push should evict the first (100)
	peak := r.Peak()
	if peak < 0.99 {
		t.Fatalf("Peak() = %v after ring wrap, want the most recent loud sample to dominate", peak)
	}
}

func TestJitterBufferUnderrunWhenEmpty(t *testing.T) {
	j := NewJitterBuffer(50)
	_, underrun := j.Pop()
	if !underrun {
		t.Fatalf("Pop() on empty buffer should report underrun")
	}
}

func TestJitterBufferOrdersByTimestamp(t *testing.T) {
	j := NewJitterBuffer(50)
	j.Push(1, []int16{1, 2})
	j.Push(0, []int16{9, 9})

	samples, underrun := j.Pop()
	if underrun || len(samples) != 2 || samples[0] != 9 {
		t.Fatalf("Pop() = %v, underrun=%v, want timestamp-0 samples first", samples, underrun)
	}
	samples, underrun = j.Pop()
	if underrun || samples[0] != 1 {
		t.Fatalf("Pop() = %v, underrun=%v, want timestamp-1 samples second", samples, underrun)
	}
}

func TestJitterBufferDropsStalePackets(t *testing.T) {
	j := NewJitterBuffer(50)
	j.Push(5, []int16{1})
	j.readPos = 5
	if accepted := j.Push(2, []int16{2}); accepted {
		t.Fatalf("Push() accepted a packet older than the current read position")
	}
}

func TestPCMRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	got := bytesToInt16(int16ToBytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestControllerLinkDeadAfterMissedPings(t *testing.T) {
	c := NewController(Config{Host: "127.0.0.1", ControlPort: 59001})
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()
	// nothing is listening on 59001, but a connected UDP socket can still
	// accept local writes; the handshake simply never completes, which is
	// exactly the condition this test wants to exercise.

	for i := 0; i < MaxMissedPings-1; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick() unexpected error before quorum: %v", err)
		}
	}
	// on the Nth missed ping it should go dead instead of sending another
	// ping (teardown closes the sockets, then the state becomes Disconnected).
	err := c.Tick()
	if err == nil {
		t.Fatalf("Tick() expected link-dead error after %d missed pings", MaxMissedPings)
	}
	if c.State() != Disconnected {
		t.Fatalf("State() = %v, want Disconnected after link death", c.State())
	}
}

// TestControllerTickResendsPendingControlFrame exercises sendSequenced
// and DueForRetransmit end to end through Tick, not just in isolation
// against SequenceTracker.
func TestControllerTickResendsPendingControlFrame(t *testing.T) {
	c := NewController(Config{Host: "127.0.0.1", ControlPort: 59002})
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()

	// RequestStream matches none of Tick's ping/reauth cases, isolating
	// the retransmit bookkeeping under test from keep-alive side effects.
	c.mu.Lock()
	c.state = RequestStream
	c.mu.Unlock()

	seq, err := c.sendSequenced([]byte{0xAA})
	if err != nil {
		t.Fatalf("sendSequenced() error: %v", err)
	}
	if _, ok := c.pendingFrames[seq]; !ok {
		t.Fatalf("sendSequenced() did not record a pending frame for seq %d", seq)
	}

	for i := 0; i < MaxRetransmits; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick() attempt %d: unexpected error: %v", i, err)
		}
		if _, ok := c.pendingFrames[seq]; !ok {
			t.Fatalf("Tick() attempt %d: pending frame dropped before MaxRetransmits", i)
		}
	}

	if err := c.Tick(); err == nil {
		t.Fatalf("Tick() expected link-dead error once retransmits are exhausted")
	}
	if c.State() != Disconnected {
		t.Fatalf("State() = %v, want Disconnected after retransmit exhaustion", c.State())
	}
}

// TestControllerReauthTransitionsThroughTokenRenew exercises the
// Connected -> TokenRenew -> Connected cycle (spec.md §4.6).
func TestControllerReauthTransitionsThroughTokenRenew(t *testing.T) {
	c := NewController(Config{Host: "127.0.0.1", ControlPort: 59003, ReauthInterval: time.Hour})
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()

	c.mu.Lock()
	c.state = Connected
	c.reauthAt = time.Now().Add(-time.Second)
	c.token = 0x1234
	c.mu.Unlock()

	if err := c.Tick(); err != nil {
		t.Fatalf("Tick() unexpected error: %v", err)
	}
	if c.State() != TokenRenew {
		t.Fatalf("State() = %v, want TokenRenew once the reauth deadline passes", c.State())
	}

	c.mu.Lock()
	lastSeq := c.lastSentSeq
	c.mu.Unlock()
	if _, ok := c.pendingFrames[lastSeq]; !ok {
		t.Fatalf("sendTokenRenew() did not record a pending frame")
	}

	c.GrantToken(0x5678)
	if c.State() != Connected {
		t.Fatalf("State() = %v, want Connected after GrantToken", c.State())
	}
	if _, ok := c.pendingFrames[lastSeq]; ok {
		t.Fatalf("GrantToken() did not clear the pending renewal frame")
	}
}

func TestRadioSelectionRejectsBusyRadio(t *testing.T) {
	c := NewController(Config{Host: "127.0.0.1"})
	c.OfferRadios([]Radio{{Index: 0, Name: "IC-7300", Busy: true}})
	if err := c.SelectRadio(0); err == nil {
		t.Fatalf("SelectRadio() on a busy radio should fail")
	}
}

func TestRadioSelectionRejectsUnknownIndex(t *testing.T) {
	c := NewController(Config{Host: "127.0.0.1"})
	c.OfferRadios([]Radio{{Index: 0, Name: "IC-7300"}})
	if err := c.SelectRadio(9); err == nil {
		t.Fatalf("SelectRadio() on an unknown index should fail")
	}
}
