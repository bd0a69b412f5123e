package lantransport

import "sync"

// SequenceTracker issues outgoing 16-bit sequence numbers and tracks
// acknowledgement of frames that require one, plus a replay window over
// received sequences (spec.md §4.6).
type SequenceTracker struct {
	mu      sync.Mutex
	next    uint16
	pending map[uint16]int // sequence -> retransmit attempts so far
	seen    []uint16       // last ReplayWindowSize received sequences, newest last
}

// NewSequenceTracker constructs an empty tracker.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{pending: make(map[uint16]int)}
}

// Next allocates the next outgoing sequence number, marking it pending
// (attempt count 0) for retransmission bookkeeping.
func (s *SequenceTracker) Next() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.next
	s.next++
	s.pending[seq] = 0
	return seq
}

// Ack clears a sequence from the pending-retransmit set.
func (s *SequenceTracker) Ack(seq uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, seq)
}

// DueForRetransmit returns the sequences still pending whose retransmit
// attempt count is below MaxRetransmits, incrementing each one's count.
// A sequence that has already been retried MaxRetransmits times is
// dropped from pending and returned in dead instead (the channel goes
// dead per spec.md §4.6).
func (s *SequenceTracker) DueForRetransmit() (retry []uint16, dead []uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for seq, attempts := range s.pending {
		if attempts >= MaxRetransmits {
			dead = append(dead, seq)
			delete(s.pending, seq)
			continue
		}
		s.pending[seq] = attempts + 1
		retry = append(retry, seq)
	}
	return retry, dead
}

// Accept reports whether an inbound sequence is new (true) or a replay
// within the last ReplayWindowSize sequences (false), recording it
// either way once accepted.
func (s *SequenceTracker) Accept(seq uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sn := range s.seen {
		if sn == seq {
			return false
		}
	}
	s.seen = append(s.seen, seq)
	if len(s.seen) > ReplayWindowSize {
		s.seen = s.seen[len(s.seen)-ReplayWindowSize:]
	}
	return true
}
