package civop

import (
	"github.com/bturbeville/wfview-sub001/internal/civframe"
	"github.com/bturbeville/wfview-sub001/internal/rigcat"
)

// Identification is the result of binding a session to a rig (spec.md
// §4.3's lookup-and-bind protocol).
type Identification struct {
	RigAddr byte
	Caps    rigcat.Capability
	Known   bool // false when Caps is a synthetic default record
}

// Identifier drives the rig-identification protocol: it consumes inbound
// frames until one answers the broadcast ID query, binds to the first
// responder, and distinguishes the first successful bind (discovered)
// from any later replies to the same query (have_rig_id).
type Identifier struct {
	RTSOverride *bool // nil: use the model default; non-nil: user preference wins
	bound       bool
}

// NewIdentifier constructs an Identifier. rtsOverride, if non-nil,
// supersedes the capability record's UseRTSForPTT flag once bound.
func NewIdentifier(rtsOverride *bool) *Identifier {
	return &Identifier{RTSOverride: rtsOverride}
}

// Feed inspects one inbound frame. If it is a reply to the rig-ID
// broadcast (cmd 19 sub 00), it returns the identification and an event
// name: "discovered_rig_id" on the first successful bind, "have_rig_id"
// on every subsequent reply. ok is false for any frame that isn't a
// rig-ID reply.
func (id *Identifier) Feed(f civframe.Frame) (ident Identification, event string, ok bool) {
	if f.Cmd != cmdReadID || len(f.Payload) < 2 || f.Payload[0] != 0x00 {
		return Identification{}, "", false
	}
	modelID := f.Payload[1]
	caps, known := rigcat.Lookup(modelID)
	if id.RTSOverride != nil {
		caps.Flags.UseRTSForPTT = *id.RTSOverride
	}
	ident = Identification{RigAddr: f.From, Caps: caps, Known: known}
	if !id.bound {
		id.bound = true
		return ident, "discovered_rig_id", true
	}
	return ident, "have_rig_id", true
}
