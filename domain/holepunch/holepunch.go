// Package holepunch defines the wire messages and error sentinels for the
// three-stage NAT traversal handshake.
package holepunch

import "errors"

// Stage identifies one of the three handshake messages.
type Stage byte

const (
	StageA Stage = iota
	StageB
	StageC
)

// Bytes returns the framed wire payload for a stage, e.g. "a\x00p2p\x00req\x00".
func (s Stage) Bytes() []byte {
	switch s {
	case StageA:
		return []byte("a\x00p2p\x00req\x00")
	case StageB:
		return []byte("b\x00p2p\x00req\x00")
	case StageC:
		return []byte("c\x00p2p\x00req\x00")
	default:
		return nil
	}
}

// ParseStage recognizes one of the three stage payloads. ok is false for
// anything else.
func ParseStage(b []byte) (Stage, bool) {
	switch string(b) {
	case "a\x00p2p\x00req\x00":
		return StageA, true
	case "b\x00p2p\x00req\x00":
		return StageB, true
	case "c\x00p2p\x00req\x00":
		return StageC, true
	default:
		return 0, false
	}
}

// State is the hole-punch state machine's current phase.
type State int

const (
	Start State = iota
	SentA
	SentB
	SentC
	Drain
	Done
	Failed
)

// Protocol-level sentinels, translated from wire/transport failures by the
// handshake engine.
var (
	ErrConnection = errors.New("holepunch: retry budget exhausted")
	ErrValidation = errors.New("holepunch: unexpected message from peer")
	ErrPipeBroke  = errors.New("holepunch: ordering violated during drain")
	ErrStunQuery  = errors.New("holepunch: stun reply missing mapped address")
)

// DefaultRetryBudget is the number of protocol iterations attempted before
// giving up with ErrConnection.
const DefaultRetryBudget = 1000
