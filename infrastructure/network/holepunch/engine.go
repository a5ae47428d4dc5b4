// Package holepunch drives the three-stage NAT traversal handshake (§4.3)
// over an application.Endpoint: a synchronous a/b/c exchange followed by a
// drain phase that absorbs straggling handshake datagrams without
// swallowing unrelated payload meant for the caller.
package holepunch

import (
	"net/netip"
	"time"

	"p2pvoice/application"
	domainholepunch "p2pvoice/domain/holepunch"
)

// requestTTL is the IP TTL applied to the socket for the duration of the
// handshake, restored afterwards — a short TTL keeps probe datagrams from
// escaping the immediate NAT path while traversal is attempted.
const requestTTL = 32

// Engine runs the handshake against one bound endpoint.
type Engine struct {
	endpoint application.Endpoint
	retries  int
	timeout  time.Duration
	state    domainholepunch.State
}

// State reports the handshake's current phase, per §4.3's state machine.
func (e *Engine) State() domainholepunch.State {
	return e.state
}

// New constructs an Engine. retries is the protocol's retry budget
// (domainholepunch.DefaultRetryBudget if zero); timeout bounds each
// address-bearing receive attempt in both the sync and drain phases.
func New(endpoint application.Endpoint, retries int, timeout time.Duration) *Engine {
	if retries <= 0 {
		retries = domainholepunch.DefaultRetryBudget
	}
	if timeout <= 0 {
		timeout = 25 * time.Millisecond
	}
	return &Engine{endpoint: endpoint, retries: retries, timeout: timeout}
}

// Punch attempts NAT traversal against the given peer address set, lowering
// the endpoint's TTL for the duration of the attempt and always restoring
// it before returning.
func (e *Engine) Punch(peers []netip.AddrPort) error {
	e.state = domainholepunch.Start

	savedTTL, err := e.endpoint.GetTTL()
	if err != nil {
		e.state = domainholepunch.Failed
		return err
	}
	if err := e.endpoint.SetTTL(requestTTL); err != nil {
		e.state = domainholepunch.Failed
		return err
	}
	defer func() { _ = e.endpoint.SetTTL(savedTTL) }()

	if syncErr := e.sync(peers); syncErr != nil {
		e.state = domainholepunch.Failed
		return syncErr
	}

	e.state = domainholepunch.Drain
	if err := e.drain(peers); err != nil {
		e.state = domainholepunch.Failed
		return err
	}

	e.state = domainholepunch.Done
	return nil
}

func contains(set []netip.AddrPort, addr netip.AddrPort) bool {
	for _, a := range set {
		if a == addr {
			return true
		}
	}
	return false
}

// sync drives stages a -> b -> c against peers. On a recognized reply from
// the peer set it moves to the stage after the one received (a -> b,
// b -> c, c -> c), whatever stage this side was on, and resets the retry
// budget; only attempts that draw
// no reply at all, or a reply from outside the peer set, consume the
// budget. Returns nil once the peer has echoed stage c and this side has
// sent its own stage-c confirmation.
func (e *Engine) sync(peers []netip.AddrPort) error {
	stage := domainholepunch.StageA
	e.state = domainholepunch.SentA
	remaining := e.retries

	for {
		if err := e.endpoint.PushTo(stage.Bytes(), peers); err != nil {
			return err
		}

		reply, from, err := e.endpoint.PollAtTimeout(e.timeout)
		if err != nil {
			remaining--
			if remaining <= 0 {
				return domainholepunch.ErrConnection
			}
			continue
		}

		if !contains(peers, from) {
			// A reply from outside the peer set neither advances the
			// protocol nor is treated as progress.
			remaining--
			if remaining <= 0 {
				return domainholepunch.ErrConnection
			}
			continue
		}

		got, ok := domainholepunch.ParseStage(reply)
		if !ok {
			return domainholepunch.ErrValidation
		}

		switch got {
		case domainholepunch.StageA:
			stage = domainholepunch.StageB
			e.state = domainholepunch.SentB
		case domainholepunch.StageB:
			stage = domainholepunch.StageC
			e.state = domainholepunch.SentC
		case domainholepunch.StageC:
			if stage == domainholepunch.StageC {
				if err := e.endpoint.PushTo(stage.Bytes(), peers); err != nil {
					return err
				}
				return nil
			}
			stage = domainholepunch.StageC
			e.state = domainholepunch.SentC
		default:
			return domainholepunch.ErrValidation
		}

		// Any recognized reply from the peer set is forward progress:
		// reset the retry budget.
		remaining = e.retries
	}
}

// drain absorbs trailing handshake datagrams (duplicate stage-c echoes and
// in-flight stage-a/b retransmits) after sync has completed, without
// consuming unrelated payload that arrives from the peer set once the
// handshake is over. A read timeout during drain means the pipe is quiet
// and traversal is complete.
func (e *Engine) drain(peers []netip.AddrPort) error {
	for {
		reply, from, err := e.endpoint.PeekAtTimeout(e.timeout)
		if err != nil {
			return nil
		}

		if !contains(peers, from) {
			return nil
		}

		stage, ok := domainholepunch.ParseStage(reply)
		if !ok {
			// Unrelated payload sitting ahead of the queue: leave it for
			// the caller and consider traversal done.
			return nil
		}

		switch stage {
		case domainholepunch.StageA, domainholepunch.StageB:
			return domainholepunch.ErrPipeBroke
		case domainholepunch.StageC:
			// A duplicate stage-c echo: consume it for real and keep
			// draining.
			if _, err := e.endpoint.Poll(); err != nil {
				return err
			}
		}
	}
}
