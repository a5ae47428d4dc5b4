package application

import (
	"net/netip"
	"time"
)

// Endpoint owns one OS UDP socket and implements the frame codec on top of
// it: message-level send/receive, peer binding, TTL control, and STUN-based
// external address discovery. An Endpoint is safe for concurrent send on one
// task and receive on another; the hole-punch engine additionally requires
// exclusive logical ownership of the receive path for the duration of a
// handshake.
type Endpoint interface {
	// Bind fixes the peer address set this endpoint talks to.
	Bind(peers []netip.AddrPort) error

	// Peer returns the currently bound peer address, if any.
	Peer() (netip.AddrPort, bool)

	// Poll performs a framed message receive from the bound peer, blocking
	// indefinitely on the first datagram and bounding continuations by the
	// endpoint's configured timeout.
	Poll() ([]byte, error)

	// Peek is like Poll but does not consume bytes beyond what's required to
	// recognize one framed message; callers use it for drain-phase peeking.
	Peek() ([]byte, error)

	// PollAt is Poll, additionally reporting the source address of the first
	// datagram of the message.
	PollAt() ([]byte, netip.AddrPort, error)

	// PeekAt is Peek, additionally reporting the source address.
	PeekAt() ([]byte, netip.AddrPort, error)

	// PollAtTimeout is PollAt with the first datagram ALSO bounded by
	// timeout rather than blocking indefinitely — the hole-punch engine's
	// "address-bearing receive with a short timeout" (§4.3 step 2), where
	// waiting forever for a peer that never sends would prevent the retry
	// budget from ever being exercised.
	PollAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error)

	// PeekAtTimeout is PeekAt bounded by timeout — the Drain phase's
	// non-consuming scan of pending datagrams from the target address set.
	PeekAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error)

	// Push frames payload and sends it to the bound peer.
	Push(payload []byte) error

	// PushTo frames payload and sends it to every address in addrs, in
	// order; a single send failure aborts the operation.
	PushTo(payload []byte, addrs []netip.AddrPort) error

	// GetTTL returns the socket's current IP TTL.
	GetTTL() (int, error)

	// SetTTL sets the socket's IP TTL.
	SetTTL(ttl int) error

	// LanIP returns the endpoint's bound local address.
	LanIP() (netip.AddrPort, error)

	// WanIP returns the externally-mapped address as discovered via STUN at
	// construction time.
	WanIP() (netip.AddrPort, error)

	// Close releases the underlying socket.
	Close() error
}
