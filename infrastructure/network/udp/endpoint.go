package udp

import (
	"net"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/net/ipv4"

	"p2pvoice/application"
	"p2pvoice/domain/frame"

	domainerrors "p2pvoice/domain/errors"
)

// Config configures one Endpoint's retry/timeout behaviour and STUN
// discovery, mirroring the TOML `socket` table and the per-transport
// `sw_tag`/`ttl` fields of §6.
type Config struct {
	// Retries is the STUN query retry budget. Default 1000.
	Retries int
	// TimeoutMs bounds continuation reads within a framed message and each
	// STUN query attempt. Default 25.
	TimeoutMs int
	// TTL, if non-zero, is applied to the socket at construction.
	TTL int
	// SoftwareTag is the optional STUN SOFTWARE attribute value.
	SoftwareTag string
	// StunServer overrides DefaultStunServer when non-empty.
	StunServer string
}

func (c Config) withDefaults() Config {
	if c.Retries <= 0 {
		c.Retries = holepunchDefaultRetries
	}
	if c.TimeoutMs <= 0 {
		c.TimeoutMs = frame.DefaultContinuationTimeoutMs
	}
	return c
}

const holepunchDefaultRetries = 1000

// Endpoint implements application.Endpoint over one *net.UDPConn.
type Endpoint struct {
	conn *net.UDPConn
	cfg  Config

	mu    sync.Mutex
	peers []netip.AddrPort

	wan netip.AddrPort
}

// Bind constructs an Endpoint listening on local, discovering its external
// address via STUN eagerly (per §3's "external-IP discovery is performed
// eagerly at construction").
func Bind(local netip.AddrPort, cfg Config) (*Endpoint, error) {
	return bind(local, cfg, true)
}

// BindLoopback constructs an Endpoint without performing STUN discovery,
// reporting the bound local address as its WAN address instead. Used by the
// CLI's `loopback` mode (spec.md §6), where peers address each other
// directly over localhost and public-address discovery has nothing to
// resolve.
func BindLoopback(local netip.AddrPort, cfg Config) (*Endpoint, error) {
	return bind(local, cfg, false)
}

func bind(local netip.AddrPort, cfg Config, stun bool) (*Endpoint, error) {
	cfg = cfg.withDefaults()

	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(local))
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.AsyncIOFailed, "listen udp", err)
	}

	e := &Endpoint{conn: conn, cfg: cfg}

	if cfg.TTL > 0 {
		if err := e.SetTTL(cfg.TTL); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if !stun {
		addr, ok := conn.LocalAddr().(*net.UDPAddr)
		if !ok {
			_ = conn.Close()
			return nil, domainerrors.New(domainerrors.AsyncIOFailed, "local addr unavailable")
		}
		e.wan = addr.AddrPort()
		return e, nil
	}

	querier, err := newStunQuerier(conn, cfg.StunServer, cfg.Retries, time.Duration(cfg.TimeoutMs)*time.Millisecond, cfg.SoftwareTag)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	wan, err := querier.query()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	e.wan = wan

	return e, nil
}

var _ application.Endpoint = (*Endpoint)(nil)

func (e *Endpoint) Bind(peers []netip.AddrPort) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.peers = append([]netip.AddrPort(nil), peers...)
	return nil
}

func (e *Endpoint) Peer() (netip.AddrPort, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.peers) == 0 {
		return netip.AddrPort{}, false
	}
	return e.peers[0], true
}

func (e *Endpoint) Push(payload []byte) error {
	peer, ok := e.Peer()
	if !ok {
		return domainerrors.New(domainerrors.AsyncIOFailed, "push: no peer bound")
	}
	return e.PushTo(payload, []netip.AddrPort{peer})
}

// PushTo sends payload, framed and chunked, to every address in addrs for
// every chunk in order; a single send failure aborts the whole operation.
func (e *Endpoint) PushTo(payload []byte, addrs []netip.AddrPort) error {
	for _, chunk := range chunks(AppendSentinel(payload)) {
		for _, addr := range addrs {
			if _, err := e.conn.WriteToUDPAddrPort(chunk, addr); err != nil {
				return domainerrors.Wrap(domainerrors.AsyncIOFailed, "push_to send", err)
			}
		}
	}
	return nil
}

func (e *Endpoint) Poll() ([]byte, error) {
	payload, _, err := e.receive(false, 0)
	return payload, err
}

func (e *Endpoint) PollAt() ([]byte, netip.AddrPort, error) {
	return e.receive(false, 0)
}

func (e *Endpoint) Peek() ([]byte, error) {
	payload, _, err := e.receive(true, 0)
	return payload, err
}

func (e *Endpoint) PeekAt() ([]byte, netip.AddrPort, error) {
	return e.receive(true, 0)
}

// PollAtTimeout is used by the hole-punch engine, whose protocol loop must
// not block forever waiting for a peer that hasn't started punching yet.
func (e *Endpoint) PollAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error) {
	return e.receive(false, timeout)
}

// PeekAtTimeout bounds the Drain phase's non-consuming scan.
func (e *Endpoint) PeekAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error) {
	return e.receive(true, timeout)
}

// receive implements §4.1's accumulation algorithm: the first datagram
// blocks indefinitely unless firstTimeout is non-zero (used by
// PollAtTimeout), continuations are always bounded by cfg.TimeoutMs. When
// peek is true, datagrams are inspected via MSG_PEEK and not removed from
// the socket's queue.
func (e *Endpoint) receive(peek bool, firstTimeout time.Duration) ([]byte, netip.AddrPort, error) {
	var acc accumulator
	buf := make([]byte, frame.DatagramSize)
	first := true
	var source netip.AddrPort

	for {
		var (
			n    int
			from netip.AddrPort
			err  error
		)

		switch {
		case first && firstTimeout > 0:
			if derr := e.conn.SetReadDeadline(time.Now().Add(firstTimeout)); derr != nil {
				return nil, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "set deadline", derr)
			}
		case first:
			if derr := e.conn.SetReadDeadline(time.Time{}); derr != nil {
				return nil, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "clear deadline", derr)
			}
		default:
			if derr := e.conn.SetReadDeadline(time.Now().Add(time.Duration(e.cfg.TimeoutMs) * time.Millisecond)); derr != nil {
				return nil, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "set deadline", derr)
			}
		}

		if peek {
			n, from, err = peekDatagram(e.conn, buf)
		} else {
			n, from, err = e.conn.ReadFromUDPAddrPort(buf)
		}

		if err != nil {
			if !first || firstTimeout > 0 {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					return nil, netip.AddrPort{}, domainerrors.New(domainerrors.TimedOut, "receive timed out")
				}
			}
			return nil, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "recv", err)
		}

		if first {
			source = from
			first = false
		}

		if acc.append(buf[:n]) {
			return acc.payload(), source, nil
		}
	}
}

func (e *Endpoint) GetTTL() (int, error) {
	ttl, err := ipv4.NewConn(e.conn).TTL()
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.AsyncIOFailed, "get ttl", err)
	}
	return ttl, nil
}

func (e *Endpoint) SetTTL(ttl int) error {
	if err := ipv4.NewConn(e.conn).SetTTL(ttl); err != nil {
		return domainerrors.Wrap(domainerrors.AsyncIOFailed, "set ttl", err)
	}
	return nil
}

func (e *Endpoint) LanIP() (netip.AddrPort, error) {
	addr, ok := e.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.AddrPort{}, domainerrors.New(domainerrors.AsyncIOFailed, "local addr unavailable")
	}
	return addr.AddrPort(), nil
}

func (e *Endpoint) WanIP() (netip.AddrPort, error) {
	return e.wan, nil
}

func (e *Endpoint) Close() error {
	return e.conn.Close()
}
