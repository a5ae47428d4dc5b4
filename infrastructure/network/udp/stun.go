package udp

import (
	"net"
	"net/netip"
	"time"

	"github.com/pion/stun/v3"

	domainerrors "p2pvoice/domain/errors"
	"p2pvoice/domain/holepunch"
)

// DefaultStunServer is used when no configuration overrides it.
const DefaultStunServer = "stun.l.google.com:19302"

// stunQuerier implements get_wan_ip (§4.2): RFC 5389 binding request over
// the endpoint's own socket, retried until a reply is observed or the
// retry budget is exhausted. A reply from an unexpected source resets the
// retry budget rather than consuming it; only a true timeout consumes one
// attempt — mirroring the reference implementation's retry accounting.
type stunQuerier struct {
	conn    *net.UDPConn
	server  *net.UDPAddr
	retries int
	timeout time.Duration
	swTag   string
}

func newStunQuerier(conn *net.UDPConn, server string, retries int, timeout time.Duration, swTag string) (*stunQuerier, error) {
	if server == "" {
		server = DefaultStunServer
	}
	addr, err := net.ResolveUDPAddr("udp4", server)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.AddressNotParsed, "resolve stun server", err)
	}
	return &stunQuerier{conn: conn, server: addr, retries: retries, timeout: timeout, swTag: swTag}, nil
}

func (q *stunQuerier) query() (netip.AddrPort, error) {
	request, err := buildBindingRequest(q.swTag)
	if err != nil {
		return netip.AddrPort{}, err
	}

	buf := make([]byte, 512)
	remaining := q.retries

	for {
		if _, err := q.conn.WriteToUDP(request, q.server); err != nil {
			return netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "stun send", err)
		}

		if err := q.conn.SetReadDeadline(time.Now().Add(q.timeout)); err != nil {
			return netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "stun set deadline", err)
		}
		n, from, err := q.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				return netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "stun recv", err)
			}
			remaining--
			if remaining <= 0 {
				return netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "stun query", holepunch.ErrConnection)
			}
			continue
		}

		if from.IP.Equal(q.server.IP) && from.Port == q.server.Port {
			return decodeMappedAddress(buf[:n])
		}

		// A reply from someone else resets the budget and we try again.
		remaining = q.retries
	}
}

func buildBindingRequest(swTag string) ([]byte, error) {
	setters := []stun.Setter{stun.TransactionID, stun.BindingRequest}
	if swTag != "" {
		setters = append(setters, stun.NewSoftware(swTag))
	}
	msg, err := stun.Build(setters...)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.EncoderFull, "stun build", err)
	}
	return msg.Raw, nil
}

func decodeMappedAddress(buf []byte) (netip.AddrPort, error) {
	var m stun.Message
	m.Raw = append([]byte(nil), buf...)
	if err := m.Decode(); err != nil {
		return netip.AddrPort{}, domainerrors.Wrap(domainerrors.BrokenMessage, "stun decode", err)
	}

	var xor stun.XORMappedAddress
	if err := xor.GetFrom(&m); err == nil {
		return addrPortFromIP(xor.IP, xor.Port), nil
	}

	var mapped stun.MappedAddress
	if err := mapped.GetFrom(&m); err == nil {
		return addrPortFromIP(mapped.IP, mapped.Port), nil
	}

	return netip.AddrPort{}, holepunch.ErrStunQuery
}

func addrPortFromIP(ip net.IP, port int) netip.AddrPort {
	if v4 := ip.To4(); v4 != nil {
		return netip.AddrPortFrom(netip.AddrFrom4([4]byte(v4)), uint16(port))
	}
	var b [16]byte
	copy(b[:], ip.To16())
	return netip.AddrPortFrom(netip.AddrFrom16(b), uint16(port))
}
