//go:build !unix

package udp

import (
	"net"
	"net/netip"

	domainerrors "p2pvoice/domain/errors"
)

// peekDatagram has no portable MSG_PEEK equivalent outside the unix socket
// API, so on other platforms this falls back to a consuming read. Drain-phase
// unrelated payloads are therefore not preserved for downstream consumers on
// non-unix builds; see DESIGN.md.
func peekDatagram(conn rawConnSource, buf []byte) (int, netip.AddrPort, error) {
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		return 0, netip.AddrPort{}, domainerrors.New(domainerrors.AsyncIOFailed, "peek unsupported on this connection type")
	}
	n, addr, err := udpConn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return 0, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "peek fallback recv", err)
	}
	return n, addr, nil
}
