//go:build unix

package udp

import (
	"net/netip"
	"syscall"

	domainerrors "p2pvoice/domain/errors"
)

// peekDatagram reads the head-of-queue datagram using MSG_PEEK so it is NOT
// removed from the socket's receive queue — later Poll/Peek calls (by this
// or another task) still see it. This mirrors the non-consuming peek the
// hole-punch Drain phase depends on to leave unrelated payloads for
// downstream consumers.
func peekDatagram(conn rawConnSource, buf []byte) (int, netip.AddrPort, error) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return 0, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "syscall conn", err)
	}

	var (
		n       int
		sa      syscall.Sockaddr
		innerErr error
	)
	ctrlErr := rawConn.Read(func(fd uintptr) bool {
		n, sa, innerErr = syscall.Recvfrom(int(fd), buf, syscall.MSG_PEEK)
		return innerErr != syscall.EAGAIN
	})
	if ctrlErr != nil {
		return 0, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "peek", ctrlErr)
	}
	if innerErr != nil {
		return 0, netip.AddrPort{}, domainerrors.Wrap(domainerrors.AsyncIOFailed, "peek", innerErr)
	}

	addr, ok := sockaddrToAddrPort(sa)
	if !ok {
		return n, netip.AddrPort{}, nil
	}
	return n, addr, nil
}

func sockaddrToAddrPort(sa syscall.Sockaddr) (netip.AddrPort, bool) {
	switch a := sa.(type) {
	case *syscall.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)), true
	case *syscall.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)), true
	default:
		return netip.AddrPort{}, false
	}
}
