package udp

import "syscall"

// rawConnSource is the subset of *net.UDPConn peekDatagram needs, factored
// out so the unix/non-unix implementations share one signature.
type rawConnSource interface {
	SyscallConn() (syscall.RawConn, error)
}
