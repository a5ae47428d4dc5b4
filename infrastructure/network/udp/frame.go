package udp

import "p2pvoice/domain/frame"

// AppendSentinel returns payload with the 8-byte framing sentinel appended,
// ready to be split into DatagramSize chunks for sending.
func AppendSentinel(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+frame.SentinelLen)
	out = append(out, payload...)
	out = append(out, frame.Sentinel...)
	return out
}

// chunks splits framed into DatagramSize-byte pieces, in order. The last
// chunk may be shorter than DatagramSize.
func chunks(framed []byte) [][]byte {
	var out [][]byte
	for len(framed) > 0 {
		n := frame.DatagramSize
		if n > len(framed) {
			n = len(framed)
		}
		out = append(out, framed[:n])
		framed = framed[n:]
	}
	if len(out) == 0 {
		out = append(out, framed)
	}
	return out
}

// accumulator incrementally assembles datagrams until the framing sentinel
// appears at the tail, per §4.1's receive algorithm.
type accumulator struct {
	buf []byte
}

// append adds one received datagram's bytes and reports whether the
// sentinel has now been observed at the tail.
func (a *accumulator) append(b []byte) bool {
	a.buf = append(a.buf, b...)
	return frame.HasSentinelSuffix(a.buf)
}

// payload strips the sentinel and returns the accumulated message bytes.
func (a *accumulator) payload() []byte {
	return a.buf[:len(a.buf)-frame.SentinelLen]
}
