// Package frame defines the wire-level message delimiter shared by the UDP
// datagram endpoint and the hole-punch engine.
package frame

// Sentinel marks the end of one logical message: bytes 0x65 0x6e 0x64 0x00
// 0x6d 0x73 0x67 0x00 ("end\0msg\0").
var Sentinel = []byte{'e', 'n', 'd', 0, 'm', 's', 'g', 0}

// SentinelLen is len(Sentinel).
const SentinelLen = 8

// DatagramSize is the fixed size of one UDP datagram chunk on the wire.
const DatagramSize = 256

// DefaultContinuationTimeoutMs is the default bound on continuation reads
// inside a single in-progress framed message.
const DefaultContinuationTimeoutMs = 25

// HasSentinelSuffix reports whether the last SentinelLen bytes of b equal
// Sentinel.
func HasSentinelSuffix(b []byte) bool {
	if len(b) < SentinelLen {
		return false
	}
	tail := b[len(b)-SentinelLen:]
	for i := range Sentinel {
		if tail[i] != Sentinel[i] {
			return false
		}
	}
	return true
}
