package udp

import (
	"net"
	"net/netip"
	"testing"
	"time"
)

// S5 — STUN discovery. Requires real connectivity to the public STUN
// server; skipped in -short mode and when the query gets no usable reply.
// A STUN server name that cannot be resolved fails the test.
func TestStunDiscovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network-dependent STUN test in -short mode")
	}

	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(netip.MustParseAddrPort("0.0.0.0:0")))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	q, err := newStunQuerier(conn, DefaultStunServer, 5, 2*time.Second, "")
	if err != nil {
		t.Fatalf("new querier: %v", err)
	}

	addr, err := q.query()
	if err != nil {
		t.Skipf("no STUN connectivity in this environment: %v", err)
	}
	if !addr.IsValid() || addr.Port() == 0 {
		t.Fatalf("expected a valid mapped address, got %v", addr)
	}
}

// Invariant 7 — a decoded reply lacking both XOR-MAPPED-ADDRESS and
// MAPPED-ADDRESS fails with ErrStunQuery.
func TestDecodeMappedAddressMissingAttribute(t *testing.T) {
	// A minimal, validly-framed STUN message with no mapped-address
	// attribute: header only, zero-length attribute section.
	raw := []byte{
		0x01, 0x01, // Binding Success Response
		0x00, 0x00, // length = 0
		0x21, 0x12, 0xA4, 0x42, // magic cookie
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // transaction id
	}
	if _, err := decodeMappedAddress(raw); err == nil {
		t.Fatal("expected decode to fail without a mapped address attribute")
	}
}
