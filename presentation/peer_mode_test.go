package presentation

import "testing"

func TestPeerModeSelector_NoArguments(t *testing.T) {
	m := NewPeerModeSelector([]string{"p2pvoice"}).Mode()
	if m != Interactive {
		t.Fatalf("expected Interactive, got %v", m)
	}
}

func TestPeerModeSelector_Loopback(t *testing.T) {
	m := NewPeerModeSelector([]string{"p2pvoice", "loopback"}).Mode()
	if m != Loopback {
		t.Fatalf("expected Loopback, got %v", m)
	}
	m = NewPeerModeSelector([]string{"p2pvoice", " LOOPBACK "}).Mode()
	if m != Loopback {
		t.Fatalf("expected Loopback on case/space-insensitive match, got %v", m)
	}
}

func TestPeerModeSelector_UnknownArgument(t *testing.T) {
	m := NewPeerModeSelector([]string{"p2pvoice", "bogus"}).Mode()
	if m != Interactive {
		t.Fatalf("expected Interactive for unrecognized argument, got %v", m)
	}
}
