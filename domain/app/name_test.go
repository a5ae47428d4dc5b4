package app

import "testing"

func TestName(t *testing.T) {
	if Name == "" {
		t.Fatal("expected non-empty app name")
	}
	if Name != "p2pvoice" {
		t.Fatalf("expected app name %q, got %q", "p2pvoice", Name)
	}
}
