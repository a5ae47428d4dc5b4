package holepunch

import (
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"p2pvoice/application"
	domainerrors "p2pvoice/domain/errors"
	domainholepunch "p2pvoice/domain/holepunch"
)

var _ application.Endpoint = (*fakeEndpoint)(nil)

// fakeEndpoint is a minimal in-memory application.Endpoint used to exercise
// Engine's protocol logic without real sockets: messages pushed to a peer
// land directly in that peer's queue.
type fakeEndpoint struct {
	self netip.AddrPort
	ttl  int32

	mu    sync.Mutex
	peers []netip.AddrPort
	queue [][]byte
	from  []netip.AddrPort

	link map[netip.AddrPort]*fakeEndpoint
}

func newFakeEndpoint(self netip.AddrPort, link map[netip.AddrPort]*fakeEndpoint) *fakeEndpoint {
	e := &fakeEndpoint{self: self, ttl: 64, link: link}
	link[self] = e
	return e
}

func (e *fakeEndpoint) Bind(peers []netip.AddrPort) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.peers = append([]netip.AddrPort(nil), peers...)
	return nil
}

func (e *fakeEndpoint) Peer() (netip.AddrPort, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.peers) == 0 {
		return netip.AddrPort{}, false
	}
	return e.peers[0], true
}

func (e *fakeEndpoint) Push(payload []byte) error {
	peer, ok := e.Peer()
	if !ok {
		return domainerrors.New(domainerrors.AsyncIOFailed, "no peer")
	}
	return e.PushTo(payload, []netip.AddrPort{peer})
}

func (e *fakeEndpoint) PushTo(payload []byte, addrs []netip.AddrPort) error {
	cp := append([]byte(nil), payload...)
	for _, addr := range addrs {
		target, ok := e.link[addr]
		if !ok {
			continue
		}
		target.mu.Lock()
		target.queue = append(target.queue, cp)
		target.from = append(target.from, e.self)
		target.mu.Unlock()
	}
	return nil
}

func (e *fakeEndpoint) receive(peek bool, timeout time.Duration) ([]byte, netip.AddrPort, error) {
	deadline := time.Now().Add(timeout)
	unbounded := timeout <= 0
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			payload, from := e.queue[0], e.from[0]
			if !peek {
				e.queue = e.queue[1:]
				e.from = e.from[1:]
			}
			e.mu.Unlock()
			return payload, from, nil
		}
		e.mu.Unlock()

		if !unbounded && time.Now().After(deadline) {
			return nil, netip.AddrPort{}, domainerrors.New(domainerrors.TimedOut, "receive timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func (e *fakeEndpoint) Poll() ([]byte, error) {
	p, _, err := e.receive(false, 5*time.Second)
	return p, err
}
func (e *fakeEndpoint) PollAt() ([]byte, netip.AddrPort, error) { return e.receive(false, 5*time.Second) }
func (e *fakeEndpoint) Peek() ([]byte, error) {
	p, _, err := e.receive(true, 5*time.Second)
	return p, err
}
func (e *fakeEndpoint) PeekAt() ([]byte, netip.AddrPort, error) { return e.receive(true, 5*time.Second) }
func (e *fakeEndpoint) PollAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error) {
	return e.receive(false, timeout)
}
func (e *fakeEndpoint) PeekAtTimeout(timeout time.Duration) ([]byte, netip.AddrPort, error) {
	return e.receive(true, timeout)
}

func (e *fakeEndpoint) GetTTL() (int, error) { return int(atomic.LoadInt32(&e.ttl)), nil }
func (e *fakeEndpoint) SetTTL(ttl int) error {
	atomic.StoreInt32(&e.ttl, int32(ttl))
	return nil
}
func (e *fakeEndpoint) LanIP() (netip.AddrPort, error) { return e.self, nil }
func (e *fakeEndpoint) WanIP() (netip.AddrPort, error) { return e.self, nil }
func (e *fakeEndpoint) Close() error                   { return nil }

// Invariant 8 — two endpoints running the handshake concurrently over
// loopback both converge on success.
func TestPunchSymmetryOverLoopback(t *testing.T) {
	link := map[netip.AddrPort]*fakeEndpoint{}
	aAddr := netip.MustParseAddrPort("127.0.0.1:34254")
	bAddr := netip.MustParseAddrPort("127.0.0.1:34250")

	a := newFakeEndpoint(aAddr, link)
	b := newFakeEndpoint(bAddr, link)
	_ = a.Bind([]netip.AddrPort{bAddr})
	_ = b.Bind([]netip.AddrPort{aAddr})

	engineA := New(a, 50, 5*time.Millisecond)
	engineB := New(b, 50, 5*time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = engineA.Punch([]netip.AddrPort{bAddr})
	}()
	go func() {
		defer wg.Done()
		errs[1] = engineB.Punch([]netip.AddrPort{aAddr})
	}()
	wg.Wait()

	if errs[0] != nil {
		t.Fatalf("engineA.Punch: %v", errs[0])
	}
	if errs[1] != nil {
		t.Fatalf("engineB.Punch: %v", errs[1])
	}

	ttl, err := a.GetTTL()
	if err != nil {
		t.Fatalf("get ttl: %v", err)
	}
	if ttl != 64 {
		t.Fatalf("expected ttl restored to 64, got %d", ttl)
	}

	if engineA.State() != domainholepunch.Done || engineB.State() != domainholepunch.Done {
		t.Fatalf("expected both engines Done, got %v / %v", engineA.State(), engineB.State())
	}
}

// A peer that never replies exhausts the retry budget; Punch must fail and
// leave the engine in the Failed state rather than Drain or Done.
func TestPunchNoPeerFails(t *testing.T) {
	link := map[netip.AddrPort]*fakeEndpoint{}
	aAddr := netip.MustParseAddrPort("127.0.0.1:34254")
	silentPeer := netip.MustParseAddrPort("127.0.0.1:34250")

	a := newFakeEndpoint(aAddr, link)
	_ = a.Bind([]netip.AddrPort{silentPeer})

	engine := New(a, 3, time.Millisecond)
	if err := engine.Punch([]netip.AddrPort{silentPeer}); err != domainholepunch.ErrConnection {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if engine.State() != domainholepunch.Failed {
		t.Fatalf("expected Failed state, got %v", engine.State())
	}
}

func TestContainsHelper(t *testing.T) {
	set := []netip.AddrPort{
		netip.MustParseAddrPort("127.0.0.1:1111"),
		netip.MustParseAddrPort("127.0.0.1:2222"),
	}
	if !contains(set, netip.MustParseAddrPort("127.0.0.1:2222")) {
		t.Fatal("expected membership")
	}
	if contains(set, netip.MustParseAddrPort("127.0.0.1:3333")) {
		t.Fatal("expected non-membership")
	}
}
