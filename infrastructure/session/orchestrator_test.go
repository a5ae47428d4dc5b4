package session

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"testing"
	"time"

	"p2pvoice/infrastructure/settings"
)

// reservePort briefly binds to 127.0.0.1:0 to learn an OS-assigned free
// port, then releases it for the real bind that follows.
func reservePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(netip.MustParseAddrPort("127.0.0.1:0")))
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	_ = conn.Close()
	return port
}

// fakePrompter feeds one scripted line to ReadLine and records every
// WriteLine call, standing in for application.ConsolePrompter.
type fakePrompter struct {
	lines chan string
	mu    sync.Mutex
	seen  []string
}

func newFakePrompter(scripted ...string) *fakePrompter {
	p := &fakePrompter{lines: make(chan string, len(scripted)+1)}
	for _, l := range scripted {
		p.lines <- l
	}
	return p
}

func (p *fakePrompter) ReadLine(ctx context.Context) (string, error) {
	select {
	case l := <-p.lines:
		return l, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *fakePrompter) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, line)
	return nil
}

func (p *fakePrompter) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func testConfig() settings.FileConfig {
	return settings.FileConfig{
		Encryption: settings.EncryptionConfig{AES: &settings.AESEncryption{Cipher: "AES256", Nonce: 12}},
		Socket:     settings.SocketConfig{Retries: 200, Timeout: 5},
	}
}

// S4-equivalent at the session layer: two orchestrators over loopback
// complete construction (bind + hole-punch) and exchange one text message
// end to end through encrypt/push/poll/decrypt.
func TestOrchestratorLoopbackMessageRoundTrip(t *testing.T) {
	aMsgPort, aSndPort := reservePort(t), reservePort(t)
	bMsgPort, bSndPort := reservePort(t), reservePort(t)

	aMsgLocal := netip.MustParseAddrPort("127.0.0.1:" + strconv.Itoa(aMsgPort))
	aSndLocal := netip.MustParseAddrPort("127.0.0.1:" + strconv.Itoa(aSndPort))
	bMsgLocal := netip.MustParseAddrPort("127.0.0.1:" + strconv.Itoa(bMsgPort))
	bSndLocal := netip.MustParseAddrPort("127.0.0.1:" + strconv.Itoa(bSndPort))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	aPrompter := newFakePrompter("alpha test string")
	bPrompter := newFakePrompter()

	var aOrch, bOrch *Orchestrator
	var aErr, bErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		aOrch, aErr = New(ctx, testConfig(), "shared passphrase",
			aMsgLocal, aSndLocal,
			[]netip.AddrPort{bMsgLocal}, []netip.AddrPort{bSndLocal},
			true, aPrompter, noAudio{}, noAudio{}, nopLogger{})
	}()
	go func() {
		defer wg.Done()
		bOrch, bErr = New(ctx, testConfig(), "shared passphrase",
			bMsgLocal, bSndLocal,
			[]netip.AddrPort{aMsgLocal}, []netip.AddrPort{aSndLocal},
			true, bPrompter, noAudio{}, noAudio{}, nopLogger{})
	}()
	wg.Wait()

	if aErr != nil {
		t.Fatalf("orchestrator A construction: %v", aErr)
	}
	if bErr != nil {
		t.Fatalf("orchestrator B construction: %v", bErr)
	}
	defer aOrch.Close()
	defer bOrch.Close()

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	go aOrch.Run(runCtx)
	go bOrch.Run(runCtx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(bPrompter.Lines()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := bPrompter.Lines()
	if len(got) == 0 {
		t.Fatal("expected orchestrator B to receive at least one message")
	}
	if got[0] != "alpha test string" {
		t.Fatalf("unexpected message: got %q", got[0])
	}
}

type noAudio struct{}

func (noAudio) Samples(ctx context.Context) <-chan []float32 {
	out := make(chan []float32)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
func (noAudio) Accept(samples []float32) error { return nil }

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...any) {}

