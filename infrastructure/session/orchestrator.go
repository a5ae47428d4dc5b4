// Package session implements the session orchestrator (spec.md §4.6):
// construction of the msg/snd endpoint+cipher pairs from configuration and
// a shared passphrase, concurrent hole-punching of both, and the four
// steady-state tasks that move payload between the endpoints and the
// external audio/console collaborators.
package session

import (
	"context"
	"crypto/sha256"
	"net/netip"
	"time"

	"golang.org/x/sync/errgroup"

	"p2pvoice/application"
	domainerrors "p2pvoice/domain/errors"
	"p2pvoice/infrastructure/cryptography/aead"
	"p2pvoice/infrastructure/cryptography/mem"
	"p2pvoice/infrastructure/cryptography/rng"
	"p2pvoice/infrastructure/network/holepunch"
	"p2pvoice/infrastructure/network/udp"
	"p2pvoice/infrastructure/settings"
)

// Orchestrator owns the two (endpoint, cipher) pairs and the collaborators
// the steady-state tasks are wired to.
type Orchestrator struct {
	msgEndpoint application.Endpoint
	sndEndpoint application.Endpoint
	msgCipher   application.Cipher
	sndCipher   application.Cipher

	prompter application.ConsolePrompter
	source   application.SampleSource
	sink     application.SampleSink
	logger   application.Logger
}

// New performs construction step 1-4 of spec.md §4.6: derives the cipher
// handles from passphrase+config, binds both endpoints (each performing
// eager STUN discovery, except in loopback mode, where udp.BindLoopback
// skips it), binds the supplied remote peer sets, then runs
// hole-punching on both endpoints concurrently. Returns a ready Orchestrator
// only once both handshakes succeed.
func New(
	ctx context.Context,
	cfg settings.FileConfig,
	passphrase string,
	msgLocal, sndLocal netip.AddrPort,
	msgPeers, sndPeers []netip.AddrPort,
	loopback bool,
	prompter application.ConsolePrompter,
	source application.SampleSource,
	sink application.SampleSink,
	logger application.Logger,
) (*Orchestrator, error) {
	spec, err := cipherSpecFromConfig(cfg.Encryption)
	if err != nil {
		return nil, err
	}

	root := rng.SeedFromPassphrase(passphrase)
	builder := aead.NewBuilder()

	msgSeed := deriveChannelSeed(root, "msg")
	sndSeed := deriveChannelSeed(root, "snd")

	msgCipher, err := builder.Build(spec, rng.NewSeedable(msgSeed))
	if err != nil {
		mem.ZeroBytes(root[:])
		mem.ZeroBytes(msgSeed[:])
		mem.ZeroBytes(sndSeed[:])
		return nil, err
	}
	sndCipher, err := builder.Build(spec, rng.NewSeedable(sndSeed))
	mem.ZeroBytes(root[:])
	mem.ZeroBytes(msgSeed[:])
	mem.ZeroBytes(sndSeed[:])
	if err != nil {
		return nil, err
	}

	sock := cfg.Socket.WithDefaults()
	bindEndpoint := udp.Bind
	if loopback {
		bindEndpoint = udp.BindLoopback
	}

	msgEndpoint, err := bindEndpoint(msgLocal, udp.Config{
		Retries: sock.Retries, TimeoutMs: sock.Timeout,
		TTL: cfg.Client.Msg.UDP.TTL, SoftwareTag: cfg.Client.Msg.UDP.SwTag,
	})
	if err != nil {
		return nil, err
	}
	sndEndpoint, err := bindEndpoint(sndLocal, udp.Config{
		Retries: sock.Retries, TimeoutMs: sock.Timeout,
		TTL: cfg.Client.Snd.UDP.TTL, SoftwareTag: cfg.Client.Snd.UDP.SwTag,
	})
	if err != nil {
		_ = msgEndpoint.Close()
		return nil, err
	}

	if err := msgEndpoint.Bind(msgPeers); err != nil {
		return nil, closeBoth(msgEndpoint, sndEndpoint, err)
	}
	if err := sndEndpoint.Bind(sndPeers); err != nil {
		return nil, closeBoth(msgEndpoint, sndEndpoint, err)
	}

	timeout := time.Duration(sock.Timeout) * time.Millisecond
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		return holepunch.New(msgEndpoint, sock.Retries, timeout).Punch(msgPeers)
	})
	group.Go(func() error {
		return holepunch.New(sndEndpoint, sock.Retries, timeout).Punch(sndPeers)
	})
	if err := group.Wait(); err != nil {
		return nil, closeBoth(msgEndpoint, sndEndpoint, err)
	}

	return &Orchestrator{
		msgEndpoint: msgEndpoint,
		sndEndpoint: sndEndpoint,
		msgCipher:   msgCipher,
		sndCipher:   sndCipher,
		prompter:    prompter,
		source:      source,
		sink:        sink,
		logger:      logger,
	}, nil
}

func closeBoth(a, b application.Endpoint, cause error) error {
	_ = a.Close()
	_ = b.Close()
	return cause
}

// deriveChannelSeed derives a distinct key-material seed per logical
// channel from the same passphrase-rooted seed, so the msg and snd cipher
// handles never share key material even though both peers arrive at the
// same per-channel seed independently (same passphrase, same label).
func deriveChannelSeed(root rng.Seed, label string) rng.Seed {
	h := sha256.New()
	h.Write(root[:])
	h.Write([]byte(label))
	var out rng.Seed
	copy(out[:], h.Sum(nil))
	return out
}

// Run starts the four steady-state tasks (spec.md §4.6) and blocks until
// ctx is cancelled or a fatal transport error occurs. Decrypt failures are
// logged and do not terminate the session (§7: tolerate replay/cross-cipher
// noise), but a non-timeout AsyncIOFailed from Poll/Push means the socket
// itself is gone and propagates to tear the session down (§4.6/§7: total
// socket loss is fatal).
func (o *Orchestrator) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return o.msgPut(ctx) })
	group.Go(func() error { return o.msgGet(ctx) })
	group.Go(func() error { return o.sndPut(ctx) })
	group.Go(func() error { return o.sndGet(ctx) })

	return group.Wait()
}

// Close releases both endpoints.
func (o *Orchestrator) Close() error {
	err1 := o.msgEndpoint.Close()
	err2 := o.sndEndpoint.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (o *Orchestrator) msgPut(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := o.prompter.ReadLine(ctx)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ChannelIsClosed) {
				return err
			}
			o.logger.Printf("msg_put: read line: %v", err)
			continue
		}

		framed, err := o.msgCipher.Encrypt([]byte(line))
		if err != nil {
			o.logger.Printf("msg_put: encrypt: %v", err)
			continue
		}
		if err := o.msgEndpoint.Push(framed); err != nil {
			if domainerrors.Is(err, domainerrors.AsyncIOFailed) {
				return err
			}
			o.logger.Printf("msg_put: push: %v", err)
			continue
		}
	}
}

func (o *Orchestrator) msgGet(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		framed, err := o.msgEndpoint.Poll()
		if err != nil {
			if domainerrors.Is(err, domainerrors.TimedOut) {
				continue
			}
			if domainerrors.Is(err, domainerrors.AsyncIOFailed) {
				return err
			}
			o.logger.Printf("msg_get: poll: %v", err)
			continue
		}

		plaintext, err := o.msgCipher.Decrypt(framed)
		if err != nil {
			// Decryption failures tolerate replays/cross-cipher noise per
			// spec.md §7 and must not terminate the loop.
			o.logger.Printf("msg_get: decrypt: %v", err)
			continue
		}
		if err := o.prompter.WriteLine(string(plaintext)); err != nil {
			o.logger.Printf("msg_get: write line: %v", err)
		}
	}
}

func (o *Orchestrator) sndPut(ctx context.Context) error {
	samples := o.source.Samples(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-samples:
			if !ok {
				return nil
			}
			framed, err := o.sndCipher.Encrypt(float32sToBytes(batch))
			if err != nil {
				o.logger.Printf("snd_put: encrypt: %v", err)
				continue
			}
			if err := o.sndEndpoint.Push(framed); err != nil {
				if domainerrors.Is(err, domainerrors.AsyncIOFailed) {
					return err
				}
				o.logger.Printf("snd_put: push: %v", err)
				continue
			}
		}
	}
}

func (o *Orchestrator) sndGet(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		framed, err := o.sndEndpoint.Poll()
		if err != nil {
			if domainerrors.Is(err, domainerrors.TimedOut) {
				continue
			}
			if domainerrors.Is(err, domainerrors.AsyncIOFailed) {
				return err
			}
			o.logger.Printf("snd_get: poll: %v", err)
			continue
		}

		plaintext, err := o.sndCipher.Decrypt(framed)
		if err != nil {
			o.logger.Printf("snd_get: decrypt: %v", err)
			continue
		}
		if err := o.sink.Accept(bytesToFloat32s(plaintext)); err != nil {
			o.logger.Printf("snd_get: accept: %v", err)
		}
	}
}
