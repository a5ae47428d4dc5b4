package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"

	"p2pvoice/infrastructure/logging"
	"p2pvoice/infrastructure/session"
	"p2pvoice/infrastructure/settings"
	"p2pvoice/presentation"
)

const (
	packageName       = "p2pvoice"
	defaultConfigPath = "p2pvoice.toml"
	defaultMsgAddr    = "0.0.0.0:34254"
	defaultSndAddr    = "0.0.0.0:34250"
)

func main() {
	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received. Shutting down...")
		appCtxCancel()
	}()

	if err := run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", packageName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		return err
	}

	prompter := presentation.NewStdioPrompter(os.Stdin, os.Stdout)
	logger := logging.NewLogLogger()

	mode := presentation.NewPeerModeSelector(os.Args).Mode()

	msgLocal, sndLocal, err := transportAddrs(cfg)
	if err != nil {
		return err
	}

	var msgPeers, sndPeers []netip.AddrPort
	loopback := mode == presentation.Loopback
	if loopback {
		msgPeers = []netip.AddrPort{msgLocal}
		sndPeers = []netip.AddrPort{sndLocal}
	} else {
		msgPeers, sndPeers, err = promptPeers(ctx, prompter)
		if err != nil {
			return err
		}
	}

	passphrase, err := presentation.Prompt(ctx, prompter, "Passphrase: ", os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println("Punching through NAT...")
	orch, err := session.New(ctx, cfg, passphrase,
		msgLocal, sndLocal, msgPeers, sndPeers, loopback,
		prompter, presentation.NewLoopbackAudio(), presentation.NewLoopbackAudio(), logger)
	if err != nil {
		return fmt.Errorf("session setup failed: %w", err)
	}
	defer orch.Close()

	fmt.Println("Connected. Type a message and press enter to send.")
	return orch.Run(ctx)
}

func loadConfig(path string) (settings.FileConfig, error) {
	var cfg settings.FileConfig
	if _, err := os.Stat(path); err != nil {
		cfg.Encryption = settings.EncryptionConfig{AES: &settings.AESEncryption{Cipher: "AES256", Nonce: 12}}
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return settings.FileConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := cfg.Encryption.Validate(); err != nil {
		return settings.FileConfig{}, err
	}
	return cfg, nil
}

func transportAddrs(cfg settings.FileConfig) (msg, snd netip.AddrPort, err error) {
	msg, err = firstAddrOrDefault(cfg.Client.Msg.UDP.Addr, defaultMsgAddr)
	if err != nil {
		return netip.AddrPort{}, netip.AddrPort{}, err
	}
	snd, err = firstAddrOrDefault(cfg.Client.Snd.UDP.Addr, defaultSndAddr)
	return msg, snd, err
}

func firstAddrOrDefault(addrs settings.AddrList, fallback string) (netip.AddrPort, error) {
	if len(addrs) == 0 {
		return settings.ParseSocketAddr(fallback)
	}
	resolved, err := addrs.Resolve()
	if err != nil {
		return netip.AddrPort{}, err
	}
	return resolved[0], nil
}

func promptPeers(ctx context.Context, prompter *presentation.StdioPrompter) ([]netip.AddrPort, []netip.AddrPort, error) {
	msgRaw, err := presentation.Prompt(ctx, prompter, "Remote msg address (host:port): ", os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	sndRaw, err := presentation.Prompt(ctx, prompter, "Remote snd address (host:port): ", os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	msgAddr, err := settings.ParseSocketAddr(strings.TrimSpace(msgRaw))
	if err != nil {
		return nil, nil, err
	}
	sndAddr, err := settings.ParseSocketAddr(strings.TrimSpace(sndRaw))
	if err != nil {
		return nil, nil, err
	}
	return []netip.AddrPort{msgAddr}, []netip.AddrPort{sndAddr}, nil
}
