package settings

// FileConfig is the root of the TOML configuration described in spec.md
// §6: encryption choice, the two transport legs (msg, snd), and the shared
// socket retry/timeout knobs.
type FileConfig struct {
	Encryption EncryptionConfig `toml:"encryption"`
	Client     ClientConfig     `toml:"client"`
	Socket     SocketConfig     `toml:"socket"`
}

// ClientConfig holds the two transport legs named in spec.md §6:
// `client.msg` for the text channel, `client.snd` for the audio channel.
type ClientConfig struct {
	Msg TransportConfig `toml:"msg"`
	Snd TransportConfig `toml:"snd"`
}

// TransportConfig wraps the one transport kind spec.md §6 names: UDP.
type TransportConfig struct {
	UDP UDPTransport `toml:"UDP"`
}

// UDPTransport is one endpoint's local binding configuration. Addr accepts
// either a single address or a list in TOML source; see AddrList.
type UDPTransport struct {
	Addr  AddrList `toml:"addr"`
	TTL   int      `toml:"ttl"`
	SwTag string   `toml:"sw_tag"`
}

// SocketConfig is the `[socket]` TOML table: the STUN/hole-punch retry
// budget and the continuation-datagram timeout, shared by both transports.
type SocketConfig struct {
	Retries int `toml:"retries"`
	Timeout int `toml:"timeout"`
}

// WithDefaults fills in spec.md §6's documented defaults (retries 1000,
// timeout 25ms) for zero fields.
func (s SocketConfig) WithDefaults() SocketConfig {
	if s.Retries <= 0 {
		s.Retries = 1000
	}
	if s.Timeout <= 0 {
		s.Timeout = 25
	}
	return s
}
