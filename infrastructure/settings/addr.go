package settings

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// AddrList decodes a TOML `addr` field that may be either one address
// string or a list of address strings, per spec.md §6's
// `addr: SocketAddr | [SocketAddr]`.
type AddrList []string

// UnmarshalTOML accepts either a bare string or a slice of strings, as
// produced by github.com/BurntSushi/toml for a table value of unknown
// arity.
func (a *AddrList) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*a = AddrList{v}
		return nil
	case []any:
		out := make(AddrList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("addr: expected string entries, got %T", item)
			}
			out = append(out, s)
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("addr: expected string or list of strings, got %T", data)
	}
}

// Resolve parses every entry as a socket address, accepting a literal
// IPv4/IPv6 "host:port" or a domain name resolved through Host.
func (a AddrList) Resolve() ([]netip.AddrPort, error) {
	out := make([]netip.AddrPort, 0, len(a))
	for _, raw := range a {
		addr, err := ParseSocketAddr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// ParseSocketAddr parses "host:port", where host is an IPv4/IPv6 literal
// or a domain name resolved via Host.
func ParseSocketAddr(raw string) (netip.AddrPort, error) {
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap, nil
	}

	hostPart, portPart, err := net.SplitHostPort(raw)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid socket address %q: %w", raw, err)
	}
	port, err := strconv.Atoi(portPart)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid port in %q: %w", raw, err)
	}

	h, err := NewHost(hostPart)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if h.IsIP() {
		return h.AddrPort(port)
	}

	ip, err := h.RouteIP()
	if err != nil {
		return netip.AddrPort{}, err
	}
	parsed, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolved address %q for %q is invalid: %w", ip, raw, err)
	}
	return netip.AddrPortFrom(parsed, uint16(port)), nil
}
