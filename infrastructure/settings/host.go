package settings

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Host is a parsed peer/config address: either a literal IP (v4 or v6) or a
// domain name, as produced by NewHost from one "host" token of a TOML
// `addr` entry or a user-typed peer address.
type Host struct {
	domain string
	ipv4   netip.Addr
	ipv6   netip.Addr
}

var lookupHostContext = func(ctx context.Context, domain string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, domain)
}

// NewHost parses a single value: IPv4 → sets ipv4, IPv6 → sets ipv6, domain → sets domain.
// Empty string returns a zero Host.
func NewHost(raw string) (Host, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Host{}, nil
	}

	if ip, ok := parseHostIP(trimmed); ok {
		return hostFromIP(ip), nil
	}

	domain, ok := normalizeDomain(trimmed)
	if !ok {
		return Host{}, fmt.Errorf("invalid host %q: expected IP address or domain name", raw)
	}

	return Host{domain: domain}, nil
}

// hostFromIP places an IP into the correct field based on address family.
func hostFromIP(ip netip.Addr) Host {
	if ip.Unmap().Is4() {
		return Host{ipv4: ip}
	}
	return Host{ipv6: ip}
}

func (h Host) String() string {
	if h.domain != "" {
		return h.domain
	}
	if h.ipv4.IsValid() {
		return h.ipv4.String()
	}
	if h.ipv6.IsValid() {
		return h.ipv6.String()
	}
	return ""
}

func (h Host) IsIP() bool {
	return h.ipv4.IsValid() || h.ipv6.IsValid()
}

// IP returns ipv4 if set, else ipv6.
func (h Host) IP() (netip.Addr, bool) {
	if h.ipv4.IsValid() {
		return h.ipv4, true
	}
	if h.ipv6.IsValid() {
		return h.ipv6, true
	}
	return netip.Addr{}, false
}

func (h Host) Domain() (string, bool) {
	return h.domain, h.domain != ""
}

// AddrPort returns ipv4 preferred, else ipv6.
func (h Host) AddrPort(port int) (netip.AddrPort, error) {
	ip, ok := h.IP()
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("host %q is not an IP address", h.String())
	}
	if err := validatePort(port); err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(ip, uint16(port)), nil
}

// RouteIP returns an IP address suitable for dialing/binding.
// If the host has an IP address, it is returned directly.
// If the host is a domain name, it is resolved via DNS.
func (h Host) RouteIP() (string, error) {
	if ip, ok := h.IP(); ok {
		return ip.String(), nil
	}
	return h.resolveFirstAddr(context.Background())
}

// resolveFirstAddr resolves the domain and returns the first address DNS returns.
func (h Host) resolveFirstAddr(ctx context.Context) (string, error) {
	domain, domainOk := h.Domain()
	if !domainOk {
		return "", fmt.Errorf("host %q is neither an IP address nor a valid domain", h.String())
	}
	addrs, resolveErr := lookupHostContext(ctx, domain)
	if resolveErr != nil || len(addrs) == 0 {
		return "", fmt.Errorf("failed to resolve host %q: %v", domain, resolveErr)
	}
	ip, err := netip.ParseAddr(addrs[0])
	if err != nil {
		return "", fmt.Errorf("resolved address %q for host %q is invalid: %w", addrs[0], domain, err)
	}
	return ip.Unmap().String(), nil
}

func parseHostIP(raw string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}

func normalizeDomain(raw string) (string, bool) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" || len(domain) > 253 {
		return "", false
	}
	if strings.ContainsAny(domain, " \t\n\r/:?#[]@\\") {
		return "", false
	}
	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if !isValidDomainLabel(label) {
			return "", false
		}
	}
	return domain, true
}

func isValidDomainLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return false
	}
	return true
}
