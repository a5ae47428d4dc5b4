package presentation

import "strings"

// PeerMode selects how remote peer addresses are obtained, per spec.md §6's
// CLI surface: one positional argument `loopback` selects localhost peers,
// otherwise the session prompts interactively.
type PeerMode int

const (
	Interactive PeerMode = iota
	Loopback
)

// PeerModeSelector inspects os.Args (or an equivalent argument slice) the
// way the teacher's mode selector inspects its own positional argument.
type PeerModeSelector struct {
	arguments []string
}

func NewPeerModeSelector(arguments []string) PeerModeSelector {
	return PeerModeSelector{arguments: arguments}
}

func (p PeerModeSelector) Mode() PeerMode {
	if len(p.arguments) < 2 {
		return Interactive
	}
	if strings.EqualFold(strings.TrimSpace(p.arguments[1]), "loopback") {
		return Loopback
	}
	return Interactive
}
