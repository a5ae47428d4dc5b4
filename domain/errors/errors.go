// Package errors defines the flat error taxonomy shared across the cipher,
// transport, and STUN codec layers.
package errors

// Kind identifies which family of failure an Error wraps.
type Kind int

const (
	// Cipher errors.
	UnexpectedAEAD Kind = iota

	// Transport errors.
	AddressNotParsed
	AsyncIOFailed
	TimedOut
	BrokenPipe
	InvalidInput

	// STUN / codec errors.
	InconsistentState
	UnexpectedEos
	EncoderFull
	DecoderTerminated
	IncompleteDecoding
	BrokenMessage

	// Channel errors.
	ChannelIsFull
	ChannelIsClosed
	ChannelIsEmpty

	// General errors.
	StringNotUTF8
	Other
)

func (k Kind) String() string {
	switch k {
	case UnexpectedAEAD:
		return "UnexpectedAEAD"
	case AddressNotParsed:
		return "AddressNotParsed"
	case AsyncIOFailed:
		return "AsyncIOFailed"
	case TimedOut:
		return "TimedOut"
	case BrokenPipe:
		return "BrokenPipe"
	case InvalidInput:
		return "InvalidInput"
	case InconsistentState:
		return "InconsistentState"
	case UnexpectedEos:
		return "UnexpectedEos"
	case EncoderFull:
		return "EncoderFull"
	case DecoderTerminated:
		return "DecoderTerminated"
	case IncompleteDecoding:
		return "IncompleteDecoding"
	case BrokenMessage:
		return "BrokenMessage"
	case ChannelIsFull:
		return "ChannelIsFull"
	case ChannelIsClosed:
		return "ChannelIsClosed"
	case ChannelIsEmpty:
		return "ChannelIsEmpty"
	case StringNotUTF8:
		return "StringNotUTF8"
	default:
		return "Other"
	}
}

// Error is the single concrete error type used across the transport and
// cipher layers. It carries a Kind plus an optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Timeout reports whether this error represents a timeout, satisfying the
// relevant parts of the net.Error contract.
func (e *Error) Timeout() bool {
	return e.Kind == TimedOut
}

func (e *Error) Temporary() bool {
	return false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
		return e.Kind == kind
	}
	return false
}
