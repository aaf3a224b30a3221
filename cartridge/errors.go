package cartridge

import "fmt"

// Kind discriminates the ways loading a cartridge image can fail.
// Matches the error taxonomy in spec §7; this package never defines a
// distinct Go type per kind, only a tagged Error.
type Kind int

const (
	UnknownMapper Kind = iota
	WrongLogo
	WrongChecksum
	WrongRomSize
	WrongRamSize
)

func (k Kind) String() string {
	switch k {
	case UnknownMapper:
		return "unknown mapper"
	case WrongLogo:
		return "wrong logo"
	case WrongChecksum:
		return "wrong checksum"
	case WrongRomSize:
		return "wrong rom size"
	case WrongRamSize:
		return "wrong ram size"
	default:
		return "unknown error"
	}
}

// Error reports a cartridge load failure. Init-time errors leave the
// core uninitialized, per spec §7's propagation policy.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}
