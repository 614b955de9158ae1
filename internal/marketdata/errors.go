package marketdata

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies orchestration failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedVenue
	KindInvalidPair
	KindUnsupportedInterval
	KindConnectorInit
	KindFetchFailed
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrUnsupportedVenue    = errors.New("unsupported venue")
	ErrInvalidPair         = errors.New("invalid pair")
	ErrUnsupportedInterval = errors.New("unsupported interval")
	ErrConnectorInit       = errors.New("connector init failed")
	ErrFetchFailed         = errors.New("fetch failed")
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedVenue:
		return "UnsupportedVenue"
	case KindInvalidPair:
		return "InvalidPair"
	case KindUnsupportedInterval:
		return "UnsupportedInterval"
	case KindConnectorInit:
		return "ConnectorInit"
	case KindFetchFailed:
		return "FetchFailed"
	default:
		return "Unknown"
	}
}

// ClientError reports whether the kind stems from caller input.
func (k Kind) ClientError() bool {
	switch k {
	case KindUnsupportedVenue, KindInvalidPair, KindUnsupportedInterval:
		return true
	default:
		return false
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedVenue:
		return ErrUnsupportedVenue
	case KindInvalidPair:
		return ErrInvalidPair
	case KindUnsupportedInterval:
		return ErrUnsupportedInterval
	case KindConnectorInit:
		return ErrConnectorInit
	case KindFetchFailed:
		return ErrFetchFailed
	default:
		return nil
	}
}

// Error is the single error type returned by the gate and the fetcher.
type Error struct {
	Kind     Kind
	Venue    string
	Symbol   string
	Op       string
	Interval string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindUnsupportedVenue:
		msg = fmt.Sprintf("venue %q is not supported", e.Venue)
	case KindInvalidPair:
		msg = fmt.Sprintf("pair %q is not valid on venue %q", e.Symbol, e.Venue)
	case KindUnsupportedInterval:
		msg = fmt.Sprintf("interval %q is not supported, use one of %s", e.Interval, strings.Join(SupportedIntervals(), ", "))
	case KindConnectorInit:
		msg = fmt.Sprintf("could not initialise connector for venue %q", e.Venue)
	case KindFetchFailed:
		msg = fmt.Sprintf("could not fetch %s for %s:%s after %d attempts", e.Op, e.Venue, e.Symbol, e.Attempts)
	default:
		msg = "market data error"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel so callers can write errors.Is(err, ErrInvalidPair).
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the Kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
