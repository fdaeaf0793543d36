package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of one pipeline stage.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindUpstreamUnavailable means a location, weather or parks fetch failed
	// or returned nothing usable.
	KindUpstreamUnavailable
	// KindInsufficientData means the upstream answered but the data left
	// nothing to work with (empty weather window, empty park/trail index).
	KindInsufficientData
	// KindTransportFault means the chat transport itself failed.
	KindTransportFault
	// KindUnparseableOutput means a gate answer held neither "yes" nor "no".
	// Gates resolve it locally; it is only ever logged.
	KindUnparseableOutput
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInsufficientData    = &Error{Kind: KindInsufficientData}
	ErrTransportFault      = &Error{Kind: KindTransportFault}
)

func (k ErrorKind) String() string {
	switch k {
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	case KindInsufficientData:
		return "InsufficientData"
	case KindTransportFault:
		return "TransportFault"
	case KindUnparseableOutput:
		return "UnparseableModelOutput"
	default:
		return "Unknown"
	}
}

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind // Failure class
	Op   string    // Operation that failed, e.g. "weather.forecast"
	Err  error     // Underlying cause, may be nil
}

// NewError creates a classified error for op wrapping err.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so the package sentinels work
// with errors.Is regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
