package textra

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a translation produced no text.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureConfiguration FailureKind = "configuration"
	FailureUnsupported   FailureKind = "unsupported"
	FailureEncoding      FailureKind = "encoding"
	FailureSigning       FailureKind = "signing"
	FailureTransport     FailureKind = "transport"
	FailureProtocol      FailureKind = "protocol"
	FailureParse         FailureKind = "parse"
)

// FailureKinds lists every non-empty failure kind.
func FailureKinds() []FailureKind {
	return []FailureKind{
		FailureConfiguration,
		FailureUnsupported,
		FailureEncoding,
		FailureSigning,
		FailureTransport,
		FailureProtocol,
		FailureParse,
	}
}

func (k FailureKind) String() string {
	if k == FailureNone {
		return "none"
	}
	return string(k)
}

var (
	// ErrInvalidMode is returned for a mode name that matches no known mode.
	ErrInvalidMode = errors.New("invalid translation mode")
	// ErrOptionsIncomplete is returned when mode or languages are not set yet.
	ErrOptionsIncomplete = errors.New("mode, source and target language must be set")
	// ErrUnsupportedCombination is returned for a mode/language triple the service does not offer.
	ErrUnsupportedCombination = errors.New("unsupported mode and language combination")
)

// Error describes one failed step of a translation call.
type Error struct {
	Kind       FailureKind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String() + " failure"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the failure kind carried by err, or FailureNone.
func KindOf(err error) FailureKind {
	var textraErr *Error
	if errors.As(err, &textraErr) {
		return textraErr.Kind
	}
	return FailureNone
}
