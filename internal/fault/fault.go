// Package fault defines the error kinds shared by the decoding, heat and scheduling packages.
//
// Every failure raised by poolsim carries one Kind. Callers branch on the kind with errors.Is against the
// sentinels below (errors.Is(err, fault.ErrLookup)) or with KindOf, never on message text.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how it propagates.
type Kind string

const (
	KindFormat              Kind = "format"               // malformed field length or record size
	KindDecodeText          Kind = "decode_text"          // code-page decode failure
	KindLookup              Kind = "lookup"               // instruction references an unknown assembly
	KindDateRange           Kind = "date_range"           // heat requested outside the modeled exposure range
	KindHistory             Kind = "history"              // heat requested for an assembly with no usable history
	KindConfig              Kind = "config"               // invalid run configuration
	KindUnclassifiedSection Kind = "unclassified_section" // shipment target outside every storage section
)

// Fatal reports whether an error of this kind must stop a simulation run.
// Format and DecodeText are fatal to a single record only; the inventory builder isolates them.
func (k Kind) Fatal() bool {
	switch k {
	case KindLookup, KindConfig:
		return true
	default:
		return false
	}
}

// Error is a classified failure. Subject names what failed (a field, an assembly id, a stage).
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Subject != "" && e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Subject, e.Err)
	case e.Subject != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Subject)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare sentinel of the same kind, so errors.Is(err, ErrFormat) holds for every format error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Subject == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrFormat              = &Error{Kind: KindFormat}
	ErrDecodeText          = &Error{Kind: KindDecodeText}
	ErrLookup              = &Error{Kind: KindLookup}
	ErrDateRange           = &Error{Kind: KindDateRange}
	ErrHistory             = &Error{Kind: KindHistory}
	ErrConfig              = &Error{Kind: KindConfig}
	ErrUnclassifiedSection = &Error{Kind: KindUnclassifiedSection}
)

// New builds a classified error with a formatted cause.
func New(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsFatal reports whether err carries a kind that aborts a run.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
