// Package errs defines the error taxonomy of the gateway.
//
// Every error produced by the protocol engine carries a Kind, so callers can
// decide whether it becomes an error Ack, a request-state record or an
// operator-facing failure.
package errs

import (
	stdErrors "errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind classifies an error.
type Kind string

const (
	// KindValidation: message content fails step invariants.
	KindValidation Kind = "validation"
	// KindStore: persistence open/read/write or serialization failure.
	KindStore Kind = "store"
	// KindDispatch: peer unreachable, TLS failure, RPC rejection or unsupported ack status.
	KindDispatch Kind = "dispatch"
	// KindConfig: missing relay or driver lookup.
	KindConfig Kind = "config"
	// KindFatal: the operation cannot continue, e.g. the store could not be opened.
	KindFatal Kind = "fatal"
)

// Error is an error tagged with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or an empty Kind if err is not tagged.
func KindOf(err error) Kind {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is tagged with kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: oops.In(string(kind)).Errorf(format, args...)}
}

func wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: oops.In(string(kind)).Wrapf(err, format, args...)}
}

func Validation(format string, args ...any) error {
	return newf(KindValidation, format, args...)
}

func Store(err error, format string, args ...any) error {
	return wrapf(KindStore, err, format, args...)
}

func Dispatch(err error, format string, args ...any) error {
	return wrapf(KindDispatch, err, format, args...)
}

// Dispatchf creates a dispatch error that has no underlying cause.
func Dispatchf(format string, args ...any) error {
	return newf(KindDispatch, format, args...)
}

func Config(format string, args ...any) error {
	return newf(KindConfig, format, args...)
}

func Fatal(err error, format string, args ...any) error {
	return wrapf(KindFatal, err, format, args...)
}
