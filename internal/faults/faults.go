// Package faults classifies errors from external collaborators so the
// engine can decide between retry, skip and fatal without string
// matching.
package faults

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindTransient covers network errors and timeouts. Retried up to
	// a bound, then the instrument is skipped for the cycle.
	KindTransient
	// KindBadData covers empty or malformed responses. Treated like a
	// transient failure: skip, log, never fatal.
	KindBadData
	// KindAuth covers signing/credential failures. Fatal at startup
	// only; must not occur mid-loop.
	KindAuth
	// KindRejected covers exchange-side order rejections. Logged, the
	// trade lifecycle stays in its prior state.
	KindRejected
	// KindNotify covers notification delivery failures. Logged and
	// discarded.
	KindNotify
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindBadData:
		return "bad_data"
	case KindAuth:
		return "auth"
	case KindRejected:
		return "rejected"
	case KindNotify:
		return "notify"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Transient(op string, err error) error { return New(KindTransient, op, err) }
func BadData(op string, err error) error   { return New(KindBadData, op, err) }
func Auth(op string, err error) error      { return New(KindAuth, op, err) }
func Rejected(op string, err error) error  { return New(KindRejected, op, err) }
func Notify(op string, err error) error    { return New(KindNotify, op, err) }

// KindOf returns the classification of err, or KindUnknown when err
// carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }
