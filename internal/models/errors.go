package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers mismatched lengths, empty datasets, non-finite values and
	// feature-count mismatches. It is always returned before any training starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUndefinedMetric flags R² on a target with zero variance.
	ErrUndefinedMetric = errors.New("undefined metric")
)

// Error carries the failing operation next to the error kind.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func invalidInput(op string, format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidInputErr(op string, err error) error {
	return &Error{Kind: ErrInvalidInput, Op: op, Err: err}
}
