//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package fperr implements the closed error taxonomy used across the
// fuzzy PSI pipeline. Errors carry a Kind so callers can branch on
// failure category (as spec'd) without string matching, following
// the teacher's plain errors.New/fmt.Errorf style rather than
// introducing a stack-trace or errors-as-values library: nothing in
// the reference corpus reaches for one.
package fperr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the closed set of failure categories a
// fuzzy PSI session can report.
type Kind int

// The error kinds.
const (
	// InvalidInput marks an unparseable file line or an out-of-range
	// parameter.
	InvalidInput Kind = iota
	// ParameterInvalid marks an HE parameter set that fails a
	// validation predicate.
	ParameterInvalid
	// CapacityExceeded marks a cuckoo table that could not
	// accommodate the sender set even after a bundle-size retry.
	CapacityExceeded
	// EncodingFailure marks an OKVS encode that stayed singular after
	// the configured retry budget.
	EncodingFailure
	// ProtocolMismatch marks a decrypted response that is malformed,
	// or a frame tag received out of the expected order.
	ProtocolMismatch
	// Truncated marks a response that received fewer result packages
	// than announced.
	Truncated
	// Timeout marks a network receive that exceeded its deadline.
	Timeout
	// Internal marks an unreachable state or failed assertion.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case ParameterInvalid:
		return "ParameterInvalid"
	case CapacityExceeded:
		return "CapacityExceeded"
	case EncodingFailure:
		return "EncodingFailure"
	case ProtocolMismatch:
		return "ProtocolMismatch"
	case Truncated:
		return "Truncated"
	case Timeout:
		return "Timeout"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error wraps an underlying cause with a Kind.
type Error struct {
	Kind Kind
	Op   string // component/operation that raised the error, e.g. "heparams.Select"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap allows errors.Is/errors.As to see through to Err.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an *Error of the given kind wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates an *Error of the given kind with a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// and returns (Internal, false) otherwise.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return Internal, false
}

// ExitCode maps err to one of the CLI exit codes named in spec §6: 1
// for an invariant violation, 3 for a protocol failure, 1 for
// anything else the pipeline itself raised. File I/O failures are not
// fperr.Errors and are exit code 2 at the call site instead.
func ExitCode(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case ProtocolMismatch, Truncated, Timeout:
		return 3
	default:
		return 1
	}
}
