// Package rpcerr defines the error kinds returned by remote calls.
//
// Every failure a caller can observe carries exactly one Kind. Kinds survive
// wrapping with fmt.Errorf("...: %w", err) and can be matched with errors.Is
// against the exported sentinels:
//
//	if errors.Is(err, rpcerr.ErrNotFound) {
//	    // unknown room code
//	}
package rpcerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPermissionDenied
	KindInvalidArgument
	KindUnavailable
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindNotFound:         "not_found",
	KindPermissionDenied: "permission_denied",
	KindInvalidArgument:  "invalid_argument",
	KindUnavailable:      "unavailable",
	KindConflict:         "conflict",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "internal"
}

// ParseKind maps a wire name back to a Kind. Unknown names become
// KindInternal.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindInternal
}

// Error is a classified error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInternal         = &Error{Kind: KindInternal}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
	ErrConflict         = &Error{Kind: KindConflict}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, format, args...)
}

func PermissionDenied(format string, args ...any) error {
	return New(KindPermissionDenied, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return New(KindInvalidArgument, format, args...)
}

func Unavailable(format string, args ...any) error {
	return New(KindUnavailable, format, args...)
}

func Conflict(format string, args ...any) error {
	return New(KindConflict, format, args...)
}

func Internal(format string, args ...any) error {
	return New(KindInternal, format, args...)
}

// KindOf returns the kind of err, or KindInternal if err was not produced by
// this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
