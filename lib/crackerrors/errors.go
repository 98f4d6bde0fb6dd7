// Package crackerrors defines the error taxonomy shared by verifiers, strategies and the batch runner.
//
// A wrong password is never an error: verifiers report it as a false result.
// Everything in this package describes a structural problem that prevented
// candidates from being checked.
package crackerrors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies why a target could not be attacked.
type Kind int

const (
	// KindNone is the zero value, used when there is no error.
	KindNone Kind = iota
	// KindUnsupportedFormat is for files that are not a container of the claimed kind.
	KindUnsupportedFormat
	// KindCorrupt is for containers that cannot be parsed regardless of password.
	KindCorrupt
	// KindBackendUnavailable is for formats whose backend was not compiled in.
	KindBackendUnavailable
	// KindWorkerFailure is for unexpected faults inside a worker.
	KindWorkerFailure
	// KindIOError is for unreadable wordlists or targets.
	KindIOError
	// KindNotFound is for missing targets, directories or wordlists.
	KindNotFound
)

// String returns the stable snake_case name used in reports.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindCorrupt:
		return "corrupt"
	case KindBackendUnavailable:
		return "backend_unavailable"
	case KindWorkerFailure:
		return "worker_failure"
	case KindIOError:
		return "io_error"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindWorkerFailure.
func ParseKind(s string) Kind {
	switch strings.TrimSpace(s) {
	case "":
		return KindNone
	case "unsupported_format":
		return KindUnsupportedFormat
	case "corrupt":
		return KindCorrupt
	case "backend_unavailable":
		return KindBackendUnavailable
	case "io_error":
		return KindIOError
	case "not_found":
		return KindNotFound
	default:
		return KindWorkerFailure
	}
}

// Error is a classified error tied to an operation and, usually, a file.
type Error struct {
	Kind Kind
	Op   string // Op is the operation that failed, e.g. "open" or "verify".
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind with no further detail,
// so errors.Is(err, crackerrors.ErrCorrupt) matches any corrupt error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Op == "" && t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels usable with errors.Is.
var (
	// ErrUnsupportedFormat matches any KindUnsupportedFormat error.
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	// ErrCorrupt matches any KindCorrupt error.
	ErrCorrupt = &Error{Kind: KindCorrupt}
	// ErrBackendUnavailable matches any KindBackendUnavailable error.
	ErrBackendUnavailable = &Error{Kind: KindBackendUnavailable}
	// ErrWorkerFailure matches any KindWorkerFailure error.
	ErrWorkerFailure = &Error{Kind: KindWorkerFailure}
	// ErrIO matches any KindIOError error.
	ErrIO = &Error{Kind: KindIOError}
	// ErrNotFound matches any KindNotFound error.
	ErrNotFound = &Error{Kind: KindNotFound}
)

// New returns a classified error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf returns a classified error whose cause is built from a format string.
func Errorf(kind Kind, op, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// FromFS classifies an error returned by the os or io/fs packages.
// Missing files become KindNotFound, everything else KindIOError.
func FromFS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return New(KindNotFound, op, path, err)
	}

	return New(KindIOError, op, path, err)
}

// KindOf extracts the Kind of an arbitrary error.
// Context cancellation is not a failure and yields KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindNone
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	}

	var pe *fs.PathError
	if errors.As(err, &pe) {
		return KindIOError
	}

	return KindWorkerFailure
}
