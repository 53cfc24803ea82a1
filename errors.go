// Package disko holds the error types and on-disk constants shared by the
// disk emulator (package disk) and the file system core (package
// filesystem).
package disko

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrorKind classifies a DriverError by the situation that produced it,
// independent of its message. Callers that want to react to a category of
// failure (log it, retry it, surface it differently to a shell user) switch
// on Kind rather than comparing error strings.
type ErrorKind int

const (
	// KindPreconditionViolation: the operation is invalid given the current
	// state of the disk or file system, e.g. mounting an already-mounted
	// disk.
	KindPreconditionViolation ErrorKind = iota
	// KindValidationFailure: an argument or on-disk structure failed a
	// sanity check, e.g. an inode number out of range or a bad magic number.
	KindValidationFailure
	// KindIOFailure: a read or write against the backing store failed or
	// returned a short result.
	KindIOFailure
	// KindResourceExhaustion: the operation needed a free inode or block and
	// none was available.
	KindResourceExhaustion
)

func (k ErrorKind) String() string {
	switch k {
	case KindPreconditionViolation:
		return "precondition violation"
	case KindValidationFailure:
		return "validation failure"
	case KindIOFailure:
		return "i/o failure"
	case KindResourceExhaustion:
		return "resource exhaustion"
	default:
		return "unknown"
	}
}

// DriverError is the error type returned by every fallible operation in this
// module. It behaves like a normal `error`, reports the ErrorKind it belongs
// to, and lets callers chain additional context without losing the original
// cause.
type DriverError interface {
	error
	Kind() ErrorKind
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

// baseDiskoError is a sentinel: a fixed message tagged with the kind of
// situation it represents. WithMessage and Wrap never mutate it; they both
// produce a customDriverError that remembers the sentinel as its cause so
// errors.Is(err, ErrNotFound) keeps working after either call.
type baseDiskoError struct {
	kind    ErrorKind
	message string
}

func sentinel(kind ErrorKind, message string) baseDiskoError {
	return baseDiskoError{kind: kind, message: message}
}

// Sentinel errors, one per concrete situation the driver reports. Each is
// tagged with the ErrorKind its situation belongs to.
var (
	ErrBusy                = sentinel(KindPreconditionViolation, "device or resource busy")
	ErrArgumentOutOfRange  = sentinel(KindValidationFailure, "numerical argument out of domain")
	ErrInvalidArgument     = sentinel(KindValidationFailure, "invalid argument")
	ErrFileSystemCorrupted = sentinel(KindValidationFailure, "file system structure is corrupted")
	ErrIOFailed            = sentinel(KindIOFailure, "input/output error")
	ErrNoSpaceOnDevice     = sentinel(KindResourceExhaustion, "no space left on device")
	ErrNoFreeInodes        = sentinel(KindResourceExhaustion, "no free inodes left on device")
	ErrNotFound            = sentinel(KindValidationFailure, "no such inode")
)

func (e baseDiskoError) Error() string {
	return e.message
}

func (e baseDiskoError) Kind() ErrorKind {
	return e.kind
}

func (e baseDiskoError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e baseDiskoError) Wrap(err error) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

// customDriverError is what WithMessage/Wrap return: a sentinel's kind
// carried forward with an extended message and a handle on whatever caused
// it, so repeated chaining never loses the original ErrorKind.
type customDriverError struct {
	kind          ErrorKind
	message       string
	originalError error
}

func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) Kind() ErrorKind {
	return e.kind
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) Wrap(err error) DriverError {
	return customDriverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
