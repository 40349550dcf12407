package errors

import (
	stderrors "errors"
	"fmt"
)

type Status string

// The node binary could not be launched
const ProcessSpawnError Status = "ProcessSpawnError"

// The node did not open its rpc port before the deadline, or exited early
const StartupTimeoutError Status = "StartupTimeoutError"

// Could not connect or fetch metadata from the node
const ConnectionError Status = "ConnectionError"

// A storage query failed or returned something that could not be decoded
const QueryError Status = "QueryError"

// The requested block does not exist (yet)
const BlockLookupError Status = "BlockLookupError"

// The extrinsic was included but its dispatch failed
const DispatchError Status = "DispatchError"

// A wallet could not be derived from its seed
const KeyDerivationError Status = "KeyDerivationError"

// The ethereum rpc returned something that is not a hex encoded value
const InvalidResponseError Status = "InvalidResponseError"

// The pool rejected the extrinsic, or it was dropped/usurped before inclusion
const SubmissionRejected Status = "SubmissionRejected"

type Error struct {
	Status  Status
	Message string
	// Error this one was built from, if any. Reachable with errors.Is/As.
	Cause error
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf formats like fmt.Errorf; an argument passed with %w becomes the Cause.
func Errorf(status Status, format string, args ...interface{}) error {
	formatted := fmt.Errorf(format, args...)
	return &Error{
		Status:  status,
		Message: formatted.Error(),
		Cause:   stderrors.Unwrap(formatted),
	}
}

// Wrapf tags err with a status, prefixing the message when a format is given.
func Wrapf(status Status, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if format != "" {
		message = fmt.Sprintf(format, args...) + ": " + message
	}
	return &Error{
		Status:  status,
		Message: message,
		Cause:   err,
	}
}

// StatusOf returns the status of the first *Error in the chain, or "".
func StatusOf(err error) Status {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Status
	}
	return ""
}

// Is reports whether err carries the given status.
func Is(err error, status Status) bool {
	return err != nil && StatusOf(err) == status
}

func ProcessSpawnf(format string, args ...interface{}) error {
	return Errorf(ProcessSpawnError, format, args...)
}

func StartupTimeoutf(format string, args ...interface{}) error {
	return Errorf(StartupTimeoutError, format, args...)
}

func Connectionf(format string, args ...interface{}) error {
	return Errorf(ConnectionError, format, args...)
}

func Queryf(format string, args ...interface{}) error {
	return Errorf(QueryError, format, args...)
}

func BlockLookupf(format string, args ...interface{}) error {
	return Errorf(BlockLookupError, format, args...)
}

// Used when an included extrinsic emitted System.ExtrinsicFailed. The
// message is the decoded dispatch error, e.g. "assets.NoPermission: ...".
func Dispatchf(format string, args ...interface{}) error {
	return Errorf(DispatchError, format, args...)
}

func KeyDerivationf(format string, args ...interface{}) error {
	return Errorf(KeyDerivationError, format, args...)
}

func InvalidResponsef(format string, args ...interface{}) error {
	return Errorf(InvalidResponseError, format, args...)
}

func SubmissionRejectedf(format string, args ...interface{}) error {
	return Errorf(SubmissionRejected, format, args...)
}
