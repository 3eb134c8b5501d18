package imap

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Client wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrConnection is returned when a socket cannot be created, the greeting
	// cannot be read, or a close is attempted without a live transport.
	ErrConnection = errors.New("connection error")

	// ErrProtocol is returned when the server answers NO/BAD or gives no
	// answer where one was required.
	ErrProtocol = errors.New("protocol error")

	// ErrArgument is returned when a command helper receives an empty argument.
	ErrArgument = errors.New("invalid argument")

	// ErrWrite is returned when a command could not be fully written.
	ErrWrite = errors.New("write error")

	// ErrReadFailure is returned when the transport yields no data.
	ErrReadFailure = errors.New("read failure")

	// ErrUnsupportedAuthMethod is returned when OAuth is configured but the
	// server does not advertise AUTH=XOAUTH2.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrTimeout is returned when a read or write deadline expires.
	ErrTimeout = errors.New("timeout")

	// ErrDebugDisabled is returned by PrintDebug when debug mode is off.
	ErrDebugDisabled = errors.New("debug mode is disabled")

	// ErrInvalidState is returned when an operation is not valid in the
	// current session state.
	ErrInvalidState = errors.New("invalid session state")
)

// Error describes a failed client operation.
type Error struct {
	// Op is the operation that failed, e.g. "login" or "read".
	Op string
	// Kind is one of the Err* sentinels above.
	Kind error
	// Detail is the server text or a short description of the failure.
	Detail string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("imap %s: %s: %s", e.Op, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("imap %s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("imap %s: %s: %s", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("imap %s: %s", e.Op, e.Kind)
	}
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(op string, kind error, detail string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Detail: detail, Err: cause}
}

// withOp re-labels an *Error produced by a lower layer with the operation
// the caller sees, keeping its kind and detail.
func withOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Op: op, Kind: e.Kind, Detail: e.Detail, Err: e.Err}
	}
	return err
}
