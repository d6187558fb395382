package head

import (
	"errors"
	"io"
)

// Kind classifies errors. Every error returned by this package is terminal for the head it
// occurred on.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindIO means the transport failed. The original error is kept and can be unwrapped.
	KindIO
	// KindTooLarge means the head didn't terminate within the configured size.
	KindTooLarge
	// KindMalformed means the head doesn't follow the HTTP/1.x grammar.
	KindMalformed
	// KindVersion means the version is other than HTTP/1.0 or HTTP/1.1.
	KindVersion
	// KindToken means a method, URI, status or header field contains disallowed bytes.
	KindToken
)

type Error struct {
	Kind    Kind
	Message string
}

func NewError(kind Kind, message string) error {
	return Error{
		Kind:    kind,
		Message: message,
	}
}

func (e Error) Error() string {
	return e.Message
}

var (
	ErrIO                 = NewError(KindIO, "transport failure")
	ErrHeadTooLarge       = NewError(KindTooLarge, "head is too large")
	ErrMalformedHead      = NewError(KindMalformed, "malformed head")
	ErrTooManyHeaders     = NewError(KindMalformed, "too many header fields")
	ErrUnsupportedVersion = NewError(KindVersion, "unsupported HTTP version")
	ErrInvalidMethod      = NewError(KindToken, "invalid method")
	ErrInvalidURI         = NewError(KindToken, "invalid request target")
	ErrInvalidStatus      = NewError(KindToken, "invalid status code")
	ErrInvalidReason      = NewError(KindToken, "invalid reason phrase")
	ErrInvalidHeaderName  = NewError(KindToken, "invalid header field name")
	ErrInvalidHeaderValue = NewError(KindToken, "invalid header field value")
)

// IOError wraps an error returned by the transport. It matches ErrIO, and unwraps to the
// original error.
type IOError struct {
	Err error
}

func (e IOError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e IOError) Unwrap() error {
	return e.Err
}

func (e IOError) Is(target error) bool {
	return target == ErrIO
}

// KindOf returns the kind of the error, or KindUnknown if it didn't originate from this package.
func KindOf(err error) Kind {
	var ioErr IOError
	if errors.As(err, &ioErr) {
		return KindIO
	}

	var headErr Error
	if errors.As(err, &headErr) {
		return headErr.Kind
	}

	return KindUnknown
}

// errPolledTwice is the panic value for polling a decoding or encoding that has already
// reached a terminal state.
const errPolledTwice = "head: polled after completion"

// transportError wraps err into IOError. An EOF in the middle of a head is unexpected, one
// before any byte arrived is a clean close and is kept as is.
func transportError(err error, consumed int) error {
	if consumed > 0 && errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return IOError{Err: err}
}
