package transport

import "errors"

// ErrNotReady is returned by non-blocking transports when no progress can be made right
// now. The operation must be retried later, after the transport becomes ready.
var ErrNotReady = errors.New("transport is not ready")

// Source is a non-blocking byte source. TryRead reads up to len(p) bytes without waiting.
// When nothing is available, it returns 0 and ErrNotReady. Any other error is final.
type Source interface {
	TryRead(p []byte) (n int, err error)
}

// Sink is a non-blocking byte sink. TryWrite writes up to len(p) bytes without waiting.
// When nothing can be written, it returns 0 and ErrNotReady. Any other error is final.
type Sink interface {
	TryWrite(p []byte) (n int, err error)
}
