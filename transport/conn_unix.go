//go:build linux || darwin || freebsd || netbsd || openbsd

package transport

import (
	"errors"
	"io"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	_ Source = new(Conn)
	_ Sink   = new(Conn)
)

// Conn performs single non-blocking reads and writes on a file-descriptor based connection,
// like *net.TCPConn or *net.UnixConn. The runtime keeps such descriptors in non-blocking mode,
// so an attempt either makes progress immediately or reports ErrNotReady.
type Conn struct {
	raw syscall.RawConn
}

func NewConn(conn syscall.Conn) (*Conn, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}

	return &Conn{raw: raw}, nil
}

func (c *Conn) TryRead(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	var opErr error
	err = c.raw.Read(func(fd uintptr) bool {
		n, opErr = unix.Read(int(fd), p)
		// never let the runtime park us: readiness is reported to the caller instead
		return true
	})

	switch {
	case err != nil:
		return 0, err
	case errors.Is(opErr, unix.EAGAIN), errors.Is(opErr, unix.EINTR):
		return 0, ErrNotReady
	case opErr != nil:
		return 0, opErr
	case n == 0:
		return 0, io.EOF
	}

	return n, nil
}

func (c *Conn) TryWrite(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	var opErr error
	err = c.raw.Write(func(fd uintptr) bool {
		n, opErr = unix.Write(int(fd), p)
		return true
	})

	switch {
	case err != nil:
		return 0, err
	case errors.Is(opErr, unix.EAGAIN), errors.Is(opErr, unix.EINTR):
		return 0, ErrNotReady
	case opErr != nil:
		return 0, opErr
	}

	return max(n, 0), nil
}

// WaitReadable blocks until the descriptor becomes readable. It honors read deadlines set on
// the underlying connection, which is the way to bound the wait.
func (c *Conn) WaitReadable() error {
	return park(c.raw.Read, unix.POLLIN)
}

// WaitWritable blocks until the descriptor becomes writable. It honors write deadlines set on
// the underlying connection.
func (c *Conn) WaitWritable() error {
	return park(c.raw.Write, unix.POLLOUT)
}

func park(op func(func(uintptr) bool) error, events int16) error {
	first := true

	return op(func(fd uintptr) bool {
		// the poller's readiness flag is already reset at the first invocation, so readiness
		// gained earlier won't be reported again. Returning false parks the goroutine until
		// the next readiness event
		if first {
			first = false
			return ready(fd, events)
		}

		return true
	})
}

// ready reports whether the descriptor is ready for events right now, without consuming
// anything. Pending errors and hangups count as ready, as the next attempt reports them.
func ready(fd uintptr, events int16) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

	for {
		n, err := unix.Poll(fds, 0)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return true
		}

		return n > 0 && fds[0].Revents != 0
	}
}
