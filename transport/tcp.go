package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/h1head/config"
	"github.com/valyala/tcplisten"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP accepts connections and serves each one in its own goroutine, until stopped.
type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewTCP() *TCP {
	return &TCP{
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

// Bind listens on addr with SO_REUSEPORT enabled, so multiple processes may share the port.
func (t *TCP) Bind(addr string) error {
	cfg := tcplisten.Config{
		ReusePort:   true,
		DeferAccept: true,
	}

	l, err := cfg.NewListener("tcp4", addr)
	if err != nil {
		return err
	}

	tcpl, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return errors.New("transport: listener doesn't support deadlines")
	}

	t.l = tcpl
	return nil
}

// Addr returns the bound address. Must be called after Bind.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen accepts connections until Stop is called. Stopping takes effect within
// cfg.AcceptLoopInterruptPeriod.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() {
				return nil
			}

			return err
		}

		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Close() {
	_ = t.l.Close()
}

func (t *TCP) Wait() {
	t.wg.Wait()
}
