//go:build linux || darwin || freebsd || netbsd || openbsd

package transport_test

import (
	"context"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/head"
	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/http/status"
	"github.com/indigo-web/h1head/transport"
	"github.com/stretchr/testify/require"
)

// loopback returns both ends of an established TCP connection.
func loopback(t *testing.T) (server *net.TCPConn, client *net.TCPConn) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := l.Accept()
		accepted <- conn
	}()

	dialed, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	conn := <-accepted
	require.NotNil(t, conn)

	t.Cleanup(func() {
		_ = dialed.Close()
		_ = conn.Close()
	})

	return conn.(*net.TCPConn), dialed.(*net.TCPConn)
}

func TestConn(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		server, _ := loopback(t)
		conn, err := transport.NewConn(server)
		require.NoError(t, err)

		n, err := conn.TryRead(make([]byte, 16))
		require.Zero(t, n)
		require.ErrorIs(t, err, transport.ErrNotReady)
	})

	t.Run("read and write", func(t *testing.T) {
		server, client := loopback(t)
		reader, err := transport.NewConn(server)
		require.NoError(t, err)
		writer, err := transport.NewConn(client)
		require.NoError(t, err)

		n, err := writer.TryWrite([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)

		require.NoError(t, reader.WaitReadable())
		buff := make([]byte, 16)
		n, err = reader.TryRead(buff)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buff[:n]))
	})

	t.Run("EOF", func(t *testing.T) {
		server, client := loopback(t)
		conn, err := transport.NewConn(server)
		require.NoError(t, err)
		require.NoError(t, client.Close())

		require.NoError(t, conn.WaitReadable())
		_, err = conn.TryRead(make([]byte, 16))
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("data arrived before the wait", func(t *testing.T) {
		server, client := loopback(t)
		conn, err := transport.NewConn(server)
		require.NoError(t, err)

		buff := make([]byte, 16)
		_, err = conn.TryRead(buff)
		require.ErrorIs(t, err, transport.ErrNotReady)

		_, err = client.Write([]byte("GET"))
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
		start := time.Now()
		require.NoError(t, conn.WaitReadable())
		require.Less(t, time.Since(start), time.Second)

		n, err := conn.TryRead(buff)
		require.NoError(t, err)
		require.Equal(t, "GET", string(buff[:n]))
	})

	t.Run("wait deadline", func(t *testing.T) {
		server, _ := loopback(t)
		conn, err := transport.NewConn(server)
		require.NoError(t, err)

		require.NoError(t, server.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
		require.ErrorIs(t, conn.WaitReadable(), os.ErrDeadlineExceeded)
	})

	t.Run("writable", func(t *testing.T) {
		server, _ := loopback(t)
		conn, err := transport.NewConn(server)
		require.NoError(t, err)
		require.NoError(t, conn.WaitWritable())
	})
}

func TestConn_Decoding(t *testing.T) {
	server, client := loopback(t)
	conn, err := transport.NewConn(server)
	require.NoError(t, err)

	const request = "GET /slow HTTP/1.1\r\nHost: localhost\r\n\r\nbody"
	go func() {
		for i := 0; i < len(request); i += 7 {
			_, _ = client.Write([]byte(request[i:min(i+7, len(request))]))
			time.Sleep(time.Millisecond)
		}
	}()

	require.NoError(t, server.SetReadDeadline(time.Now().Add(5*time.Second)))
	decoder := head.NewRequestDecoder(config.Default())
	src, parsed, err := decoder.Decode(conn).Await(context.Background(), conn.WaitReadable)
	require.NoError(t, err)
	require.Same(t, conn, src)
	require.Equal(t, "/slow", parsed.URI)
	require.Equal(t, "localhost", parsed.Headers.Value("host"))

	// nothing past the head was consumed
	rest := make([]byte, 4)
	_, err = io.ReadFull(server, rest)
	require.NoError(t, err)
	require.Equal(t, "body", string(rest))
}

func TestConn_Encoding(t *testing.T) {
	server, client := loopback(t)
	conn, err := transport.NewConn(server)
	require.NoError(t, err)

	response := http.NewResponse(status.NoContent).Header("Connection", "close")
	encoding, err := head.NewEncoder(config.Default()).StartResponse(conn, response)
	require.NoError(t, err)

	for {
		state, err := encoding.Poll()
		require.NoError(t, err)
		if state == head.Completed {
			break
		}

		require.NoError(t, conn.WaitWritable())
	}

	decoded, err := head.NewResponseDecoder(config.Default()).Read(client)
	require.NoError(t, err)
	require.Equal(t, status.NoContent, decoded.Code)
	require.Equal(t, "close", decoded.Headers.Value("connection"))
}
