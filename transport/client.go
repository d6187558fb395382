package transport

import (
	"bufio"
	"net"
	"time"

	"github.com/indigo-web/h1head/config"
)

// Client is a blocking, buffered view of a connection. Head decoders request a few bytes at a
// time, so reads are served from a buffer, and whatever was read past the head stays in it
// for the body reader.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	cfg    config.NET
}

func NewClient(conn net.Conn, cfg config.NET) *Client {
	return &Client{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, cfg.ReadBufferSize),
		cfg:    cfg,
	}
}

// Read reads into b, refreshing the read deadline whenever the underlying connection must be
// touched.
func (c *Client) Read(b []byte) (int, error) {
	if c.reader.Buffered() == 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return 0, err
		}
	}

	return c.reader.Read(b)
}

// Buffered returns the number of bytes already read from the connection but not consumed yet.
func (c *Client) Buffered() int {
	return c.reader.Buffered()
}

// Write writes data into the underlying connection.
func (c *Client) Write(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return 0, err
	}

	return c.conn.Write(b)
}

// Conn unwraps the underlying net.Conn.
func (c *Client) Conn() net.Conn {
	return c.conn
}

// Remote returns the remote address of the connection.
func (c *Client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
