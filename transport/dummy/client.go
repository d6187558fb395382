package dummy

import (
	"io"

	"github.com/indigo-web/h1head/transport"
)

var (
	_ transport.Source = new(Client)
	_ transport.Sink   = new(Client)
	_ io.ReadWriter    = new(Client)
)

// Client serves pre-defined chunks of data and journals everything written into it. A nil
// chunk makes one TryRead report transport.ErrNotReady, which simulates a peer that is slow
// to deliver. Reads never return more than the current chunk holds, so chunk boundaries are
// exactly the boundaries of what reaches the reader.
type Client struct {
	data       [][]byte
	pointer    int
	written    []byte
	writeLimit int
	writeStall bool
	stalled    bool
	err        error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
		err:  io.EOF,
	}
}

// Chunked splits data into chunks of at most n bytes, inserting a not-ready marker before
// each of them if stall is set.
func Chunked(data []byte, n int, stall bool) *Client {
	var chunks [][]byte

	for len(data) > 0 {
		if stall {
			chunks = append(chunks, nil)
		}

		step := min(n, len(data))
		chunks = append(chunks, data[:step])
		data = data[step:]
	}

	return NewMockClient(chunks...)
}

// Fail replaces the error returned once all the chunks are consumed. Defaults to io.EOF.
func (c *Client) Fail(err error) *Client {
	c.err = err
	return c
}

// WriteLimit caps how many bytes a single TryWrite accepts. Zero means no limit.
func (c *Client) WriteLimit(n int) *Client {
	c.writeLimit = n
	return c
}

// WriteStall makes every other TryWrite report transport.ErrNotReady.
func (c *Client) WriteStall(flag bool) *Client {
	c.writeStall = flag
	return c
}

func (c *Client) TryRead(p []byte) (n int, err error) {
	if c.pointer >= len(c.data) {
		return 0, c.err
	}

	chunk := c.data[c.pointer]
	if chunk == nil {
		c.pointer++
		return 0, transport.ErrNotReady
	}

	n = copy(p, chunk)
	if n == len(chunk) {
		c.pointer++
	} else {
		c.data[c.pointer] = chunk[n:]
	}

	return n, nil
}

// Read behaves like TryRead, except skipping not-ready markers, as blocking readers would
// simply wait.
func (c *Client) Read(p []byte) (n int, err error) {
	for {
		n, err = c.TryRead(p)
		if err != transport.ErrNotReady {
			return n, err
		}
	}
}

// Rest returns all the data that wasn't read yet.
func (c *Client) Rest() (rest []byte) {
	for _, chunk := range c.data[c.pointer:] {
		rest = append(rest, chunk...)
	}

	return rest
}

func (c *Client) TryWrite(p []byte) (n int, err error) {
	if c.writeStall {
		if c.stalled = !c.stalled; c.stalled {
			return 0, transport.ErrNotReady
		}
	}

	if c.writeLimit > 0 && len(p) > c.writeLimit {
		p = p[:c.writeLimit]
	}

	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *Client) Write(p []byte) (int, error) {
	c.written = append(c.written, p...)
	return len(p), nil
}

// Written returns everything written so far.
func (c *Client) Written() string {
	return string(c.written)
}
