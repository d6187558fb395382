package head

import (
	"io"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/internal/terminator"
	"github.com/indigo-web/h1head/transport"
	"github.com/indigo-web/utils/buffer"
)

// RequestDecoder reads request heads. It holds nothing but the configuration, so a single
// instance may be shared; every decode attempt gets its own state.
type RequestDecoder struct {
	cfg *config.Config
}

func NewRequestDecoder(cfg *config.Config) RequestDecoder {
	return RequestDecoder{cfg: cfg}
}

// Read blocks until a whole request head is read from r. Exactly the head is consumed, the
// rest stays in r.
func (d RequestDecoder) Read(r io.Reader) (*http.Request, error) {
	return read(d.cfg.Head, r, parseRequest)
}

// Decode starts a non-blocking decoding which takes the source over and hands it back via
// Decoding.Result once the head is complete.
func (d RequestDecoder) Decode(src transport.Source) *Decoding[*http.Request] {
	return newDecoding(d.cfg.Head, src, true, parseRequest)
}

// DecodeRef starts a non-blocking decoding which only borrows the source. Decoding.Result
// doesn't return it, the caller keeps its own reference regardless of the outcome.
func (d RequestDecoder) DecodeRef(src transport.Source) *Decoding[*http.Request] {
	return newDecoding(d.cfg.Head, src, false, parseRequest)
}

// ResponseDecoder reads response heads. Same as RequestDecoder, it is stateless.
type ResponseDecoder struct {
	cfg *config.Config
}

func NewResponseDecoder(cfg *config.Config) ResponseDecoder {
	return ResponseDecoder{cfg: cfg}
}

// Read blocks until a whole response head is read from r. Exactly the head is consumed, the
// rest stays in r.
func (d ResponseDecoder) Read(r io.Reader) (*http.Response, error) {
	return read(d.cfg.Head, r, parseResponse)
}

// Decode starts a non-blocking decoding owning the source. See RequestDecoder.Decode.
func (d ResponseDecoder) Decode(src transport.Source) *Decoding[*http.Response] {
	return newDecoding(d.cfg.Head, src, true, parseResponse)
}

// DecodeRef starts a non-blocking decoding borrowing the source. See RequestDecoder.DecodeRef.
func (d ResponseDecoder) DecodeRef(src transport.Source) *Decoding[*http.Response] {
	return newDecoding(d.cfg.Head, src, false, parseResponse)
}

type parser[H any] func(head string, maxHeaders int) (H, error)

// accumulator couples the terminator scanner with the bounded buffer. It never asks for more
// bytes than the terminator may still need, so nothing past the head is ever consumed.
type accumulator struct {
	buffer  *buffer.Buffer
	scanner *terminator.Scanner
	size    int
	maxSize int
	chunk   [len(terminator.CRLFCRLF)]byte
}

func newAccumulator(cfg config.Head) *accumulator {
	return &accumulator{
		buffer:  buffer.New(min(cfg.InitialSize, cfg.MaxSize), cfg.MaxSize),
		scanner: terminator.Head(),
		maxSize: cfg.MaxSize,
	}
}

// next returns where the next read must go to. Its length is exactly the number of bytes
// the terminator needs to complete, so if they don't fit, the head can't either.
func (a *accumulator) next() ([]byte, error) {
	want := a.scanner.Remaining()
	if a.size+want > a.maxSize {
		return nil, ErrHeadTooLarge
	}

	return a.chunk[:want], nil
}

// feed consumes the first n bytes of the chunk returned by next and reports whether the
// head is complete.
func (a *accumulator) feed(n int) (done bool, err error) {
	data := a.chunk[:n]
	if !a.buffer.Append(data) {
		return false, ErrHeadTooLarge
	}

	a.scanner.Process(data)
	a.size += n

	return a.scanner.Done(), nil
}

func (a *accumulator) consumed() int {
	return a.size
}

// head returns the whole accumulated head.
func (a *accumulator) head() []byte {
	return a.buffer.Finish()
}
