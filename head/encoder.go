package head

import (
	"errors"
	"io"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/kv"
	"github.com/indigo-web/h1head/transport"
	"github.com/valyala/bytebufferpool"
)

// Encoder writes heads. It keeps no state between calls, the configuration limits are
// applied in the same way decoders do, so a peer with the same configuration never rejects
// an encoded head as too large.
type Encoder struct {
	cfg *config.Config
}

func NewEncoder(cfg *config.Config) Encoder {
	return Encoder{cfg: cfg}
}

// EncodeRequest serializes the request head and writes it in a single call.
func (e Encoder) EncodeRequest(w io.Writer, request *http.Request) error {
	return e.encode(w, func(dst []byte) ([]byte, error) {
		return e.appendRequest(dst, request)
	})
}

// EncodeResponse serializes the response head and writes it in a single call.
func (e Encoder) EncodeResponse(w io.Writer, response *http.Response) error {
	return e.encode(w, func(dst []byte) ([]byte, error) {
		return e.appendResponse(dst, response)
	})
}

// StartRequest serializes the request head and returns a non-blocking encoding writing it
// into the sink.
func (e Encoder) StartRequest(sink transport.Sink, request *http.Request) (*Encoding, error) {
	return e.start(sink, func(dst []byte) ([]byte, error) {
		return e.appendRequest(dst, request)
	})
}

// StartResponse serializes the response head and returns a non-blocking encoding writing it
// into the sink.
func (e Encoder) StartResponse(sink transport.Sink, response *http.Response) (*Encoding, error) {
	return e.start(sink, func(dst []byte) ([]byte, error) {
		return e.appendResponse(dst, response)
	})
}

func (e Encoder) appendRequest(dst []byte, request *http.Request) ([]byte, error) {
	if err := e.checkHeaders(request.Headers); err != nil {
		return dst, err
	}

	return AppendRequest(dst, request)
}

func (e Encoder) appendResponse(dst []byte, response *http.Response) ([]byte, error) {
	if err := e.checkHeaders(response.Headers); err != nil {
		return dst, err
	}

	return AppendResponse(dst, response)
}

func (e Encoder) checkHeaders(headers *kv.Storage) error {
	if headers != nil && headers.Len() > e.cfg.Head.MaxHeaders {
		return ErrTooManyHeaders
	}

	return nil
}

func (e Encoder) serialize(appender func([]byte) ([]byte, error)) (*bytebufferpool.ByteBuffer, error) {
	buff := bytebufferpool.Get()

	var err error
	buff.B, err = appender(buff.B)
	if err == nil && buff.Len() > e.cfg.Head.MaxSize {
		err = ErrHeadTooLarge
	}

	if err != nil {
		bytebufferpool.Put(buff)
		return nil, err
	}

	return buff, nil
}

func (e Encoder) encode(w io.Writer, appender func([]byte) ([]byte, error)) error {
	buff, err := e.serialize(appender)
	if err != nil {
		return err
	}

	defer bytebufferpool.Put(buff)

	if _, err = w.Write(buff.B); err != nil {
		return IOError{Err: err}
	}

	return nil
}

func (e Encoder) start(sink transport.Sink, appender func([]byte) ([]byte, error)) (*Encoding, error) {
	buff, err := e.serialize(appender)
	if err != nil {
		return nil, err
	}

	return &Encoding{
		sink:  sink,
		buff:  buff,
		state: Pending,
	}, nil
}

// Encoding writes an already serialized head into a non-blocking sink. Same as Decoding,
// it is driven by Poll and must not be polled after a terminal state.
type Encoding struct {
	sink    transport.Sink
	buff    *bytebufferpool.ByteBuffer
	written int
	state   State
}

// Poll writes as much as the sink accepts. Completed is returned once every byte is written.
func (e *Encoding) Poll() (State, error) {
	if e.state != Pending {
		panic(errPolledTwice)
	}

	for e.written < e.buff.Len() {
		n, err := e.sink.TryWrite(e.buff.B[e.written:])
		e.written += n

		switch {
		case err == nil && n > 0:
		case err == nil, errors.Is(err, transport.ErrNotReady):
			return Pending, nil
		default:
			return e.finish(Failed, IOError{Err: err})
		}
	}

	return e.finish(Completed, nil)
}

// Written returns the number of bytes already written.
func (e *Encoding) Written() int {
	return e.written
}

func (e *Encoding) finish(state State, err error) (State, error) {
	e.state = state
	bytebufferpool.Put(e.buff)
	e.sink, e.buff = nil, nil

	return state, err
}
