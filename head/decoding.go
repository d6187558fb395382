package head

import (
	"context"
	"errors"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/transport"
	"github.com/indigo-web/utils/uf"
)

// State is the outcome of a single Poll.
type State uint8

const (
	// Pending means the transport wasn't ready. Poll must be called again once it is.
	Pending State = iota + 1
	// Completed means the head was read and parsed successfully.
	Completed
	// Failed means the attempt is over. The error returned along is the reason.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decoding is a single non-blocking attempt to read a head. It does nothing on its own:
// every Poll makes as much progress as the transport allows at the moment and returns. It
// isn't tied to a goroutine, so consecutive polls may come from different ones, though
// never concurrently.
//
// Once Completed or Failed is returned, the decoding must not be polled anymore. Doing so
// panics. To cancel the attempt, simply drop the decoding.
type Decoding[H any] struct {
	src        transport.Source
	owned      bool
	state      State
	maxHeaders int
	parse      parser[H]
	acc        *accumulator
	head       H
}

func newDecoding[H any](cfg config.Head, src transport.Source, owned bool, parse parser[H]) *Decoding[H] {
	return &Decoding[H]{
		src:        src,
		owned:      owned,
		state:      Pending,
		maxHeaders: cfg.MaxHeaders,
		parse:      parse,
		acc:        newAccumulator(cfg),
	}
}

// Poll reads until either the transport reports it's not ready, the head is complete or an
// error occurs. Not-ready reads consume nothing, so no byte is lost or duplicated between polls.
func (d *Decoding[H]) Poll() (State, error) {
	if d.state != Pending {
		panic(errPolledTwice)
	}

	for {
		chunk, err := d.acc.next()
		if err != nil {
			return d.fail(err)
		}

		n, err := d.src.TryRead(chunk)
		if n > 0 {
			done, feedErr := d.acc.feed(n)
			if feedErr != nil {
				return d.fail(feedErr)
			}

			if done {
				return d.complete()
			}
		}

		switch {
		case err == nil && n > 0:
		case err == nil, errors.Is(err, transport.ErrNotReady):
			return Pending, nil
		default:
			return d.fail(transportError(err, d.acc.consumed()))
		}
	}
}

// Result returns the parsed head. For decodings started via Decode, the source is handed
// back as well, otherwise it is nil. Result may be called only once and only after Poll
// returned Completed.
func (d *Decoding[H]) Result() (transport.Source, H) {
	if d.state != Completed || d.acc == nil {
		panic("head: result of an unfinished decoding is requested")
	}

	var src transport.Source
	if d.owned {
		src = d.src
	}

	head := d.head
	var zero H
	d.src, d.head, d.acc = nil, zero, nil

	return src, head
}

// Await drives the decoding until it's over. Whenever the source isn't ready, wait is called,
// which must block until it probably is. The context is checked between polls only; the
// wait function is responsible for honoring it while blocked, if needed.
func (d *Decoding[H]) Await(ctx context.Context, wait func() error) (transport.Source, H, error) {
	var zero H

	for {
		if err := ctx.Err(); err != nil {
			return nil, zero, err
		}

		state, err := d.Poll()
		switch state {
		case Completed:
			src, head := d.Result()
			return src, head, nil
		case Failed:
			return nil, zero, err
		}

		if err = wait(); err != nil {
			return nil, zero, err
		}
	}
}

func (d *Decoding[H]) complete() (State, error) {
	// the buffer is never reused, so the head may safely reference it
	head, err := d.parse(uf.B2S(d.acc.head()), d.maxHeaders)
	if err != nil {
		return d.fail(err)
	}

	d.head = head
	d.state = Completed

	return Completed, nil
}

func (d *Decoding[H]) fail(err error) (State, error) {
	d.state = Failed
	d.src, d.acc = nil, nil

	return Failed, err
}
