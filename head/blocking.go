package head

import (
	"io"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/utils/uf"
)

func read[H any](cfg config.Head, r io.Reader, parse parser[H]) (H, error) {
	var zero H
	acc := newAccumulator(cfg)

	for {
		chunk, err := acc.next()
		if err != nil {
			return zero, err
		}

		if _, err = io.ReadFull(r, chunk); err != nil {
			return zero, transportError(err, acc.consumed())
		}

		done, err := acc.feed(len(chunk))
		if err != nil {
			return zero, err
		}

		if done {
			// the buffer is dropped together with the accumulator, so the head may
			// safely reference it
			return parse(uf.B2S(acc.head()), cfg.MaxHeaders)
		}
	}
}
