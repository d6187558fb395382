package config

import "time"

type (
	Head struct {
		// MaxSize is the hard limit of bytes a single head may take, including the start line
		// and the terminating empty line. A head not terminated within this limit is rejected
		// without being parsed.
		MaxSize int
		// InitialSize is how much memory is pre-allocated for the head buffer. It grows up to
		// MaxSize on demand.
		InitialSize int
		// MaxHeaders is the maximal number of header fields. A head carrying more fields
		// is rejected as a whole, not truncated.
		MaxHeaders int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout limits how long a single head may take to arrive.
		ReadTimeout time.Duration
		// WriteTimeout limits how long writing a head may take.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often the Accept() call is interrupted in
		// order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
	}
)

// Config holds limits and pre-allocations used by head decoders and encoders.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Head Head
	NET  NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Head: Head{
			MaxSize:     8 * 1024,
			InitialSize: 1 * 1024, // most of heads fit into a kilobyte
			MaxHeaders:  128,
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
	}
}
