package arena

import (
	"go.uber.org/zap"

	"github.com/joshuapare/arenakit/internal/mmarena"
)

// Reserver obtains size bytes of arena memory and a function that releases them.
type Reserver func(size int) ([]byte, func() error, error)

type options struct {
	logger  *zap.Logger
	reserve Reserver
	buf     []byte
}

// Option configures an Allocator at construction.
type Option func(*options)

// WithLogger routes page transitions and rejected frees to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithArena makes the allocator manage caller-provided memory instead of reserving its own.
// len(buf) must equal the configured arena size. Close does not release buf.
func WithArena(buf []byte) Option {
	return func(o *options) {
		o.buf = buf
	}
}

// WithReserver replaces the default anonymous mapping used to reserve the arena.
func WithReserver(r Reserver) Option {
	return func(o *options) {
		if r != nil {
			o.reserve = r
		}
	}
}

func defaultOptions() options {
	return options{
		logger:  zap.NewNop(),
		reserve: mmarena.Reserve,
	}
}
