package container

import (
	"log/slog"

	"github.com/arloliu/gbx/internal/options"
	"github.com/arloliu/gbx/registry"
)

type config struct {
	registry      *registry.Registry
	logger        *slog.Logger
	lazySkippable bool
	headerOnly    bool
}

func newConfig() *config {
	return &config{
		registry: registry.Empty(),
		logger:   slog.New(slog.DiscardHandler),
	}
}

func (c *config) clone() *config {
	cp := *c
	return &cp
}

// Option configures parsing.
type Option = options.Option[*config]

// WithRegistry sets the registry used to dispatch classes and chunks.
// Without it every chunk is kept opaque.
func WithRegistry(reg *registry.Registry) Option {
	return options.NoError(func(c *config) {
		if reg != nil {
			c.registry = reg
		}
	})
}

// WithLogger sets the logger receiving chunk diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithLazySkippable defers decoding of known skippable body chunks until
// they are discovered through ChunkSet.Discover or ChunkSet.DiscoverAll.
func WithLazySkippable() Option {
	return options.NoError(func(c *config) {
		c.lazySkippable = true
	})
}

// WithHeaderOnly makes Parse stop after the header chunks.
func WithHeaderOnly() Option {
	return options.NoError(func(c *config) {
		c.headerOnly = true
	})
}
