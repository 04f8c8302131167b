package archive

import (
	"log/slog"

	"github.com/arloliu/gbx/compress"
	"github.com/arloliu/gbx/format"
	"github.com/arloliu/gbx/internal/options"
)

type config struct {
	logger     *slog.Logger
	cache      bool
	cacheCodec format.CodecType
}

func newConfig() *config {
	return &config{logger: slog.New(slog.DiscardHandler)}
}

// Option configures an Archive.
type Option = options.Option[*config]

// WithLogger sets the logger receiving extraction warnings.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCache keeps extracted entries in memory, compressed with codec.
// format.CodecNone keeps them as-is.
func WithCache(codec format.CodecType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.CreateCodec(codec, "cache"); err != nil {
			return err
		}
		c.cache = true
		c.cacheCodec = codec

		return nil
	})
}
