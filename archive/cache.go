package archive

import (
	"sync"

	"github.com/arloliu/gbx/compress"
	"github.com/arloliu/gbx/format"
)

type cached struct {
	compressed bool
	data       []byte
	size       int
	partial    bool
}

// extractionCache holds extracted entries keyed by their index position.
type extractionCache struct {
	mu      sync.Mutex
	codec   compress.Codec
	entries map[int]cached
}

// newExtractionCache creates a cache compressing entries with a codec of the
// given type.
func newExtractionCache(codecType format.CodecType) (*extractionCache, error) {
	codec, err := compress.CreateCodec(codecType, "cache")
	if err != nil {
		return nil, err
	}

	return &extractionCache{codec: codec, entries: make(map[int]cached)}, nil
}

func (c *extractionCache) get(pos int) (Extraction, bool, error) {
	c.mu.Lock()
	ent, ok := c.entries[pos]
	c.mu.Unlock()
	if !ok {
		return Extraction{}, false, nil
	}
	if !ent.compressed {
		return Extraction{Data: ent.data, Partial: ent.partial}, true, nil
	}

	var (
		data []byte
		err  error
	)
	if sized, ok := c.codec.(compress.SizedDecompressor); ok {
		data, err = sized.DecompressSize(ent.data, ent.size)
	} else {
		data, err = c.codec.Decompress(ent.data)
	}
	if err != nil {
		return Extraction{}, false, err
	}

	return Extraction{Data: data, Partial: ent.partial}, true, nil
}

// put stores ex. Data the codec cannot compress is kept uncompressed.
func (c *extractionCache) put(pos int, ex Extraction) {
	ent := cached{data: ex.Data, size: len(ex.Data), partial: ex.Partial}
	if len(ex.Data) > 0 {
		if comp, err := c.codec.Compress(ex.Data); err == nil {
			ent.compressed = true
			ent.data = comp
		}
	}

	c.mu.Lock()
	c.entries[pos] = ent
	c.mu.Unlock()
}

func (c *extractionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
