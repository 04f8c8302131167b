// Package gbx reads and writes Gbx containers and Pak archives.
//
// A Gbx container is a typed object graph serialized as an envelope, a table
// of header chunks, a reference table and a body of chunks. Parsing
// dispatches every class and chunk through a frozen registry; classes and
// chunks the registry does not know are kept opaque, so files round-trip
// byte for byte as far as their layout allows.
//
// # Basic Usage
//
// Parsing a file with the default registry:
//
//	c, err := gbx.ParseFile(os.DirFS("maps"), "A01.Map.Gbx")
//	if err != nil {
//	    return err
//	}
//	for _, d := range c.Diagnostics {
//	    log.Println(d)
//	}
//
// Reading only the header chunks:
//
//	c, err := gbx.ParseHeader(data)
//
// Resolving external references relative to the parsed file:
//
//	r, _ := gbx.NewResolver(fsys, "Maps/A01.Map.Gbx")
//	n, err := r.ResolveRef(ref, reference.DepthFull)
//
// Extracting from a pak archive:
//
//	a, err := gbx.OpenArchive(f, size, secret)
//	e, _ := a.Lookup("Media/Texture/Grass.dds")
//	ex, err := a.Extract(e)
//
// # Package Structure
//
// This package wraps the container, reference and archive packages with the
// default registry: the embedded class table plus the engines catalogue. Use
// the subpackages directly for custom registries or finer control.
package gbx

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync"

	"github.com/arloliu/gbx/archive"
	"github.com/arloliu/gbx/cipher"
	"github.com/arloliu/gbx/container"
	"github.com/arloliu/gbx/engines"
	"github.com/arloliu/gbx/internal/hash"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/reference"
	"github.com/arloliu/gbx/registry"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *registry.Registry
	defaultErr      error
)

// DefaultRegistry returns the registry built from the embedded class table
// and the engines catalogue. It is built once and shared.
func DefaultRegistry() (*registry.Registry, error) {
	defaultOnce.Do(func() {
		b := registry.NewBuilder()
		if err := b.LoadYAML(bytes.NewReader(registry.ClassTable())); err != nil {
			defaultErr = err
			return
		}
		if err := engines.Register(b); err != nil {
			defaultErr = err
			return
		}
		defaultRegistry, defaultErr = b.Freeze()
	})

	return defaultRegistry, defaultErr
}

// withDefaults puts the default registry in front of opts so an explicit
// container.WithRegistry still wins.
func withDefaults(opts []container.Option) ([]container.Option, error) {
	reg, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}

	return append([]container.Option{container.WithRegistry(reg)}, opts...), nil
}

// ParseHeader decodes the envelope and header chunks of data.
func ParseHeader(data []byte, opts ...container.Option) (*container.Container, error) {
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}

	return container.ParseHeader(data, opts...)
}

// Parse decodes a whole container. On a body error the container is returned
// together with the error, its header still usable.
func Parse(data []byte, opts ...container.Option) (*container.Container, error) {
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}

	return container.Parse(data, opts...)
}

// ParseFile reads name from fsys and parses it.
func ParseFile(fsys fs.FS, name string, opts ...container.Option) (*container.Container, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return Parse(data, opts...)
}

// Write serializes c to w.
func Write(c *container.Container, w io.Writer) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)

	return err
}

// NewLoader returns a reference.Loader parsing with the default registry.
func NewLoader(opts ...container.Option) (reference.Loader, error) {
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}

	return func(data []byte, depth reference.Depth) (node.Node, error) {
		if depth == reference.DepthHeader {
			c, err := container.ParseHeader(data, opts...)
			if err != nil {
				return nil, err
			}

			return c.Node, nil
		}

		c, err := container.Parse(data, opts...)
		if err != nil {
			return nil, err
		}

		return c.Node, nil
	}, nil
}

// NewResolver returns a resolver for the references of the container stored
// at name inside fsys.
func NewResolver(fsys fs.FS, name string, opts ...container.Option) (*reference.Resolver, error) {
	load, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}

	return reference.NewResolver(fsys, path.Dir(hash.NormalizeSeparators(name)), load)
}

// OpenArchive opens a pak archive encrypted with the key derived from secret.
func OpenArchive(r io.ReaderAt, size int64, secret []byte, opts ...archive.Option) (*archive.Archive, error) {
	return archive.Open(r, size, cipher.DeriveKey(secret), opts...)
}
