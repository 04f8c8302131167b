package reference

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/internal/hash"
	"github.com/arloliu/gbx/internal/options"
	"github.com/arloliu/gbx/node"
)

// Depth selects how far a referenced container is parsed.
type Depth uint8

const (
	// DepthHeader parses the envelope and header chunks only.
	DepthHeader Depth = iota
	// DepthFull parses the whole node.
	DepthFull
)

func (d Depth) String() string {
	switch d {
	case DepthHeader:
		return "Header"
	case DepthFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// State is the resolution state of an external reference.
type State uint8

const (
	Unresolved State = iota
	Resolving
	Resolved
	ResolvedNull
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "Unresolved"
	case Resolving:
		return "Resolving"
	case Resolved:
		return "Resolved"
	case ResolvedNull:
		return "ResolvedNull"
	default:
		return "Unknown"
	}
}

// Loader parses the bytes of a referenced container up to depth.
type Loader func(data []byte, depth Depth) (node.Node, error)

type resolution struct {
	state State
	depth Depth
	node  node.Node
	err   error
	// upgradeErr is the cached failure of a full parse after a header one.
	upgradeErr error
}

// Resolver resolves external references against a file system.
//
// Outcomes are cached per entry and per normalized target path. A Resolver
// is not safe for concurrent use; concurrent first resolution of the same
// entry must be serialized by the caller.
type Resolver struct {
	fsys    fs.FS
	base    string
	load    Loader
	logger  *slog.Logger
	entries map[*node.External]*resolution
	paths   map[uint64]*resolution
}

// Option configures a Resolver.
type Option = options.Option[*Resolver]

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// NewResolver creates a Resolver reading from fsys. base is the directory of
// the owning container inside fsys, "." for the root.
func NewResolver(fsys fs.FS, base string, load Loader, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		fsys:    fsys,
		base:    path.Clean(hash.NormalizeSeparators(base)),
		load:    load,
		logger:  slog.New(slog.DiscardHandler),
		entries: make(map[*node.External]*resolution),
		paths:   make(map[uint64]*resolution),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Target returns the path of ext inside the resolver's file system, or false
// when the entry cannot name a file there.
func (r *Resolver) Target(ext *node.External) (string, bool) {
	if ext == nil || ext.IsResource() || ext.Path == "" {
		return "", false
	}

	p := path.Join(r.base, ext.Path)
	if !fs.ValidPath(p) {
		return "", false
	}

	return p, true
}

// State returns the resolution state of ext.
func (r *Resolver) State(ext *node.External) State {
	if res, ok := r.entries[ext]; ok {
		return res.state
	}

	return Unresolved
}

// ResolveRef returns the node a Ref points to: the in-stream node itself, the
// resolved external node, or nil for a null reference.
func (r *Resolver) ResolveRef(ref node.Ref, depth Depth) (node.Node, error) {
	switch {
	case ref.Node != nil:
		return ref.Node, nil
	case ref.External != nil:
		return r.Resolve(ref.External, depth)
	default:
		return nil, nil
	}
}

// Resolve returns the node ext refers to, parsed at least to depth.
//
// The first call performs the I/O; later calls return the cached node or the
// cached failure. A header-depth result is upgraded when DepthFull is asked.
// A failed upgrade is cached too: the header node stays resolved and is
// returned together with the upgrade error.
func (r *Resolver) Resolve(ext *node.External, depth Depth) (node.Node, error) {
	if ext == nil {
		return nil, fmt.Errorf("%w: nil entry", errs.ErrReferenceUnresolvable)
	}

	res, ok := r.entries[ext]
	if !ok {
		res = r.bind(ext)
	}

	switch res.state {
	case Resolving:
		return nil, fmt.Errorf("%w: %w: %s", errs.ErrReferenceUnresolvable, errs.ErrReferenceCycle, ext.Path)
	case ResolvedNull:
		return nil, res.err
	case Resolved:
		if res.depth >= depth {
			return res.node, nil
		}
		if res.upgradeErr != nil {
			return res.node, res.upgradeErr
		}
	}

	target, ok := r.Target(ext)
	if !ok {
		r.fail(res, fmt.Errorf("%w: entry %d has no file path", errs.ErrReferenceUnresolvable, ext.Index))
		return nil, res.err
	}

	prev := res.state
	res.state = Resolving
	n, err := r.read(target, depth)
	if err != nil {
		if prev == Resolved {
			// Keep the header result usable when the upgrade fails.
			res.state = Resolved
			res.upgradeErr = err
			r.logger.Warn("reference upgrade failed", "path", target, "error", err)

			return res.node, err
		}
		r.fail(res, err)

		return nil, err
	}

	res.state = Resolved
	res.depth = depth
	res.node = n
	r.logger.Debug("reference resolved", "path", target, "depth", depth.String(), "class", fmt.Sprintf("0x%08X", n.ClassID()))

	return n, nil
}

func (r *Resolver) bind(ext *node.External) *resolution {
	var res *resolution
	if target, ok := r.Target(ext); ok {
		key := hash.PathKey(target)
		if shared, ok := r.paths[key]; ok {
			res = shared
		} else {
			res = &resolution{}
			r.paths[key] = res
		}
	} else {
		res = &resolution{}
	}
	r.entries[ext] = res

	return res
}

func (r *Resolver) fail(res *resolution, err error) {
	res.state = ResolvedNull
	res.err = err
	res.node = nil
	r.logger.Warn("reference unresolvable", "error", err)
}

func (r *Resolver) read(target string, depth Depth) (node.Node, error) {
	data, err := fs.ReadFile(r.fsys, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrReferenceUnresolvable, err)
	}
	if r.load == nil {
		return nil, fmt.Errorf("%w: no loader configured", errs.ErrReferenceUnresolvable)
	}

	n, err := r.load(data, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrReferenceUnresolvable, target, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s: loader returned no node", errs.ErrReferenceUnresolvable, target)
	}

	return n, nil
}
