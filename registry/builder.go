package registry

import (
	"errors"
	"fmt"
	"maps"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
)

// Builder accumulates registrations until Freeze.
// A Builder is not safe for concurrent use.
type Builder struct {
	classes map[uint32]Class
	remaps  map[uint32]uint32
	nodes   map[uint32]NodeFactory
	chunks  map[uint32]ChunkInfo
	headers map[uint32]ChunkInfo
	frozen  bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		classes: make(map[uint32]Class),
		remaps:  make(map[uint32]uint32),
		nodes:   make(map[uint32]NodeFactory),
		chunks:  make(map[uint32]ChunkInfo),
		headers: make(map[uint32]ChunkInfo),
	}
}

func (b *Builder) check() error {
	if b.frozen {
		return errs.ErrRegistryFrozen
	}

	return nil
}

func checkClassID(id uint32) error {
	if node.ChunkIndex(id) != 0 {
		return fmt.Errorf("%w: class id 0x%08X has chunk bits set", errs.ErrInvalidChunkID, id)
	}

	return nil
}

// RegisterClass records a class name and its parent (zero for a root class).
func (b *Builder) RegisterClass(id uint32, name string, parent uint32) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := checkClassID(id); err != nil {
		return err
	}
	if _, ok := b.classes[id]; ok {
		return fmt.Errorf("%w: class 0x%08X", errs.ErrDuplicateRegistration, id)
	}
	b.classes[id] = Class{ID: id, Name: name, Parent: parent}

	return nil
}

// RegisterRemap maps a deprecated class ID to its replacement.
func (b *Builder) RegisterRemap(from, to uint32) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := checkClassID(from); err != nil {
		return err
	}
	if err := checkClassID(to); err != nil {
		return err
	}
	if _, ok := b.remaps[from]; ok {
		return fmt.Errorf("%w: remap 0x%08X", errs.ErrDuplicateRegistration, from)
	}
	b.remaps[from] = to

	return nil
}

// RegisterNode binds a node factory to a class.
func (b *Builder) RegisterNode(classID uint32, factory NodeFactory) error {
	if err := b.check(); err != nil {
		return err
	}
	if _, ok := b.nodes[classID]; ok {
		return fmt.Errorf("%w: node 0x%08X", errs.ErrDuplicateRegistration, classID)
	}
	b.nodes[classID] = factory

	return nil
}

// RegisterChunk binds a body chunk descriptor.
func (b *Builder) RegisterChunk(info ChunkInfo) error {
	return b.registerChunk(b.chunks, "chunk", info)
}

// RegisterHeaderChunk binds a user-data header chunk descriptor.
func (b *Builder) RegisterHeaderChunk(info ChunkInfo) error {
	return b.registerChunk(b.headers, "header chunk", info)
}

func (b *Builder) registerChunk(dst map[uint32]ChunkInfo, kind string, info ChunkInfo) error {
	if err := b.check(); err != nil {
		return err
	}
	if info.New == nil {
		return fmt.Errorf("%w: %s 0x%08X has no factory", errs.ErrInvalidChunkID, kind, info.ID)
	}
	if _, ok := dst[info.ID]; ok {
		return fmt.Errorf("%w: %s 0x%08X", errs.ErrDuplicateRegistration, kind, info.ID)
	}
	dst[info.ID] = info

	return nil
}

// Freeze validates the registrations and returns the immutable Registry.
//
// Remap chains are collapsed so every deprecated ID maps straight to its
// final ID. Remap cycles, parent cycles and chunks or nodes of unregistered
// classes are rejected. The Builder cannot be used afterwards.
func (b *Builder) Freeze() (*Registry, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	remaps, err := collapseRemaps(b.remaps)
	if err != nil {
		return nil, err
	}

	var errList []error
	if err := checkParents(b.classes); err != nil {
		errList = append(errList, err)
	}
	for id := range b.nodes {
		if _, ok := b.classes[id]; !ok {
			errList = append(errList, fmt.Errorf("%w: node 0x%08X has no class", errs.ErrInvalidChunkID, id))
		}
	}
	for _, set := range []map[uint32]ChunkInfo{b.chunks, b.headers} {
		for id := range set {
			if _, ok := b.classes[node.ClassOf(id)]; !ok {
				errList = append(errList, fmt.Errorf("%w: chunk 0x%08X", errs.ErrInvalidChunkID, id))
			}
		}
	}
	if len(errList) > 0 {
		return nil, errors.Join(errList...)
	}

	b.frozen = true

	return &Registry{
		classes: maps.Clone(b.classes),
		remaps:  remaps,
		nodes:   maps.Clone(b.nodes),
		chunks:  maps.Clone(b.chunks),
		headers: maps.Clone(b.headers),
	}, nil
}

func collapseRemaps(src map[uint32]uint32) (map[uint32]uint32, error) {
	out := make(map[uint32]uint32, len(src))
	for from := range src {
		seen := map[uint32]struct{}{from: {}}
		to := src[from]
		for {
			if _, ok := seen[to]; ok {
				return nil, fmt.Errorf("%w: 0x%08X", errs.ErrRemapCycle, from)
			}
			next, ok := src[to]
			if !ok {
				break
			}
			seen[to] = struct{}{}
			to = next
		}
		out[from] = to
	}

	return out, nil
}

func checkParents(classes map[uint32]Class) error {
	for id := range classes {
		seen := map[uint32]struct{}{}
		for cur := id; cur != 0; {
			if _, ok := seen[cur]; ok {
				return fmt.Errorf("%w: parent chain of 0x%08X loops", errs.ErrRemapCycle, id)
			}
			seen[cur] = struct{}{}
			c, ok := classes[cur]
			if !ok {
				break
			}
			cur = c.Parent
		}
	}

	return nil
}
