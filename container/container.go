package container

import (
	"fmt"
	"io"

	"github.com/arloliu/gbx/internal/options"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/reference"
	"github.com/arloliu/gbx/section"
	"github.com/arloliu/gbx/stream"
)

// Chunk markers of the body stream.
const (
	// EndOfNode closes the chunk list of a node.
	EndOfNode uint32 = 0xFACADE01
	// SkipMarker ("PIKS") follows the ID of a skippable chunk.
	SkipMarker uint32 = 0x534B4950
)

// Container is a parsed gbx file.
type Container struct {
	Header section.Header
	// Node is the root node. Its HeaderChunks hold the user-data chunks.
	Node node.Node
	// RefTable is the reference table, nil when the body was not parsed or
	// references no external file.
	RefTable *reference.Table
	// Diagnostics lists the local conditions met while parsing.
	Diagnostics []Diagnostic

	rest []byte
	cfg  *config
	// noUserData is set when a parsed version 6 file stored an empty
	// user-data block without a chunk count.
	noUserData bool
}

// New returns an empty container for n with a version 6 header.
func New(n node.Node, opts ...Option) (*Container, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Container{Header: section.NewHeader(n.ClassID()), Node: n, cfg: cfg}, nil
}

// Rest returns the bytes following the envelope as read by ParseHeader.
func (c *Container) Rest() []byte {
	return c.rest
}

func (c *Container) diag(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
	c.cfg.logger.Warn("gbx chunk diagnostic",
		"kind", d.Kind.String(),
		"chunk", fmt.Sprintf("0x%08X", d.ChunkID),
		"header", d.Header,
		"error", d.Err,
	)
}

func (c *Container) newNode(classID uint32) node.Node {
	if f, ok := c.cfg.registry.Node(classID); ok {
		return f()
	}

	return node.NewGeneric(classID)
}

// ParseHeader decodes the envelope and the header chunks of data. The
// returned container references data; it must not be modified afterwards.
func ParseHeader(data []byte, opts ...Option) (*Container, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	h, n, err := section.ParseHeader(data, cfg.registry.Remap)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("gbx envelope",
		"version", h.Version,
		"class", fmt.Sprintf("0x%08X", h.ClassID),
		"refTableCompression", h.RefTableCompression.String(),
		"bodyCompression", h.BodyCompression.String(),
		"userData", len(h.UserData),
		"numNodes", h.NumNodes,
	)

	c := &Container{Header: h, rest: data[n:], cfg: cfg}
	c.noUserData = h.Version >= section.UserDataVersion && len(h.UserData) == 0
	c.Node = c.newNode(h.ClassID)

	if err := c.decodeHeaderChunks(); err != nil {
		return nil, err
	}

	return c, nil
}

// ParseBody decodes the reference table and body from rest into c.Node.
// opts are applied on top of the options c was parsed with.
func ParseBody(c *Container, rest []byte, opts ...Option) error {
	cfg := newConfig()
	if c.cfg != nil {
		cfg = c.cfg.clone()
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}
	c.cfg = cfg

	return c.decodeBody(rest)
}

// Parse decodes a whole container. With WithHeaderOnly it stops after the
// header chunks.
func Parse(data []byte, opts ...Option) (*Container, error) {
	c, err := ParseHeader(data, opts...)
	if err != nil {
		return nil, err
	}
	if c.cfg.headerOnly {
		return c, nil
	}
	if err := ParseBody(c, c.rest); err != nil {
		return c, err
	}

	return c, nil
}

// WriteHeader writes the envelope and the header chunks. The node count is
// taken from c.Header; WriteBody and Bytes update it.
func WriteHeader(c *Container, w io.Writer) error {
	sw := stream.NewWriter()
	if err := c.encodeHeader(sw); err != nil {
		return err
	}
	_, err := sw.WriteTo(w)

	return err
}

// WriteBody writes the reference table and the body and updates
// c.Header.NumNodes.
func WriteBody(c *Container, w io.Writer) error {
	body, numNodes, err := c.encodeBody()
	if err != nil {
		return err
	}
	c.Header.NumNodes = numNodes
	_, err = w.Write(body)

	return err
}

// Bytes serializes the whole container.
func (c *Container) Bytes() ([]byte, error) {
	body, numNodes, err := c.encodeBody()
	if err != nil {
		return nil, err
	}
	c.Header.NumNodes = numNodes

	sw := stream.NewWriter()
	if err := c.encodeHeader(sw); err != nil {
		return nil, err
	}
	_, _ = sw.Write(body)

	return sw.Bytes(), nil
}
