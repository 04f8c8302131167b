// Package engines is a small catalogue of node schemas.
//
// Each schema binds a node variant and its chunk codecs to a class of the
// embedded class table. Register adds the whole catalogue to a registry
// builder:
//
//	b := registry.NewBuilder()
//	_ = b.LoadYAML(bytes.NewReader(registry.ClassTable()))
//	_ = engines.Register(b)
//	reg, err := b.Freeze()
//
// Chunks that keep their fields on the node need a node of their class and
// fail with errs.ErrNodeRequired on typeless reads. Chunks that keep their
// fields on themselves decode with or without a node.
package engines
