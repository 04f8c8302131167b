// Package reference decodes the reference table of a gbx container and
// resolves external node references lazily.
//
// A Table lists the nodes a container pulls in from other files. Each entry
// becomes a *node.External handle stored in the referencing node's Ref field.
// A Resolver turns handles into nodes on demand: the first call reads and
// parses the target file, later calls return the cached outcome without
// further I/O. Targets that cannot be located, resource-index entries and
// reference cycles resolve to nil with an error wrapping
// errs.ErrReferenceUnresolvable, which callers may treat as an absent value.
package reference
