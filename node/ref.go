package node

import "strings"

// ResourceFlag marks an external reference pointing at a resource index
// instead of a file.
const ResourceFlag int32 = 4

// External is an entry of the reference table: a node stored in another file.
type External struct {
	// Index is the node index the entry stands for.
	Index int
	Flags int32
	// FileName is set when the entry names a file.
	FileName string
	// ResourceIndex is set when Flags has ResourceFlag.
	ResourceIndex int32
	// FolderIndex is the zero-based folder of the file, -1 when none.
	FolderIndex int
	// UseFile records whether the reference was dereferenced, as stored.
	UseFile bool
	// Path is the file path relative to the owning container's directory,
	// using forward slashes.
	Path string
}

// IsResource reports whether the entry refers to a resource index.
func (e *External) IsResource() bool {
	return e.Flags&ResourceFlag != 0
}

// Ref is a node-typed field: null, an in-stream node, or an external handle.
type Ref struct {
	Node     Node
	External *External
}

// NodeRefOf returns a Ref to an in-stream node.
func NodeRefOf(n Node) Ref {
	return Ref{Node: n}
}

// IsNull reports whether the reference points nowhere.
func (r Ref) IsNull() bool {
	return r.Node == nil && r.External == nil
}

// IsExternal reports whether the reference points into another file.
func (r Ref) IsExternal() bool {
	return r.External != nil
}

// RefCodec reads and writes node references on behalf of a ReaderWriter.
// The container engine implements it over its node table.
type RefCodec interface {
	ReadRef(rw *ReaderWriter) (Ref, error)
	WriteRef(rw *ReaderWriter, ref Ref) error
}

// JoinPath builds a reference path from its ancestor level, folder names and
// file name. Backslashes are normalized to forward slashes.
func JoinPath(ancestorLevel int, folders []string, fileName string) string {
	parts := make([]string, 0, ancestorLevel+len(folders)+1)
	for range ancestorLevel {
		parts = append(parts, "..")
	}
	for _, f := range folders {
		f = strings.Trim(strings.ReplaceAll(f, "\\", "/"), "/")
		if f != "" {
			parts = append(parts, f)
		}
	}
	parts = append(parts, strings.ReplaceAll(fileName, "\\", "/"))

	return strings.Join(parts, "/")
}
