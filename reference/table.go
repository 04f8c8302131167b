package reference

import (
	"fmt"

	"github.com/arloliu/gbx/errs"
	"github.com/arloliu/gbx/node"
	"github.com/arloliu/gbx/stream"
)

// UseFileVersion is the first container version storing the use-file flag.
const UseFileVersion = 5

// Folder is a folder of the reference table, flattened in pre-order.
type Folder struct {
	Name string
	// Parent is the index of the parent folder, -1 for root folders.
	Parent int
}

// Table is a decoded reference table.
type Table struct {
	AncestorLevel int32
	Folders       []Folder
	Entries       []*node.External
}

// Lookup returns the entry standing for node index idx.
func (t *Table) Lookup(idx int) (*node.External, bool) {
	if t == nil {
		return nil, false
	}
	for _, e := range t.Entries {
		if e.Index == idx {
			return e, true
		}
	}

	return nil, false
}

// FolderPath returns the folder names from the root down to folder i.
func (t *Table) FolderPath(i int) []string {
	var names []string
	for guard := 0; i >= 0 && i < len(t.Folders) && guard <= len(t.Folders); guard++ {
		names = append(names, t.Folders[i].Name)
		i = t.Folders[i].Parent
	}
	for l, r := 0, len(names)-1; l < r; l, r = l+1, r-1 {
		names[l], names[r] = names[r], names[l]
	}

	return names
}

func (t *Table) entryPath(e *node.External) string {
	if e.IsResource() {
		return ""
	}

	return node.JoinPath(int(t.AncestorLevel), t.FolderPath(e.FolderIndex), e.FileName)
}

// ParseTable decodes a reference table. It returns nil when the container
// references no external node.
func ParseTable(r *stream.Reader, version int16) (*Table, error) {
	numExternal, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if numExternal == 0 {
		return nil, nil
	}
	if numExternal < 0 || int(numExternal) > r.Len() {
		return nil, fmt.Errorf("%w: %d external nodes", errs.ErrTruncatedStream, numExternal)
	}

	t := &Table{}
	if t.AncestorLevel, err = r.Int32(); err != nil {
		return nil, err
	}
	if t.AncestorLevel < 0 {
		return nil, fmt.Errorf("%w: ancestor level %d", errs.ErrInvalidNodeIndex, t.AncestorLevel)
	}

	numRoots, err := r.Int32()
	if err != nil {
		return nil, err
	}
	if err := t.readFolders(r, numRoots, -1); err != nil {
		return nil, err
	}

	t.Entries = make([]*node.External, numExternal)
	for i := range t.Entries {
		e, err := t.readEntry(r, version)
		if err != nil {
			return nil, fmt.Errorf("reference entry %d: %w", i, err)
		}
		t.Entries[i] = e
	}

	return t, nil
}

func (t *Table) readFolders(r *stream.Reader, count int32, parent int) error {
	if count < 0 || int(count) > r.Len() {
		return fmt.Errorf("%w: %d folders", errs.ErrTruncatedStream, count)
	}
	for range count {
		name, err := r.String()
		if err != nil {
			return err
		}
		idx := len(t.Folders)
		t.Folders = append(t.Folders, Folder{Name: name, Parent: parent})

		sub, err := r.Int32()
		if err != nil {
			return err
		}
		if err := t.readFolders(r, sub, idx); err != nil {
			return err
		}
	}

	return nil
}

func (t *Table) readEntry(r *stream.Reader, version int16) (*node.External, error) {
	e := &node.External{FolderIndex: -1}

	var err error
	if e.Flags, err = r.Int32(); err != nil {
		return nil, err
	}
	if e.IsResource() {
		if e.ResourceIndex, err = r.Int32(); err != nil {
			return nil, err
		}
	} else if e.FileName, err = r.String(); err != nil {
		return nil, err
	}

	idx, err := r.Int32()
	if err != nil {
		return nil, err
	}
	e.Index = int(idx) - 1

	if version >= UseFileVersion {
		if e.UseFile, err = r.Bool(); err != nil {
			return nil, err
		}
	}

	if !e.IsResource() {
		folder, err := r.Int32()
		if err != nil {
			return nil, err
		}
		e.FolderIndex = int(folder) - 1
		if e.FolderIndex >= len(t.Folders) {
			return nil, fmt.Errorf("%w: folder %d of %d", errs.ErrInvalidNodeIndex, folder, len(t.Folders))
		}
	}
	e.Path = t.entryPath(e)

	return e, nil
}

// WriteTable encodes t. A nil or empty table is a single zero count.
func WriteTable(w *stream.Writer, t *Table, version int16) {
	if t == nil || len(t.Entries) == 0 {
		w.Int32(0)
		return
	}

	w.Int32(int32(len(t.Entries))) //nolint:gosec
	w.Int32(t.AncestorLevel)
	t.writeFolders(w, -1)

	for _, e := range t.Entries {
		w.Int32(e.Flags)
		if e.IsResource() {
			w.Int32(e.ResourceIndex)
		} else {
			w.String(e.FileName)
		}
		w.Int32(int32(e.Index + 1)) //nolint:gosec
		if version >= UseFileVersion {
			w.Bool(e.UseFile)
		}
		if !e.IsResource() {
			w.Int32(int32(e.FolderIndex + 1)) //nolint:gosec
		}
	}
}

func (t *Table) writeFolders(w *stream.Writer, parent int) {
	children := t.children(parent)
	w.Int32(int32(len(children))) //nolint:gosec
	for _, i := range children {
		w.String(t.Folders[i].Name)
		t.writeFolders(w, i)
	}
}

func (t *Table) children(parent int) []int {
	var out []int
	for i, f := range t.Folders {
		if f.Parent == parent {
			out = append(out, i)
		}
	}

	return out
}
