package vfs

import (
	"sync"

	"github.com/mwantia/rtvfs/data"
)

// MountPoint is one row of the mount table. Only Mounted changes at runtime.
type MountPoint struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"fs"`
	Path    string `yaml:"path"`
	Mounted bool   `yaml:"mounted"`
}

// MountTable is the ordered, fixed-size list of mount points known at boot.
// Exactly one row is the root ("/") and every path is distinct.
type MountTable struct {
	mu   sync.RWMutex
	rows []MountPoint
}

// NewMountTable validates rows and keeps them in the given order.
func NewMountTable(rows ...MountPoint) (*MountTable, error) {
	roots := 0
	paths := make(map[string]struct{}, len(rows))
	names := make(map[string]struct{}, len(rows))

	table := &MountTable{
		rows: make([]MountPoint, 0, len(rows)),
	}

	for _, row := range rows {
		if row.Name == "" || row.Backend == "" {
			return nil, data.EINVAL
		}

		p, err := data.Normalize("/", row.Path)
		if err != nil {
			return nil, err
		}
		if p != row.Path {
			return nil, data.EINVAL
		}

		if _, exists := paths[p]; exists {
			return nil, data.EINVAL
		}
		if _, exists := names[row.Name]; exists {
			return nil, data.EINVAL
		}
		paths[p] = struct{}{}
		names[row.Name] = struct{}{}

		if p == "/" {
			roots++
		}

		table.rows = append(table.rows, row)
	}

	if roots != 1 {
		return nil, data.EINVAL
	}

	return table, nil
}

// DefaultMountTable returns the table used when none is configured.
// Devices such as the TTY are registered outside of the table.
func DefaultMountTable() *MountTable {
	table, _ := NewMountTable(
		MountPoint{Name: "lfs", Backend: "lfs", Path: "/"},
		MountPoint{Name: "fat", Backend: "fat", Path: "/sd"},
		MountPoint{Name: "rfs", Backend: "ramfs", Path: "/rfs"},
		MountPoint{Name: "rom", Backend: "romfs", Path: "/rom"},
	)
	return table
}

// SetMounted flips the mounted flag of the named row.
func (mt *MountTable) SetMounted(name string, mounted bool) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for i := range mt.rows {
		if mt.rows[i].Name == name {
			mt.rows[i].Mounted = mounted
			return nil
		}
	}
	return ErrNotMounted
}

// Lookup returns the row with the given name.
func (mt *MountTable) Lookup(name string) (MountPoint, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()

	for _, row := range mt.rows {
		if row.Name == name {
			return row, true
		}
	}
	return MountPoint{}, false
}

// ForPath returns the row whose path equals p.
func (mt *MountTable) ForPath(p string) (MountPoint, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()

	for _, row := range mt.rows {
		if row.Path == p {
			return row, true
		}
	}
	return MountPoint{}, false
}

// Root returns the row mounted at "/".
func (mt *MountTable) Root() MountPoint {
	row, _ := mt.ForPath("/")
	return row
}

// Entries returns a snapshot of all rows in table order.
func (mt *MountTable) Entries() []MountPoint {
	mt.mu.RLock()
	defer mt.mu.RUnlock()

	rows := make([]MountPoint, len(mt.rows))
	copy(rows, mt.rows)
	return rows
}

// IsMounted reports whether the named row is mounted.
func (mt *MountTable) IsMounted(name string) bool {
	row, ok := mt.Lookup(name)
	return ok && row.Mounted
}

// mountCursor enumerates the non-root rows of the table once, for the
// synthetic entries of a root directory listing.
type mountCursor struct {
	table *MountTable
	names []string
	pos   int
}

func newMountCursor(table *MountTable) *mountCursor {
	c := &mountCursor{
		table: table,
	}
	for _, row := range table.Entries() {
		if row.Path != "/" {
			c.names = append(c.names, row.Name)
		}
	}
	return c
}

// next fills ent from the next mounted row and reports false once exhausted.
func (c *mountCursor) next(ent *data.Dirent) bool {
	for c.pos < len(c.names) {
		row, ok := c.table.Lookup(c.names[c.pos])
		c.pos++

		if !ok || !row.Mounted {
			continue
		}

		ent.Name = row.Path[1:]
		ent.Type = data.DT_DIR
		ent.Size = 0
		return true
	}
	return false
}
