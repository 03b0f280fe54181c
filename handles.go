package vfs

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

// Handle is what a descriptor slot holds: a *FileHandle or a *DirHandle.
type Handle interface {
	IsDir() bool
}

// FileHandle is the switch's bookkeeping for one open backend file.
// It is owned by exactly one descriptor slot. Descriptor flags live in the
// backend.
type FileHandle struct {
	ID   string
	Path string

	state backend.File
	mount *mountEntry
}

func (*FileHandle) IsDir() bool {
	return false
}

// DirHandle is the switch's bookkeeping for one open backend directory.
type DirHandle struct {
	ID   string
	Path string

	state  backend.Dir
	mount  *mountEntry
	dirent data.Dirent

	// cursor is non-nil while synthetic mount entries remain to be listed
	cursor *mountCursor
	listed map[string]struct{}
}

func (*DirHandle) IsDir() bool {
	return true
}

// fdTable maps descriptors to handles. Slots of closed descriptors are
// reused, lowest index first.
type fdTable struct {
	mu    sync.RWMutex
	slots []Handle
	free  []int
	max   int
}

func newFdTable(max int) *fdTable {
	return &fdTable{
		max: max,
	}
}

func (t *fdTable) alloc(h Handle) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		lowest := 0
		for i := 1; i < n; i++ {
			if t.free[i] < t.free[lowest] {
				lowest = i
			}
		}

		fd := t.free[lowest]
		t.free[lowest] = t.free[n-1]
		t.free = t.free[:n-1]

		t.slots[fd] = h
		return fd, nil
	}

	if len(t.slots) >= t.max {
		return -1, ErrTooManyHandles
	}

	t.slots = append(t.slots, h)
	return len(t.slots) - 1, nil
}

func (t *fdTable) lookup(fd int) (Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return nil, ErrBadDescriptor
	}
	return t.slots[fd], nil
}

// release removes the handle from its slot. A second release of the same
// descriptor fails with EBADF.
func (t *fdTable) release(fd int) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return nil, ErrBadDescriptor
	}

	h := t.slots[fd]
	t.slots[fd] = nil
	t.free = append(t.free, fd)
	return h, nil
}

// open returns the descriptors currently in use.
func (t *fdTable) open() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var fds []int
	for fd, h := range t.slots {
		if h != nil {
			fds = append(fds, fd)
		}
	}
	return fds
}

// handleBuilder owns a native file or directory until it is committed to a
// descriptor. Release closes whatever was not committed.
type handleBuilder struct {
	mount     *mountEntry
	path      string
	file      backend.File
	dir       backend.Dir
	committed bool
}

func (hb *handleBuilder) Release() {
	if hb.committed {
		return
	}
	if hb.file != nil {
		hb.file.Close()
	}
	if hb.dir != nil {
		hb.dir.Close()
	}
}

func (hb *handleBuilder) commitFile(t *fdTable) (int, error) {
	h := &FileHandle{
		ID:    uuid.Must(uuid.NewV7()).String(),
		Path:  hb.path,
		state: hb.file,
		mount: hb.mount,
	}

	fd, err := t.alloc(h)
	if err != nil {
		return -1, err
	}

	hb.committed = true
	hb.mount.open.Add(1)
	return fd, nil
}

func (hb *handleBuilder) commitDir(t *fdTable, cursor *mountCursor) (int, error) {
	h := &DirHandle{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Path:   hb.path,
		state:  hb.dir,
		mount:  hb.mount,
		cursor: cursor,
	}
	if cursor != nil {
		h.listed = make(map[string]struct{})
	}

	fd, err := t.alloc(h)
	if err != nil {
		return -1, err
	}

	hb.committed = true
	hb.mount.open.Add(1)
	return fd, nil
}
