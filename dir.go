package vfs

import (
	"context"

	"github.com/mwantia/rtvfs/data"
)

// OpenDir opens a directory and returns its descriptor. Listing the root of
// the filesystem mounted at "/" also yields every other mounted filesystem.
func (v *VirtualFileSystem) OpenDir(ctx context.Context, path string) (int, error) {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return -1, err
	}

	hb := &handleBuilder{
		mount: entry,
		path:  path,
	}
	defer hb.Release()

	hb.dir, err = entry.backend.OpenDir(ctx, rel)
	if err != nil {
		v.log.Debug("OpenDir: failed to open %s on '%s': %v", path, entry.backend.Name(), err)
		return -1, err
	}

	var cursor *mountCursor
	if rel == "/" && entry.prefix == "/" {
		cursor = newMountCursor(v.table)
	}

	fd, err := hb.commitDir(v.fds, cursor)
	if err != nil {
		return -1, err
	}

	v.log.Debug("OpenDir: opened %s as fd %d", path, fd)
	return fd, nil
}

func (v *VirtualFileSystem) dir(fd int) (*DirHandle, error) {
	h, err := v.fds.lookup(fd)
	if err != nil {
		return nil, err
	}

	dh, ok := h.(*DirHandle)
	if !ok {
		return nil, ErrBadDescriptor
	}
	return dh, nil
}

// ReadDir returns the next entry of the directory, or nil at the end.
// The entry is scratch space of the handle and is overwritten by the next call.
// Directories of a handle are not meant to be read from several goroutines.
func (v *VirtualFileSystem) ReadDir(fd int) (*data.Dirent, error) {
	dh, err := v.dir(fd)
	if err != nil {
		return nil, err
	}

	dh.dirent.Reset()

	if dh.cursor != nil {
		if dh.cursor.next(&dh.dirent) {
			dh.listed[dh.dirent.Name] = struct{}{}
			return &dh.dirent, nil
		}
		dh.cursor = nil
	}

	for {
		ok, err := dh.state.Next(&dh.dirent)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}

		if dh.dirent.Name == "." || dh.dirent.Name == ".." {
			continue
		}
		if _, shadowed := dh.listed[dh.dirent.Name]; shadowed {
			continue
		}
		return &dh.dirent, nil
	}
}

func (v *VirtualFileSystem) TellDir(fd int) (int64, error) {
	dh, err := v.dir(fd)
	if err != nil {
		return 0, err
	}

	return dh.state.Tell()
}

// CloseDir closes a descriptor returned by OpenDir.
func (v *VirtualFileSystem) CloseDir(fd int) error {
	if _, err := v.dir(fd); err != nil {
		return err
	}
	return v.Close(fd)
}
