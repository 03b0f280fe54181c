package vfs

import (
	"context"

	"github.com/mwantia/rtvfs/data"
)

// Open opens path on the backend owning it and returns a new descriptor.
// Nothing is left behind when any step fails.
func (v *VirtualFileSystem) Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (int, error) {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return -1, err
	}

	hb := &handleBuilder{
		mount: entry,
		path:  path,
	}
	defer hb.Release()

	hb.file, err = entry.backend.Open(ctx, rel, flags, mode)
	if err != nil {
		v.log.Debug("Open: failed to open %s on '%s': %v", path, entry.backend.Name(), err)
		return -1, err
	}

	fd, err := hb.commitFile(v.fds)
	if err != nil {
		v.log.Warn("Open: no descriptor left for %s: %v", path, err)
		return -1, err
	}

	v.log.Debug("Open: opened %s as fd %d", path, fd)
	return fd, nil
}

// file returns the file handle behind fd.
func (v *VirtualFileSystem) file(fd int) (*FileHandle, error) {
	h, err := v.fds.lookup(fd)
	if err != nil {
		return nil, err
	}

	fh, ok := h.(*FileHandle)
	if !ok {
		return nil, ErrBadDescriptor
	}
	return fh, nil
}

func (v *VirtualFileSystem) Read(fd int, p []byte) (int, error) {
	fh, err := v.file(fd)
	if err != nil {
		return 0, err
	}

	v.log.Debug("Read: reading up to %d bytes from %s", len(p), fh.Path)
	return fh.state.Read(p)
}

func (v *VirtualFileSystem) Write(fd int, p []byte) (int, error) {
	fh, err := v.file(fd)
	if err != nil {
		return 0, err
	}

	v.log.Debug("Write: writing %d bytes to %s", len(p), fh.Path)
	return fh.state.Write(p)
}

func (v *VirtualFileSystem) Writev(fd int, iov [][]byte) (int, error) {
	fh, err := v.file(fd)
	if err != nil {
		return 0, err
	}

	return fh.state.Writev(iov)
}

func (v *VirtualFileSystem) Lseek(fd int, offset int64, whence int) (int64, error) {
	fh, err := v.file(fd)
	if err != nil {
		return 0, err
	}

	return fh.state.Seek(offset, whence)
}

func (v *VirtualFileSystem) Fstat(fd int) (*data.Stat, error) {
	fh, err := v.file(fd)
	if err != nil {
		return nil, err
	}

	return fh.state.Stat()
}

func (v *VirtualFileSystem) Fsync(fd int) error {
	fh, err := v.file(fd)
	if err != nil {
		return err
	}

	return fh.state.Sync()
}

func (v *VirtualFileSystem) Ftruncate(fd int, size int64) error {
	fh, err := v.file(fd)
	if err != nil {
		return err
	}

	return fh.state.Truncate(size)
}

// Fcntl supports F_GETFL and F_SETFL on backends that keep descriptor flags.
func (v *VirtualFileSystem) Fcntl(fd, cmd, arg int) (int, error) {
	fh, err := v.file(fd)
	if err != nil {
		return 0, err
	}

	return fh.state.Fcntl(cmd, arg)
}

// Close releases fd and the handle behind it. The handle is released even
// when the backend fails to close it; that error is still returned.
func (v *VirtualFileSystem) Close(fd int) error {
	h, err := v.fds.release(fd)
	if err != nil {
		return err
	}

	switch h := h.(type) {
	case *FileHandle:
		defer h.mount.open.Add(-1)

		if err := h.state.Close(); err != nil {
			v.log.Warn("Close: backend failed to close %s: %v", h.Path, err)
			return err
		}
	case *DirHandle:
		defer h.mount.open.Add(-1)

		if err := h.state.Close(); err != nil {
			v.log.Warn("Close: backend failed to close directory %s: %v", h.Path, err)
			return err
		}
	}

	v.log.Debug("Close: released fd %d", fd)
	return nil
}
