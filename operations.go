package vfs

import (
	"context"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

// Stat returns file information for the given path.
func (v *VirtualFileSystem) Stat(ctx context.Context, path string) (*data.Stat, error) {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return nil, err
	}

	return entry.backend.Stat(ctx, rel)
}

// Unlink removes a file.
func (v *VirtualFileSystem) Unlink(ctx context.Context, path string) error {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return err
	}

	v.log.Debug("Unlink: removing %s", path)
	return entry.backend.Unlink(ctx, rel)
}

// Rename moves src to dst. Both paths must belong to the same backend.
func (v *VirtualFileSystem) Rename(ctx context.Context, src, dst string) error {
	srcEntry, srcRel, err := v.resolve(src)
	if err != nil {
		return err
	}

	dstEntry, dstRel, err := v.resolve(dst)
	if err != nil {
		return err
	}

	if srcEntry != dstEntry {
		return ErrCrossMount
	}

	v.log.Debug("Rename: moving %s to %s", src, dst)
	return srcEntry.backend.Rename(ctx, srcRel, dstRel)
}

func (v *VirtualFileSystem) Mkdir(ctx context.Context, path string, mode data.FileMode) error {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return err
	}

	v.log.Debug("Mkdir: creating %s", path)
	return entry.backend.Mkdir(ctx, rel, mode)
}

func (v *VirtualFileSystem) Rmdir(ctx context.Context, path string) error {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return err
	}

	v.log.Debug("Rmdir: removing %s", path)
	return entry.backend.Rmdir(ctx, rel)
}

func (v *VirtualFileSystem) Access(ctx context.Context, path string, amode int) error {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return err
	}

	return entry.backend.Access(ctx, rel, amode)
}

// Truncate resizes the file at path on backends that support it by path.
func (v *VirtualFileSystem) Truncate(ctx context.Context, path string, size int64) error {
	entry, rel, err := v.resolve(path)
	if err != nil {
		return err
	}

	t, ok := entry.backend.(backend.Truncater)
	if !ok {
		return ErrUnsupported
	}

	v.log.Debug("Truncate: resizing %s to %d bytes", path, size)
	return t.Truncate(ctx, rel, size)
}
