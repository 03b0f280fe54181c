package lfs

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

func (b *Backend) Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (backend.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return nil, data.ENODEV
	}

	ef, err := b.engine.Open(path, ToFlags(flags))
	if err != nil {
		return nil, translate(err)
	}

	f := &file{
		id:    uuid.Must(uuid.NewV7()).String(),
		b:     b,
		ef:    ef,
		path:  path,
		flags: flags,
	}
	b.files[f.id] = f

	b.log.Debug("Open: opened %s with flags 0x%x", path, int(flags))
	return f, nil
}

func (b *Backend) Stat(ctx context.Context, path string) (*data.Stat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return nil, data.ENODEV
	}

	info, err := b.engine.Stat(path)
	if err != nil {
		return nil, translate(err)
	}

	return b.toStatUnsafe(info), nil
}

// Unlink removes a file. Directories are refused with EPERM.
func (b *Backend) Unlink(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return data.ENODEV
	}

	info, err := b.engine.Stat(path)
	if err != nil {
		return translate(err)
	}
	if info.Type == TypeDir {
		return data.EPERM
	}

	return translate(b.engine.Remove(path))
}

func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return data.ENODEV
	}

	return translate(b.engine.Rename(src, dst))
}

func (b *Backend) Mkdir(ctx context.Context, path string, mode data.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return data.ENODEV
	}

	return translate(b.engine.Mkdir(path))
}

// Rmdir removes an empty directory. The root is busy, files are not directories.
func (b *Backend) Rmdir(ctx context.Context, path string) error {
	if path == "/" {
		return data.EBUSY
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return data.ENODEV
	}

	info, err := b.engine.Stat(path)
	if err != nil {
		return translate(err)
	}
	if info.Type != TypeDir {
		return data.ENOTDIR
	}

	return translate(b.engine.Remove(path))
}

func (b *Backend) OpenDir(ctx context.Context, path string) (backend.Dir, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return nil, data.ENODEV
	}

	ed, err := b.engine.OpenDir(path)
	if err != nil {
		return nil, translate(err)
	}

	return &dir{
		b:  b,
		ed: ed,
	}, nil
}

// Access succeeds for every existing path, there are no permissions to check.
func (b *Backend) Access(ctx context.Context, path string, amode int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateMounted {
		return data.ENODEV
	}

	_, err := b.engine.Stat(path)
	return translate(err)
}

// toStatUnsafe assumes b.mu is held and the backend is mounted.
func (b *Backend) toStatUnsafe(info *Info) *data.Stat {
	st := &data.Stat{
		Size:    info.Size,
		BlkSize: int64(b.cfg.BlockSize),
		Mode:    0666,
	}
	if info.Type == TypeDir {
		st.Mode = data.ModeDir | 0755
	}
	return st
}
