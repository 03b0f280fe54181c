package romfs

import (
	"context"
	"io/fs"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

// Open opens a file for reading. Any flag asking for modification fails with EROFS.
func (b *Backend) Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (backend.File, error) {
	if !flags.IsReadOnly() || flags.HasCreate() || flags.HasExcl() || flags.HasTrunc() || flags.HasAppend() {
		return nil, data.EROFS
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	ff, err := b.image.Open(imagePath(path))
	if err != nil {
		return nil, translate(err)
	}

	info, err := ff.Stat()
	if err != nil {
		ff.Close()
		return nil, translate(err)
	}
	if info.IsDir() {
		ff.Close()
		return nil, translate(ErrIsDir)
	}

	f := &file{
		b:    b,
		ff:   ff,
		path: path,
	}
	b.files[f] = struct{}{}

	b.log.Debug("Open: opened %s", path)
	return f, nil
}

func (b *Backend) Stat(ctx context.Context, path string) (*data.Stat, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	info, err := fs.Stat(b.image, imagePath(path))
	if err != nil {
		return nil, translate(err)
	}
	return toStat(info), nil
}

func (b *Backend) Unlink(ctx context.Context, path string) error {
	return data.EROFS
}

func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	return data.EROFS
}

func (b *Backend) Mkdir(ctx context.Context, path string, mode data.FileMode) error {
	return data.EROFS
}

func (b *Backend) Rmdir(ctx context.Context, path string) error {
	return data.EROFS
}

func (b *Backend) Truncate(ctx context.Context, path string, size int64) error {
	return data.EROFS
}

// OpenDir snapshots the entries of a directory of the image.
func (b *Backend) OpenDir(ctx context.Context, path string) (backend.Dir, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	name := imagePath(path)
	info, err := fs.Stat(b.image, name)
	if err != nil {
		return nil, translate(err)
	}
	if !info.IsDir() {
		return nil, translate(ErrNotDir)
	}

	entries, err := fs.ReadDir(b.image, name)
	if err != nil {
		return nil, translate(err)
	}

	d := &dir{}
	for _, e := range entries {
		ent := data.Dirent{
			Name: e.Name(),
			Type: data.DT_REG,
		}
		if e.IsDir() {
			ent.Type = data.DT_DIR
		} else if fi, err := e.Info(); err == nil {
			ent.Size = fi.Size()
		}
		d.entries = append(d.entries, ent)
	}
	return d, nil
}

// Access reports EROFS for write access to an existing path.
func (b *Backend) Access(ctx context.Context, path string, amode int) error {
	if _, err := b.Stat(ctx, path); err != nil {
		return err
	}
	if amode&data.W_OK != 0 {
		return data.EROFS
	}
	return nil
}

func toStat(info fs.FileInfo) *data.Stat {
	st := &data.Stat{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    0444,
	}
	if info.IsDir() {
		st.Mode = data.ModeDir | 0555
		st.Size = 0
	}
	return st
}
