package ramfs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

func (b *Backend) Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (backend.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	nf := ToFlags(flags)
	n, err := b.openUnsafe(path, nf)
	if err != nil {
		return nil, translate(err)
	}

	f := &file{
		id:    uuid.Must(uuid.NewV7()).String(),
		b:     b,
		n:     n,
		path:  path,
		flags: nf,
	}
	n.open++
	b.files[f.id] = f

	b.log.Debug("Open: opened %s with flags 0x%x", path, int(nf))
	return f, nil
}

// openUnsafe resolves or creates the inode of path according to the native flags.
func (b *Backend) openUnsafe(path string, nf Flag) (*inode, error) {
	if err := checkName(path); err != nil {
		return nil, err
	}

	n, err := b.lookupUnsafe(path)
	if err == ErrNoEnt {
		if nf&O_CREAT == 0 {
			return nil, ErrNoEnt
		}
		if err := b.checkParentUnsafe(path); err != nil {
			return nil, err
		}
		return b.insertUnsafe(path, false), nil
	}
	if err != nil {
		return nil, err
	}

	if nf&O_CREAT != 0 && nf&O_EXCL != 0 {
		return nil, ErrExist
	}
	if n.dir {
		return nil, ErrIsDir
	}
	if nf&O_TRUNC != 0 && nf.CanWrite() {
		if err := b.resizeUnsafe(n, 0); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (b *Backend) Stat(ctx context.Context, path string) (*data.Stat, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	n, err := b.lookupUnsafe(path)
	if err != nil {
		return nil, translate(err)
	}
	return b.toStat(n), nil
}

// Unlink removes a file. Directories and files that are still open are refused.
func (b *Backend) Unlink(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return data.ENODEV
	}

	n, err := b.lookupUnsafe(path)
	if err != nil {
		return translate(err)
	}
	if n.dir {
		return translate(ErrIsDir)
	}
	if n.open > 0 {
		return translate(ErrBusy)
	}

	b.removeUnsafe(path)
	return nil
}

// Rename moves src and everything below it to dst. An existing dst is
// replaced when it is a file or an empty directory of the same kind.
func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return data.ENODEV
	}

	return translate(b.renameUnsafe(src, dst))
}

func (b *Backend) renameUnsafe(src, dst string) error {
	if src == "/" || dst == "/" {
		return ErrBusy
	}
	if err := checkName(dst); err != nil {
		return err
	}

	n, err := b.lookupUnsafe(src)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	if strings.HasPrefix(dst, src+"/") {
		return ErrInval
	}
	if err := b.checkParentUnsafe(dst); err != nil {
		return err
	}

	if existing, err := b.lookupUnsafe(dst); err == nil {
		switch {
		case n.dir && !existing.dir:
			return ErrNotDir
		case !n.dir && existing.dir:
			return ErrIsDir
		case existing.dir && len(b.childrenUnsafe(dst)) > 0:
			return ErrNotEmpty
		case existing.open > 0:
			return ErrBusy
		}
		b.removeUnsafe(dst)
	}

	moved := append([]string{src}, b.descendantsUnsafe(src)...)
	for _, key := range moved {
		id, _ := b.keys.Delete(key)
		b.keys.Set(dst+key[len(src):], id)
	}
	return nil
}

func (b *Backend) Mkdir(ctx context.Context, path string, mode data.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return data.ENODEV
	}

	if err := checkName(path); err != nil {
		return translate(err)
	}
	if _, err := b.lookupUnsafe(path); err == nil {
		return translate(ErrExist)
	}
	if err := b.checkParentUnsafe(path); err != nil {
		return translate(err)
	}

	b.insertUnsafe(path, true)
	return nil
}

// Rmdir removes an empty directory. The root is busy.
func (b *Backend) Rmdir(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return data.ENODEV
	}
	if path == "/" {
		return translate(ErrBusy)
	}

	n, err := b.lookupUnsafe(path)
	if err != nil {
		return translate(err)
	}
	if !n.dir {
		return translate(ErrNotDir)
	}
	if len(b.childrenUnsafe(path)) > 0 {
		return translate(ErrNotEmpty)
	}

	b.removeUnsafe(path)
	return nil
}

// OpenDir snapshots the entries of a directory.
func (b *Backend) OpenDir(ctx context.Context, path string) (backend.Dir, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.mounted {
		return nil, data.ENODEV
	}

	n, err := b.lookupUnsafe(path)
	if err != nil {
		return nil, translate(err)
	}
	if !n.dir {
		return nil, translate(ErrNotDir)
	}

	d := &dir{}
	for _, key := range b.childrenUnsafe(path) {
		child, _ := b.lookupUnsafe(key)

		ent := data.Dirent{
			Name: key[strings.LastIndex(key, "/")+1:],
			Type: data.DT_REG,
			Size: child.size(),
		}
		if child.dir {
			ent.Type = data.DT_DIR
			ent.Size = 0
		}
		d.entries = append(d.entries, ent)
	}
	return d, nil
}

func (b *Backend) Access(ctx context.Context, path string, amode int) error {
	_, err := b.Stat(ctx, path)
	return err
}

// Truncate resizes the file at path.
func (b *Backend) Truncate(ctx context.Context, path string, size int64) error {
	if size < 0 {
		return data.EINVAL
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return data.ENODEV
	}

	n, err := b.lookupUnsafe(path)
	if err != nil {
		return translate(err)
	}
	if n.dir {
		return translate(ErrIsDir)
	}

	return translate(b.resizeUnsafe(n, size))
}

func (b *Backend) toStat(n *inode) *data.Stat {
	st := &data.Stat{
		Size:    n.size(),
		BlkSize: b.options.BlockSize,
		ModTime: n.modTime,
		Mode:    0666,
	}
	if n.dir {
		st.Mode = data.ModeDir | 0755
		st.Size = 0
	}
	return st
}
