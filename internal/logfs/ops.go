package logfs

import (
	"path"
	"strings"
	"time"

	"github.com/mwantia/rtvfs/backend/lfs"
)

func (fs *FS) Open(p string, flags lfs.Flag) (lfs.EngineFile, error) {
	if !fs.mounted {
		return nil, lfs.ErrInval
	}
	p = clean(p)

	n, ok := fs.tree.Get(p)
	dirty := false

	switch {
	case ok && n.dir:
		return nil, lfs.ErrIsDir
	case ok && flags&lfs.O_CREAT != 0 && flags&lfs.O_EXCL != 0:
		return nil, lfs.ErrExist
	case !ok && flags&lfs.O_CREAT == 0:
		return nil, lfs.ErrNoEnt
	case !ok:
		if err := fs.checkParent(p); err != nil {
			return nil, err
		}
		n = &node{modTime: time.Now()}
		fs.tree.Set(p, n)
		dirty = true
	}

	if flags&lfs.O_TRUNC != 0 && flags.CanWrite() && len(n.data) > 0 {
		n.data = nil
		n.modTime = time.Now()
		dirty = true
	}

	return &file{
		fs:    fs,
		n:     n,
		flags: flags,
		dirty: dirty,
	}, nil
}

func (fs *FS) Stat(p string) (*lfs.Info, error) {
	if !fs.mounted {
		return nil, lfs.ErrInval
	}
	p = clean(p)

	n, ok := fs.tree.Get(p)
	if !ok {
		return nil, lfs.ErrNoEnt
	}

	info := &lfs.Info{
		Type: lfs.TypeReg,
		Size: int64(len(n.data)),
		Name: path.Base(p),
	}
	if n.dir {
		info.Type = lfs.TypeDir
		info.Size = 0
	}
	return info, nil
}

func (fs *FS) Remove(p string) error {
	if !fs.mounted {
		return lfs.ErrInval
	}
	p = clean(p)

	if p == "/" {
		return lfs.ErrInval
	}

	n, ok := fs.tree.Get(p)
	if !ok {
		return lfs.ErrNoEnt
	}
	if n.dir && len(fs.children(p)) > 0 {
		return lfs.ErrNotEmpty
	}

	fs.tree.Delete(p)
	return fs.commit()
}

func (fs *FS) Rename(src, dst string) error {
	if !fs.mounted {
		return lfs.ErrInval
	}
	src, dst = clean(src), clean(dst)

	if src == "/" || dst == "/" {
		return lfs.ErrInval
	}

	sn, ok := fs.tree.Get(src)
	if !ok {
		return lfs.ErrNoEnt
	}
	if src == dst {
		return nil
	}
	if strings.HasPrefix(dst, src+"/") {
		return lfs.ErrInval
	}
	if err := fs.checkParent(dst); err != nil {
		return err
	}

	if dn, ok := fs.tree.Get(dst); ok {
		switch {
		case sn.dir && !dn.dir:
			return lfs.ErrNotDir
		case !sn.dir && dn.dir:
			return lfs.ErrIsDir
		case dn.dir && len(fs.children(dst)) > 0:
			return lfs.ErrNotEmpty
		}
		fs.tree.Delete(dst)
	}

	// Collect first, the tree must not change while it is iterated
	moves := map[string]*node{src: sn}
	fs.tree.Ascend(src+"/", func(p string, n *node) bool {
		if !strings.HasPrefix(p, src+"/") {
			return false
		}
		moves[p] = n
		return true
	})

	for p, n := range moves {
		fs.tree.Delete(p)
		fs.tree.Set(dst+strings.TrimPrefix(p, src), n)
	}

	return fs.commit()
}

func (fs *FS) Mkdir(p string) error {
	if !fs.mounted {
		return lfs.ErrInval
	}
	p = clean(p)

	if _, ok := fs.tree.Get(p); ok {
		return lfs.ErrExist
	}
	if err := fs.checkParent(p); err != nil {
		return err
	}

	fs.tree.Set(p, &node{
		dir:     true,
		modTime: time.Now(),
	})
	return fs.commit()
}

func (fs *FS) OpenDir(p string) (lfs.EngineDir, error) {
	if !fs.mounted {
		return nil, lfs.ErrInval
	}
	p = clean(p)

	n, ok := fs.tree.Get(p)
	if !ok {
		return nil, lfs.ErrNoEnt
	}
	if !n.dir {
		return nil, lfs.ErrNotDir
	}

	entries := []lfs.Info{
		{Type: lfs.TypeDir, Name: "."},
		{Type: lfs.TypeDir, Name: ".."},
	}
	for _, name := range fs.children(p) {
		child := path.Join(p, name)
		info, err := fs.Stat(child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *info)
	}

	return &dir{entries: entries}, nil
}
