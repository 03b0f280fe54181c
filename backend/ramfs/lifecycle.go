package ramfs

import (
	"context"

	"github.com/tidwall/btree"
)

// Mount creates an empty filesystem holding only the root directory.
func (b *Backend) Mount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mounted {
		return translate(ErrBusy)
	}

	b.log.Info("ramfs size %d Kb, block size %d bytes", b.options.Size/1024, b.options.BlockSize)

	b.keys = btree.NewMap[string, string](0)
	b.inodes = make(map[string]*inode)
	b.files = make(map[string]*file)
	b.used = 0
	b.insertUnsafe("/", true)
	b.mounted = true

	b.log.Info("ramfs mounted")
	return nil
}

// Unmount drops the content. Files that are still open fail with EBADF afterwards.
func (b *Backend) Unmount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.unmountUnsafe()
	return nil
}

// Format discards the content and mounts an empty filesystem.
func (b *Backend) Format(ctx context.Context) error {
	if err := b.Unmount(ctx); err != nil {
		return err
	}
	return b.Mount(ctx)
}

func (b *Backend) unmountUnsafe() {
	if !b.mounted {
		return
	}

	for _, f := range b.files {
		f.closeUnsafe()
	}

	b.keys = nil
	b.inodes = nil
	b.files = nil
	b.used = 0
	b.mounted = false

	b.log.Info("rfs unmounted")
}
