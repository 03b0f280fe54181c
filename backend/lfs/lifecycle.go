package lfs

import (
	"context"

	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

// State is the lifecycle state of a backend instance.
type State int

const (
	StateUnmounted State = iota
	StateMounting
	StateFormatting
	StateMounted
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounting:
		return "mounting"
	case StateFormatting:
		return "formatting"
	case StateMounted:
		return "mounted"
	default:
		return "unknown"
	}
}

// Mount locates the partition, builds the configuration and mounts the engine.
// If the engine rejects the image, every block is erased, the partition is
// formatted and the mount is retried once.
func (b *Backend) Mount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateMounted {
		return data.EBUSY
	}

	b.state = StateMounting

	cfg, err := b.configUnsafe()
	if err != nil {
		b.state = StateUnmounted
		return err
	}

	if err := b.engine.Mount(cfg); err != nil {
		b.log.Info("lfs formatting ...")
		b.state = StateFormatting

		if err := b.eraseUnsafe(cfg); err != nil {
			b.log.Error("lfs mount error: %v", err)
			b.state = StateUnmounted
			return translate(err)
		}

		if err := b.engine.Format(cfg); err != nil {
			b.log.Error("lfs mount error: %v", err)
			b.state = StateUnmounted
			return translate(err)
		}

		b.state = StateMounting
		if err := b.engine.Mount(cfg); err != nil {
			b.log.Error("lfs mount error: %v", err)
			b.state = StateUnmounted
			return translate(err)
		}
	}

	b.cfg = cfg
	b.files = make(map[string]*file)
	b.state = StateMounted

	b.log.Info("lfs mounted on partition %s", b.options.Partition.Label)
	return nil
}

// Unmount closes every open file, unmounts the engine and releases the configuration.
func (b *Backend) Unmount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.unmountUnsafe()
}

// Format unmounts the filesystem if needed, erases the partition, writes an
// empty filesystem and mounts it again.
func (b *Backend) Format(ctx context.Context) error {
	b.mu.Lock()

	if err := b.unmountUnsafe(); err != nil {
		b.mu.Unlock()
		return err
	}

	cfg, err := b.configUnsafe()
	if err != nil {
		b.mu.Unlock()
		return err
	}

	b.state = StateFormatting
	b.log.Info("lfs formatting ...")

	if err := b.eraseUnsafe(cfg); err != nil {
		b.state = StateUnmounted
		b.mu.Unlock()
		return translate(err)
	}

	if err := b.engine.Format(cfg); err != nil {
		b.state = StateUnmounted
		b.mu.Unlock()
		return translate(err)
	}

	b.state = StateUnmounted
	b.mu.Unlock()

	return b.Mount(ctx)
}

// configUnsafe locates the partition and builds a configuration. Assumes b.mu is held.
func (b *Backend) configUnsafe() (*Config, error) {
	sel := b.options.Partition

	p, ok := b.table.Find(sel.Type, sel.Subtype, sel.Label)
	if !ok {
		b.log.Error("lfs can't find a valid partition")
		return nil, data.ENODEV
	}

	cfg, err := NewConfig(p, b.dev, b.options.Geometry)
	if err != nil {
		b.log.Error("lfs invalid geometry for partition %s: %v", p.Label, err)
		return nil, err
	}

	b.log.Info("lfs start address at 0x%x, size %s", p.Address, log.Bytes(cfg.Size()))
	b.log.Info("lfs %d blocks, %d bytes/block, %d bytes/read, %d bytes/write",
		cfg.BlockCount, cfg.BlockSize, cfg.ReadSize, cfg.ProgSize)

	return cfg, nil
}

// eraseUnsafe erases every block of the partition. Assumes b.mu is held.
func (b *Backend) eraseUnsafe(cfg *Config) error {
	for block := uint32(0); block < cfg.BlockCount; block++ {
		if err := cfg.Device.Erase(block); err != nil {
			return err
		}
	}
	return nil
}

// unmountUnsafe assumes b.mu is held.
func (b *Backend) unmountUnsafe() error {
	if b.state != StateMounted {
		return nil
	}

	for id, f := range b.files {
		if err := f.ef.Close(); err != nil {
			b.log.Warn("lfs failed to close %s while unmounting: %v", f.path, err)
		}
		f.closed = true
		delete(b.files, id)
	}

	err := b.engine.Unmount()

	b.files = nil
	b.cfg = nil
	b.state = StateUnmounted

	b.log.Info("lfs unmounted")
	return translate(err)
}
