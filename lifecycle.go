package vfs

import (
	"context"
	"path"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"golang.org/x/sync/errgroup"
)

// filesystems that claim the same flash region and can not be mounted together
var exclusive = map[string]string{
	"lfs":    "spiffs",
	"spiffs": "lfs",
}

// checkTarget normalizes a mount target, which must be "/" or a direct child of it.
func checkTarget(target string) (string, error) {
	target, err := normalize(target)
	if err != nil {
		return "", err
	}
	if data.Depth(target) > 1 {
		return "", data.ENOTDIR
	}
	return target, nil
}

// Mount mounts the filesystem called name at target. target must be the path
// the mount table assigns to that filesystem.
func (v *VirtualFileSystem) Mount(ctx context.Context, target, name string) error {
	target, err := checkTarget(target)
	if err != nil {
		return err
	}

	row, ok := v.table.Lookup(name)
	if !ok {
		return ErrNotMounted
	}
	if row.Mounted {
		return ErrAlreadyMounted
	}
	if other, ok := v.table.ForPath(target); ok && (other.Mounted || other.Name != row.Name) {
		return data.EINVAL
	}
	if row.Path != target {
		return data.EINVAL
	}
	if peer, ok := exclusive[row.Backend]; ok && v.mountedBackend(peer) {
		return data.EPERM
	}

	entry, ok := v.entryAt(row.Path)
	if !ok {
		return ErrNotMounted
	}

	if m, ok := entry.backend.(backend.Mounter); ok {
		if err := m.Mount(ctx); err != nil {
			v.log.Error("Mount: failed to mount '%s' on %s: %v", name, target, err)
			return err
		}
	}

	v.table.SetMounted(row.Name, true)
	v.log.Info("Mount: %s mounted on %s", name, target)
	return nil
}

// Unmount unmounts the filesystem mounted at target. The root can only be
// unmounted once no other filesystem with a mount lifecycle is mounted.
func (v *VirtualFileSystem) Unmount(ctx context.Context, target string) error {
	target, err := checkTarget(target)
	if err != nil {
		return err
	}

	row, ok := v.table.ForPath(target)
	if !ok {
		return data.EINVAL
	}
	if !row.Mounted {
		return ErrMountBusy
	}
	if target == "/" && v.mountedMounters() > 0 {
		return data.EPERM
	}

	entry, ok := v.entryAt(row.Path)
	if !ok {
		return data.EINVAL
	}

	m, ok := entry.backend.(backend.Mounter)
	if !ok {
		return data.EINVAL
	}

	if err := m.Unmount(ctx); err != nil {
		v.log.Error("Unmount: failed to unmount %s: %v", target, err)
		return err
	}

	v.table.SetMounted(row.Name, false)
	v.log.Info("Unmount: %s unmounted from %s", row.Name, target)
	return nil
}

// Format erases and recreates the named filesystem, leaving it mounted when
// formatting succeeds.
func (v *VirtualFileSystem) Format(ctx context.Context, name string) error {
	row, ok := v.table.Lookup(name)
	if !ok {
		return ErrNotMounted
	}

	entry, ok := v.entryAt(row.Path)
	if !ok {
		return ErrNotMounted
	}

	m, ok := entry.backend.(backend.Mounter)
	if !ok {
		return ErrUnsupported
	}

	err := m.Format(ctx)
	v.table.SetMounted(row.Name, m.Mounted())

	if err != nil {
		v.log.Error("Format: failed to format '%s': %v", name, err)
		return err
	}

	v.log.Info("Format: %s formatted", name)
	return nil
}

// MountAll mounts every registered filesystem of the mount table, the root
// first. Failures are logged and collected, the remaining rows are still mounted.
func (v *VirtualFileSystem) MountAll(ctx context.Context) error {
	errs := &data.Errors{}

	rows := v.table.Entries()
	root := v.table.Root()

	ordered := []MountPoint{root}
	for _, row := range rows {
		if row.Path != "/" {
			ordered = append(ordered, row)
		}
	}

	for _, row := range ordered {
		if row.Mounted {
			continue
		}
		if _, ok := v.entryAt(row.Path); !ok {
			continue
		}

		if err := v.Mount(ctx, row.Path, row.Name); err != nil {
			errs.Add(err)
		}
	}

	return errs.Errors()
}

// Shutdown closes every open descriptor, unmounts all filesystems with a
// mount lifecycle concurrently and finally unmounts the root.
func (v *VirtualFileSystem) Shutdown(ctx context.Context) error {
	errs := &data.Errors{}

	for _, fd := range v.fds.open() {
		errs.Add(v.Close(fd))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, row := range v.table.Entries() {
		if row.Path == "/" || !row.Mounted || !v.isMounter(row.Path) {
			continue
		}

		g.Go(func() error {
			// Every row is attempted, errors are collected instead of cancelling
			errs.Add(v.Unmount(gctx, row.Path))
			return nil
		})
	}
	g.Wait()

	root := v.table.Root()
	if root.Mounted && v.isMounter(root.Path) {
		errs.Add(v.Unmount(ctx, root.Path))
	}

	if err := errs.Errors(); err != nil {
		v.log.Warn("Shutdown: completed with %d errors", errs.Len())
		return err
	}

	v.log.Info("Shutdown: all filesystems unmounted")
	return nil
}

// HistoryFile returns the path of the shell history file: on the FAT volume
// when mounted, else on the RAM filesystem.
func (v *VirtualFileSystem) HistoryFile() (string, bool) {
	for _, name := range []string{"fat", "rfs"} {
		if row, ok := v.table.Lookup(name); ok && row.Mounted {
			return path.Join(row.Path, "history"), true
		}
	}
	return "", false
}

func (v *VirtualFileSystem) isMounter(prefix string) bool {
	entry, ok := v.entryAt(prefix)
	if !ok {
		return false
	}
	_, ok = entry.backend.(backend.Mounter)
	return ok
}

// mountedBackend reports whether a row using the backend is mounted.
func (v *VirtualFileSystem) mountedBackend(backendName string) bool {
	for _, row := range v.table.Entries() {
		if row.Backend == backendName && row.Mounted {
			return true
		}
	}
	return false
}

// mountedMounters counts the mounted non-root rows whose backend has a mount lifecycle.
func (v *VirtualFileSystem) mountedMounters() int {
	n := 0
	for _, row := range v.table.Entries() {
		if row.Path != "/" && row.Mounted && v.isMounter(row.Path) {
			n++
		}
	}
	return n
}
