package backend

import (
	"context"
	"time"

	"github.com/mwantia/rtvfs/data"
	"golang.org/x/sys/unix"
)

// Backend is the path-level capability set every registered filesystem or
// device implements a subset of. Paths are absolute inside the backend's own
// namespace: the registry strips the mount prefix, so the mount root is "/".
type Backend interface {
	// Returns the identifier name defined for this backend
	Name() string

	Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (File, error)
	Stat(ctx context.Context, path string) (*data.Stat, error)
	Unlink(ctx context.Context, path string) error
	Rename(ctx context.Context, src, dst string) error
	Mkdir(ctx context.Context, path string, mode data.FileMode) error
	Rmdir(ctx context.Context, path string) error
	OpenDir(ctx context.Context, path string) (Dir, error)
	Access(ctx context.Context, path string, amode int) error
}

// File is the descriptor-level capability set of an open backend file.
type File interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Writev(iov [][]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Stat() (*data.Stat, error)
	Sync() error
	Truncate(size int64) error
	Fcntl(cmd, arg int) (int, error)
	Close() error
}

// Dir iterates a backend directory. Next fills ent and returns false once
// the directory is exhausted.
type Dir interface {
	Next(ent *data.Dirent) (bool, error)
	Tell() (int64, error)
	Close() error
}

// Selecter is implemented by backends whose files can be waited on.
// The fd sets carry backend-local descriptors as returned by Descriptor.Fd.
type Selecter interface {
	Select(nfds int, r, w, e *unix.FdSet, timeout *time.Duration) (int, error)
}

// Descriptor is implemented by files that own a backend-local descriptor,
// e.g. the unit number of a character device.
type Descriptor interface {
	Fd() int
}

// Mounter is implemented by backends with a mount lifecycle.
type Mounter interface {
	Mount(ctx context.Context) error
	Unmount(ctx context.Context) error
	Format(ctx context.Context) error
	Mounted() bool
}

// Truncater is implemented by backends that can resize a file by path.
type Truncater interface {
	Truncate(ctx context.Context, path string, size int64) error
}

// UsageReporter is implemented by backends that account for their space.
// Both values are in bytes.
type UsageReporter interface {
	Usage() (total, used int64)
}
