package backend

import (
	"context"

	"github.com/mwantia/rtvfs/data"
)

// Unsupported implements every Backend operation except Name by failing with
// ENOSYS. Backends embed it and override what they support.
type Unsupported struct{}

func (Unsupported) Open(context.Context, string, data.OpenFlag, data.FileMode) (File, error) {
	return nil, data.ENOSYS
}

func (Unsupported) Stat(context.Context, string) (*data.Stat, error) {
	return nil, data.ENOSYS
}

func (Unsupported) Unlink(context.Context, string) error {
	return data.ENOSYS
}

func (Unsupported) Rename(context.Context, string, string) error {
	return data.ENOSYS
}

func (Unsupported) Mkdir(context.Context, string, data.FileMode) error {
	return data.ENOSYS
}

func (Unsupported) Rmdir(context.Context, string) error {
	return data.ENOSYS
}

func (Unsupported) OpenDir(context.Context, string) (Dir, error) {
	return nil, data.ENOSYS
}

func (Unsupported) Access(context.Context, string, int) error {
	return data.ENOSYS
}

// UnsupportedFile is the File counterpart of Unsupported. Close succeeds.
type UnsupportedFile struct{}

func (UnsupportedFile) Read([]byte) (int, error) {
	return 0, data.ENOSYS
}

func (UnsupportedFile) Write([]byte) (int, error) {
	return 0, data.ENOSYS
}

func (UnsupportedFile) Writev([][]byte) (int, error) {
	return 0, data.ENOSYS
}

func (UnsupportedFile) Seek(int64, int) (int64, error) {
	return 0, data.ENOSYS
}

func (UnsupportedFile) Stat() (*data.Stat, error) {
	return nil, data.ENOSYS
}

func (UnsupportedFile) Sync() error {
	return data.ENOSYS
}

func (UnsupportedFile) Truncate(int64) error {
	return data.ENOSYS
}

func (UnsupportedFile) Fcntl(int, int) (int, error) {
	return 0, data.ENOSYS
}

func (UnsupportedFile) Close() error {
	return nil
}

// UnsupportedDir is the Dir counterpart of Unsupported. Close succeeds.
type UnsupportedDir struct{}

func (UnsupportedDir) Next(*data.Dirent) (bool, error) {
	return false, data.ENOSYS
}

func (UnsupportedDir) Tell() (int64, error) {
	return 0, data.ENOSYS
}

func (UnsupportedDir) Close() error {
	return nil
}

// WritevAll implements Writev on top of Write for backends with no native
// scatter write. A segment that comes up short ends the call with the count
// written so far; the error is only reported when nothing was written.
func WritevAll(f interface{ Write([]byte) (int, error) }, iov [][]byte) (int, error) {
	total := 0
	for _, seg := range iov {
		n, err := f.Write(seg)
		total += n
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if n < len(seg) {
			break
		}
	}
	return total, nil
}
