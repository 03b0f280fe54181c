package ramfs

import (
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

type file struct {
	backend.UnsupportedFile

	id     string
	b      *Backend
	n      *inode
	path   string
	flags  Flag
	pos    int64
	closed bool
}

// lock takes the backend mutex and fails with EBADF once the file was closed.
func (f *file) lock() error {
	f.b.mu.Lock()
	if f.closed {
		f.b.mu.Unlock()
		return data.EBADF
	}
	return nil
}

func (f *file) Read(p []byte) (int, error) {
	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	if !f.flags.CanRead() {
		return 0, translate(ErrBadF)
	}
	if f.pos >= f.n.size() {
		return 0, nil
	}

	n := copy(p, f.n.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

// Write stores p at the current position, or at the end of the file in
// append mode. Nothing is written when the blocks for p are not available.
func (f *file) Write(p []byte) (int, error) {
	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	if !f.flags.CanWrite() {
		return 0, translate(ErrBadF)
	}
	if f.flags&O_APPEND != 0 {
		f.pos = f.n.size()
	}

	end := f.pos + int64(len(p))
	if end > f.n.size() {
		if err := f.b.resizeUnsafe(f.n, end); err != nil {
			return 0, translate(err)
		}
	}

	copy(f.n.data[f.pos:], p)
	f.pos = end
	return len(p), nil
}

func (f *file) Writev(iov [][]byte) (int, error) {
	return backend.WritevAll(f, iov)
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	var base int64
	switch whence {
	case data.SEEK_SET:
	case data.SEEK_CUR:
		base = f.pos
	case data.SEEK_END:
		base = f.n.size()
	default:
		return 0, data.EINVAL
	}

	pos := base + offset
	if pos < 0 {
		return 0, translate(ErrInval)
	}
	f.pos = pos
	return pos, nil
}

func (f *file) Stat() (*data.Stat, error) {
	if err := f.lock(); err != nil {
		return nil, err
	}
	defer f.b.mu.Unlock()

	return f.b.toStat(f.n), nil
}

// Sync has nothing to flush, the content already lives in memory.
func (f *file) Sync() error {
	if err := f.lock(); err != nil {
		return err
	}
	f.b.mu.Unlock()
	return nil
}

func (f *file) Truncate(size int64) error {
	if size < 0 {
		return data.EINVAL
	}

	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	if !f.flags.CanWrite() {
		return translate(ErrBadF)
	}
	return translate(f.b.resizeUnsafe(f.n, size))
}

func (f *file) Close() error {
	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	f.closeUnsafe()
	return nil
}

// closeUnsafe assumes f.b.mu is held.
func (f *file) closeUnsafe() {
	f.closed = true
	f.n.open--
	delete(f.b.files, f.id)
}
