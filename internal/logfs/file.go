package logfs

import (
	"time"

	"github.com/mwantia/rtvfs/backend/lfs"
)

type file struct {
	fs     *FS
	n      *node
	flags  lfs.Flag
	pos    int64
	dirty  bool
	closed bool
}

func (f *file) Read(p []byte) (int, error) {
	if f.closed || !f.flags.CanRead() {
		return 0, lfs.ErrBadF
	}
	if f.pos >= int64(len(f.n.data)) {
		return 0, nil
	}

	n := copy(p, f.n.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	if f.closed || !f.flags.CanWrite() {
		return 0, lfs.ErrBadF
	}

	if f.flags&lfs.O_APPEND != 0 {
		f.pos = int64(len(f.n.data))
	}

	end := f.pos + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}

	copy(f.n.data[f.pos:], p)
	f.pos = end

	if len(p) > 0 {
		f.n.modTime = time.Now()
		f.dirty = true
	}
	return len(p), nil
}

func (f *file) Seek(offset int64, whence lfs.Whence) (int64, error) {
	if f.closed {
		return 0, lfs.ErrBadF
	}

	var pos int64
	switch whence {
	case lfs.SeekSet:
		pos = offset
	case lfs.SeekCur:
		pos = f.pos + offset
	case lfs.SeekEnd:
		pos = int64(len(f.n.data)) + offset
	default:
		return 0, lfs.ErrInval
	}

	if pos < 0 {
		return 0, lfs.ErrInval
	}

	f.pos = pos
	return pos, nil
}

func (f *file) Size() int64 {
	return int64(len(f.n.data))
}

func (f *file) Sync() error {
	if f.closed {
		return lfs.ErrBadF
	}
	if !f.dirty || !f.fs.mounted {
		return nil
	}

	if err := f.fs.commit(); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

func (f *file) Truncate(size int64) error {
	if f.closed || !f.flags.CanWrite() {
		return lfs.ErrBadF
	}
	if size < 0 {
		return lfs.ErrInval
	}

	if size <= int64(len(f.n.data)) {
		f.n.data = f.n.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, f.n.data)
		f.n.data = grown
	}

	f.n.modTime = time.Now()
	f.dirty = true
	return nil
}

func (f *file) Close() error {
	if f.closed {
		return lfs.ErrBadF
	}

	err := f.Sync()
	f.closed = true
	return err
}
