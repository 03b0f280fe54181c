package romfs

import (
	"io"
	"io/fs"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

type file struct {
	backend.UnsupportedFile

	b      *Backend
	ff     fs.File
	path   string
	closed bool
}

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

	n, err := f.ff.Read(p)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return n, translate(err)
	}
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	return 0, data.EROFS
}

func (f *file) Writev(iov [][]byte) (int, error) {
	return 0, data.EROFS
}

// Seek needs an image whose files implement io.Seeker.
func (f *file) Seek(offset int64, whence int) (int64, error) {
	if whence != data.SEEK_SET && whence != data.SEEK_CUR && whence != data.SEEK_END {
		return 0, data.EINVAL
	}

	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	s, ok := f.ff.(io.Seeker)
	if !ok {
		return 0, data.ESPIPE
	}

	pos, err := s.Seek(offset, whence)
	if err != nil {
		return 0, translate(err)
	}
	return pos, nil
}

func (f *file) Stat() (*data.Stat, error) {
	if err := f.lock(); err != nil {
		return nil, err
	}
	defer f.b.mu.Unlock()

	info, err := f.ff.Stat()
	if err != nil {
		return nil, translate(err)
	}
	return toStat(info), nil
}

func (f *file) Sync() error {
	if err := f.lock(); err != nil {
		return err
	}
	f.b.mu.Unlock()
	return nil
}

func (f *file) Truncate(size int64) error {
	return data.EROFS
}

func (f *file) Close() error {
	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	return f.closeUnsafe()
}

// closeUnsafe assumes f.b.mu is held.
func (f *file) closeUnsafe() error {
	f.closed = true
	delete(f.b.files, f)
	return translate(f.ff.Close())
}
