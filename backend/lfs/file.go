package lfs

import (
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
)

type file struct {
	backend.UnsupportedFile

	id     string
	b      *Backend
	ef     EngineFile
	path   string
	flags  data.OpenFlag
	closed bool
}

// lock takes the backend mutex and fails with EBADF once the file was
// closed, including by an unmount.
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

	n, err := f.ef.Read(p)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	n, err := f.ef.Write(p)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (f *file) Writev(iov [][]byte) (int, error) {
	return backend.WritevAll(f, iov)
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	w, err := toWhence(whence)
	if err != nil {
		return 0, err
	}

	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.b.mu.Unlock()

	pos, err := f.ef.Seek(offset, w)
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

	return f.b.toStatUnsafe(&Info{
		Type: TypeReg,
		Size: f.ef.Size(),
	}), nil
}

func (f *file) Sync() error {
	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	return translate(f.ef.Sync())
}

func (f *file) Truncate(size int64) error {
	if size < 0 {
		return data.EINVAL
	}

	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	return translate(f.ef.Truncate(size))
}

// Close releases the engine file and removes it from the open-file list.
// The file is released even when the engine reports an error.
func (f *file) Close() error {
	if err := f.lock(); err != nil {
		return err
	}
	defer f.b.mu.Unlock()

	err := f.ef.Close()

	f.closed = true
	delete(f.b.files, f.id)

	return translate(err)
}
