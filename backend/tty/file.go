package tty

import (
	"io"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/stream"
)

type file struct {
	backend.UnsupportedFile

	b    *Backend
	unit int
}

// Fd returns the unit number, the descriptor Select works on.
func (f *file) Fd() int {
	return f.unit
}

func (f *file) Read(p []byte) (int, error) {
	return stream.Read(f.b.ls, f.b.dev, f.unit, p)
}

func (f *file) Write(p []byte) (int, error) {
	f.b.dev.Lock(f.unit)
	defer f.b.dev.Unlock(f.unit)

	return stream.Write(f.out(), f.unit, p, f.b.options.CRLF), nil
}

func (f *file) Writev(iov [][]byte) (int, error) {
	f.b.dev.Lock(f.unit)
	defer f.b.dev.Unlock(f.unit)

	return stream.Writev(f.out(), f.unit, iov), nil
}

func (f *file) Stat() (*data.Stat, error) {
	return &data.Stat{Mode: data.ModeCharDevice | 0666}, nil
}

func (f *file) Fcntl(cmd, arg int) (int, error) {
	return stream.Fcntl(f.b.ls, f.unit, cmd, arg)
}

// out returns the device written to, mirrored when a mirror is configured.
func (f *file) out() stream.Device {
	if f.b.options.Mirror == nil {
		return f.b.dev
	}
	return mirrored{
		Device: f.b.dev,
		w:      f.b.options.Mirror,
	}
}

// mirrored copies every emitted byte to w.
type mirrored struct {
	Device
	w io.Writer
}

func (m mirrored) PutByte(fd int, c byte) {
	m.Device.PutByte(fd, c)
	m.w.Write([]byte{c})
}
