package tty_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/backend/tty"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
	"github.com/mwantia/rtvfs/uart"
	"golang.org/x/sys/unix"
)

func newTestBackend(t *testing.T, dev tty.Device, opts ...tty.BackendOption) *tty.Backend {
	l := log.NewLogger("tty", log.Error, "", false)
	l.SetOutput(io.Discard)

	b, err := tty.NewBackend(dev, append([]tty.BackendOption{tty.WithLogger(l)}, opts...)...)
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	return b
}

func TestBackend_OpenUnits(t *testing.T) {
	b := newTestBackend(t, uart.NewLoopback(3))

	for _, p := range []string{"/0", "/1", "/2"} {
		if _, err := b.Open(t.Context(), p, data.O_RDWR, 0); err != nil {
			t.Fatalf("Open %s failed: %v", p, err)
		}
	}
	for _, p := range []string{"/3", "/", "/01", "/x", "/-1"} {
		if _, err := b.Open(t.Context(), p, data.O_RDWR, 0); err != data.ENOENT {
			t.Fatalf("expected ENOENT for %s, got %v", p, err)
		}
	}
}

func TestBackend_NonBlockingRead(t *testing.T) {
	dev := uart.NewLoopback(1, uart.WithoutEcho())
	b := newTestBackend(t, dev)

	f, err := b.Open(t.Context(), "/0", data.O_RDONLY|data.O_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	buf := make([]byte, 8)
	for i := 0; i < 3; i++ {
		if n, err := f.Read(buf); n != 0 || err != data.EAGAIN {
			t.Fatalf("read %d: expected EAGAIN, got %d, %v", i, n, err)
		}
	}

	dev.Feed(0, []byte("abc"))
	n, err := f.Read(buf)
	if err != nil || string(buf[:n]) != "abc" {
		t.Fatalf("Read returned %q, %v", buf[:n], err)
	}
}

func TestBackend_BlockingShortRead(t *testing.T) {
	dev := uart.NewLoopback(1, uart.WithoutEcho())
	b := newTestBackend(t, dev)

	f, _ := b.Open(t.Context(), "/0", data.O_RDONLY, 0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		dev.Feed(0, []byte("hi"))
	}()

	buf := make([]byte, 16)
	n, err := f.Read(buf)
	if err != nil || string(buf[:n]) != "hi" {
		t.Fatalf("Read returned %q, %v", buf[:n], err)
	}
}

func TestBackend_ReadFailure(t *testing.T) {
	dev := uart.NewLoopback(1)
	b := newTestBackend(t, dev)

	f, _ := b.Open(t.Context(), "/0", data.O_RDONLY, 0)
	dev.Close()

	if _, err := f.Read(make([]byte, 1)); err != data.EIO {
		t.Fatalf("expected EIO, got %v", err)
	}
}

func TestBackend_Write(t *testing.T) {
	tests := map[string]struct {
		opts []tty.BackendOption
		want string
	}{
		"crlf":  {nil, "a\r\nb"},
		"plain": {[]tty.BackendOption{tty.WithCRLF(false)}, "a\nb"},
	}

	for name, tc := range tests {
		t.Run(name, func(tst *testing.T) {
			dev := uart.NewLoopback(1, uart.WithoutEcho())
			mirror := &bytes.Buffer{}
			b := newTestBackend(t, dev, append(tc.opts, tty.WithMirror(mirror))...)

			f, err := b.Open(tst.Context(), "/0", data.O_WRONLY, 0)
			if err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			if n, err := f.Write([]byte("a\nb")); err != nil || n != 3 {
				tst.Fatalf("Write returned %d, %v", n, err)
			}
			if got := string(dev.Drain(0)); got != tc.want {
				tst.Fatalf("got %q, want %q", got, tc.want)
			}
			if mirror.String() != tc.want {
				tst.Fatalf("mirror got %q, want %q", mirror.String(), tc.want)
			}
		})
	}
}

func TestBackend_Writev(t *testing.T) {
	dev := uart.NewLoopback(1, uart.WithoutEcho())
	b := newTestBackend(t, dev)

	f, _ := b.Open(t.Context(), "/0", data.O_WRONLY, 0)
	n, err := f.Writev([][]byte{[]byte("ab\n"), nil, []byte("c")})
	if err != nil || n != 4 {
		t.Fatalf("Writev returned %d, %v", n, err)
	}
	if got := string(dev.Drain(0)); got != "ab\nc" {
		t.Fatalf("writev must not convert line endings, got %q", got)
	}
}

func TestBackend_FstatFcntl(t *testing.T) {
	b := newTestBackend(t, uart.NewLoopback(1))

	f, _ := b.Open(t.Context(), "/0", data.O_RDWR, 0)

	st, err := f.Stat()
	if err != nil || !st.Mode.IsCharDevice() {
		t.Fatalf("Stat returned %+v, %v", st, err)
	}

	flags, err := f.Fcntl(data.F_GETFL, 0)
	if err != nil || data.OpenFlag(flags) != data.O_RDWR {
		t.Fatalf("F_GETFL returned 0x%x, %v", flags, err)
	}
	if _, err := f.Fcntl(data.F_SETFL, int(data.O_RDWR|data.O_NONBLOCK)); err != nil {
		t.Fatalf("F_SETFL failed: %v", err)
	}
	if _, err := f.Read(make([]byte, 1)); err != data.EAGAIN {
		t.Fatalf("expected EAGAIN after F_SETFL, got %v", err)
	}
	if _, err := f.Fcntl(99, 0); err != data.ENOSYS {
		t.Fatalf("expected ENOSYS, got %v", err)
	}
	if _, err := f.Seek(0, data.SEEK_SET); err != data.ENOSYS {
		t.Fatalf("expected ENOSYS, got %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestBackend_Select(t *testing.T) {
	dev := uart.NewLoopback(2, uart.WithoutEcho(), uart.WithTxCapacity(1))
	b := newTestBackend(t, dev)

	dev.Feed(1, []byte("x"))
	dev.PutByte(0, 'y')

	var r, w unix.FdSet
	r.Set(0)
	r.Set(1)
	w.Set(0)
	w.Set(1)

	timeout := 5 * time.Millisecond
	n, err := b.Select(2, &r, &w, nil, &timeout)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 ready descriptors, got %d", n)
	}
	if r.IsSet(0) || !r.IsSet(1) {
		t.Fatalf("only unit 1 is readable")
	}
	if w.IsSet(0) || !w.IsSet(1) {
		t.Fatalf("only unit 1 is writable")
	}

	var _ backend.Selecter = b
}

func TestBackend_OpenDir(t *testing.T) {
	b := newTestBackend(t, uart.NewLoopback(2))

	d, err := b.OpenDir(t.Context(), "/")
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	var ent data.Dirent
	for i := 0; i < 2; i++ {
		ok, err := d.Next(&ent)
		if !ok || err != nil || ent.Type != data.DT_CHR {
			t.Fatalf("Next %d returned %+v, %v, %v", i, ent, ok, err)
		}
	}
	if ok, _ := d.Next(&ent); ok {
		t.Fatalf("expected end of directory")
	}
	if _, err := b.OpenDir(t.Context(), "/0"); err != data.ENOTDIR {
		t.Fatalf("expected ENOTDIR, got %v", err)
	}
}
