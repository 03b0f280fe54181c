package romfs_test

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/mwantia/rtvfs/backend/romfs"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

func testImage() fstest.MapFS {
	return fstest.MapFS{
		"boot.lua":       {Data: []byte("print('hello')\n")},
		"lib/json.lua":   {Data: []byte("return {}\n")},
		"lib/socket.lua": {Data: []byte("return nil\n")},
	}
}

func newMounted(t *testing.T) *romfs.Backend {
	l := log.NewLogger("romfs", log.Error, "", false)
	l.SetOutput(io.Discard)

	b, err := romfs.NewBackend(testImage(), romfs.WithLogger(l))
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	if err := b.Mount(t.Context()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	return b
}

func TestBackend_ReadFile(t *testing.T) {
	b := newMounted(t)

	f, err := b.Open(t.Context(), "/boot.lua", data.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	buf := make([]byte, 64)
	n, err := f.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "print('hello')\n" {
		t.Fatalf("unexpected content %q", buf[:n])
	}

	if n, err := f.Read(buf); n != 0 || err != nil {
		t.Fatalf("expected end of file, got %d, %v", n, err)
	}
	if pos, err := f.Seek(6, data.SEEK_SET); err != nil || pos != 6 {
		t.Fatalf("Seek returned %d, %v", pos, err)
	}

	st, err := f.Stat()
	if err != nil || st.Size != 15 || st.IsDir() {
		t.Fatalf("Stat returned %+v, %v", st, err)
	}
}

func TestBackend_ReadOnly(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	tests := map[string]func() error{
		"open-write": func() error {
			_, err := b.Open(ctx, "/boot.lua", data.O_WRONLY, 0)
			return err
		},
		"open-create": func() error {
			_, err := b.Open(ctx, "/new.lua", data.O_RDONLY|data.O_CREAT, 0)
			return err
		},
		"unlink":   func() error { return b.Unlink(ctx, "/boot.lua") },
		"rename":   func() error { return b.Rename(ctx, "/boot.lua", "/init.lua") },
		"mkdir":    func() error { return b.Mkdir(ctx, "/tmp", 0755) },
		"rmdir":    func() error { return b.Rmdir(ctx, "/lib") },
		"truncate": func() error { return b.Truncate(ctx, "/boot.lua", 0) },
		"access":   func() error { return b.Access(ctx, "/boot.lua", data.W_OK) },
		"format":   func() error { return b.Format(ctx) },
		"write": func() error {
			f, err := b.Open(ctx, "/boot.lua", data.O_RDONLY, 0)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = f.Write([]byte("x"))
			return err
		},
	}

	for name, fn := range tests {
		t.Run(name, func(tst *testing.T) {
			if err := fn(); err != data.EROFS {
				tst.Fatalf("expected EROFS, got %v", err)
			}
		})
	}
}

func TestBackend_Errors(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	if _, err := b.Open(ctx, "/missing", data.O_RDONLY, 0); err != data.ENOENT {
		t.Fatalf("expected ENOENT, got %v", err)
	}
	if _, err := b.Open(ctx, "/lib", data.O_RDONLY, 0); err != data.EISDIR {
		t.Fatalf("expected EISDIR, got %v", err)
	}
	if _, err := b.OpenDir(ctx, "/boot.lua"); err != data.ENOTDIR {
		t.Fatalf("expected ENOTDIR, got %v", err)
	}
	if err := b.Access(ctx, "/lib/json.lua", data.R_OK); err != nil {
		t.Fatalf("Access failed: %v", err)
	}
}

func TestBackend_OpenDir(t *testing.T) {
	b := newMounted(t)

	d, err := b.OpenDir(t.Context(), "/")
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	defer d.Close()

	want := []struct {
		name string
		typ  data.DirentType
	}{
		{"boot.lua", data.DT_REG},
		{"lib", data.DT_DIR},
	}

	var ent data.Dirent
	for i, w := range want {
		ok, err := d.Next(&ent)
		if err != nil || !ok {
			t.Fatalf("Next %d returned %v, %v", i, ok, err)
		}
		if ent.Name != w.name || ent.Type != w.typ {
			t.Fatalf("unexpected entry %+v, want %s", ent, w.name)
		}
	}
	if ok, _ := d.Next(&ent); ok {
		t.Fatalf("expected end of directory, got %+v", ent)
	}
}

func TestBackend_UnmountClosesFiles(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	f, err := b.Open(ctx, "/boot.lua", data.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := b.Unmount(ctx); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}
	if _, err := f.Read(make([]byte, 1)); err != data.EBADF {
		t.Fatalf("expected EBADF, got %v", err)
	}
	if _, err := b.Stat(ctx, "/"); err != data.ENODEV {
		t.Fatalf("expected ENODEV, got %v", err)
	}
}

func TestToErrno_Total(t *testing.T) {
	for code := -255; code <= 255; code++ {
		errno := romfs.ToErrno(code)
		if (code == 0) != (errno == 0) {
			t.Fatalf("code %d mapped to %v", code, errno)
		}
	}
}
