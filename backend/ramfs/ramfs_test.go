package ramfs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/mwantia/rtvfs/backend/ramfs"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

func testLogger() *log.Logger {
	l := log.NewLogger("ramfs", log.Error, "", false)
	l.SetOutput(io.Discard)
	return l
}

func newMounted(t *testing.T, opts ...ramfs.BackendOption) *ramfs.Backend {
	opts = append([]ramfs.BackendOption{ramfs.WithLogger(testLogger())}, opts...)

	b, err := ramfs.NewBackend(opts...)
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	if err := b.Mount(t.Context()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	return b
}

func TestBackend_RoundTrip(t *testing.T) {
	b := newMounted(t)
	bs := int(b.BlockSize())

	for _, n := range []int{0, 1, bs - 1, bs, bs + 1} {
		payload := bytes.Repeat([]byte{byte(n)}, n)

		f, err := b.Open(t.Context(), "/data", data.O_CREAT|data.O_TRUNC|data.O_RDWR, 0666)
		if err != nil {
			t.Fatalf("Open failed for n=%d: %v", n, err)
		}
		if written, err := f.Write(payload); err != nil || written != n {
			t.Fatalf("Write returned %d, %v for n=%d", written, err, n)
		}
		if _, err := f.Seek(0, data.SEEK_SET); err != nil {
			t.Fatalf("Seek failed: %v", err)
		}

		buf := make([]byte, n+16)
		read, err := f.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(buf[:read], payload) {
			t.Fatalf("round trip mismatch for n=%d: got %d bytes", n, read)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		st, err := b.Stat(t.Context(), "/data")
		if err != nil || st.Size != int64(n) {
			t.Fatalf("Stat returned %+v, %v for n=%d", st, err, n)
		}
	}
}

func TestBackend_OpenFlags(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	if _, err := b.Open(ctx, "/missing", data.O_RDONLY, 0); err != data.ENOENT {
		t.Fatalf("expected ENOENT, got %v", err)
	}

	f, err := b.Open(ctx, "/file", data.O_CREAT|data.O_WRONLY, 0666)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := f.Read(make([]byte, 1)); err != data.EBADF {
		t.Fatalf("expected EBADF reading a write-only file, got %v", err)
	}
	f.Write([]byte("abc"))
	f.Close()

	if _, err := b.Open(ctx, "/file", data.O_CREAT|data.O_EXCL|data.O_WRONLY, 0666); err != data.EEXIST {
		t.Fatalf("expected EEXIST, got %v", err)
	}
	if _, err := b.Open(ctx, "/", data.O_RDONLY, 0); err != data.EISDIR {
		t.Fatalf("expected EISDIR, got %v", err)
	}
	if _, err := b.Open(ctx, "/nodir/file", data.O_CREAT|data.O_WRONLY, 0666); err != data.ENOENT {
		t.Fatalf("expected ENOENT for missing parent, got %v", err)
	}

	f, err = b.Open(ctx, "/file", data.O_WRONLY|data.O_APPEND, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f.Seek(0, data.SEEK_SET)
	f.Write([]byte("def"))
	f.Close()

	st, _ := b.Stat(ctx, "/file")
	if st.Size != 6 {
		t.Fatalf("append must write at the end, size is %d", st.Size)
	}
}

func TestBackend_NoSpace(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t, ramfs.WithSize(1024), ramfs.WithBlockSize(512))

	f, err := b.Open(ctx, "/big", data.O_CREAT|data.O_RDWR, 0666)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if _, err := f.Write(make([]byte, 1024)); err != nil {
		t.Fatalf("Write of the full capacity failed: %v", err)
	}
	if n, err := f.Write([]byte{1}); err != data.ENOSPC || n != 0 {
		t.Fatalf("expected ENOSPC, got %d, %v", n, err)
	}
	if total, used := b.Blocks(); total != 2 || used != 2 {
		t.Fatalf("unexpected blocks %d/%d", used, total)
	}

	if err := f.Truncate(100); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if _, used := b.Blocks(); used != 1 {
		t.Fatalf("truncate must release blocks, %d used", used)
	}
}

func TestBackend_Directories(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	for _, p := range []string{"/b", "/a", "/a/nested"} {
		if err := b.Mkdir(ctx, p, 0755); err != nil {
			t.Fatalf("Mkdir %s failed: %v", p, err)
		}
	}
	f, _ := b.Open(ctx, "/c", data.O_CREAT|data.O_WRONLY, 0666)
	f.Close()

	if err := b.Mkdir(ctx, "/a", 0755); err != data.EEXIST {
		t.Fatalf("expected EEXIST, got %v", err)
	}
	if err := b.Mkdir(ctx, "/c/x", 0755); err != data.ENOTDIR {
		t.Fatalf("expected ENOTDIR, got %v", err)
	}

	d, err := b.OpenDir(ctx, "/")
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	var names []string
	var ent data.Dirent
	for {
		ok, err := d.Next(&ent)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		names = append(names, ent.Name)
	}
	if got := len(names); got != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("unexpected entries %v", names)
	}
	if pos, _ := d.Tell(); pos != 3 {
		t.Fatalf("unexpected position %d", pos)
	}
	d.Close()

	if err := b.Rmdir(ctx, "/a"); err != data.ENOTEMPTY {
		t.Fatalf("expected ENOTEMPTY, got %v", err)
	}
	if err := b.Rmdir(ctx, "/c"); err != data.ENOTDIR {
		t.Fatalf("expected ENOTDIR, got %v", err)
	}
	if err := b.Rmdir(ctx, "/"); err != data.EBUSY {
		t.Fatalf("expected EBUSY, got %v", err)
	}
	if err := b.Unlink(ctx, "/b"); err != data.EISDIR {
		t.Fatalf("expected EISDIR, got %v", err)
	}

	if err := b.Rename(ctx, "/a", "/moved"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, err := b.Stat(ctx, "/moved/nested"); err != nil {
		t.Fatalf("descendants must move with the directory: %v", err)
	}
	if err := b.Rename(ctx, "/moved", "/moved/nested/x"); err != data.EINVAL {
		t.Fatalf("expected EINVAL, got %v", err)
	}
}

func TestBackend_UnlinkOpenFile(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	f, _ := b.Open(ctx, "/busy", data.O_CREAT|data.O_RDWR, 0666)
	if err := b.Unlink(ctx, "/busy"); err != data.EBUSY {
		t.Fatalf("expected EBUSY, got %v", err)
	}
	f.Close()
	if err := b.Unlink(ctx, "/busy"); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
}

func TestBackend_Lifecycle(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	if err := b.Mount(ctx); err != data.EBUSY {
		t.Fatalf("expected EBUSY, got %v", err)
	}

	f, _ := b.Open(ctx, "/keep", data.O_CREAT|data.O_RDWR, 0666)
	if err := b.Format(ctx); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if _, err := f.Write([]byte("x")); err != data.EBADF {
		t.Fatalf("expected EBADF after format, got %v", err)
	}
	if _, err := b.Stat(ctx, "/keep"); err != data.ENOENT {
		t.Fatalf("expected ENOENT after format, got %v", err)
	}

	b.Unmount(ctx)
	if _, err := b.Stat(ctx, "/"); err != data.ENODEV {
		t.Fatalf("expected ENODEV, got %v", err)
	}
}

func TestBackend_Truncate(t *testing.T) {
	ctx := t.Context()
	b := newMounted(t)

	f, _ := b.Open(ctx, "/t", data.O_CREAT|data.O_RDWR, 0666)
	f.Write([]byte("hello"))
	f.Close()

	if err := b.Truncate(ctx, "/t", 2); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if st, _ := b.Stat(ctx, "/t"); st.Size != 2 {
		t.Fatalf("unexpected size %d", st.Size)
	}
	if err := b.Truncate(ctx, "/", 0); err != data.EISDIR {
		t.Fatalf("expected EISDIR, got %v", err)
	}
}

func TestToErrno_Total(t *testing.T) {
	for code := -255; code <= 255; code++ {
		errno := ramfs.ToErrno(code)
		if code == 0 {
			if errno != 0 {
				t.Fatalf("OK must map to 0, got %v", errno)
			}
			continue
		}
		if errno == 0 {
			t.Fatalf("code %d mapped to success", code)
		}
	}

	if ramfs.ToErrno(-100) != data.ENOTSUP {
		t.Fatalf("unknown codes must map to ENOTSUP")
	}
	if ramfs.ToErrno(int(ramfs.ErrNameTooLong)) != data.ENAMETOOLONG {
		t.Fatalf("unexpected mapping for ErrNameTooLong")
	}
}

func TestToFlags(t *testing.T) {
	tests := map[string]struct {
		in   data.OpenFlag
		want ramfs.Flag
	}{
		"rdonly":        {data.O_RDONLY, ramfs.O_RDONLY},
		"wronly":        {data.O_WRONLY, ramfs.O_WRONLY},
		"rdwr":          {data.O_RDWR, ramfs.O_RDWR},
		"create-excl":   {data.O_CREAT | data.O_EXCL | data.O_WRONLY, ramfs.O_CREAT | ramfs.O_EXCL | ramfs.O_WRONLY},
		"trunc-append":  {data.O_TRUNC | data.O_APPEND | data.O_RDWR, ramfs.O_TRUNC | ramfs.O_APPEND | ramfs.O_RDWR},
		"nonblock-drop": {data.O_NONBLOCK | data.O_RDONLY, ramfs.O_RDONLY},
	}

	for name, tc := range tests {
		t.Run(name, func(tst *testing.T) {
			if got := ramfs.ToFlags(tc.in); got != tc.want {
				tst.Fatalf("got 0x%x, want 0x%x", int(got), int(tc.want))
			}
		})
	}
}
