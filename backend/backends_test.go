package backend_test

import (
	"bytes"
	"context"
	"io"
	"slices"
	"testing"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/backend/lfs"
	"github.com/mwantia/rtvfs/backend/ramfs"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/flash"
	"github.com/mwantia/rtvfs/internal/logfs"
	"github.com/mwantia/rtvfs/log"
)

// mountable is what every filesystem backend under test provides.
type mountable interface {
	backend.Backend
	backend.Mounter
}

// TestBackendFactory creates a new, unmounted backend instance for testing.
type TestBackendFactory func(t *testing.T) (mountable, error)

func testLogger() *log.Logger {
	l := log.NewLogger("backend", log.Error, "", false)
	l.SetOutput(io.Discard)
	return l
}

func lfsTable() flash.Table {
	return flash.Table{
		{Type: flash.TypeData, Subtype: flash.SubtypeLFS, Label: "filesys", Address: 0x10000, Size: 0x10000},
	}
}

// GetTestBackendFactories returns all filesystem backends to test.
func GetTestBackendFactories() map[string]TestBackendFactory {
	return map[string]TestBackendFactory{
		"lfs-memory": func(t *testing.T) (mountable, error) {
			return lfs.NewBackend(logfs.New(), flash.NewMemory(0x20000), lfsTable(), lfs.WithLogger(testLogger()))
		},
		"lfs-sqlite": func(t *testing.T) (mountable, error) {
			dev, err := flash.NewSQLite(":memory:", 0x20000)
			if err != nil {
				return nil, err
			}
			t.Cleanup(func() {
				dev.Close()
			})
			return lfs.NewBackend(logfs.New(), dev, lfsTable(), lfs.WithLogger(testLogger()))
		},
		"ramfs": func(t *testing.T) (mountable, error) {
			return ramfs.NewBackend(ramfs.WithLogger(testLogger()))
		},
	}
}

func mountBackend(tst *testing.T, factory TestBackendFactory) mountable {
	tst.Helper()

	b, err := factory(tst)
	if err != nil {
		tst.Fatalf("Backend init failed: %v", err)
	}
	if err := b.Mount(tst.Context()); err != nil {
		tst.Fatalf("Mount failed: %v", err)
	}
	tst.Cleanup(func() {
		b.Unmount(context.Background())
	})
	return b
}

func createFile(tst *testing.T, b backend.Backend, path string, content []byte) {
	tst.Helper()

	f, err := b.Open(tst.Context(), path, data.O_WRONLY|data.O_CREAT|data.O_TRUNC, 0644)
	if err != nil {
		tst.Fatalf("Open %s failed: %v", path, err)
	}
	if n, err := f.Write(content); err != nil || n != len(content) {
		tst.Fatalf("Write %s failed: %d, %v", path, n, err)
	}
	if err := f.Close(); err != nil {
		tst.Fatalf("Close %s failed: %v", path, err)
	}
}

func listDir(tst *testing.T, b backend.Backend, path string) []string {
	tst.Helper()

	d, err := b.OpenDir(tst.Context(), path)
	if err != nil {
		tst.Fatalf("OpenDir %s failed: %v", path, err)
	}
	defer d.Close()

	var names []string
	var ent data.Dirent
	for {
		ok, err := d.Next(&ent)
		if err != nil {
			tst.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		if ent.Name == "." || ent.Name == ".." {
			continue
		}
		names = append(names, ent.Name)
	}
	slices.Sort(names)
	return names
}

func TestAllBackends_FileOperations(t *testing.T) {
	for name, factory := range GetTestBackendFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			b := mountBackend(tst, factory)

			content := []byte("hello world")

			f, err := b.Open(ctx, "/test.txt", data.O_RDWR|data.O_CREAT, 0644)
			if err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			if n, err := f.Write(content); err != nil || n != len(content) {
				tst.Fatalf("Write failed: %d, %v", n, err)
			}
			if off, err := f.Seek(0, data.SEEK_SET); err != nil || off != 0 {
				tst.Fatalf("Seek failed: %d, %v", off, err)
			}

			buf := make([]byte, 64)
			n, err := f.Read(buf)
			if err != nil {
				tst.Fatalf("Read failed: %v", err)
			}
			if !bytes.Equal(buf[:n], content) {
				tst.Fatalf("Read returned %q, expected %q", buf[:n], content)
			}
			if n, err := f.Read(buf); err != nil || n != 0 {
				tst.Fatalf("expected end of file, got %d, %v", n, err)
			}

			if off, err := f.Seek(-5, data.SEEK_END); err != nil || off != 6 {
				tst.Fatalf("Seek from end failed: %d, %v", off, err)
			}
			n, _ = f.Read(buf)
			if string(buf[:n]) != "world" {
				tst.Fatalf("unexpected tail %q", buf[:n])
			}

			if err := f.Close(); err != nil {
				tst.Fatalf("Close failed: %v", err)
			}

			st, err := b.Stat(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("Stat failed: %v", err)
			}
			if st.Size != int64(len(content)) || st.IsDir() {
				tst.Fatalf("unexpected stat %+v", st)
			}

			createFile(tst, b, "/test.txt", []byte("x"))
			if st, _ := b.Stat(ctx, "/test.txt"); st.Size != 1 {
				tst.Fatalf("expected O_TRUNC to shrink the file, got %d bytes", st.Size)
			}
		})
	}
}

func TestAllBackends_DirectoryOperations(t *testing.T) {
	for name, factory := range GetTestBackendFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			b := mountBackend(tst, factory)

			if err := b.Mkdir(ctx, "/dir", 0755); err != nil {
				tst.Fatalf("Mkdir failed: %v", err)
			}
			createFile(tst, b, "/dir/a", []byte("a"))
			createFile(tst, b, "/dir/b", []byte("b"))

			if names := listDir(tst, b, "/dir"); !slices.Equal(names, []string{"a", "b"}) {
				tst.Fatalf("unexpected entries %v", names)
			}

			if err := b.Rename(ctx, "/dir/a", "/dir/c"); err != nil {
				tst.Fatalf("Rename failed: %v", err)
			}
			if _, err := b.Stat(ctx, "/dir/a"); err != data.ENOENT {
				tst.Fatalf("expected ENOENT for the old name, got %v", err)
			}
			if names := listDir(tst, b, "/dir"); !slices.Equal(names, []string{"b", "c"}) {
				tst.Fatalf("unexpected entries after rename %v", names)
			}

			if err := b.Rmdir(ctx, "/dir"); err != data.ENOTEMPTY {
				tst.Fatalf("expected ENOTEMPTY, got %v", err)
			}
			for _, p := range []string{"/dir/b", "/dir/c"} {
				if err := b.Unlink(ctx, p); err != nil {
					tst.Fatalf("Unlink %s failed: %v", p, err)
				}
			}
			if err := b.Rmdir(ctx, "/dir"); err != nil {
				tst.Fatalf("Rmdir failed: %v", err)
			}
			if names := listDir(tst, b, "/"); len(names) != 0 {
				tst.Fatalf("expected an empty root, got %v", names)
			}
		})
	}
}

func TestAllBackends_Errors(t *testing.T) {
	for name, factory := range GetTestBackendFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			b := mountBackend(tst, factory)

			if err := b.Mkdir(ctx, "/dir", 0755); err != nil {
				tst.Fatalf("Mkdir failed: %v", err)
			}
			createFile(tst, b, "/file", nil)

			_, openMissing := b.Open(ctx, "/missing", data.O_RDONLY, 0)
			_, openExcl := b.Open(ctx, "/file", data.O_WRONLY|data.O_CREAT|data.O_EXCL, 0644)
			_, openDir := b.Open(ctx, "/dir", data.O_RDONLY, 0)
			_, openParent := b.Open(ctx, "/nope/file", data.O_WRONLY|data.O_CREAT, 0644)

			cases := []struct {
				name string
				err  error
				want data.Errno
			}{
				{"open missing", openMissing, data.ENOENT},
				{"open exclusive", openExcl, data.EEXIST},
				{"open directory", openDir, data.EISDIR},
				{"open without parent", openParent, data.ENOENT},
				{"mkdir exists", b.Mkdir(ctx, "/dir", 0755), data.EEXIST},
				{"rmdir root", b.Rmdir(ctx, "/"), data.EBUSY},
				{"rmdir file", b.Rmdir(ctx, "/file"), data.ENOTDIR},
				{"unlink missing", b.Unlink(ctx, "/missing"), data.ENOENT},
				{"access missing", b.Access(ctx, "/missing", data.F_OK), data.ENOENT},
			}
			for _, c := range cases {
				if c.err != c.want {
					tst.Errorf("%s: expected %v, got %v", c.name, c.want, c.err)
				}
			}
		})
	}
}

func TestAllBackends_Unmounted(t *testing.T) {
	for name, factory := range GetTestBackendFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()

			b, err := factory(tst)
			if err != nil {
				tst.Fatalf("Backend init failed: %v", err)
			}
			if b.Mounted() {
				tst.Fatalf("expected a new backend to be unmounted")
			}
			if _, err := b.Stat(ctx, "/"); err != data.ENODEV {
				tst.Fatalf("expected ENODEV before mount, got %v", err)
			}

			if err := b.Mount(ctx); err != nil {
				tst.Fatalf("Mount failed: %v", err)
			}
			if err := b.Unmount(ctx); err != nil {
				tst.Fatalf("Unmount failed: %v", err)
			}
			if _, err := b.Open(ctx, "/file", data.O_WRONLY|data.O_CREAT, 0644); err != data.ENODEV {
				tst.Fatalf("expected ENODEV after unmount, got %v", err)
			}
		})
	}
}

type nameOnly struct {
	backend.Unsupported
}

func (nameOnly) Name() string {
	return "none"
}

func TestUnsupported(t *testing.T) {
	ctx := t.Context()
	var b backend.Backend = nameOnly{}

	_, openErr := b.Open(ctx, "/", data.O_RDONLY, 0)
	_, statErr := b.Stat(ctx, "/")
	_, dirErr := b.OpenDir(ctx, "/")

	errs := []error{
		openErr, statErr, dirErr,
		b.Unlink(ctx, "/"),
		b.Rename(ctx, "/a", "/b"),
		b.Mkdir(ctx, "/a", 0755),
		b.Rmdir(ctx, "/a"),
		b.Access(ctx, "/", data.F_OK),
	}
	for i, err := range errs {
		if err != data.ENOSYS {
			t.Fatalf("operation %d: expected ENOSYS, got %v", i, err)
		}
	}

	var f backend.File = backend.UnsupportedFile{}
	if _, err := f.Read(nil); err != data.ENOSYS {
		t.Fatalf("expected ENOSYS, got %v", err)
	}
	if _, err := f.Fcntl(data.F_GETFL, 0); err != data.ENOSYS {
		t.Fatalf("expected ENOSYS, got %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("expected Close to succeed, got %v", err)
	}

	if caps := backend.CapabilitiesOf(b); len(caps.Capabilities) != 0 {
		t.Fatalf("expected no capabilities, got %v", caps.Strings())
	}
}

func TestCapabilitiesOf(t *testing.T) {
	b, err := ramfs.NewBackend()
	if err != nil {
		t.Fatalf("Backend init failed: %v", err)
	}

	caps := backend.CapabilitiesOf(b)
	for _, c := range []backend.Capability{backend.CapabilityMount, backend.CapabilityFormat, backend.CapabilityTruncate} {
		if !caps.Contains(c) {
			t.Fatalf("expected capability %s in %v", c, caps.Strings())
		}
	}
	if caps.Contains(backend.CapabilitySelect) {
		t.Fatalf("ramfs can not select")
	}
}

type shortWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		n := w.limit - w.buf.Len()
		w.buf.Write(p[:n])
		return n, data.ENOSPC
	}
	return w.buf.Write(p)
}

func TestWritevAll(t *testing.T) {
	w := &shortWriter{limit: 6}

	n, err := backend.WritevAll(w, [][]byte{[]byte("abc"), []byte("def"), []byte("ghi")})
	if err != nil || n != 6 {
		t.Fatalf("unexpected result %d, %v", n, err)
	}

	n, err = backend.WritevAll(w, [][]byte{[]byte("x")})
	if err != data.ENOSPC || n != 0 {
		t.Fatalf("expected ENOSPC, got %d, %v", n, err)
	}
	if w.buf.String() != "abcdef" {
		t.Fatalf("unexpected content %q", w.buf.String())
	}
}
