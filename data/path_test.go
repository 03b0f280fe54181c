package data

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		cwd, in, want string
	}{
		{"/", "", "/"},
		{"/", ".", "/"},
		{"/", "..", "/"},
		{"/", "../..", "/"},
		{"/", "//", "/"},
		{"/", "./a/", "/a"},
		{"/", "a/../b/c/../d", "/b/d"},
		{"/", "a/..///b/c/..///d//", "/b/d"},
		{"/", "a/.a/", "/a/.a"},
		{"/", "a/..a./", "/a/..a."},
		{"/e", "", "/e"},
		{"/e", "..", "/"},
		{"/e", "//", "/"},
		{"/e", "a/../b", "/e/b"},
		{"/e", "a/..///b/c/..///d//", "/e/b/d"},
	}

	for _, c := range cases {
		got, err := Normalize(c.cwd, c.in)
		if err != nil {
			t.Fatalf("Normalize(%q, %q): unexpected error: %v", c.cwd, c.in, err)
		}
		if got != c.want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", c.cwd, c.in, got, c.want)
		}
	}
}

func TestNormalizeTooLong(t *testing.T) {
	long := make([]byte, PathMax+1)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := Normalize("/", string(long)); err != ENAMETOOLONG {
		t.Fatalf("expected ENAMETOOLONG, got %v", err)
	}
}

func TestHasPrefix(t *testing.T) {
	cases := []struct {
		path, prefix string
		want         bool
	}{
		{"/dev/tty", "/dev", true},
		{"/dev", "/dev", true},
		{"/devices", "/dev", false},
		{"/anything", "/", true},
	}

	for _, c := range cases {
		if got := HasPrefix(c.path, c.prefix); got != c.want {
			t.Errorf("HasPrefix(%q, %q) = %v, want %v", c.path, c.prefix, got, c.want)
		}
	}
}

func TestToRelativePath(t *testing.T) {
	if got := ToRelativePath("/dev/tty/0", "/dev/tty"); got != "/0" {
		t.Fatalf("unexpected relative path %q", got)
	}
	if got := ToRelativePath("/dev/tty", "/dev/tty"); got != "/" {
		t.Fatalf("unexpected relative path %q", got)
	}
	if got := ToRelativePath("/a/b", "/"); got != "/a/b" {
		t.Fatalf("unexpected relative path %q", got)
	}
}

func TestAsErrno(t *testing.T) {
	if AsErrno(nil) != 0 {
		t.Fatalf("nil should map to 0")
	}
	if AsErrno(ENOENT) != ENOENT {
		t.Fatalf("errno should pass through")
	}
	if AsErrno(errorString("boom")) != EIO {
		t.Fatalf("foreign errors should map to EIO")
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }

func TestFileModeString(t *testing.T) {
	if s := (ModeDir | 0755).String(); s != "drwxr-xr-x" {
		t.Fatalf("unexpected mode string %q", s)
	}
	if s := (ModeCharDevice | 0666).String(); s != "crw-rw-rw-" {
		t.Fatalf("unexpected mode string %q", s)
	}
}
