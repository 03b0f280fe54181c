package data

// FileMode represents file type and permission bits as reported by stat.
type FileMode uint32

const (
	// Type bits
	ModeDir        FileMode = 1 << 31 // d: directory
	ModeCharDevice FileMode = 1 << 26 // c: character device
	ModeMount      FileMode = 1 << 24 // M: mount point (synthetic directory)

	// Permission bits
	ModePerm FileMode = 0777
)

// IsDir reports whether m describes a directory.
func (m FileMode) IsDir() bool {
	return m&ModeDir != 0
}

// IsCharDevice reports whether m describes a character device.
func (m FileMode) IsCharDevice() bool {
	return m&ModeCharDevice != 0
}

// IsRegular reports whether m describes a regular file.
func (m FileMode) IsRegular() bool {
	return m&(ModeDir|ModeCharDevice|ModeMount) == 0
}

// Perm returns the Unix permission bits in m.
func (m FileMode) Perm() FileMode {
	return m & ModePerm
}

// String returns the mode in ls -l format, e.g. "drwxr-xr-x".
func (m FileMode) String() string {
	var buf [16]byte
	w := 0

	switch {
	case m.IsDir():
		buf[w] = 'd'
	case m.IsCharDevice():
		buf[w] = 'c'
	default:
		buf[w] = '-'
	}
	w++

	const rwx = "rwxrwxrwx"
	for i, c := range rwx {
		if m&(1<<uint(9-1-i)) != 0 {
			buf[w] = byte(c)
		} else {
			buf[w] = '-'
		}
		w++
	}

	return string(buf[:w])
}
