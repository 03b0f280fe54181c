package ramfs

import "github.com/mwantia/rtvfs/data"

// Flag is the native open flag set of the RAM filesystem.
type Flag int

const (
	O_RDONLY Flag = 1 << iota
	O_WRONLY
	O_CREAT
	O_EXCL
	O_TRUNC
	O_APPEND

	O_RDWR = O_RDONLY | O_WRONLY
)

// ToFlags translates open flags into native flags. The access mode is
// mapped as a whole, the modifiers bit by bit.
func ToFlags(flags data.OpenFlag) Flag {
	var f Flag

	switch flags.AccessMode() {
	case data.O_RDONLY:
		f |= O_RDONLY
	case data.O_WRONLY:
		f |= O_WRONLY
	case data.O_RDWR:
		f |= O_RDWR
	}

	if flags.HasCreate() {
		f |= O_CREAT
	}
	if flags.HasExcl() {
		f |= O_EXCL
	}
	if flags.HasTrunc() {
		f |= O_TRUNC
	}
	if flags.HasAppend() {
		f |= O_APPEND
	}
	return f
}

func (f Flag) CanRead() bool {
	return f&O_RDONLY != 0
}

func (f Flag) CanWrite() bool {
	return f&O_WRONLY != 0
}
