package lfs

import "github.com/mwantia/rtvfs/data"

// Flag is the native open flag set of the engine.
type Flag int

const (
	O_RDONLY Flag = 1
	O_WRONLY Flag = 2
	O_RDWR   Flag = 3
	O_CREAT  Flag = 0x0100
	O_EXCL   Flag = 0x0200
	O_TRUNC  Flag = 0x0400
	O_APPEND Flag = 0x0800
)

// Whence is the native seek origin of the engine.
type Whence int

const (
	SeekSet Whence = 0
	SeekCur Whence = 1
	SeekEnd Whence = 2
)

// ToFlags translates POSIX open flags bit by bit. O_NONBLOCK has no native
// counterpart since block storage never blocks on data availability.
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

	if flags.HasAppend() {
		f |= O_APPEND
	}
	if flags.HasExcl() {
		f |= O_EXCL
	}
	if flags.HasCreate() {
		f |= O_CREAT
	}
	if flags.HasTrunc() {
		f |= O_TRUNC
	}

	return f
}

func (f Flag) CanRead() bool {
	return f&O_RDONLY != 0
}

func (f Flag) CanWrite() bool {
	return f&O_WRONLY != 0
}

func toWhence(whence int) (Whence, error) {
	switch whence {
	case data.SEEK_SET:
		return SeekSet, nil
	case data.SEEK_CUR:
		return SeekCur, nil
	case data.SEEK_END:
		return SeekEnd, nil
	default:
		return 0, data.EINVAL
	}
}
