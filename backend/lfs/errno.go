package lfs

import (
	"errors"
	"fmt"

	"github.com/mwantia/rtvfs/data"
)

// Code is a native result code of the log-structured engine.
// Engines report failures as Code values; zero is success.
type Code int

const (
	ErrOK       Code = 0
	ErrIO       Code = -5
	ErrCorrupt  Code = -52
	ErrNoEnt    Code = -2
	ErrExist    Code = -17
	ErrNotDir   Code = -20
	ErrIsDir    Code = -21
	ErrNotEmpty Code = -39
	ErrBadF     Code = -9
	ErrNoMem    Code = -12
	ErrNoSpc    Code = -28
	ErrInval    Code = -22
)

func (c Code) Error() string {
	return fmt.Sprintf("lfs: error %d", int(c))
}

// ToErrno translates a native result code into the errno space.
// Codes without an explicit mapping keep their magnitude.
func ToErrno(code int) data.Errno {
	switch Code(code) {
	case ErrOK:
		return 0
	case ErrIO, ErrCorrupt:
		return data.EIO
	case ErrNoEnt:
		return data.ENOENT
	case ErrExist:
		return data.EEXIST
	case ErrNotDir:
		return data.ENOTDIR
	case ErrIsDir:
		return data.EISDIR
	case ErrNotEmpty:
		return data.ENOTEMPTY
	case ErrBadF:
		return data.EBADF
	case ErrNoMem:
		return data.ENOMEM
	case ErrNoSpc:
		return data.ENOSPC
	case ErrInval:
		return data.EINVAL
	default:
		return data.PassThrough(code)
	}
}

// translate converts an engine error into an errno exactly once.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var code Code
	if errors.As(err, &code) {
		if errno := ToErrno(int(code)); errno != 0 {
			return errno
		}
		return nil
	}

	var errno data.Errno
	if errors.As(err, &errno) {
		return errno
	}

	return data.EIO
}
