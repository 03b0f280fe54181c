package romfs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mwantia/rtvfs/data"
)

// Code is a native result code of the ROM filesystem. Zero is success.
type Code int

const (
	ErrOK          Code = 0
	ErrNoMem       Code = -1
	ErrNoEnt       Code = -2
	ErrExist       Code = -3
	ErrNotDir      Code = -4
	ErrBadF        Code = -5
	ErrAccess      Code = -6
	ErrNoSpc       Code = -7
	ErrInval       Code = -8
	ErrIsDir       Code = -9
	ErrNotEmpty    Code = -10
	ErrBusy        Code = -11
	ErrPerm        Code = -12
	ErrNameTooLong Code = -13
)

func (c Code) Error() string {
	return fmt.Sprintf("romfs: error %d", int(c))
}

// ToErrno translates a native result code into the errno space.
// Unknown codes are reported as ENOTSUP.
func ToErrno(code int) data.Errno {
	switch Code(code) {
	case ErrOK:
		return 0
	case ErrNoMem:
		return data.ENOMEM
	case ErrNoEnt:
		return data.ENOENT
	case ErrExist:
		return data.EEXIST
	case ErrNotDir:
		return data.ENOTDIR
	case ErrBadF:
		return data.EBADF
	case ErrAccess:
		return data.EACCES
	case ErrNoSpc:
		return data.ENOSPC
	case ErrInval:
		return data.EINVAL
	case ErrIsDir:
		return data.EISDIR
	case ErrNotEmpty:
		return data.ENOTEMPTY
	case ErrBusy:
		return data.EBUSY
	case ErrPerm:
		return data.EPERM
	case ErrNameTooLong:
		return data.ENAMETOOLONG
	}
	return data.ENOTSUP
}

// toCode maps an error of the image into a native code.
func toCode(err error) Code {
	switch {
	case err == nil:
		return ErrOK
	case errors.Is(err, fs.ErrNotExist):
		return ErrNoEnt
	case errors.Is(err, fs.ErrExist):
		return ErrExist
	case errors.Is(err, fs.ErrPermission):
		return ErrAccess
	case errors.Is(err, fs.ErrInvalid):
		return ErrInval
	case errors.Is(err, fs.ErrClosed):
		return ErrBadF
	}

	var code Code
	if errors.As(err, &code) {
		return code
	}
	return ErrInval
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var errno data.Errno
	if errors.As(err, &errno) {
		return errno
	}

	if errno := ToErrno(int(toCode(err))); errno != 0 {
		return errno
	}
	return nil
}
