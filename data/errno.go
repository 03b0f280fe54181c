package data

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Errno is the single error-number space every backend result is translated into.
// It is the platform errno type, so errors.Is(err, fs.ErrNotExist) keeps working.
type Errno = unix.Errno

// Error numbers surfaced by the filesystem switch.
const (
	EPERM        = unix.EPERM
	ENOENT       = unix.ENOENT
	EIO          = unix.EIO
	EBADF        = unix.EBADF
	EAGAIN       = unix.EAGAIN
	ENOMEM       = unix.ENOMEM
	EACCES       = unix.EACCES
	EFAULT       = unix.EFAULT
	EBUSY        = unix.EBUSY
	EEXIST       = unix.EEXIST
	ENODEV       = unix.ENODEV
	ENOTDIR      = unix.ENOTDIR
	EISDIR       = unix.EISDIR
	EINVAL       = unix.EINVAL
	ENOSPC       = unix.ENOSPC
	EROFS        = unix.EROFS
	ENAMETOOLONG = unix.ENAMETOOLONG
	ENOSYS       = unix.ENOSYS
	ENOTEMPTY    = unix.ENOTEMPTY
	ENOTSUP      = unix.ENOTSUP
	EMFILE       = unix.EMFILE
	ENXIO        = unix.ENXIO
	EXDEV        = unix.EXDEV
	ESPIPE       = unix.ESPIPE
)

// AsErrno returns the errno carried by err.
// Errors that are not errno values are reported as EIO, nil as 0.
func AsErrno(err error) Errno {
	if err == nil {
		return 0
	}

	var errno Errno
	if errors.As(err, &errno) {
		return errno
	}

	return EIO
}

// PassThrough turns a native code that has no explicit translation into an
// errno with the same magnitude, so unknown codes are never reported as success.
func PassThrough(code int) Errno {
	if code < 0 {
		code = -code
	}
	if code == 0 {
		return EIO
	}
	return Errno(code)
}
