package vfs

import "github.com/mwantia/rtvfs/data"

// Errors reported by the switch itself. They are errno values, so callers can
// compare them directly or with errors.Is.
var (
	// Path resolution errors
	ErrNotMounted     = data.ENODEV
	ErrAlreadyMounted = data.EBUSY
	ErrMountBusy      = data.EBUSY
	ErrCrossMount     = data.EXDEV

	// Descriptor errors
	ErrBadDescriptor  = data.EBADF
	ErrTooManyHandles = data.EMFILE
	ErrUnsupported    = data.ENOSYS
)
