package data

// OpenFlag holds the POSIX open flags recognized by the filesystem switch.
// The values match the newlib layout used on the target, not the host.
type OpenFlag int

const (
	O_RDONLY OpenFlag = 0x0000 // open for reading only
	O_WRONLY OpenFlag = 0x0001 // open for writing only
	O_RDWR   OpenFlag = 0x0002 // open for reading and writing

	O_APPEND   OpenFlag = 0x0008 // append on each write
	O_CREAT    OpenFlag = 0x0200 // create if nonexistent
	O_TRUNC    OpenFlag = 0x0400 // truncate to zero length
	O_EXCL     OpenFlag = 0x0800 // error if already exists
	O_NONBLOCK OpenFlag = 0x4000 // non blocking i/o

	O_ACCMODE OpenFlag = O_RDONLY | O_WRONLY | O_RDWR
)

// fcntl commands
const (
	F_GETFL = 3
	F_SETFL = 4
)

// lseek whence values
const (
	SEEK_SET = 0
	SEEK_CUR = 1
	SEEK_END = 2
)

// access modes
const (
	F_OK = 0
	X_OK = 1
	W_OK = 2
	R_OK = 4
)

// AccessMode returns the O_RDONLY / O_WRONLY / O_RDWR part of f.
func (f OpenFlag) AccessMode() OpenFlag {
	return f & O_ACCMODE
}

// IsReadOnly checks if the flags only allow reading.
func (f OpenFlag) IsReadOnly() bool {
	return f.AccessMode() == O_RDONLY
}

// IsWriteOnly checks if the flags only allow writing.
func (f OpenFlag) IsWriteOnly() bool {
	return f.AccessMode() == O_WRONLY
}

// IsReadWrite checks if the flags allow both reading and writing.
func (f OpenFlag) IsReadWrite() bool {
	return f.AccessMode() == O_RDWR
}

// CanRead reports whether a descriptor opened with f may be read.
func (f OpenFlag) CanRead() bool {
	return f.IsReadOnly() || f.IsReadWrite()
}

// CanWrite reports whether a descriptor opened with f may be written.
func (f OpenFlag) CanWrite() bool {
	return f.IsWriteOnly() || f.IsReadWrite()
}

func (f OpenFlag) HasAppend() bool {
	return f&O_APPEND != 0
}

func (f OpenFlag) HasCreate() bool {
	return f&O_CREAT != 0
}

func (f OpenFlag) HasTrunc() bool {
	return f&O_TRUNC != 0
}

func (f OpenFlag) HasExcl() bool {
	return f&O_EXCL != 0
}

func (f OpenFlag) IsNonBlocking() bool {
	return f&O_NONBLOCK != 0
}
