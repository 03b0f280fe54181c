package stream

import (
	"time"

	"github.com/mwantia/rtvfs/data"
	"golang.org/x/sys/unix"
)

// Read fills dst from dev one byte at a time.
//
// In non-blocking mode it fails with EAGAIN when nothing is available yet.
// In both modes it returns early with a short count as soon as the source
// goes idle after at least one byte was produced.
func Read(ls *LocalStorage, dev Device, fd int, dst []byte) (int, error) {
	bytes := 0

	for bytes < len(dst) {
		if ls.nonBlocking(fd) {
			if !dev.HasBytes(fd, 0) {
				if bytes > 0 {
					return bytes, nil
				}
				return 0, data.EAGAIN
			}
		} else if bytes > 0 && !dev.HasBytes(fd, 0) {
			return bytes, nil
		}

		c, ok := dev.GetByte(fd)
		if !ok {
			return bytes, data.EIO
		}

		dst[bytes] = c
		bytes++
	}

	return bytes, nil
}

// Write emits every byte of p, inserting '\r' before '\n' when crlf is set.
// The returned count is always len(p).
func Write(dev Device, fd int, p []byte, crlf bool) int {
	for _, c := range p {
		if crlf && c == '\n' {
			dev.PutByte(fd, '\r')
		}
		dev.PutByte(fd, c)
	}
	return len(p)
}

// Writev emits every segment of iov without line ending conversion and
// returns the sum of the segment lengths.
func Writev(dev Device, fd int, iov [][]byte) int {
	bytes := 0
	for _, seg := range iov {
		for _, c := range seg {
			dev.PutByte(fd, c)
		}
		bytes += len(seg)
	}
	return bytes
}

// Timeout converts a select timeout into the budget handed to HasBytes.
// nil means no timeout; anything else is rounded to milliseconds with a floor of 1ms.
func Timeout(timeout *time.Duration) time.Duration {
	if timeout == nil {
		return Forever
	}

	ms := (*timeout + 500*time.Microsecond) / time.Millisecond
	if ms < 1 {
		ms = 1
	}
	return ms * time.Millisecond
}

// Select prunes r and w down to the descriptors of dev that are ready and
// returns how many remain set. e is accepted but never populated.
// HasBytes performs the actual wait, so each readable fd may consume the budget.
func Select(dev Device, nfds int, r, w, e *unix.FdSet, timeout *time.Duration) int {
	budget := Timeout(timeout)
	num := 0

	for fd := 0; fd < nfds; fd++ {
		if r != nil && r.IsSet(fd) {
			if dev.HasBytes(fd, budget) {
				num++
			} else {
				r.Clear(fd)
			}
		}

		if w != nil && w.IsSet(fd) {
			if dev.FreeBytes(fd) > 0 {
				num++
			} else {
				w.Clear(fd)
			}
		}
	}

	return num
}

// Fcntl implements F_GETFL and F_SETFL on top of the local storage.
func Fcntl(ls *LocalStorage, fd, cmd, arg int) (int, error) {
	switch cmd {
	case data.F_GETFL:
		flags, err := ls.Flags(fd)
		if err != nil {
			return 0, err
		}
		return int(flags), nil
	case data.F_SETFL:
		if err := ls.SetFlags(fd, data.OpenFlag(arg)); err != nil {
			return 0, err
		}
		return 0, nil
	default:
		return 0, data.ENOSYS
	}
}
