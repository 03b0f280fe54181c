package stream

import (
	"math"
	"time"
)

// Forever is the timeout passed to Device.HasBytes when the caller gave none.
const Forever = time.Duration(math.MaxInt64)

// Device is the byte-level contract a character device hands to the stream
// adapters. fd is the device-local descriptor (for a UART, the unit number).
type Device interface {
	// HasBytes waits up to timeout for input and reports whether a byte is
	// ready. A zero timeout only polls.
	HasBytes(fd int, timeout time.Duration) bool
	// FreeBytes returns the writable capacity without blocking.
	FreeBytes(fd int) int
	// GetByte fetches one byte, blocking until it arrives.
	GetByte(fd int) (byte, bool)
	// PutByte emits one byte, blocking until it is accepted.
	PutByte(fd int, c byte)
}
