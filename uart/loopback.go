// Package uart simulates the UART units a console TTY sits on. Every byte
// written to a unit is looped back into its receive queue and either sent to
// a sink or recorded in a bounded transmit buffer that tests and tools drain.
package uart

import (
	"io"
	"sync"
	"time"

	"github.com/mwantia/rtvfs/stream"
)

// DefaultTxCapacity is the transmit buffer size of a unit.
const DefaultTxCapacity = 256

type unit struct {
	mu sync.Mutex
	ll sync.Mutex

	rx []byte
	tx []byte
	// closed and replaced whenever rx or tx changes
	changed chan struct{}
}

func (u *unit) broadcastUnsafe() {
	close(u.changed)
	u.changed = make(chan struct{})
}

// Loopback is a set of simulated UART units.
type Loopback struct {
	units []*unit
	txCap int
	loop  bool

	sinkMu sync.Mutex
	sink   io.Writer

	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Loopback)

// WithTxCapacity bounds the transmit buffer. PutByte blocks while it is full.
func WithTxCapacity(n int) Option {
	return func(l *Loopback) {
		if n > 0 {
			l.txCap = n
		}
	}
}

// WithSink sends transmitted bytes of every unit to w as they are written.
// Nothing is buffered for Drain and PutByte never waits.
func WithSink(w io.Writer) Option {
	return func(l *Loopback) {
		l.sink = w
	}
}

// WithoutEcho stops written bytes from reaching the receive queue.
func WithoutEcho() Option {
	return func(l *Loopback) {
		l.loop = false
	}
}

func NewLoopback(units int, opts ...Option) *Loopback {
	l := &Loopback{
		txCap: DefaultTxCapacity,
		loop:  true,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	for range units {
		l.units = append(l.units, &unit{
			changed: make(chan struct{}),
		})
	}
	return l
}

func (l *Loopback) Units() int {
	return len(l.units)
}

func (l *Loopback) unit(fd int) *unit {
	if fd < 0 || fd >= len(l.units) {
		return nil
	}
	return l.units[fd]
}

// Feed queues p as received input of the unit.
func (l *Loopback) Feed(fd int, p []byte) {
	u := l.unit(fd)
	if u == nil {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.rx = append(u.rx, p...)
	u.broadcastUnsafe()
}

// Drain returns and clears everything transmitted by the unit.
func (l *Loopback) Drain(fd int) []byte {
	u := l.unit(fd)
	if u == nil {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	out := u.tx
	u.tx = nil
	u.broadcastUnsafe()
	return out
}

// Close wakes every blocked caller. GetByte fails afterwards once the
// receive queue is empty.
func (l *Loopback) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Loopback) HasBytes(fd int, timeout time.Duration) bool {
	u := l.unit(fd)
	if u == nil {
		return false
	}

	var expired <-chan time.Time
	if timeout > 0 && timeout != stream.Forever {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		u.mu.Lock()
		ready := len(u.rx) > 0
		changed := u.changed
		u.mu.Unlock()

		if ready {
			return true
		}
		if timeout <= 0 {
			return false
		}

		select {
		case <-changed:
		case <-expired:
			return false
		case <-l.done:
			return false
		}
	}
}

func (l *Loopback) FreeBytes(fd int) int {
	u := l.unit(fd)
	if u == nil {
		return 0
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	return l.txCap - len(u.tx)
}

// GetByte blocks until a byte was received. It fails for unknown units and
// once the loopback is closed.
func (l *Loopback) GetByte(fd int) (byte, bool) {
	u := l.unit(fd)
	if u == nil {
		return 0, false
	}

	for {
		u.mu.Lock()
		if len(u.rx) > 0 {
			c := u.rx[0]
			u.rx = u.rx[1:]
			u.mu.Unlock()
			return c, true
		}
		changed := u.changed
		u.mu.Unlock()

		select {
		case <-changed:
		case <-l.done:
			return 0, false
		}
	}
}

// PutByte transmits c. Without a sink it blocks while the transmit buffer
// is full.
func (l *Loopback) PutByte(fd int, c byte) {
	u := l.unit(fd)
	if u == nil {
		return
	}

	if l.sink != nil {
		l.sinkMu.Lock()
		l.sink.Write([]byte{c})
		l.sinkMu.Unlock()

		if l.loop {
			u.mu.Lock()
			u.rx = append(u.rx, c)
			u.broadcastUnsafe()
			u.mu.Unlock()
		}
		return
	}

	for {
		u.mu.Lock()
		if len(u.tx) < l.txCap {
			u.tx = append(u.tx, c)
			if l.loop {
				u.rx = append(u.rx, c)
			}
			u.broadcastUnsafe()
			u.mu.Unlock()
			return
		}
		changed := u.changed
		u.mu.Unlock()

		select {
		case <-changed:
		case <-l.done:
			return
		}
	}
}

// Lock serializes writers of a unit so concurrent lines do not interleave.
func (l *Loopback) Lock(fd int) {
	if u := l.unit(fd); u != nil {
		u.ll.Lock()
	}
}

func (l *Loopback) Unlock(fd int) {
	if u := l.unit(fd); u != nil {
		u.ll.Unlock()
	}
}
