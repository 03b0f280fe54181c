package vfs

import (
	"time"
	"unsafe"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"golang.org/x/sys/unix"
)

// maxSelectFds is the number of descriptors an FdSet can hold.
const maxSelectFds = int(unsafe.Sizeof(unix.FdSet{})) * 8

// selectGroup collects the descriptors of one selectable backend.
type selectGroup struct {
	selecter backend.Selecter
	r, w     unix.FdSet
	nfds     int
	// backend-local descriptor -> descriptors of the switch
	readers map[int][]int
	writers map[int][]int
}

// Select waits until descriptors of r or w become ready and prunes both sets
// to the ready ones. Files on backends without a wait primitive are always
// ready. e is accepted and cleared, no descriptor reports exceptions.
// With descriptors on several backends the timeout applies to the first
// backend only; the others are polled once ready descriptors were found.
func (v *VirtualFileSystem) Select(nfds int, r, w, e *unix.FdSet, timeout *time.Duration) (int, error) {
	if nfds < 0 || nfds > maxSelectFds {
		return 0, data.EINVAL
	}

	num := 0
	groups := make(map[*mountEntry]*selectGroup)
	var order []*mountEntry

	for fd := 0; fd < nfds; fd++ {
		inRead := r != nil && r.IsSet(fd)
		inWrite := w != nil && w.IsSet(fd)
		if !inRead && !inWrite {
			continue
		}

		fh, err := v.file(fd)
		if err != nil {
			return 0, err
		}

		selecter, ok := fh.mount.backend.(backend.Selecter)
		desc, hasFd := fh.state.(backend.Descriptor)
		if !ok || !hasFd {
			if inRead {
				num++
			}
			if inWrite {
				num++
			}
			continue
		}

		g, exists := groups[fh.mount]
		if !exists {
			g = &selectGroup{
				selecter: selecter,
				readers:  make(map[int][]int),
				writers:  make(map[int][]int),
			}
			groups[fh.mount] = g
			order = append(order, fh.mount)
		}

		local := desc.Fd()
		if local+1 > g.nfds {
			g.nfds = local + 1
		}
		if inRead {
			g.r.Set(local)
			g.readers[local] = append(g.readers[local], fd)
		}
		if inWrite {
			g.w.Set(local)
			g.writers[local] = append(g.writers[local], fd)
		}
	}

	zero := time.Duration(0)
	for _, entry := range order {
		g := groups[entry]

		wait := timeout
		if num > 0 {
			wait = &zero
		}

		if _, err := g.selecter.Select(g.nfds, &g.r, &g.w, nil, wait); err != nil {
			return 0, err
		}

		for local, fds := range g.readers {
			for _, fd := range fds {
				if g.r.IsSet(local) {
					num++
				} else {
					r.Clear(fd)
				}
			}
		}
		for local, fds := range g.writers {
			for _, fd := range fds {
				if g.w.IsSet(local) {
					num++
				} else {
					w.Clear(fd)
				}
			}
		}
	}

	if e != nil {
		e.Zero()
	}

	return num, nil
}
