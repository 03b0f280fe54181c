package ramfs

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type inode struct {
	id      string
	dir     bool
	data    []byte
	modTime time.Time
	// number of open files referring to the inode
	open int
}

func (n *inode) size() int64 {
	return int64(len(n.data))
}

// checkName fails with ErrNameTooLong when a component exceeds NameMax.
func checkName(p string) error {
	for _, part := range strings.Split(p, "/") {
		if len(part) > NameMax {
			return ErrNameTooLong
		}
	}
	return nil
}

// lookupUnsafe assumes b.mu is held.
func (b *Backend) lookupUnsafe(p string) (*inode, error) {
	id, ok := b.keys.Get(p)
	if !ok {
		return nil, ErrNoEnt
	}
	return b.inodes[id], nil
}

// checkParentUnsafe verifies that the parent of p is an existing directory.
func (b *Backend) checkParentUnsafe(p string) error {
	parent, err := b.lookupUnsafe(path.Dir(p))
	if err != nil {
		return err
	}
	if !parent.dir {
		return ErrNotDir
	}
	return nil
}

func (b *Backend) insertUnsafe(p string, dir bool) *inode {
	n := &inode{
		id:      uuid.Must(uuid.NewV7()).String(),
		dir:     dir,
		modTime: time.Now(),
	}
	b.keys.Set(p, n.id)
	b.inodes[n.id] = n
	return n
}

func (b *Backend) removeUnsafe(p string) {
	id, ok := b.keys.Delete(p)
	if !ok {
		return
	}
	if n := b.inodes[id]; n != nil {
		b.used -= b.blocks(n.size())
	}
	delete(b.inodes, id)
}

// childrenUnsafe returns the direct children of the directory p in key order.
func (b *Backend) childrenUnsafe(p string) []string {
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}

	var children []string
	b.keys.Ascend(prefix, func(key, _ string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		rest := key[len(prefix):]
		if rest != "" && !strings.Contains(rest, "/") {
			children = append(children, key)
		}
		return true
	})
	return children
}

// descendantsUnsafe returns every key below p, excluding p.
func (b *Backend) descendantsUnsafe(p string) []string {
	prefix := p + "/"

	var keys []string
	b.keys.Ascend(prefix, func(key, _ string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})
	return keys
}

func (b *Backend) blocks(size int64) int64 {
	bs := b.options.BlockSize
	return (size + bs - 1) / bs
}

// resizeUnsafe grows or shrinks the content of n, zero filling new bytes.
// Fails with ErrNoSpc when the additional blocks are not available.
func (b *Backend) resizeUnsafe(n *inode, size int64) error {
	delta := b.blocks(size) - b.blocks(n.size())
	if b.used+delta > b.options.Size/b.options.BlockSize {
		return ErrNoSpc
	}
	b.used += delta

	if size <= n.size() {
		n.data = n.data[:size]
	} else {
		n.data = append(n.data, make([]byte, size-n.size())...)
	}
	n.modTime = time.Now()
	return nil
}
