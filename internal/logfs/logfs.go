// Package logfs is a compact log-structured filesystem engine for hosts
// without a native one. The tree lives in memory and every metadata change
// or file sync appends a full snapshot to a ring of blocks, then rewrites the
// superblock in block 0 to point at it.
package logfs

import (
	"encoding/json"
	"hash/crc32"
	"path"
	"strings"
	"time"

	"github.com/mwantia/rtvfs/backend/lfs"
	"github.com/tidwall/btree"
)

type node struct {
	dir     bool
	data    []byte
	modTime time.Time
}

type entry struct {
	Path    string `json:"path"`
	Dir     bool   `json:"dir,omitempty"`
	Data    []byte `json:"data,omitempty"`
	ModTime int64  `json:"mtime"`
}

// FS implements lfs.Engine. It is not safe for concurrent use.
type FS struct {
	cfg     *lfs.Config
	tree    *btree.Map[string, *node]
	last    header
	mounted bool
}

func New() *FS {
	return &FS{}
}

var _ lfs.Engine = (*FS)(nil)

// Format writes an empty filesystem. The engine stays unmounted.
func (fs *FS) Format(cfg *lfs.Config) error {
	if cfg.BlockCount < 2 {
		return lfs.ErrInval
	}

	fs.cfg = cfg
	fs.tree = newTree()
	fs.last = header{}

	err := fs.commit()

	fs.tree = nil
	fs.mounted = false
	return err
}

// Mount loads the latest snapshot. An image without a valid superblock or
// snapshot fails with ErrCorrupt.
func (fs *FS) Mount(cfg *lfs.Config) error {
	if cfg.BlockCount < 2 {
		return lfs.ErrInval
	}

	buf := make([]byte, headerSize)
	if err := cfg.Device.Read(0, 0, buf); err != nil {
		return err
	}

	h, ok := decodeHeader(buf)
	if !ok {
		return lfs.ErrCorrupt
	}

	n := blocksFor(h.Length, cfg.BlockSize)
	if h.Start < 1 || h.Length == 0 || h.Start+n > cfg.BlockCount {
		return lfs.ErrCorrupt
	}

	raw := make([]byte, n*cfg.BlockSize)
	for i := uint32(0); i < n; i++ {
		if err := cfg.Device.Read(h.Start+i, 0, raw[i*cfg.BlockSize:(i+1)*cfg.BlockSize]); err != nil {
			return err
		}
	}
	raw = raw[:h.Length]

	if crc32.ChecksumIEEE(raw) != h.Checksum {
		return lfs.ErrCorrupt
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return lfs.ErrCorrupt
	}

	tree := btree.NewMap[string, *node](0)
	for _, e := range entries {
		tree.Set(e.Path, &node{
			dir:     e.Dir,
			data:    e.Data,
			modTime: time.Unix(0, e.ModTime),
		})
	}

	if root, ok := tree.Get("/"); !ok || !root.dir {
		return lfs.ErrCorrupt
	}

	fs.cfg = cfg
	fs.tree = tree
	fs.last = *h
	fs.mounted = true
	return nil
}

func (fs *FS) Unmount() error {
	if !fs.mounted {
		return lfs.ErrInval
	}

	fs.tree = nil
	fs.cfg = nil
	fs.mounted = false
	return nil
}

// commit writes the whole tree to the blocks after the previous snapshot,
// wrapping to block 1, and then points the superblock at it.
func (fs *FS) commit() error {
	entries := make([]entry, 0, fs.tree.Len())
	fs.tree.Scan(func(p string, n *node) bool {
		entries = append(entries, entry{
			Path:    p,
			Dir:     n.dir,
			Data:    n.data,
			ModTime: n.modTime.UnixNano(),
		})
		return true
	})

	raw, err := json.Marshal(entries)
	if err != nil {
		return lfs.ErrNoMem
	}

	bs := fs.cfg.BlockSize
	n := blocksFor(uint32(len(raw)), bs)
	if n > fs.cfg.BlockCount-1 {
		return lfs.ErrNoSpc
	}

	start := fs.last.Start + blocksFor(fs.last.Length, bs)
	if fs.last.Start == 0 || start+n > fs.cfg.BlockCount {
		start = 1
	}

	for i := uint32(0); i < n; i++ {
		if err := fs.cfg.Device.Erase(start + i); err != nil {
			return err
		}

		lo := i * bs
		hi := min(lo+bs, uint32(len(raw)))
		if lo < hi {
			if err := fs.cfg.Device.Prog(start+i, 0, raw[lo:hi]); err != nil {
				return err
			}
		}
	}

	h := header{
		Generation: fs.last.Generation + 1,
		Start:      start,
		Length:     uint32(len(raw)),
		Checksum:   crc32.ChecksumIEEE(raw),
	}

	if err := fs.cfg.Device.Erase(0); err != nil {
		return err
	}
	if err := fs.cfg.Device.Prog(0, 0, h.encode()); err != nil {
		return err
	}
	if err := fs.cfg.Device.Sync(); err != nil {
		return err
	}

	fs.last = h
	return nil
}

func newTree() *btree.Map[string, *node] {
	tree := btree.NewMap[string, *node](0)
	tree.Set("/", &node{
		dir:     true,
		modTime: time.Now(),
	})
	return tree
}

func clean(p string) string {
	return path.Clean("/" + p)
}

// checkParent checks that the parent of p exists and is a directory.
func (fs *FS) checkParent(p string) error {
	parent, ok := fs.tree.Get(path.Dir(p))
	if !ok {
		return lfs.ErrNoEnt
	}
	if !parent.dir {
		return lfs.ErrNotDir
	}
	return nil
}

// children returns the names of the direct children of dir in order.
func (fs *FS) children(dir string) []string {
	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	var names []string
	fs.tree.Ascend(prefix, func(p string, _ *node) bool {
		if !strings.HasPrefix(p, prefix) {
			return false
		}
		rest := p[len(prefix):]
		if rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
		return true
	})
	return names
}
