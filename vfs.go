package vfs

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

// VirtualFileSystem is the switch: it owns the mount table, the registered
// backends and the process-wide descriptor table. Construct it once and hand
// it to every caller.
type VirtualFileSystem struct {
	mu  sync.RWMutex
	log *log.Logger

	table  *MountTable
	mounts map[string]*mountEntry
	fds    *fdTable
}

// mountEntry is a backend registered under a path prefix.
type mountEntry struct {
	prefix       string
	backend      backend.Backend
	capabilities *backend.Capabilities

	// descriptors currently open on this backend
	open atomic.Int64
}

// MountInfo describes a registered backend.
type MountInfo struct {
	Prefix       string
	Backend      string
	Capabilities []string
	Open         int64

	// set when the backend reports its space usage
	HasUsage    bool
	Total, Used int64
}

func NewVirtualFileSystem(opts ...VirtualFileSystemOption) (*VirtualFileSystem, error) {
	options := newDefaultVirtualFileSystemOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("vfs", options.LogLevel, options.LogFile, options.NoTerminalLog)
		logger.JSON = options.JSONLog
	}

	table := options.MountTable
	if table == nil {
		table = DefaultMountTable()
	}

	return &VirtualFileSystem{
		log:    logger,
		table:  table,
		mounts: make(map[string]*mountEntry),
		fds:    newFdTable(options.MaxDescriptors),
	}, nil
}

// Logger returns the logger of the switch, so backends can derive named loggers.
func (v *VirtualFileSystem) Logger() *log.Logger {
	return v.log
}

// MountTable returns the mount table.
func (v *VirtualFileSystem) MountTable() *MountTable {
	return v.table
}

// Register installs b under prefix. A backend without a mount lifecycle is
// usable right away, so a mount table row at the same path is marked mounted.
func (v *VirtualFileSystem) Register(prefix string, b backend.Backend) error {
	prefix, err := normalize(prefix)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.mounts[prefix]; exists {
		return data.EEXIST
	}

	entry := &mountEntry{
		prefix:       prefix,
		backend:      b,
		capabilities: backend.CapabilitiesOf(b),
	}
	v.mounts[prefix] = entry

	if row, ok := v.table.ForPath(prefix); ok {
		if _, isMounter := b.(backend.Mounter); !isMounter {
			v.table.SetMounted(row.Name, true)
		}
	}

	v.log.Debug("Register: registered backend '%s' at %s with capabilities %v",
		b.Name(), prefix, entry.capabilities.Strings())
	return nil
}

// Unregister removes the backend registered under prefix. It fails with EBUSY
// while descriptors of that backend are open.
func (v *VirtualFileSystem) Unregister(prefix string) error {
	prefix, err := normalize(prefix)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entry, exists := v.mounts[prefix]
	if !exists {
		return ErrNotMounted
	}
	if entry.open.Load() > 0 {
		return ErrMountBusy
	}

	delete(v.mounts, prefix)

	if row, ok := v.table.ForPath(prefix); ok {
		v.table.SetMounted(row.Name, false)
	}

	v.log.Debug("Unregister: removed backend '%s' from %s", entry.backend.Name(), prefix)
	return nil
}

// Mounts returns information about all registered backends ordered by prefix.
func (v *VirtualFileSystem) Mounts() []MountInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	infos := make([]MountInfo, 0, len(v.mounts))
	for _, entry := range v.mounts {
		info := MountInfo{
			Prefix:       entry.prefix,
			Backend:      entry.backend.Name(),
			Capabilities: entry.capabilities.Strings(),
			Open:         entry.open.Load(),
		}
		if u, ok := entry.backend.(backend.UsageReporter); ok {
			info.HasUsage = true
			info.Total, info.Used = u.Usage()
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Prefix < infos[j].Prefix
	})
	return infos
}

// resolve finds the backend with the longest prefix of path and returns the
// path relative to it.
func (v *VirtualFileSystem) resolve(path string) (*mountEntry, string, error) {
	path, err := normalize(path)
	if err != nil {
		return nil, "", err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	var best *mountEntry
	for prefix, entry := range v.mounts {
		if data.HasPrefix(path, prefix) {
			if best == nil || len(prefix) > len(best.prefix) {
				best = entry
			}
		}
	}

	if best == nil {
		return nil, "", ErrNotMounted
	}

	return best, data.ToRelativePath(path, best.prefix), nil
}

// entryAt returns the backend registered exactly at prefix.
func (v *VirtualFileSystem) entryAt(prefix string) (*mountEntry, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entry, ok := v.mounts[prefix]
	return entry, ok
}
