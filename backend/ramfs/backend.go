package ramfs

import (
	"sync"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
	"github.com/tidwall/btree"
)

// Backend is a block-accounted filesystem held in memory. Its content lives
// from Mount to Unmount; Format starts over with an empty root.
type Backend struct {
	backend.Unsupported

	mu  sync.RWMutex
	log *log.Logger

	options *BackendOptions
	mounted bool

	// path -> inode id
	keys   *btree.Map[string, string]
	inodes map[string]*inode
	files  map[string]*file
	used   int64
}

func NewBackend(opts ...BackendOption) (*Backend, error) {
	options := newDefaultBackendOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if options.Size < options.BlockSize {
		return nil, data.EINVAL
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("ramfs", log.Info, "", false)
	}

	return &Backend{
		log:     logger,
		options: options,
	}, nil
}

// Returns the identifier name defined for this backend
func (*Backend) Name() string {
	return "ramfs"
}

func (b *Backend) Mounted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.mounted
}

// Blocks returns the total and the used number of blocks.
func (b *Backend) Blocks() (total, used int64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.options.Size / b.options.BlockSize, b.used
}

// BlockSize returns the allocation unit in bytes.
func (b *Backend) BlockSize() int64 {
	return b.options.BlockSize
}

// Usage returns the capacity and the allocated space in bytes.
func (b *Backend) Usage() (total, used int64) {
	blocks, inUse := b.Blocks()
	return blocks * b.options.BlockSize, inUse * b.options.BlockSize
}
