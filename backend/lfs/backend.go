package lfs

import (
	"sync"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/flash"
	"github.com/mwantia/rtvfs/log"
)

// Backend binds a log-structured engine to a flash partition and exposes it
// through the backend capability set. One mutex serializes the block-device
// glue and every engine call of this instance.
type Backend struct {
	backend.Unsupported

	mu  sync.Mutex
	log *log.Logger

	engine  Engine
	dev     flash.Device
	table   flash.Table
	options *BackendOptions

	state State
	cfg   *Config
	files map[string]*file
}

func NewBackend(engine Engine, dev flash.Device, table flash.Table, opts ...BackendOption) (*Backend, error) {
	options := newDefaultBackendOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("lfs", log.Info, "", false)
	}

	return &Backend{
		log:     logger,
		engine:  engine,
		dev:     dev,
		table:   table,
		options: options,
		state:   StateUnmounted,
	}, nil
}

// Returns the identifier name defined for this backend
func (*Backend) Name() string {
	return "lfs"
}

// State returns the current lifecycle state.
func (b *Backend) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Mounted reports whether the filesystem is usable.
func (b *Backend) Mounted() bool {
	return b.State() == StateMounted
}

// Config returns a copy of the active configuration, nil when unmounted.
func (b *Backend) Config() *Config {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg == nil {
		return nil
	}
	cfg := *b.cfg
	return &cfg
}
