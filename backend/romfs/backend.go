package romfs

import (
	"context"
	"io/fs"
	"strings"
	"sync"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

// Backend serves a read-only image. Every operation that would modify the
// image fails with EROFS.
type Backend struct {
	backend.Unsupported

	mu  sync.RWMutex
	log *log.Logger

	image   fs.FS
	mounted bool
	files   map[*file]struct{}
}

type BackendOptions struct {
	Logger *log.Logger
}

type BackendOption func(*BackendOptions) error

func WithLogger(logger *log.Logger) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Logger = logger
		return nil
	}
}

func NewBackend(image fs.FS, opts ...BackendOption) (*Backend, error) {
	options := &BackendOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if image == nil {
		return nil, data.EINVAL
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("romfs", log.Info, "", false)
	}

	return &Backend{
		log:   logger,
		image: image,
	}, nil
}

// Returns the identifier name defined for this backend
func (*Backend) Name() string {
	return "romfs"
}

func (b *Backend) Mounted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.mounted
}

// Mount checks that the image has a readable root directory.
func (b *Backend) Mount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mounted {
		return data.EBUSY
	}

	info, err := fs.Stat(b.image, ".")
	if err != nil || !info.IsDir() {
		b.log.Error("romfs mount error")
		return translate(ErrInval)
	}

	b.files = make(map[*file]struct{})
	b.mounted = true

	b.log.Info("romfs mounted")
	return nil
}

func (b *Backend) Unmount(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mounted {
		return nil
	}

	for f := range b.files {
		f.closeUnsafe()
	}
	b.files = nil
	b.mounted = false

	b.log.Info("romfs unmounted")
	return nil
}

// Format is refused, the image can not be rewritten.
func (b *Backend) Format(ctx context.Context) error {
	return data.EROFS
}

// imagePath converts a backend path into an fs.FS path.
func imagePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}
