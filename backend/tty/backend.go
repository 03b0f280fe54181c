package tty

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
	"github.com/mwantia/rtvfs/stream"
	"golang.org/x/sys/unix"
)

// Device is a set of serial units. Lock and Unlock serialize the writers
// of one unit.
type Device interface {
	stream.Device

	Units() int
	Lock(unit int)
	Unlock(unit int)
}

// Backend exposes every unit of a Device as "/<unit>". Descriptors are the
// unit numbers, so the open flags of a unit are shared by all its files.
type Backend struct {
	backend.Unsupported

	log *log.Logger
	dev Device
	ls  *stream.LocalStorage

	options *BackendOptions
}

type BackendOptions struct {
	Logger *log.Logger
	CRLF   bool
	Mirror io.Writer
}

type BackendOption func(*BackendOptions) error

func WithLogger(logger *log.Logger) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Logger = logger
		return nil
	}
}

// WithCRLF controls whether "\n" is written as "\r\n". Enabled by default.
func WithCRLF(crlf bool) BackendOption {
	return func(opts *BackendOptions) error {
		opts.CRLF = crlf
		return nil
	}
}

// WithMirror copies every transmitted byte to w.
func WithMirror(w io.Writer) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Mirror = w
		return nil
	}
}

func NewBackend(dev Device, opts ...BackendOption) (*Backend, error) {
	options := &BackendOptions{
		CRLF: true,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("tty", log.Info, "", false)
	}

	return &Backend{
		log:     logger,
		dev:     dev,
		ls:      stream.NewLocalStorage(dev.Units()),
		options: options,
	}, nil
}

// Returns the identifier name defined for this backend
func (*Backend) Name() string {
	return "tty"
}

// unitOf parses "/<unit>" and fails with ENOENT for anything else.
func (b *Backend) unitOf(path string) (int, error) {
	name, ok := strings.CutPrefix(path, "/")
	if !ok || name == "" {
		return 0, data.ENOENT
	}

	unit, err := strconv.Atoi(name)
	if err != nil || unit < 0 || unit >= b.dev.Units() || strconv.Itoa(unit) != name {
		return 0, data.ENOENT
	}
	return unit, nil
}

// Open stores flags as the flags of the unit and returns a file bound to it.
func (b *Backend) Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (backend.File, error) {
	unit, err := b.unitOf(path)
	if err != nil {
		return nil, err
	}

	if err := b.ls.SetFlags(unit, flags); err != nil {
		return nil, err
	}

	b.log.Debug("Open: opened unit %d with flags 0x%x", unit, int(flags))
	return &file{
		b:    b,
		unit: unit,
	}, nil
}

func (b *Backend) Stat(ctx context.Context, path string) (*data.Stat, error) {
	if path == "/" {
		return &data.Stat{Mode: data.ModeDir | 0555}, nil
	}

	if _, err := b.unitOf(path); err != nil {
		return nil, err
	}
	return &data.Stat{Mode: data.ModeCharDevice | 0666}, nil
}

// OpenDir lists the units of the device.
func (b *Backend) OpenDir(ctx context.Context, path string) (backend.Dir, error) {
	if path != "/" {
		if _, err := b.unitOf(path); err == nil {
			return nil, data.ENOTDIR
		}
		return nil, data.ENOENT
	}

	return &dir{
		units: b.dev.Units(),
	}, nil
}

func (b *Backend) Access(ctx context.Context, path string, amode int) error {
	_, err := b.Stat(ctx, path)
	return err
}

// Select waits on the units set in r and w. Descriptors are unit numbers.
func (b *Backend) Select(nfds int, r, w, e *unix.FdSet, timeout *time.Duration) (int, error) {
	if nfds > b.dev.Units() {
		nfds = b.dev.Units()
	}
	return stream.Select(b.dev, nfds, r, w, e, timeout), nil
}
