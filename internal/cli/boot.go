package cli

import (
	"context"
	"io"
	"os"

	vfs "github.com/mwantia/rtvfs"
	"github.com/mwantia/rtvfs/backend"
	"github.com/mwantia/rtvfs/backend/lfs"
	"github.com/mwantia/rtvfs/backend/ramfs"
	"github.com/mwantia/rtvfs/backend/romfs"
	"github.com/mwantia/rtvfs/backend/tty"
	"github.com/mwantia/rtvfs/config"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/flash"
	"github.com/mwantia/rtvfs/internal/logfs"
	"github.com/mwantia/rtvfs/log"
	"github.com/mwantia/rtvfs/uart"
)

// TTYPrefix is where the serial units are registered.
const TTYPrefix = "/dev/tty"

// System is a booted filesystem switch together with the simulated hardware.
type System struct {
	FS   *vfs.VirtualFileSystem
	UART *uart.Loopback

	log   *log.Logger
	flash flash.Device
}

type BootOptions struct {
	Console io.Writer
}

type BootOption func(*BootOptions) error

// WithConsole receives everything transmitted on the TTY units. Without it
// the output is discarded.
func WithConsole(w io.Writer) BootOption {
	return func(opts *BootOptions) error {
		if w == nil {
			return data.EINVAL
		}
		opts.Console = w
		return nil
	}
}

// Boot creates the hardware described by cfg, registers a backend for every
// mount table row it can serve and mounts them. Mount failures are logged,
// the filesystems that did mount stay usable.
func Boot(ctx context.Context, cfg *config.Config, logOutput io.Writer, opts ...BootOption) (*System, error) {
	options := &BootOptions{
		Console: io.Discard,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := log.NewLogger("rtvfs", cfg.LogLevel(), cfg.Log.File, cfg.Log.File != "")
	logger.JSON = cfg.Log.JSON
	if cfg.Log.File == "" && logOutput != nil {
		logger.SetOutput(logOutput)
	}

	table, err := cfg.MountTable()
	if err != nil {
		return nil, err
	}

	fs, err := vfs.NewVirtualFileSystem(
		vfs.WithLogger(logger),
		vfs.WithMountTable(table),
		vfs.WithMaxDescriptors(cfg.MaxDescriptors),
	)
	if err != nil {
		return nil, err
	}

	var dev flash.Device
	if cfg.Flash.Image != "" {
		dev, err = flash.NewSQLite(cfg.Flash.Image, cfg.Flash.Size)
		if err != nil {
			return nil, err
		}
	} else {
		dev = flash.NewMemory(cfg.Flash.Size)
	}
	logger.Info("Boot: flash of %s with %d partitions", log.Bytes(int64(dev.Size())), len(cfg.Flash.Partitions))

	sys := &System{
		FS:    fs,
		log:   logger,
		flash: dev,
	}

	for _, row := range table.Entries() {
		b, err := sys.newBackend(cfg, row)
		if err != nil {
			sys.closeFlash()
			return nil, err
		}
		if b == nil {
			logger.Warn("Boot: no backend for '%s' (%s), %s stays unmounted", row.Name, row.Backend, row.Path)
			continue
		}
		if err := fs.Register(row.Path, b); err != nil {
			sys.closeFlash()
			return nil, err
		}
	}

	sys.UART = uart.NewLoopback(cfg.TTY.Units, uart.WithSink(options.Console))
	console, err := tty.NewBackend(sys.UART,
		tty.WithLogger(logger.Named("tty")),
		tty.WithCRLF(cfg.TTY.CRLF),
	)
	if err != nil {
		sys.closeFlash()
		return nil, err
	}
	if err := fs.Register(TTYPrefix, console); err != nil {
		sys.closeFlash()
		return nil, err
	}

	if err := fs.MountAll(ctx); err != nil {
		logger.Warn("Boot: not every filesystem could be mounted: %v", err)
	}

	return sys, nil
}

// newBackend returns nil for filesystems the host can not provide.
func (s *System) newBackend(cfg *config.Config, row vfs.MountPoint) (backend.Backend, error) {
	logger := s.log.Named(row.Name)

	switch row.Backend {
	case "lfs":
		return lfs.NewBackend(logfs.New(), s.flash, cfg.Flash.Partitions,
			lfs.WithLogger(logger),
			lfs.WithGeometry(cfg.LFS),
		)
	case "ramfs":
		return ramfs.NewBackend(
			ramfs.WithLogger(logger),
			ramfs.WithSize(cfg.RAM.Size),
			ramfs.WithBlockSize(cfg.RAM.BlockSize),
		)
	case "romfs":
		if cfg.ROM.Dir == "" {
			return nil, nil
		}
		return romfs.NewBackend(os.DirFS(cfg.ROM.Dir), romfs.WithLogger(logger))
	default:
		return nil, nil
	}
}

// Shutdown closes all descriptors, unmounts every filesystem and releases
// the simulated hardware.
func (s *System) Shutdown(ctx context.Context) error {
	errs := &data.Errors{}
	errs.Add(s.FS.Shutdown(ctx))
	s.UART.Close()
	errs.Add(s.closeFlash())
	return errs.Errors()
}

func (s *System) closeFlash() error {
	if c, ok := s.flash.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
