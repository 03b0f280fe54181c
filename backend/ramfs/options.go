package ramfs

import (
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

const (
	DefaultSize      = 32 * 1024
	DefaultBlockSize = 512
	// NameMax is the longest name of a single path component.
	NameMax = 255
)

type BackendOptions struct {
	Logger    *log.Logger
	Size      int64
	BlockSize int64
}

type BackendOption func(*BackendOptions) error

func newDefaultBackendOptions() *BackendOptions {
	return &BackendOptions{
		Size:      DefaultSize,
		BlockSize: DefaultBlockSize,
	}
}

func WithLogger(logger *log.Logger) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Logger = logger
		return nil
	}
}

// WithSize sets the capacity in bytes, which must hold at least one block.
func WithSize(size int64) BackendOption {
	return func(opts *BackendOptions) error {
		if size <= 0 {
			return data.EINVAL
		}
		opts.Size = size
		return nil
	}
}

func WithBlockSize(size int64) BackendOption {
	return func(opts *BackendOptions) error {
		if size <= 0 {
			return data.EINVAL
		}
		opts.BlockSize = size
		return nil
	}
}
