package vfs

import (
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

type VirtualFileSystemOptions struct {
	LogLevel       log.LogLevel
	LogFile        string
	NoTerminalLog  bool
	JSONLog        bool
	Logger         *log.Logger
	MountTable     *MountTable
	MaxDescriptors int
}

type VirtualFileSystemOption func(*VirtualFileSystemOptions) error

func newDefaultVirtualFileSystemOptions() *VirtualFileSystemOptions {
	return &VirtualFileSystemOptions{
		LogLevel:       log.Info,
		MaxDescriptors: 64,
	}
}

func WithLogLevel(logLevel log.LogLevel) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithJSONLog() VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.JSONLog = true
		return nil
	}
}

// WithLogger uses an existing logger instead of creating one.
func WithLogger(logger *log.Logger) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithMountTable(table *MountTable) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		if table == nil {
			return data.EINVAL
		}
		opts.MountTable = table
		return nil
	}
}

// WithMaxDescriptors limits the number of simultaneously open descriptors.
func WithMaxDescriptors(n int) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		if n <= 0 {
			return data.EINVAL
		}
		opts.MaxDescriptors = n
		return nil
	}
}
