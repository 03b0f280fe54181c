package lfs

import (
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/flash"
	"github.com/mwantia/rtvfs/log"
)

// Selector picks the flash partition holding the filesystem.
type Selector struct {
	Type    uint8
	Subtype uint8
	Label   string
}

type BackendOptions struct {
	Logger    *log.Logger
	Geometry  Geometry
	Partition Selector
}

type BackendOption func(*BackendOptions) error

func newDefaultBackendOptions() *BackendOptions {
	return &BackendOptions{
		Geometry: DefaultGeometry(),
		Partition: Selector{
			Type:    flash.TypeData,
			Subtype: flash.SubtypeLFS,
			Label:   "filesys",
		},
	}
}

func WithLogger(logger *log.Logger) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithGeometry(g Geometry) BackendOption {
	return func(opts *BackendOptions) error {
		if g.BlockSize == 0 || g.ReadSize == 0 || g.ProgSize == 0 {
			return data.EINVAL
		}
		if g.BlockSize%g.ReadSize != 0 || g.BlockSize%g.ProgSize != 0 {
			return data.EINVAL
		}
		opts.Geometry = g
		return nil
	}
}

func WithPartition(typ, subtype uint8, label string) BackendOption {
	return func(opts *BackendOptions) error {
		opts.Partition = Selector{
			Type:    typ,
			Subtype: subtype,
			Label:   label,
		}
		return nil
	}
}
