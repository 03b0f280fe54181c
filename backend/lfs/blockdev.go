package lfs

import (
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/flash"
)

// BlockDevice is the callback set the engine uses to reach the medium.
// Every failure is reported as ErrIO.
type BlockDevice interface {
	Read(block, off uint32, buf []byte) error
	Prog(block, off uint32, buf []byte) error
	Erase(block uint32) error
	Sync() error
}

// Geometry holds the engine granularities. BlockSize must be a multiple of
// the flash sector size.
type Geometry struct {
	BlockSize uint32 `yaml:"block_size"`
	ReadSize  uint32 `yaml:"read_size"`
	ProgSize  uint32 `yaml:"prog_size"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		BlockSize: 4096,
		ReadSize:  128,
		ProgSize:  128,
	}
}

// Config is the engine configuration built at mount time.
type Config struct {
	BlockSize  uint32
	ReadSize   uint32
	ProgSize   uint32
	BlockCount uint32
	Lookahead  uint32

	Device BlockDevice
}

// Size returns the usable size in bytes.
func (c *Config) Size() int64 {
	return int64(c.BlockSize) * int64(c.BlockCount)
}

// NewConfig binds a partition of dev to a new engine configuration.
func NewConfig(p *flash.Partition, dev flash.Device, g Geometry) (*Config, error) {
	sector := dev.SectorSize()
	if g.BlockSize == 0 || g.BlockSize%sector != 0 {
		return nil, data.EINVAL
	}
	if p.Address%sector != 0 {
		return nil, data.EINVAL
	}
	if uint64(p.Address)+uint64(p.Size) > uint64(dev.Size()) {
		return nil, data.EINVAL
	}

	count := p.Size / g.BlockSize
	if count == 0 {
		return nil, data.EINVAL
	}

	return &Config{
		BlockSize:  g.BlockSize,
		ReadSize:   g.ReadSize,
		ProgSize:   g.ProgSize,
		BlockCount: count,
		Lookahead:  count,
		Device: &partitionDevice{
			dev:       dev,
			base:      p.Address,
			blockSize: g.BlockSize,
			count:     count,
		},
	}, nil
}

// partitionDevice maps engine blocks onto absolute flash addresses.
// base is captured once when the configuration is built.
type partitionDevice struct {
	dev       flash.Device
	base      uint32
	blockSize uint32
	count     uint32
}

func (pd *partitionDevice) addr(block, off uint32, n int) (uint32, error) {
	if block >= pd.count || uint64(off)+uint64(n) > uint64(pd.blockSize) {
		return 0, ErrIO
	}
	return pd.base + block*pd.blockSize + off, nil
}

func (pd *partitionDevice) Read(block, off uint32, buf []byte) error {
	addr, err := pd.addr(block, off, len(buf))
	if err != nil {
		return err
	}
	if err := pd.dev.Read(addr, buf); err != nil {
		return ErrIO
	}
	return nil
}

func (pd *partitionDevice) Prog(block, off uint32, buf []byte) error {
	addr, err := pd.addr(block, off, len(buf))
	if err != nil {
		return err
	}
	if err := pd.dev.Write(addr, buf); err != nil {
		return ErrIO
	}
	return nil
}

// Erase erases every sector covered by block.
func (pd *partitionDevice) Erase(block uint32) error {
	addr, err := pd.addr(block, 0, 0)
	if err != nil {
		return err
	}

	sectorSize := pd.dev.SectorSize()
	first := addr / sectorSize
	for s := uint32(0); s < pd.blockSize/sectorSize; s++ {
		if err := pd.dev.EraseSector(first + s); err != nil {
			return ErrIO
		}
	}
	return nil
}

// Sync is a no-op, flash writes are synchronous.
func (*partitionDevice) Sync() error {
	return nil
}
