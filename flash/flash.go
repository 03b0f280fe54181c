package flash

import "errors"

// SectorSize is the erase granularity of the SPI flash.
const SectorSize = 4096

var (
	ErrOutOfRange = errors.New("flash: address out of range")
	ErrClosed     = errors.New("flash: device closed")
)

// Device is the raw flash driver: absolute address reads and writes plus
// sector erase. Writes follow NOR semantics and can only clear bits, so a
// region must be erased (set to 0xff) before it is written again.
type Device interface {
	Read(addr uint32, buf []byte) error
	Write(addr uint32, buf []byte) error
	EraseSector(sector uint32) error
	SectorSize() uint32
	Size() uint32
}

func checkRange(dev Device, addr uint32, n int) error {
	if uint64(addr)+uint64(n) > uint64(dev.Size()) {
		return ErrOutOfRange
	}
	return nil
}

// sectorAddr returns the address of the first byte of sector. The index is
// checked before it is scaled, so large indexes can not wrap around.
func sectorAddr(dev Device, sector uint32) (uint32, error) {
	if uint64(sector) >= uint64(dev.Size())/SectorSize {
		return 0, ErrOutOfRange
	}
	return sector * SectorSize, nil
}
