package logfs

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	magic      = "rtlogfs1"
	headerSize = 28
)

// header is stored at the start of block 0 and points at the latest snapshot.
type header struct {
	Generation uint32
	Start      uint32
	Length     uint32
	Checksum   uint32
}

func (h *header) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[8:], h.Generation)
	binary.LittleEndian.PutUint32(buf[12:], h.Start)
	binary.LittleEndian.PutUint32(buf[16:], h.Length)
	binary.LittleEndian.PutUint32(buf[20:], h.Checksum)
	binary.LittleEndian.PutUint32(buf[24:], crc32.ChecksumIEEE(buf[:24]))
	return buf
}

func decodeHeader(buf []byte) (*header, bool) {
	if len(buf) < headerSize || string(buf[:8]) != magic {
		return nil, false
	}
	if binary.LittleEndian.Uint32(buf[24:]) != crc32.ChecksumIEEE(buf[:24]) {
		return nil, false
	}

	return &header{
		Generation: binary.LittleEndian.Uint32(buf[8:]),
		Start:      binary.LittleEndian.Uint32(buf[12:]),
		Length:     binary.LittleEndian.Uint32(buf[16:]),
		Checksum:   binary.LittleEndian.Uint32(buf[20:]),
	}, true
}

// blocksFor returns how many blocks a snapshot of n bytes occupies.
func blocksFor(n, blockSize uint32) uint32 {
	if n == 0 {
		return 1
	}
	return (n + blockSize - 1) / blockSize
}
