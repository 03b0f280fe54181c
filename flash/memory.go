package flash

import (
	"sync"
	"sync/atomic"
)

// Memory is a flash chip held in RAM. Fresh memory is erased.
type Memory struct {
	mu     sync.RWMutex
	data   []byte
	erases atomic.Int64
}

func NewMemory(size uint32) *Memory {
	m := &Memory{
		data: make([]byte, size),
	}
	for i := range m.data {
		m.data[i] = 0xff
	}
	return m
}

func (m *Memory) Read(addr uint32, buf []byte) error {
	if err := checkRange(m, addr, len(buf)); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	copy(buf, m.data[addr:])
	return nil
}

func (m *Memory) Write(addr uint32, buf []byte) error {
	if err := checkRange(m, addr, len(buf)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range buf {
		m.data[int(addr)+i] &= c
	}
	return nil
}

func (m *Memory) EraseSector(sector uint32) error {
	addr, err := sectorAddr(m, sector)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := addr; i < addr+SectorSize; i++ {
		m.data[i] = 0xff
	}
	m.erases.Add(1)
	return nil
}

func (*Memory) SectorSize() uint32 {
	return SectorSize
}

func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Erases returns the number of sector erases performed so far.
func (m *Memory) Erases() int64 {
	return m.erases.Load()
}
