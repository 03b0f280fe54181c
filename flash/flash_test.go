package flash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type TestDeviceFactory func(t *testing.T, size uint32) Device

func GetTestDeviceFactories() map[string]TestDeviceFactory {
	return map[string]TestDeviceFactory{
		"memory": func(t *testing.T, size uint32) Device {
			return NewMemory(size)
		},
		"sqlite": func(t *testing.T, size uint32) Device {
			dev, err := NewSQLite(filepath.Join(t.TempDir(), "flash.db"), size)
			require.NoError(t, err)
			t.Cleanup(func() { dev.Close() })
			return dev
		},
	}
}

func TestDevices_EraseWriteRead(t *testing.T) {
	for name, factory := range GetTestDeviceFactories() {
		t.Run(name, func(tst *testing.T) {
			dev := factory(tst, 4*SectorSize)

			buf := make([]byte, 8)
			require.NoError(tst, dev.Read(SectorSize-4, buf))
			for _, c := range buf {
				require.Equal(tst, byte(0xff), c, "fresh flash must read erased")
			}

			// Spans the boundary between sector 0 and sector 1
			payload := []byte("abcdefgh")
			require.NoError(tst, dev.Write(SectorSize-4, payload))
			require.NoError(tst, dev.Read(SectorSize-4, buf))
			require.Equal(tst, payload, buf)

			// NOR semantics: programming without erase only clears bits
			require.NoError(tst, dev.Write(SectorSize-4, []byte{0x0f}))
			require.NoError(tst, dev.Read(SectorSize-4, buf[:1]))
			require.Equal(tst, byte('a'&0x0f), buf[0])

			require.NoError(tst, dev.EraseSector(0))
			require.NoError(tst, dev.Read(SectorSize-4, buf))
			require.Equal(tst, []byte{0xff, 0xff, 0xff, 0xff}, buf[:4])
			require.Equal(tst, []byte("efgh"), buf[4:])
		})
	}
}

func TestDevices_OutOfRange(t *testing.T) {
	for name, factory := range GetTestDeviceFactories() {
		t.Run(name, func(tst *testing.T) {
			dev := factory(tst, 2*SectorSize)

			require.ErrorIs(tst, dev.Read(2*SectorSize-1, make([]byte, 2)), ErrOutOfRange)
			require.ErrorIs(tst, dev.Write(2*SectorSize, []byte{0}), ErrOutOfRange)
			require.ErrorIs(tst, dev.EraseSector(2), ErrOutOfRange)

			// Indexes whose address does not fit in 32 bits must not wrap to sector 0
			require.NoError(tst, dev.Write(0, []byte{0x00}))
			for _, sector := range []uint32{1 << 20, 1<<20 + 1, ^uint32(0)} {
				require.ErrorIs(tst, dev.EraseSector(sector), ErrOutOfRange)
			}
			buf := make([]byte, 1)
			require.NoError(tst, dev.Read(0, buf))
			require.Equal(tst, byte(0x00), buf[0])
		})
	}
}

func TestSQLite_Closed(t *testing.T) {
	dev, err := NewSQLite(":memory:", 2*SectorSize)
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	require.ErrorIs(t, dev.Read(0, make([]byte, 1)), ErrClosed)
	require.ErrorIs(t, dev.Write(0, []byte{0}), ErrClosed)
	require.ErrorIs(t, dev.EraseSector(0), ErrClosed)
	require.ErrorIs(t, dev.Close(), ErrClosed)
}

func TestSQLite_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.db")

	dev, err := NewSQLite(path, 2*SectorSize)
	require.NoError(t, err)
	require.NoError(t, dev.Write(100, []byte("persist")))
	require.NoError(t, dev.Close())

	dev, err = NewSQLite(path, 2*SectorSize)
	require.NoError(t, err)
	defer dev.Close()

	buf := make([]byte, 7)
	require.NoError(t, dev.Read(100, buf))
	require.Equal(t, "persist", string(buf))

	_, err = NewSQLite(path, 4*SectorSize)
	require.Error(t, err)
}

func TestTable_Find(t *testing.T) {
	table := Table{
		{Type: TypeApp, Subtype: 0x00, Label: "factory", Address: 0x10000, Size: 0x100000},
		{Type: TypeData, Subtype: SubtypeLFS, Label: "filesys", Address: 0x180000, Size: 0x80000},
	}

	p, ok := table.Find(TypeData, SubtypeLFS, "filesys")
	require.True(t, ok)
	require.Equal(t, uint32(0x180000), p.Address)

	_, ok = table.Find(TypeData, SubtypeLFS, "other")
	require.False(t, ok)

	p, ok = table.Find(TypeData, SubtypeAny, "")
	require.True(t, ok)
	require.Equal(t, "filesys", p.Label)
}

func TestMemory_Erases(t *testing.T) {
	dev := NewMemory(2 * SectorSize)
	require.NoError(t, dev.EraseSector(1))
	require.NoError(t, dev.EraseSector(1))
	require.Equal(t, int64(2), dev.Erases())
}
