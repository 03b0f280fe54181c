package stream

import (
	"sync"

	"github.com/mwantia/rtvfs/data"
)

// LocalStorage holds the per-descriptor flags of a backend that has no other
// per-descriptor state. It is sized once and indices are reused after close.
type LocalStorage struct {
	mu    sync.RWMutex
	flags []data.OpenFlag
}

func NewLocalStorage(size int) *LocalStorage {
	return &LocalStorage{
		flags: make([]data.OpenFlag, size),
	}
}

func (ls *LocalStorage) Len() int {
	return len(ls.flags)
}

func (ls *LocalStorage) Flags(fd int) (data.OpenFlag, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	if fd < 0 || fd >= len(ls.flags) {
		return 0, data.EBADF
	}
	return ls.flags[fd], nil
}

func (ls *LocalStorage) SetFlags(fd int, flags data.OpenFlag) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if fd < 0 || fd >= len(ls.flags) {
		return data.EBADF
	}
	ls.flags[fd] = flags
	return nil
}

func (ls *LocalStorage) nonBlocking(fd int) bool {
	if ls == nil {
		return false
	}
	flags, err := ls.Flags(fd)
	return err == nil && flags.IsNonBlocking()
}
