package lfs

// Type is the native entry type reported by the engine.
type Type uint8

const (
	TypeReg Type = 1
	TypeDir Type = 2
)

// Info describes one engine entry.
type Info struct {
	Type Type
	Size int64
	Name string
}

// Engine is the log-structured filesystem engine driven by the glue.
// Implementations are not safe for concurrent use; the backend serializes
// every call. Failures are reported as Code values.
type Engine interface {
	Format(cfg *Config) error
	Mount(cfg *Config) error
	Unmount() error

	Open(path string, flags Flag) (EngineFile, error)
	Stat(path string) (*Info, error)
	Remove(path string) error
	Rename(src, dst string) error
	Mkdir(path string) error
	OpenDir(path string) (EngineDir, error)
}

// EngineFile is an open engine file.
type EngineFile interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence Whence) (int64, error)
	Size() int64
	Sync() error
	Truncate(size int64) error
	Close() error
}

// EngineDir is an open engine directory. Read returns "." and ".." like
// the native engine does.
type EngineDir interface {
	Read(info *Info) (bool, error)
	Tell() (int64, error)
	Close() error
}
