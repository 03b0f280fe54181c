package data

import "time"

// Stat is the subset of struct stat the backends are able to fill.
type Stat struct {
	Mode    FileMode  `json:"mode"`
	Size    int64     `json:"size"`
	BlkSize int64     `json:"blksize"`
	ModTime time.Time `json:"mtime"`
}

// IsDir is a shorthand for Mode.IsDir.
func (s *Stat) IsDir() bool {
	return s.Mode.IsDir()
}
