package vfs

import "github.com/mwantia/rtvfs/data"

// normalize validates a caller supplied path and returns its normalized,
// absolute form. The switch has no working directory, relative paths are
// taken relative to "/".
func normalize(path string) (string, error) {
	if path == "" {
		return "", data.ENOENT
	}
	return data.Normalize("/", path)
}
