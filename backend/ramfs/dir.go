package ramfs

import "github.com/mwantia/rtvfs/data"

// dir iterates a snapshot of the entries taken by OpenDir.
type dir struct {
	entries []data.Dirent
	pos     int
	closed  bool
}

func (d *dir) Next(ent *data.Dirent) (bool, error) {
	if d.closed {
		return false, data.EBADF
	}
	if d.pos >= len(d.entries) {
		return false, nil
	}

	*ent = d.entries[d.pos]
	d.pos++
	return true, nil
}

func (d *dir) Tell() (int64, error) {
	if d.closed {
		return 0, data.EBADF
	}
	return int64(d.pos), nil
}

func (d *dir) Close() error {
	if d.closed {
		return data.EBADF
	}
	d.closed = true
	d.entries = nil
	return nil
}
