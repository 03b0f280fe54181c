package logfs

import "github.com/mwantia/rtvfs/backend/lfs"

type dir struct {
	entries []lfs.Info
	pos     int
	closed  bool
}

func (d *dir) Read(info *lfs.Info) (bool, error) {
	if d.closed {
		return false, lfs.ErrBadF
	}
	if d.pos >= len(d.entries) {
		return false, nil
	}

	*info = d.entries[d.pos]
	d.pos++
	return true, nil
}

func (d *dir) Tell() (int64, error) {
	if d.closed {
		return 0, lfs.ErrBadF
	}
	return int64(d.pos), nil
}

func (d *dir) Close() error {
	if d.closed {
		return lfs.ErrBadF
	}
	d.closed = true
	return nil
}
