package tty

import (
	"strconv"

	"github.com/mwantia/rtvfs/data"
)

// dir lists the units as character devices.
type dir struct {
	units  int
	pos    int
	closed bool
}

func (d *dir) Next(ent *data.Dirent) (bool, error) {
	if d.closed {
		return false, data.EBADF
	}
	if d.pos >= d.units {
		return false, nil
	}

	ent.Name = strconv.Itoa(d.pos)
	ent.Type = data.DT_CHR
	ent.Size = 0
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
	return nil
}
