package lfs

import (
	"github.com/mwantia/rtvfs/data"
)

type dir struct {
	b      *Backend
	ed     EngineDir
	info   Info
	closed bool
}

// Next returns the next native entry, skipping "." and "..".
func (d *dir) Next(ent *data.Dirent) (bool, error) {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()

	if d.closed || d.b.state != StateMounted {
		return false, data.EBADF
	}

	for {
		ok, err := d.ed.Read(&d.info)
		if err != nil {
			return false, translate(err)
		}
		if !ok {
			return false, nil
		}

		if d.info.Name == "." || d.info.Name == ".." {
			continue
		}

		ent.Name = d.info.Name
		ent.Size = d.info.Size
		ent.Type = data.DT_REG
		if d.info.Type == TypeDir {
			ent.Type = data.DT_DIR
		}
		return true, nil
	}
}

func (d *dir) Tell() (int64, error) {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()

	if d.closed {
		return 0, data.EBADF
	}

	off, err := d.ed.Tell()
	if err != nil {
		return 0, data.EBADF
	}
	return off, nil
}

func (d *dir) Close() error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()

	if d.closed {
		return data.EBADF
	}
	d.closed = true

	return translate(d.ed.Close())
}
