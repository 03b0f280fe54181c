package tui

import (
	"bytes"
	"context"
	"path"
	"sort"
	"unicode/utf8"

	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/shell"
)

// VFSAdapter wraps the filesystem calls the browser needs.
type VFSAdapter struct {
	ctx context.Context
	api shell.API
}

func NewVFSAdapter(ctx context.Context, api shell.API) *VFSAdapter {
	return &VFSAdapter{
		ctx: ctx,
		api: api,
	}
}

// ListDirectory returns the entries of dir, directories first.
func (a *VFSAdapter) ListDirectory(dir string) ([]*Entry, error) {
	fd, err := a.api.OpenDir(a.ctx, dir)
	if err != nil {
		return nil, err
	}
	defer a.api.CloseDir(fd)

	var entries []*Entry
	for {
		ent, err := a.api.ReadDir(fd)
		if err != nil {
			return nil, err
		}
		if ent == nil {
			break
		}

		e := &Entry{
			Name: ent.Name,
			Path: path.Join(dir, ent.Name),
			Size: ent.Size,
			Type: ent.Type,
		}
		if dir == "/" {
			if row, ok := a.api.MountTable().ForPath(e.Path); ok && row.Mounted {
				e.Mount = true
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Preview returns up to limit bytes of a regular file. Files that are not
// valid UTF-8 are summarized instead.
func (a *VFSAdapter) Preview(p string, limit int) (string, error) {
	fd, err := a.api.Open(a.ctx, p, data.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer a.api.Close(fd)

	buf := make([]byte, limit)
	total := 0
	for total < limit {
		n, err := a.api.Read(fd, buf[total:])
		if err != nil {
			return "", err
		}
		if n == 0 {
			break
		}
		total += n
	}

	content := buf[:total]
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return "(binary file)", nil
	}
	return string(content), nil
}

func (a *VFSAdapter) CreateFile(p string) error {
	fd, err := a.api.Open(a.ctx, p, data.O_WRONLY|data.O_CREAT|data.O_EXCL, 0666)
	if err != nil {
		return err
	}
	return a.api.Close(fd)
}

func (a *VFSAdapter) CreateDirectory(p string) error {
	return a.api.Mkdir(a.ctx, p, 0755)
}

// Delete removes a file or an empty directory.
func (a *VFSAdapter) Delete(e *Entry) error {
	if e.IsDir() {
		return a.api.Rmdir(a.ctx, e.Path)
	}
	return a.api.Unlink(a.ctx, e.Path)
}

func (a *VFSAdapter) Rename(src, dst string) error {
	return a.api.Rename(a.ctx, src, dst)
}
