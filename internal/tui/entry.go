package tui

import (
	"github.com/dustin/go-humanize"
	"github.com/mwantia/rtvfs/data"
)

// Entry represents a file or directory entry in the TUI
type Entry struct {
	Name  string
	Path  string
	Size  int64
	Type  data.DirentType
	Mount bool
}

func (e *Entry) IsDir() bool {
	return e.Type == data.DT_DIR
}

// DisplayName returns the name with appropriate indicator
func (e *Entry) DisplayName() string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// DisplaySize returns human-readable size
func (e *Entry) DisplaySize() string {
	switch {
	case e.Mount:
		return "<MNT>"
	case e.IsDir():
		return "<DIR>"
	case e.Type == data.DT_CHR:
		return "<CHR>"
	default:
		return humanize.IBytes(uint64(e.Size))
	}
}

// Icon returns a single character marker for the entry type
func (e *Entry) Icon() string {
	switch {
	case e.Mount:
		return "M"
	case e.IsDir():
		return "d"
	case e.Type == data.DT_CHR:
		return "c"
	default:
		return "-"
	}
}

func (e *Entry) IsRegular() bool {
	return e.Type == data.DT_REG
}
