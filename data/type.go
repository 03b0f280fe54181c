package data

// DirentType is the d_type of a directory entry.
type DirentType uint8

const (
	DT_UNKNOWN DirentType = 0
	DT_CHR     DirentType = 2
	DT_DIR     DirentType = 4
	DT_REG     DirentType = 8
)

func (t DirentType) String() string {
	switch t {
	case DT_CHR:
		return "chr"
	case DT_DIR:
		return "dir"
	case DT_REG:
		return "reg"
	default:
		return "unknown"
	}
}

// Dirent is one entry returned by readdir.
type Dirent struct {
	Name string     `json:"name"`
	Type DirentType `json:"type"`
	Size int64      `json:"size"`
}

// Reset clears the entry so it can be reused as scratch space.
func (d *Dirent) Reset() {
	*d = Dirent{}
}
