package shell

import (
	"context"
	"io"

	vfs "github.com/mwantia/rtvfs"
	"github.com/mwantia/rtvfs/data"
)

// API is the part of the virtual filesystem the commands operate on.
type API interface {
	Open(ctx context.Context, path string, flags data.OpenFlag, mode data.FileMode) (int, error)
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Close(fd int) error

	OpenDir(ctx context.Context, path string) (int, error)
	ReadDir(fd int) (*data.Dirent, error)
	CloseDir(fd int) error

	Stat(ctx context.Context, path string) (*data.Stat, error)
	Mkdir(ctx context.Context, path string, mode data.FileMode) error
	Rmdir(ctx context.Context, path string) error
	Unlink(ctx context.Context, path string) error
	Rename(ctx context.Context, src, dst string) error
	Truncate(ctx context.Context, path string, size int64) error

	Mount(ctx context.Context, target, name string) error
	Unmount(ctx context.Context, target string) error
	Format(ctx context.Context, name string) error
	Mounts() []vfs.MountInfo
	MountTable() *vfs.MountTable
	HistoryFile() (string, bool)
}

var _ API = (*vfs.VirtualFileSystem)(nil)

// Command represents an executable shell command.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, w io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Bool returns the value of a bool flag, false when unset.
func (a *CommandArgs) Bool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "long" or "l"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "l")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}
