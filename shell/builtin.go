package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/rtvfs/data"
)

// ErrNoHistory is returned while neither the FAT nor the RAM filesystem is mounted.
var ErrNoHistory = errors.New("no filesystem for the history file")

// command is a builtin backed by a function.
type command struct {
	name        string
	usage       string
	description string
	flags       *CommandFlagSet
	minArgs     int

	run func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error
}

func (c *command) Name() string {
	return c.name
}

func (c *command) Description() string {
	return c.description
}

func (c *command) Usage() string {
	return c.usage
}

func (c *command) GetFlags() *CommandFlagSet {
	return c.flags
}

// Execute exits with 2 on usage errors and with 1 when the command failed.
func (c *command) Execute(ctx context.Context, api API, args *CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) < c.minArgs {
		return 2, fmt.Errorf("usage: %s", c.usage)
	}
	if err := c.run(ctx, api, args, w); err != nil {
		return 1, err
	}
	return 0, nil
}

func builtins(m *Manager) []Command {
	return []Command{
		&command{
			name:        "help",
			usage:       "help",
			description: "List the available commands",
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				for _, cmd := range m.List() {
					fmt.Fprintf(w, "%-28s %s\n", cmd.Usage(), cmd.Description())
				}
				return nil
			},
		},
		&command{
			name:        "ls",
			usage:       "ls [-l] [path]",
			description: "List a directory",
			flags: &CommandFlagSet{
				Flags: map[string]*CommandFlag{
					"long": {Name: "long", Short: "l", Type: "bool", Description: "Show type and size"},
				},
			},
			run: runLs,
		},
		&command{
			name:        "cat",
			usage:       "cat <path>...",
			description: "Print files",
			minArgs:     1,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				for _, p := range args.Args {
					buf, err := readAll(ctx, api, p)
					if err != nil {
						return fmt.Errorf("%s: %w", p, err)
					}
					w.Write(buf)
				}
				return nil
			},
		},
		&command{
			name:        "write",
			usage:       "write [-a] <path> [text...]",
			description: "Write a line of text to a file",
			minArgs:     1,
			flags: &CommandFlagSet{
				Flags: map[string]*CommandFlag{
					"append": {Name: "append", Short: "a", Type: "bool", Description: "Append instead of truncating"},
				},
			},
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				flags := data.O_WRONLY | data.O_CREAT
				if args.Bool("append") {
					flags |= data.O_APPEND
				} else {
					flags |= data.O_TRUNC
				}

				text := strings.Join(args.Args[1:], " ") + "\n"
				if err := writeFile(ctx, api, args.Args[0], flags, []byte(text)); err != nil {
					return fmt.Errorf("%s: %w", args.Args[0], err)
				}
				return nil
			},
		},
		&command{
			name:        "mkdir",
			usage:       "mkdir <path>...",
			description: "Create directories",
			minArgs:     1,
			run: eachPath(func(ctx context.Context, api API, p string) error {
				return api.Mkdir(ctx, p, 0755)
			}),
		},
		&command{
			name:        "rmdir",
			usage:       "rmdir <path>...",
			description: "Remove empty directories",
			minArgs:     1,
			run: eachPath(func(ctx context.Context, api API, p string) error {
				return api.Rmdir(ctx, p)
			}),
		},
		&command{
			name:        "rm",
			usage:       "rm <path>...",
			description: "Remove files",
			minArgs:     1,
			run: eachPath(func(ctx context.Context, api API, p string) error {
				return api.Unlink(ctx, p)
			}),
		},
		&command{
			name:        "mv",
			usage:       "mv <src> <dst>",
			description: "Rename a file or directory",
			minArgs:     2,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				return api.Rename(ctx, args.Args[0], args.Args[1])
			},
		},
		&command{
			name:        "truncate",
			usage:       "truncate -s <size> <path>",
			description: "Resize a file",
			minArgs:     1,
			flags: &CommandFlagSet{
				Flags: map[string]*CommandFlag{
					"size": {Name: "size", Short: "s", Type: "int", Required: true, Description: "New size in bytes"},
				},
			},
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				size, _ := args.Flags["size"].(int64)
				return api.Truncate(ctx, args.Args[0], size)
			},
		},
		&command{
			name:        "stat",
			usage:       "stat <path>",
			description: "Show file information",
			minArgs:     1,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				st, err := api.Stat(ctx, args.Args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args.Args[0], err)
				}
				fmt.Fprintf(w, "%s %d %s\n", st.Mode, st.Size, args.Args[0])
				return nil
			},
		},
		&command{
			name:        "mounts",
			usage:       "mounts",
			description: "Show the mount table",
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				for _, row := range api.MountTable().Entries() {
					state := "unmounted"
					if row.Mounted {
						state = "mounted"
					}
					fmt.Fprintf(w, "%-6s %-6s %-6s %s\n", row.Name, row.Backend, row.Path, state)
				}
				return nil
			},
		},
		&command{
			name:        "df",
			usage:       "df",
			description: "Show space usage of the registered filesystems",
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				for _, info := range api.Mounts() {
					if !info.HasUsage {
						fmt.Fprintf(w, "%-10s %-6s %10s %10s\n", info.Prefix, info.Backend, "-", "-")
						continue
					}
					fmt.Fprintf(w, "%-10s %-6s %10s %10s\n", info.Prefix, info.Backend,
						humanize.IBytes(uint64(info.Total)), humanize.IBytes(uint64(info.Used)))
				}
				return nil
			},
		},
		&command{
			name:        "mount",
			usage:       "mount <name> <path>",
			description: "Mount a filesystem of the mount table",
			minArgs:     2,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				return api.Mount(ctx, args.Args[1], args.Args[0])
			},
		},
		&command{
			name:        "umount",
			usage:       "umount <path>",
			description: "Unmount a filesystem",
			minArgs:     1,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				return api.Unmount(ctx, args.Args[0])
			},
		},
		&command{
			name:        "format",
			usage:       "format <name>",
			description: "Erase and recreate a filesystem",
			minArgs:     1,
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				return api.Format(ctx, args.Args[0])
			},
		},
		&command{
			name:        "history",
			usage:       "history",
			description: "Show the command history",
			run: func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
				p, ok := api.HistoryFile()
				if !ok {
					return ErrNoHistory
				}
				buf, err := readAll(ctx, api, p)
				if err != nil && !errors.Is(err, data.ENOENT) {
					return err
				}
				w.Write(buf)
				return nil
			},
		},
	}
}

func runLs(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
	p := "/"
	if len(args.Args) > 0 {
		p = args.Args[0]
	}

	fd, err := api.OpenDir(ctx, p)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	defer api.CloseDir(fd)

	long := args.Bool("long")
	for {
		ent, err := api.ReadDir(fd)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if ent == nil {
			return nil
		}

		if !long {
			fmt.Fprintln(w, ent.Name)
			continue
		}

		size := "-"
		if ent.Type == data.DT_REG {
			size = humanize.IBytes(uint64(ent.Size))
		}
		fmt.Fprintf(w, "%-3s %8s %s\n", ent.Type, size, ent.Name)
	}
}

func eachPath(fn func(ctx context.Context, api API, p string) error) func(context.Context, API, *CommandArgs, io.Writer) error {
	return func(ctx context.Context, api API, args *CommandArgs, w io.Writer) error {
		for _, p := range args.Args {
			if err := fn(ctx, api, p); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
		return nil
	}
}

func readAll(ctx context.Context, api API, p string) ([]byte, error) {
	fd, err := api.Open(ctx, p, data.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer api.Close(fd)

	var out []byte
	buf := make([]byte, 512)
	for {
		n, err := api.Read(fd, buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}

func writeFile(ctx context.Context, api API, p string, flags data.OpenFlag, buf []byte) error {
	fd, err := api.Open(ctx, p, flags, 0666)
	if err != nil {
		return err
	}

	for len(buf) > 0 {
		n, err := api.Write(fd, buf)
		if err != nil {
			api.Close(fd)
			return err
		}
		buf = buf[n:]
	}
	return api.Close(fd)
}
