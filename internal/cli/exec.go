package cli

import (
	"context"
	"strings"

	"github.com/mwantia/rtvfs/shell"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Boot the filesystems and run a single shell command",
	Long: `Boot the filesystems, run one shell command and shut down again.

With a persistent flash image this is enough to script the filesystem:

  rtvfs -c rtvfs.yaml exec write /hello.txt hello
  rtvfs -c rtvfs.yaml exec cat /hello.txt
  rtvfs -c rtvfs.yaml exec ls -l /`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE:               runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

// runExec parses the persistent flags itself: flag parsing is disabled so
// the flags of the shell command reach it unchanged.
func runExec(cmd *cobra.Command, args []string) error {
	args, err := splitRootFlags(cmd, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cmd.Usage()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sys, err := Boot(ctx, cfg, cmd.ErrOrStderr(), WithConsole(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	sh := shell.NewShell(sys.FS, sys.FS.Logger().Named("shell"))
	code := sh.Exec(ctx, cmd.OutOrStdout(), strings.Join(args, " "))

	if err := sys.Shutdown(context.Background()); err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// splitRootFlags consumes the leading --config and --log-level flags and
// returns the remaining arguments.
func splitRootFlags(cmd *cobra.Command, args []string) ([]string, error) {
	for len(args) > 0 {
		name, value, ok := strings.Cut(strings.TrimLeft(args[0], "-"), "=")
		if !strings.HasPrefix(args[0], "-") {
			break
		}

		switch name {
		case "c":
			name = "config"
		case "config", "log-level":
		default:
			return args, nil
		}

		if !ok {
			if len(args) < 2 {
				return nil, cmd.Usage()
			}
			value = args[1]
			args = args[1:]
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return nil, err
		}
		args = args[1:]
	}
	return args, nil
}
