package cli

import (
	"context"

	"github.com/mwantia/rtvfs/shell"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Boot the filesystems and start an interactive shell",
	Long: `Boot the filesystems and read commands from stdin until EOF or "exit".

Every line is appended to the history file on the FAT volume, or on the
RAM filesystem when no FAT volume is mounted. Type "help" for the list of
commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
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
	runErr := sh.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())

	if err := sys.Shutdown(context.Background()); err != nil && runErr == nil {
		return err
	}
	return runErr
}
