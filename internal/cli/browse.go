package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/rtvfs/internal/tui"
	"github.com/mwantia/rtvfs/shell"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Boot the filesystems and browse them in a terminal UI",
	Long: `Boot the filesystems and open a two-pane file browser.

Log output is discarded while the browser owns the terminal, configure
log.file to keep it. Press ":" to run a shell command and "?" for help.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sys, err := Boot(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}

	logger := sys.FS.Logger().Named("tui")
	sh := shell.NewShell(sys.FS, logger)
	model := tui.NewModel(tui.NewVFSAdapter(ctx, sys.FS), sh, logger)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, runErr := p.Run()

	if err := sys.Shutdown(context.Background()); err != nil && runErr == nil {
		return err
	}
	return runErr
}
