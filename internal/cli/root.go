package cli

import (
	"errors"
	"fmt"

	"github.com/mwantia/rtvfs/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rtvfs",
	Short: "Virtual filesystem switch of an embedded OS, hosted",
	Long: `rtvfs boots the filesystem switch with its flash, RAM, ROM and TTY
backends on the host and gives access to it through a small shell.

The flash chip is simulated in memory, or persisted in a SQLite image when
flash.image is configured. The mount table, the partition table and the
backend geometry are read from rtvfs.yaml.

Exit Codes:
  0  - Success
  1  - General error (boot failed or command failed)
  2  - Command usage error`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries the exit code of a shell command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path of the config file or of the directory holding "+config.ConfigFileName)
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

// loadConfig loads the configured file. Without --config, rtvfs.yaml of the
// working directory is used when present, else the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if path == "" {
		cfg, err = config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.Default(), nil
		}
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	if level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
