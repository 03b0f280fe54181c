package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mwantia/rtvfs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// commands already printed why they failed
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
