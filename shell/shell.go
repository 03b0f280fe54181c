// Package shell is a small line-oriented command interpreter on top of the
// virtual filesystem. Every executed line is appended to the history file.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/log"
)

const DefaultPrompt = "/ > "

type Shell struct {
	log     *log.Logger
	api     API
	manager *Manager
	prompt  string
}

func NewShell(api API, logger *log.Logger) *Shell {
	return &Shell{
		log:     logger,
		api:     api,
		manager: NewManager(api),
		prompt:  DefaultPrompt,
	}
}

// Manager returns the command manager, e.g. to register additional commands.
func (s *Shell) Manager() *Manager {
	return s.manager
}

// Run reads lines from in until EOF or "exit" and executes them. Command
// errors are printed to out and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			return nil
		}

		s.record(ctx, line)
		s.Exec(ctx, out, line)
	}
}

// Exec executes a single line and returns the exit code of the command.
func (s *Shell) Exec(ctx context.Context, out io.Writer, line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0
	}

	code, err := s.manager.Execute(ctx, out, fields...)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", fields[0], err)
		s.log.Debug("Exec: '%s' exited with %d: %v", line, code, err)
	}
	return code
}

// record appends line to the history file. Failures only get logged, the
// shell stays usable without a writable filesystem.
func (s *Shell) record(ctx context.Context, line string) {
	p, ok := s.api.HistoryFile()
	if !ok {
		return
	}

	flags := data.O_WRONLY | data.O_CREAT | data.O_APPEND
	if err := writeFile(ctx, s.api, p, flags, []byte(line+"\n")); err != nil {
		s.log.Debug("record: failed to append to %s: %v", p, err)
	}
}
