package curl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/wcurl/wcurl/internal/downloader/types"
)

// Executor runs invocations as subprocesses. The subprocess inherits the
// wrapper's environment; its output goes to Stdout and Stderr.
type Executor struct {
	Stdout io.Writer
	Stderr io.Writer
	logger zerolog.Logger
}

var _ types.Executor = (*Executor)(nil)

// NewExecutor creates an Executor attached to the process' own streams.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger,
	}
}

// Execute runs inv and waits for it. Canceling ctx kills the subprocess.
func (e *Executor) Execute(ctx context.Context, inv types.Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	e.logger.Debug().Str("command", inv.String()).Msg("starting transport")

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &types.TransportError{ExitCode: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", types.ErrTransportNotFound, inv.Program)
	}
	return fmt.Errorf("failed to run %s: %w", inv.Program, err)
}
