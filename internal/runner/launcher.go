package runner

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// Process is a running step whose stdout and stderr arrive on one stream.
type Process interface {
	// Output returns the merged output stream. It reaches EOF once the
	// process and everything holding its output open has exited.
	Output() io.Reader
	// Wait releases the process after Output is drained and returns its
	// exit code. A non-zero exit is not an error.
	Wait() (int, error)
}

// Launcher starts step processes.
type Launcher interface {
	Launch(ctx context.Context, argv []string) (Process, error)
}

// LocalLauncher runs processes on this machine.
type LocalLauncher struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

var _ Launcher = (*LocalLauncher)(nil)

// Launch starts argv with stdout and stderr attached to the same pipe, so
// the bytes arrive interleaved in the order the child writes them.
func (l *LocalLauncher) Launch(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = l.Dir
	if len(l.Env) > 0 {
		cmd.Env = append(cmd.Environ(), l.Env...)
	}

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &localProcess{cmd: cmd, out: out}, nil
}

type localProcess struct {
	cmd *exec.Cmd
	out io.Reader
}

func (p *localProcess) Output() io.Reader { return p.out }

func (p *localProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return p.cmd.ProcessState.ExitCode(), nil
}

// PtyLauncher runs processes on this machine attached to a pseudo-terminal,
// for programs that change their output when stdout is not a terminal.
// Output is read from the terminal's master side with CRLF line endings
// folded to LF.
type PtyLauncher struct {
	Dir  string
	Env  []string
	Cols uint16
	Rows uint16
}

var _ Launcher = (*PtyLauncher)(nil)
