//go:build !windows

package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

const (
	defaultPtyCols = 120
	defaultPtyRows = 40
)

// Launch starts argv with stdin, stdout and stderr on a new terminal.
func (l *PtyLauncher) Launch(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = l.Dir
	if len(l.Env) > 0 {
		cmd.Env = append(cmd.Environ(), l.Env...)
	}

	size := &pty.Winsize{Cols: l.Cols, Rows: l.Rows}
	if size.Cols == 0 {
		size.Cols = defaultPtyCols
	}
	if size.Rows == 0 {
		size.Rows = defaultPtyRows
	}

	f, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, err
	}
	return &ptyProcess{cmd: cmd, f: f, out: newCRLFReader(f)}, nil
}

type ptyProcess struct {
	cmd *exec.Cmd
	f   *os.File
	out io.Reader
}

func (p *ptyProcess) Output() io.Reader { return p.out }

func (p *ptyProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	p.f.Close()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return p.cmd.ProcessState.ExitCode(), nil
}

// crlfReader folds "\r\n" into "\n". Linux reports EIO on the master once
// the last slave descriptor closes; that is treated as EOF.
type crlfReader struct {
	r       io.Reader
	buf     [4096]byte
	pending []byte
	cr      bool
	err     error
}

func newCRLFReader(r io.Reader) *crlfReader {
	return &crlfReader{r: r}
}

func (c *crlfReader) Read(p []byte) (int, error) {
	for {
		if len(c.pending) > 0 {
			n := copy(p, c.pending)
			c.pending = c.pending[n:]
			return n, nil
		}
		if c.err != nil {
			if c.cr {
				c.cr = false
				c.pending = []byte{'\r'}
				continue
			}
			return 0, c.err
		}

		n, err := c.r.Read(c.buf[:])
		if errors.Is(err, syscall.EIO) {
			err = io.EOF
		}
		c.err = err

		out := make([]byte, 0, n+1)
		for _, b := range c.buf[:n] {
			if c.cr {
				c.cr = false
				if b != '\n' {
					out = append(out, '\r')
				}
			}
			if b == '\r' {
				c.cr = true
				continue
			}
			out = append(out, b)
		}
		c.pending = out
	}
}
