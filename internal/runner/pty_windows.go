package runner

import (
	"context"
	"errors"
)

// Launch is not supported on Windows.
func (l *PtyLauncher) Launch(ctx context.Context, argv []string) (Process, error) {
	return nil, errors.New("pty transport is not supported on windows")
}
