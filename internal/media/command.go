// Package media wraps the external media toolchain (ffmpeg, ffprobe,
// yt-dlp) behind a small adapter so the pipeline never shells out directly.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CommandError carries the full diagnostic payload of a failed external
// process: exit code plus captured stdout and stderr. Callers log these
// rather than just the message.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
}

// runner executes external commands. Tests substitute a fake.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// execRunner runs commands via os/exec with output capture.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout := outBuf.String()
	stderr := errBuf.String()

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout, stderr, &CommandError{
			Cmd:      name,
			ExitCode: exitCode,
			Stdout:   stdout,
			Stderr:   stderr,
		}
	}
	return stdout, stderr, nil
}
