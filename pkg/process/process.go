// Package process runs external command-line tools as if they were
// libraries: a spawned child exposes its stdout as a stream and a wait
// handle that turns non-zero exits and interruptions into errors.
package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Exported constants.
const (
	// StderrLimit caps how much of a child's stderr is kept for error messages.
	StderrLimit = 4 * 1024
)

// Exported variables.
var (
	ErrInterrupted   = errors.New("interrupted while waiting for process")
	ErrProcessFailed = errors.New("process failed")
)

// ExitError reports a child that exited with a non-zero status.
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %q exited with code %d", ErrProcessFailed, e.Args, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

// Is makes errors.Is(err, ErrProcessFailed) match.
func (e *ExitError) Is(target error) bool {
	return target == ErrProcessFailed
}

// Process is a spawned child whose stdout is owned by the caller.
type Process struct {
	Stdout io.ReadCloser

	args   []string
	ctx    context.Context //nolint:containedctx // Needed to tell interruption from failure in Wait
	cmd    *exec.Cmd
	stderr *limitedBuffer

	waitOnce sync.Once
	waitErr  error
}

// Spawn starts args[0] with the remaining arguments. Cancelling ctx kills
// the child; Wait then reports ErrInterrupted.
func Spawn(ctx context.Context, args []string) (*Process, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrProcessFailed)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // #nosec G204 - tool paths come from configuration
	stderr := &limitedBuffer{limit: StderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stdout of %q: %w", args, err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", args, err)
	}

	return &Process{
		Stdout: stdout,
		args:   args,
		ctx:    ctx,
		cmd:    cmd,
		stderr: stderr,
	}, nil
}

// Lines runs args to completion and returns its stdout split into lines.
func Lines(ctx context.Context, args []string) ([]string, error) {
	proc, err := Spawn(ctx, args)
	if err != nil {
		return nil, err
	}

	var lines []string

	scanner := bufio.NewScanner(proc.Stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, proc.Stdout)
	}

	err = proc.Wait()
	if err != nil {
		return nil, err
	}

	if scanErr != nil {
		return nil, fmt.Errorf("failed to read output of %q: %w", args, scanErr)
	}

	return lines, nil
}

// Args returns the argument vector the process was started with.
func (p *Process) Args() []string {
	return p.args
}

// Kill terminates the child. Wait still has to be called to reap it.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}

	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill %q: %w", p.args, err)
	}

	return nil
}

// Wait waits for the child to exit. Stdout must have been read to EOF or
// closed first. Repeated calls return the first result.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.wait()
	})

	return p.waitErr
}

func (p *Process) wait() error {
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}

	if p.ctx.Err() != nil {
		return fmt.Errorf("%q: %w: %w", p.args, ErrInterrupted, p.ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Args:   p.args,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(p.stderr.String()),
		}
	}

	return fmt.Errorf("failed waiting for %q: %w", p.args, err)
}

// limitedBuffer keeps the first limit bytes written to it and discards the rest.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - b.buf.Len()
	if room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf.Write(p[:room])
	}

	return len(p), nil
}
