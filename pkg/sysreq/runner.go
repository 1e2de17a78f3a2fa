package sysreq

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// processResult is everything a finished client process produced.
type processResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int
}

func (r processResult) success() bool { return r.exitCode == 0 }

// runFunc starts name with args as a plain argument vector, waits for it and
// returns its output. A non-nil error means the process could not be run at
// all; a non-zero exit is reported through processResult.exitCode.
type runFunc func(ctx context.Context, name string, args []string) (processResult, error)

func runProcess(ctx context.Context, name string, args []string) (processResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := processResult{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.exitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

// probeProcess reports whether name can be found. Only a lookup failure
// counts as absent; any other start failure or exit status means the client
// exists and is left to fail at request time if it is really broken.
func probeProcess(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	hideWindow(cmd)
	// nil streams are connected to the null device.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	return !isNotFound(cmd.Run())
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, exec.ErrDot) ||
		errors.Is(err, os.ErrNotExist)
}
