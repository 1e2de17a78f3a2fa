package sysreq

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is.
var (
	// ErrNoClientAvailable means resolution found no usable HTTP client. The
	// outcome is cached for the lifetime of the process.
	ErrNoClientAvailable = errors.New("sysreq: no compatible http client installed")

	// ErrInvalidURL means the URL could not be parsed or has no host.
	ErrInvalidURL = errors.New("sysreq: invalid url")

	// ErrInvalidURLScheme means the URL does not use http or https.
	ErrInvalidURLScheme = errors.New("sysreq: url must have http or https scheme")

	// ErrTimedOut means the client reported that the request exceeded its timeout.
	ErrTimedOut = errors.New("sysreq: request timed out")

	// ErrCommandFailed matches every *CommandFailedError.
	ErrCommandFailed = errors.New("sysreq: http client command failed")
)

// URLError reports a URL that failed to parse.
type URLError struct {
	URL string
	Err error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidURL, e.URL, e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }

// Is makes every URLError match ErrInvalidURL.
func (e *URLError) Is(target error) bool { return target == ErrInvalidURL }

// IOError reports that the client process could not be run, or that it
// signalled a timeout. Timeouts wrap ErrTimedOut.
type IOError struct {
	Backend Backend
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("sysreq: %s: %v", e.Backend, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Timeout reports whether the error is a client-side timeout.
func (e *IOError) Timeout() bool { return errors.Is(e.Err, ErrTimedOut) }

// CommandFailedError reports a client process that exited non-zero for a
// reason other than a timeout. Stdout and Stderr hold everything the process
// wrote; nothing is parsed.
type CommandFailedError struct {
	Backend  Backend
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("sysreq: %s exited with code %d", e.Backend, e.ExitCode)
}

// Is makes every CommandFailedError match ErrCommandFailed.
func (e *CommandFailedError) Is(target error) bool { return target == ErrCommandFailed }

func timedOut(b Backend) error {
	return &IOError{Backend: b, Err: ErrTimedOut}
}

func commandFailed(b Backend, res processResult) error {
	return &CommandFailedError{
		Backend:  b,
		ExitCode: res.exitCode,
		Stdout:   res.stdout,
		Stderr:   res.stderr,
	}
}
