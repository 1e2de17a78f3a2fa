package sysreq

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Backend identifies a supported command-line HTTP client.
type Backend uint8

const (
	Wget Backend = iota + 1
	Curl
	PowerShell
)

// String returns the display name used in errors and SupportedHTTPClients.
func (b Backend) String() string {
	switch b {
	case Wget:
		return "wget"
	case Curl:
		return "cURL"
	case PowerShell:
		return "PowerShell"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// Command returns the executable name looked up on PATH.
func (b Backend) Command() string {
	switch b {
	case Wget:
		return "wget"
	case Curl:
		return "curl"
	case PowerShell:
		return powerShellCommand
	default:
		return ""
	}
}

// probeArgs is a harmless argument set that makes the client exit at once.
func (b Backend) probeArgs() []string {
	if b == PowerShell {
		return []string{"-help"}
	}
	return []string{"--help"}
}

func (b Backend) probe() bool {
	name := b.Command()
	if name == "" {
		return false
	}
	return probeProcess(name, b.probeArgs()...)
}

// fetch runs the client for url. A zero timeout means no limit.
func (b Backend) fetch(ctx context.Context, run runFunc, url string, timeout time.Duration) ([]byte, error) {
	switch b {
	case Wget:
		return fetchWget(ctx, run, url, timeout)
	case Curl:
		return fetchCurl(ctx, run, url, timeout)
	case PowerShell:
		return fetchPowerShell(ctx, run, url, timeout)
	default:
		return nil, fmt.Errorf("sysreq: unknown backend %d", uint8(b))
	}
}

// SupportedHTTPClients lists the clients this package can drive, in
// preference order, whether or not they are installed. Use it to tell users
// what to install when Installed reports false.
func SupportedHTTPClients() []string {
	out := make([]string, 0, len(preference))
	for _, b := range preference {
		out = append(out, b.String())
	}
	return out
}

// formatSeconds renders a timeout in seconds; zero is the clients' "no limit".
func formatSeconds(timeout time.Duration) string {
	if timeout <= 0 {
		return "0"
	}
	return strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)
}
