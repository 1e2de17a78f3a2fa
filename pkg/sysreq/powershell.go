package sysreq

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"
)

const powerShellScript = `
$ErrorActionPreference = "Stop"
[System.Net.ServicePointManager]::MaxServicePointIdleTime = %d;
$data = (Invoke-WebRequest -TimeoutSec %d '%s').Content;
$Writer = New-Object System.IO.BinaryWriter([console]::OpenStandardOutput());
$Writer.Write($data, 0, $data.length)
$Writer.Flush()
$Writer.Close()
`

// Substrings PowerShell writes to stderr when Invoke-WebRequest times out.
// Windows PowerShell and PowerShell Core word it differently, and neither has
// a dedicated exit code. The match is best effort.
const (
	powerShellTimeoutWindows = "The operation has timed out"
	powerShellTimeoutCore    = "HttpClient.Timeout"
)

// powerShellTimeouts returns the idle time limit in milliseconds and the
// request timeout in whole seconds. Both are zero, meaning unlimited, when no
// timeout is set.
func powerShellTimeouts(timeout time.Duration) (idleMillis, requestSeconds int64) {
	if timeout <= 0 {
		return 0, 0
	}
	secs := timeout.Seconds()
	idleMillis = int64(math.Round(math.Max(secs, 0.001) * 1000))
	requestSeconds = int64(math.Round(math.Max(secs, 1)))
	return idleMillis, requestSeconds
}

// PowerShell accepts the typographic quotes as single-quote delimiters too,
// and each of them is escaped by doubling, just like the ASCII quote.
var powerShellQuoteEscaper = strings.NewReplacer(
	"'", "''",
	"\u2018", "\u2018\u2018",
	"\u2019", "\u2019\u2019",
	"\u201a", "\u201a\u201a",
	"\u201b", "\u201b\u201b",
)

// powerShellScriptFor embeds url in a single-quoted PowerShell string literal,
// where quotes are the only special characters.
func powerShellScriptFor(url string, timeout time.Duration) string {
	idleMillis, requestSeconds := powerShellTimeouts(timeout)
	escaped := powerShellQuoteEscaper.Replace(url)
	return fmt.Sprintf(powerShellScript, idleMillis, requestSeconds, escaped)
}

func powerShellArgs(url string, timeout time.Duration) []string {
	return []string{"-command", powerShellScriptFor(url, timeout)}
}

// powerShellTimedOut applies the stderr heuristic for the given GOOS.
func powerShellTimedOut(goos string, stderr []byte) bool {
	if goos == "windows" {
		line, _, _ := bytes.Cut(stderr, []byte("\n"))
		return bytes.Contains(line, []byte(powerShellTimeoutWindows))
	}
	return bytes.Contains(stderr, []byte(powerShellTimeoutCore))
}

func fetchPowerShell(ctx context.Context, run runFunc, url string, timeout time.Duration) ([]byte, error) {
	res, err := run(ctx, PowerShell.Command(), powerShellArgs(url, timeout))
	if err != nil {
		return nil, &IOError{Backend: PowerShell, Err: err}
	}

	// The interpreter terminates its output with CRLF.
	res.stdout = bytes.TrimSuffix(res.stdout, []byte("\r\n"))

	if res.success() {
		return res.stdout, nil
	}
	if powerShellTimedOut(runtime.GOOS, res.stderr) {
		return nil, timedOut(PowerShell)
	}
	return nil, commandFailed(PowerShell, res)
}
